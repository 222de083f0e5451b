package reminder

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"dietbot/internal/storage"
	kit "dietbot/internal/transport"
	logx "dietbot/pkg/logx"
)

// Notifier is the outbound side of the dispatcher. Enqueue must not
// block; delivery is fire-and-forget with failures logged downstream.
type Notifier interface {
	Enqueue(n kit.Notification) error
}

// Clock returns the current instant; injected so tests can pin "now"
// to arbitrary literals instead of waiting on real time.
type Clock func() time.Time

type Config struct {
	Enabled bool

	// PollInterval is both the tick cadence and the match tolerance.
	// If ticks arrive on schedule, every occurrence matches exactly one
	// pass; a stalled or restarted process inside a window can still
	// duplicate or miss a send, since no delivered-marker is kept.
	PollInterval time.Duration

	Timezone    string // IANA TZ, e.g. "Europe/Rome"; empty means local
	MorningTime storage.TimeOfDay
	CheckinTime storage.TimeOfDay
}

// Service runs the dispatch loop: on every tick it snapshots "now" once,
// scans the store for today's rules and hands matches to the notifier.
type Service struct {
	mu sync.Mutex

	cfg      Config
	log      logx.Logger
	store    storage.Store
	notifier Notifier
	clock    Clock

	loc    *time.Location
	c      *cron.Cron
	stopCh chan struct{}
}

func New(cfg Config, store storage.Store, notifier Notifier, log logx.Logger) *Service {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Minute
	}
	if (cfg.MorningTime == storage.TimeOfDay{}) {
		cfg.MorningTime = storage.TimeOfDay{Hour: 8}
	}
	if (cfg.CheckinTime == storage.TimeOfDay{}) {
		cfg.CheckinTime = storage.TimeOfDay{Hour: 9}
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		cfg:      cfg,
		log:      log,
		store:    store,
		notifier: notifier,
		clock:    time.Now,
	}
}

// SetClock replaces the time source. Call before Start.
func (s *Service) SetClock(c Clock) {
	if c != nil {
		s.clock = c
	}
}

func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cfg.Enabled || s.stopCh != nil {
		return nil
	}

	s.loc = s.loadLocation()
	s.c = cron.New(cron.WithLocation(s.loc))
	if _, err := s.c.AddFunc("@every "+s.cfg.PollInterval.String(), func() {
		tctx, cancel := context.WithTimeout(ctx, s.cfg.PollInterval)
		defer cancel()
		if err := s.tick(tctx, s.clock().In(s.loc)); err != nil {
			s.log.Warn("dispatch tick aborted", logx.Err(err))
		}
	}); err != nil {
		return err
	}
	s.stopCh = make(chan struct{})
	s.c.Start()
	s.log.Info("reminder dispatcher started",
		logx.Duration("poll_interval", s.cfg.PollInterval),
		logx.String("tz", s.loc.String()),
	)
	return nil
}

func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopCh == nil {
		return
	}
	close(s.stopCh)
	s.stopCh = nil
	if s.c != nil {
		stopCtx := s.c.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
		}
		s.c = nil
	}
	s.log.Info("reminder dispatcher stopped")
}

func (s *Service) loadLocation() *time.Location {
	tz := strings.TrimSpace(s.cfg.Timezone)
	if tz == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		s.log.Warn("invalid timezone, falling back to Local", logx.String("tz", tz), logx.Err(err))
		return time.Local
	}
	return loc
}

// tick evaluates every active rule against a single now snapshot.
// Store read failures abort the whole tick: a partial rule set must not
// be treated as authoritative. Delivery failures never do.
func (s *Service) tick(ctx context.Context, now time.Time) error {
	tol := s.cfg.PollInterval
	today := storage.FromTime(now.Weekday())

	meals, err := s.store.MealsForDay(ctx, today)
	if err != nil {
		return err
	}
	for _, m := range meals {
		if !ShouldFireMeal(now, m, s.cfg.MorningTime, tol) {
			continue
		}
		s.deliver(kit.Notification{
			Kind:   "meal",
			Target: kit.ChatTarget{ChatID: m.Owner},
			Text:   mealReminderText(m),
		})
	}

	checkins, err := s.store.SettingsForCheckinDay(ctx, today)
	if err != nil {
		return err
	}
	for _, st := range checkins {
		if !ShouldFireFixed(now, s.cfg.CheckinTime, tol) {
			continue
		}
		s.deliver(kit.Notification{
			Kind:   "checkin",
			Target: kit.ChatTarget{ChatID: st.Owner},
			Text:   checkinText(),
		})
	}

	grocery, err := s.store.SettingsWithGrocery(ctx)
	if err != nil {
		return err
	}
	for _, st := range grocery {
		if st.GroceryTime == nil {
			continue
		}
		at, err := storage.ParseTimeOfDay(*st.GroceryTime)
		if err != nil {
			s.log.Warn("skipping malformed grocery time",
				logx.Int64("owner", st.Owner), logx.String("time", *st.GroceryTime))
			continue
		}
		if !ShouldFireFixed(now, at, tol) {
			continue
		}
		// Grocery reminders describe tomorrow's plan, not today's.
		tomorrow, err := s.store.MealsForOwnerDay(ctx, st.Owner, today.Next())
		if err != nil {
			return err
		}
		s.deliver(kit.Notification{
			Kind:   "grocery",
			Target: kit.ChatTarget{ChatID: st.Owner},
			Text:   groceryText(tomorrow),
		})
	}

	return nil
}

// deliver hands one notification to the queue. A full queue or downstream
// failure is isolated to this recipient; the tick moves on.
func (s *Service) deliver(n kit.Notification) {
	if n.Options == nil {
		n.Options = &kit.SendOptions{ParseMode: "Markdown", DisablePreview: true}
	}
	if err := s.notifier.Enqueue(n); err != nil {
		s.log.Warn("reminder delivery failed",
			logx.String("kind", n.Kind),
			logx.Int64("chat_id", n.Target.ChatID),
			logx.Err(err),
		)
	}
}
