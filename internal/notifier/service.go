package notifier

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"

	"golang.org/x/time/rate"

	kit "dietbot/internal/transport"
	logx "dietbot/pkg/logx"
)

var (
	ErrQueueFull = errors.New("notifier queue full")
	ErrStopped   = errors.New("notifier stopped")
)

type Config struct {
	Workers    int
	QueueSize  int
	RatePerSec int
}

// Service is the async send pipeline: bounded queue, worker pool and a
// token-bucket rate limit (Telegram flood control). A failed send is
// logged and dropped; the next scheduled occurrence is the retry point.
type Service struct {
	mu sync.Mutex

	log     logx.Logger
	adapter kit.Adapter

	cfg     Config
	limiter *rate.Limiter

	accepting bool
	queue     chan kit.Notification

	runCtx    context.Context
	runCancel context.CancelFunc
	workerWG  sync.WaitGroup
}

func New(cfg Config, adapter kit.Adapter, log logx.Logger) *Service {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 3
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		log:     log,
		adapter: adapter,
		cfg:     cfg,
		// Token bucket: burst = rate per sec, so short spikes don't block too hard.
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec),
	}
}

// Apply updates the rate limit at runtime. Queue size and worker count
// only change across a restart.
func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 3
	}
	s.cfg.RatePerSec = cfg.RatePerSec
	s.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec)
}

func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	if s.queue != nil {
		s.mu.Unlock()
		return
	}
	s.queue = make(chan kit.Notification, s.cfg.QueueSize)
	s.accepting = true
	s.runCtx, s.runCancel = context.WithCancel(ctx)
	workers := s.cfg.Workers
	s.mu.Unlock()

	for i := 0; i < workers; i++ {
		i := i
		s.workerWG.Add(1)
		go func() {
			defer s.workerWG.Done()
			defer func() {
				if r := recover(); r != nil {
					s.log.Error("panic in notifier worker",
						logx.Int("worker", i), logx.Any("panic", r), logx.String("stack", string(debug.Stack())))
				}
			}()
			s.workerLoop()
		}()
	}
	s.log.Info("notifier started", logx.Int("workers", workers), logx.Int("queue_size", s.cfg.QueueSize))
}

func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	if s.queue == nil {
		s.mu.Unlock()
		return
	}
	s.accepting = false
	cancel := s.runCancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		s.workerWG.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}

	s.mu.Lock()
	s.queue = nil
	s.mu.Unlock()
	s.log.Info("notifier stopped")
}

// Enqueue adds a notification to the send queue without blocking.
func (s *Service) Enqueue(n kit.Notification) error {
	s.mu.Lock()
	q := s.queue
	ok := s.accepting
	s.mu.Unlock()

	if q == nil || !ok {
		return ErrStopped
	}
	select {
	case q <- n:
		return nil
	default:
		return ErrQueueFull
	}
}

func (s *Service) workerLoop() {
	for {
		s.mu.Lock()
		ctx := s.runCtx
		q := s.queue
		lim := s.limiter
		s.mu.Unlock()
		if ctx == nil || q == nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case n := <-q:
			if err := lim.Wait(ctx); err != nil {
				return
			}
			s.send(ctx, n)
		}
	}
}

func (s *Service) send(ctx context.Context, n kit.Notification) {
	opt := n.Options
	if opt == nil {
		opt = &kit.SendOptions{DisablePreview: true}
	}
	_, err := s.adapter.SendText(ctx, n.Target, n.Text, opt)
	if err != nil {
		// Per-recipient isolation: log and drop, never retry here.
		s.log.Warn("notification send failed",
			logx.String("kind", n.Kind), logx.Int64("chat_id", n.Target.ChatID), logx.Err(err))
		return
	}
	s.log.Debug("notification sent",
		logx.String("kind", n.Kind), logx.Int64("chat_id", n.Target.ChatID))
}
