package app

import (
	"context"
	"sync"
	"time"

	"dietbot/internal/config"
	"dietbot/internal/intake"
	"dietbot/internal/notifier"
	"dietbot/internal/reminder"
	"dietbot/internal/router"
	"dietbot/internal/storage"
	kit "dietbot/internal/transport"
	"dietbot/internal/transport/telegram"
	"dietbot/pkg/logx"
	"dietbot/pkg/sdnotify"
)

// App assembles and supervises the whole bot: config, logging, storage,
// the Telegram adapter, the update pump, the notifier pipeline and the
// reminder dispatcher.
type App struct {
	cfgm *config.Manager

	log  logx.Logger
	logs *logx.Service

	store   storage.Store
	adapter kit.Adapter
	notif   *notifier.Service
	rem     *reminder.Service
	rt      *router.Router

	updates chan kit.Update

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log = log.With(logx.String("comp", "app"))
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	busyTimeout, err := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(storage.Config{
		Path:        cfg.Storage.Path,
		BusyTimeout: busyTimeout,
	}, log.With(logx.String("comp", "storage")))
	if err != nil {
		return nil, err
	}

	pollTimeout, err := config.ParseDurationOrDefault("telegram.poll_timeout", cfg.Telegram.PollTimeout, 10*time.Second)
	if err != nil {
		return nil, err
	}
	ad, err := telegram.New(telegram.Config{
		Token:       cfg.Telegram.Token,
		PollTimeout: pollTimeout,
	}, log.With(logx.String("comp", "telegram")))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	notif := notifier.New(notifier.Config{
		Workers:    cfg.Notifier.Workers,
		QueueSize:  cfg.Notifier.QueueSize,
		RatePerSec: cfg.Notifier.RatePerSec,
	}, ad, log.With(logx.String("comp", "notifier")))

	remCfg, err := mapReminderConfig(cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	rem := reminder.New(remCfg, store, notif, log.With(logx.String("comp", "reminder")))

	rt := router.New(log.With(logx.String("comp", "router")), store, ad, intake.NewRegistry())

	return &App{
		cfgm:    cfgm,
		log:     log,
		logs:    logSvc,
		store:   store,
		adapter: ad,
		notif:   notif,
		rem:     rem,
		rt:      rt,
		updates: make(chan kit.Update, 256),
	}, nil
}

func mapReminderConfig(cfg *config.Config) (reminder.Config, error) {
	interval, err := config.ParseDurationOrDefault("reminder.poll_interval", cfg.Reminder.PollInterval, time.Minute)
	if err != nil {
		return reminder.Config{}, err
	}
	out := reminder.Config{
		Enabled:      cfg.Reminder.Enabled,
		PollInterval: interval,
		Timezone:     cfg.Reminder.Timezone,
	}
	if raw := cfg.Reminder.MorningTime; raw != "" {
		t, err := storage.ParseTimeOfDay(raw)
		if err != nil {
			return reminder.Config{}, err
		}
		out.MorningTime = t
	}
	if raw := cfg.Reminder.CheckinTime; raw != "" {
		t, err := storage.ParseTimeOfDay(raw)
		if err != nil {
			return reminder.Config{}, err
		}
		out.CheckinTime = t
	}
	return out, nil
}

func (a *App) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if err := a.adapter.Start(runCtx, a.updates); err != nil {
		cancel()
		return err
	}
	a.notif.Start(runCtx)
	if err := a.rem.Start(runCtx); err != nil {
		cancel()
		return err
	}

	if mu, ok := a.adapter.(kit.CommandMenuUpdater); ok {
		if err := mu.UpdateMenuCommands(runCtx, a.rt.Commands()); err != nil {
			a.log.Warn("command menu update failed", logx.Err(err))
		}
	}

	// Update pump: one goroutine, the router serializes per-user state.
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		for {
			select {
			case <-runCtx.Done():
				return
			case up := <-a.updates:
				a.rt.HandleUpdate(runCtx, up)
			}
		}
	}()

	// Config hot reload: logging and notifier knobs apply live, the
	// rest needs a restart.
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.cfgm.Watch(runCtx); err != nil {
			a.log.Warn("config watch disabled", logx.Err(err))
		}
	}()
	sub := a.cfgm.Subscribe(8)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer a.cfgm.Unsubscribe(sub)
		for {
			select {
			case <-runCtx.Done():
				return
			case newCfg, ok := <-sub:
				if !ok {
					return
				}
				a.applyReload(newCfg)
			}
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		sdnotify.Watchdog(runCtx)
	}()

	sdnotify.Ready()
	a.log.Info("started")
	return nil
}

func (a *App) applyReload(cfg *config.Config) {
	a.logs.Apply(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	a.notif.Apply(notifier.Config{
		Workers:    cfg.Notifier.Workers,
		QueueSize:  cfg.Notifier.QueueSize,
		RatePerSec: cfg.Notifier.RatePerSec,
	})
	a.log.Info("config reloaded",
		logx.String("level", cfg.Logging.Level),
		logx.Int("rate_per_sec", cfg.Notifier.RatePerSec))
	a.log.Debug("storage/reminder/telegram changes need a restart")
}

func (a *App) Stop(ctx context.Context) error {
	sdnotify.Stopping()
	if a.cancel != nil {
		a.cancel()
	}

	a.rem.Stop(ctx)
	a.notif.Stop(ctx)
	if err := a.adapter.Stop(ctx); err != nil {
		a.log.Warn("adapter stop", logx.Err(err))
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		a.log.Warn("shutdown timed out waiting for goroutines")
	}

	if err := a.store.Close(); err != nil {
		a.log.Warn("store close", logx.Err(err))
	}
	a.log.Info("stopped")
	return a.logs.Close()
}
