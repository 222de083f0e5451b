package config

import (
	"errors"
	"fmt"
	"strings"
)

type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Logging  LoggingConfig  `json:"logging"`
	Storage  StorageConfig  `json:"storage"`
	Reminder ReminderConfig `json:"reminder"`
	Notifier NotifierConfig `json:"notifier"`
}

type TelegramConfig struct {
	Token string `json:"token"`
	// PollTimeout is a Go duration string (e.g. "10s", "2m").
	PollTimeout string `json:"poll_timeout,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// StorageConfig controls the SQLite schedule store.
type StorageConfig struct {
	Path string `json:"path"`
	// BusyTimeout is a Go duration string (sqlite busy_timeout pragma).
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

// ReminderConfig controls the dispatch loop.
//
// PollInterval doubles as the match tolerance window: every occurrence is
// matched by exactly one polling pass as long as ticks arrive on schedule.
// There is deliberately no separate tolerance knob, so interval and window
// cannot drift apart in config.
type ReminderConfig struct {
	Enabled bool `json:"enabled"`
	// PollInterval is a Go duration string (e.g. "30s", "1m").
	PollInterval string `json:"poll_interval,omitempty"`
	// Timezone is an IANA TZ name (e.g. "Europe/Rome"). Empty means local.
	Timezone string `json:"timezone,omitempty"`
	// MorningTime is the fixed HH:MM fire time for same-day-morning rules.
	MorningTime string `json:"morning_time,omitempty"`
	// CheckinTime is the fixed HH:MM fire time for weekly check-ins.
	CheckinTime string `json:"checkin_time,omitempty"`
}

// NotifierConfig controls the async send pipeline.
type NotifierConfig struct {
	Workers    int `json:"workers,omitempty"`
	QueueSize  int `json:"queue_size,omitempty"`
	RatePerSec int `json:"rate_per_sec,omitempty"`
}

// Validate performs static checks that don't require I/O.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return errors.New("telegram.token is required")
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		return errors.New("storage.path is required")
	}
	for path, raw := range map[string]string{
		"telegram.poll_timeout":  c.Telegram.PollTimeout,
		"storage.busy_timeout":   c.Storage.BusyTimeout,
		"reminder.poll_interval": c.Reminder.PollInterval,
	} {
		if _, err := ParseDurationField(path, raw); err != nil {
			return err
		}
	}
	for path, raw := range map[string]string{
		"reminder.morning_time": c.Reminder.MorningTime,
		"reminder.checkin_time": c.Reminder.CheckinTime,
	} {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if _, _, err := parseHHMM(raw); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}
