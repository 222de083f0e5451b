package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalYAML = `
telegram:
  token: "123:abc"
storage:
  path: "./bot.db"
reminder:
  enabled: true
  poll_interval: "30s"
  morning_time: "08:00"
`

func TestParseYAML(t *testing.T) {
	m := NewManager(writeFile(t, "config.yaml", minimalYAML))
	cfg, err := m.Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Telegram.Token != "123:abc" || cfg.Storage.Path != "./bot.db" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Reminder.PollInterval != "30s" || !cfg.Reminder.Enabled {
		t.Fatalf("reminder = %+v", cfg.Reminder)
	}
}

func TestParseJSON(t *testing.T) {
	m := NewManager(writeFile(t, "config.json",
		`{"telegram":{"token":"123:abc"},"storage":{"path":"./bot.db"}}`))
	if _, err := m.Parse(); err != nil {
		t.Fatalf("parse: %v", err)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	m := NewManager(writeFile(t, "config.yaml", minimalYAML+"\nfrobnicate: true\n"))
	if _, err := m.Parse(); err == nil {
		t.Fatal("unknown top-level key must be rejected")
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantSub string
	}{
		{"missing token", func(c *Config) { c.Telegram.Token = " " }, "telegram.token"},
		{"missing storage path", func(c *Config) { c.Storage.Path = "" }, "storage.path"},
		{"bad poll interval", func(c *Config) { c.Reminder.PollInterval = "soonish" }, "reminder.poll_interval"},
		{"negative timeout", func(c *Config) { c.Telegram.PollTimeout = "-5s" }, "telegram.poll_timeout"},
		{"bad morning time", func(c *Config) { c.Reminder.MorningTime = "8 o'clock" }, "reminder.morning_time"},
		{"bad checkin time", func(c *Config) { c.Reminder.CheckinTime = "25:00" }, "reminder.checkin_time"},
	}
	for _, tt := range tests {
		cfg := &Config{
			Telegram: TelegramConfig{Token: "123:abc"},
			Storage:  StorageConfig{Path: "./bot.db"},
		}
		tt.mutate(cfg)
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), tt.wantSub) {
			t.Fatalf("%s: err = %v, want substring %q", tt.name, err, tt.wantSub)
		}
	}
}

func TestSubscribeDropsOldestWhenFull(t *testing.T) {
	m := NewManager("unused")
	ch := m.Subscribe(1)
	defer m.Unsubscribe(ch)

	a, b := &Config{}, &Config{}
	m.publish(a)
	m.publish(b)

	got := <-ch
	if got != b {
		t.Fatal("subscriber must see the newest config")
	}
}

func TestParseDurationField(t *testing.T) {
	if d, err := ParseDurationField("x", " 90s "); err != nil || d.Seconds() != 90 {
		t.Fatalf("got %v, %v", d, err)
	}
	if d, err := ParseDurationField("x", ""); err != nil || d != 0 {
		t.Fatalf("empty must be zero: %v, %v", d, err)
	}
	if _, err := ParseDurationField("x", "-1s"); err == nil {
		t.Fatal("negative must error")
	}
	if d, err := ParseDurationOrDefault("x", "", 5); err != nil || d != 5 {
		t.Fatalf("default: %v, %v", d, err)
	}
}
