package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func isolate(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "cfg"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(base, "state"))
	return base
}

func TestLoadDefaults(t *testing.T) {
	base := isolate(t)

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.APIURL != "https://api.particle.io" {
		t.Errorf("APIURL = %q", c.APIURL)
	}
	if c.DeviceName != "GarageDoor" {
		t.Errorf("DeviceName = %q", c.DeviceName)
	}
	if c.Timeout != 15*time.Second {
		t.Errorf("Timeout = %v", c.Timeout)
	}
	if c.TokenTTL != 0 {
		t.Errorf("TokenTTL = %v", c.TokenTTL)
	}
	if want := filepath.Join(base, "state", "garagedoor", "history.db"); c.HistoryDSN != want {
		t.Errorf("HistoryDSN = %q, want %q", c.HistoryDSN, want)
	}
	if c.LogLevel != "info" {
		t.Errorf("LogLevel = %q", c.LogLevel)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	base := isolate(t)
	path := filepath.Join(base, "custom.yaml")
	yaml := "device_name: Shed\ntimeout: 3s\ntoken_ttl: 24h\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GARAGEDOOR_LOG_LEVEL", "warn")
	t.Setenv("GARAGEDOOR_HISTORY_DSN", "postgres://u:p@db/garage")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"device from file", c.DeviceName, "Shed"},
		{"timeout from file", c.Timeout, 3 * time.Second},
		{"ttl from file", c.TokenTTL, 24 * time.Hour},
		{"env beats file", c.LogLevel, "warn"},
		{"env dsn", c.HistoryDSN, "postgres://u:p@db/garage"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	base := isolate(t)
	if _, err := Load(filepath.Join(base, "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{APIURL: "https://api.particle.io", DeviceName: "GarageDoor", Timeout: time.Second}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty device", func(c *Config) { c.DeviceName = " " }},
		{"empty api", func(c *Config) { c.APIURL = "" }},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
