package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got: %v", err)
	}
	if cfg.Timing.PollInterval() != time.Second {
		t.Errorf("expected 1s poll interval, got %v", cfg.Timing.PollInterval())
	}
	if cfg.Timing.SettleDelay() != 300*time.Millisecond {
		t.Errorf("expected 300ms settle delay, got %v", cfg.Timing.SettleDelay())
	}
	if cfg.Timing.PreviousDoubleClick() != 100*time.Millisecond {
		t.Errorf("expected 100ms double-click gap, got %v", cfg.Timing.PreviousDoubleClick())
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty source name", func(c *Config) { c.Source.Name = "" }},
		{"empty watch prefix", func(c *Config) { c.Source.WatchPrefix = "" }},
		{"empty item param", func(c *Config) { c.Source.ItemParam = "" }},
		{"empty media selector", func(c *Config) { c.Selectors.Media = "" }},
		{"negative menu index", func(c *Config) { c.Selectors.LoopMenuIndex = -1 }},
		{"zero poll interval", func(c *Config) { c.Timing.PollIntervalMs = 0 }},
		{"negative settle delay", func(c *Config) { c.Timing.SettleDelayMs = -1 }},
		{"empty rate menu", func(c *Config) { c.Rates.Menu = nil }},
		{"non-positive rate", func(c *Config) { c.Rates.Menu = []float64{0, 1} }},
		{"unsorted rate menu", func(c *Config) { c.Rates.Menu = []float64{1, 0.5} }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLoadConfigCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Source.Name != "youtube" {
		t.Errorf("expected default source name, got %q", cfg.Source.Name)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected config file to be created: %v", err)
	}

	// A second load must read the file it just wrote.
	again, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Selectors.Media != cfg.Selectors.Media {
		t.Error("reloaded config differs from saved defaults")
	}
}

func TestLoadConfigKeepsStdoutClean(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	orig := os.Stdout
	os.Stdout = w
	_, loadErr := LoadConfig(path)
	os.Stdout = orig
	w.Close()

	if loadErr != nil {
		t.Fatalf("LoadConfig: %v", loadErr)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	// Stdout carries the outbound message channel; the created-file notice
	// must not leak onto it.
	if len(out) != 0 {
		t.Errorf("expected no stdout output, got %q", out)
	}
}

func TestLoadConfigRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[timing]
poll_interval_ms = -5
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for invalid poll interval, got nil")
	}
}
