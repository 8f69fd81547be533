package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the application configuration
type Config struct {
	Source    SourceConfig    `toml:"source"`
	Selectors SelectorsConfig `toml:"selectors"`
	Timing    TimingConfig    `toml:"timing"`
	Rates     RatesConfig     `toml:"rates"`
	Page      PageConfig      `toml:"page"`
	Logging   LoggingConfig   `toml:"logging"`
}

// SourceConfig identifies the bridged site and how playable locations and
// item identity are recognized on it.
type SourceConfig struct {
	Name           string `toml:"name"`
	WatchPrefix    string `toml:"watch_path_prefix"`
	ItemParam      string `toml:"item_param"`
	PlaylistParam  string `toml:"playlist_param"`
	ArtURLTemplate string `toml:"art_url_template"`
}

// SelectorsConfig names every page affordance the bridge touches. Menu
// indexes are positions within the resolved menu-item lists, so a menu
// restructure on the page is a config change here.
type SelectorsConfig struct {
	Title             string `toml:"title"`
	Artist            string `toml:"artist"`
	Media             string `toml:"media"`
	PlaylistHeader    string `toml:"playlist_header"`
	PlaylistIndex     string `toml:"playlist_index"`
	PlaylistLoop      string `toml:"playlist_loop"`
	PlaylistShuffle   string `toml:"playlist_shuffle"`
	NextButton        string `toml:"next_button"`
	PrevButton        string `toml:"prev_button"`
	MuteButton        string `toml:"mute_button"`
	SettingsButton    string `toml:"settings_button"`
	SettingsMenuItems string `toml:"settings_menu_items"`
	ContextMenuItems  string `toml:"context_menu_items"`
	SpeedMenuIndex    int    `toml:"speed_menu_index"`
	LoopMenuIndex     int    `toml:"loop_menu_index"`
}

// TimingConfig contains every delay the bridge schedules.
type TimingConfig struct {
	PollIntervalMs        int `toml:"poll_interval_ms"`
	SettleDelayMs         int `toml:"settle_delay_ms"`
	PreviousDoubleClickMs int `toml:"previous_double_click_ms"`
}

func (t TimingConfig) PollInterval() time.Duration {
	return time.Duration(t.PollIntervalMs) * time.Millisecond
}

func (t TimingConfig) SettleDelay() time.Duration {
	return time.Duration(t.SettleDelayMs) * time.Millisecond
}

func (t TimingConfig) PreviousDoubleClick() time.Duration {
	return time.Duration(t.PreviousDoubleClickMs) * time.Millisecond
}

// RatesConfig is the discrete playback-rate menu the page offers, in menu
// order.
type RatesConfig struct {
	Menu []float64 `toml:"menu"`
}

// PageConfig configures the HTML document host.
type PageConfig struct {
	DocumentPath    string `toml:"document_path"`
	WatchForChanges bool   `toml:"watch_for_changes"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Name:           "youtube",
			WatchPrefix:    "/watch",
			ItemParam:      "v",
			PlaylistParam:  "list",
			ArtURLTemplate: "https://i.ytimg.com/vi/%s/hqdefault.jpg",
		},
		Selectors: SelectorsConfig{
			Title:             "h1.title yt-formatted-string",
			Artist:            "yt-formatted-string#owner-name",
			Media:             "video",
			PlaylistHeader:    "#playlist .header",
			PlaylistIndex:     "#playlist .header .index-message",
			PlaylistLoop:      "#playlist-actions a:nth-of-type(1)",
			PlaylistShuffle:   "#playlist-actions a:nth-of-type(2)",
			NextButton:        ".ytp-next-button",
			PrevButton:        ".ytp-prev-button",
			MuteButton:        ".ytp-mute-button",
			SettingsButton:    ".ytp-settings-button",
			SettingsMenuItems: ".ytp-settings-menu .ytp-menuitem",
			ContextMenuItems:  ".ytp-contextmenu .ytp-menuitem",
			SpeedMenuIndex:    1,
			LoopMenuIndex:     3,
		},
		Timing: TimingConfig{
			PollIntervalMs:        1000,
			SettleDelayMs:         300,
			PreviousDoubleClickMs: 100,
		},
		Rates: RatesConfig{
			Menu: []float64{0.25, 0.5, 0.75, 1, 1.25, 1.5, 1.75, 2},
		},
		Page: PageConfig{
			DocumentPath:    "./page.html",
			WatchForChanges: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Config file doesn't exist, create it with defaults
		if err := cfg.SaveToFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config file: %w", err)
		}
		// Stdout belongs to the outbound channel; keep the notice off it.
		fmt.Fprintf(os.Stderr, "Created default configuration file at: %s\n", configPath)
		return cfg, nil
	}

	// Load from file
	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves the configuration to a TOML file
func (c *Config) SaveToFile(configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create or open file
	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// Write header comment
	header := `# Mediabridge Configuration
# This file configures the playback state bridge: how playable pages are
# recognized, which page affordances the bridge reads and clicks, and the
# delays it schedules.

`
	if _, err := file.WriteString(header); err != nil {
		return fmt.Errorf("failed to write config header: %w", err)
	}

	// Encode configuration to TOML
	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config to TOML: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Source.Name == "" {
		return fmt.Errorf("source name cannot be empty")
	}
	if c.Source.WatchPrefix == "" {
		return fmt.Errorf("watch path prefix cannot be empty")
	}
	if c.Source.ItemParam == "" {
		return fmt.Errorf("item query parameter cannot be empty")
	}

	// Readiness depends on these three resolving
	if c.Selectors.Title == "" || c.Selectors.Artist == "" || c.Selectors.Media == "" {
		return fmt.Errorf("title, artist and media selectors cannot be empty")
	}
	if c.Selectors.SpeedMenuIndex < 0 || c.Selectors.LoopMenuIndex < 0 {
		return fmt.Errorf("menu indexes must not be negative")
	}

	if c.Timing.PollIntervalMs <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.Timing.SettleDelayMs < 0 || c.Timing.PreviousDoubleClickMs < 0 {
		return fmt.Errorf("delays must not be negative")
	}

	if len(c.Rates.Menu) == 0 {
		return fmt.Errorf("rate menu cannot be empty")
	}
	for i, r := range c.Rates.Menu {
		if r <= 0 {
			return fmt.Errorf("rate menu entries must be positive")
		}
		if i > 0 && r <= c.Rates.Menu[i-1] {
			return fmt.Errorf("rate menu must be strictly increasing")
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Logging.Format)
	}

	return nil
}
