package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/pflag"

	"github.com/zam-dot/ferrum/fetcher"
	"github.com/zam-dot/ferrum/logging"
	"github.com/zam-dot/ferrum/navigation"
)

const envPrefix = "FERRUM"

// Duration reads "15s"-style values from JSON and the environment.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"10s\": %w", err)
	}
	return d.Decode(s)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Decode implements envconfig.Decoder.
func (d *Duration) Decode(value string) error {
	v, err := time.ParseDuration(value)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

type Config struct {
	HomePage        string   `json:"home_page" envconfig:"HOME_PAGE"`
	SearchTemplate  string   `json:"search_template" envconfig:"SEARCH_TEMPLATE"`
	MaxTabs         int      `json:"max_tabs" envconfig:"MAX_TABS"`
	EnableBookmarks bool     `json:"enable_bookmarks" envconfig:"BOOKMARKS"`
	EnableHistory   bool     `json:"enable_history" envconfig:"HISTORY"`
	BookmarkFile    string   `json:"bookmark_file" envconfig:"BOOKMARK_FILE"`
	FetchTimeout    Duration `json:"fetch_timeout" envconfig:"FETCH_TIMEOUT"`
	FetchRetries    int      `json:"fetch_retries" envconfig:"FETCH_RETRIES"`
	FetchRate       float64  `json:"fetch_rate" envconfig:"FETCH_RATE"`
	UserAgent       string   `json:"user_agent" envconfig:"USER_AGENT"`
	LogLevel        string   `json:"log_level" envconfig:"LOG_LEVEL"`
	LogFile         string   `json:"log_file" envconfig:"LOG_FILE"`
	LogDev          bool     `json:"log_dev" envconfig:"LOG_DEV"`
}

func DefaultConfig() Config {
	return Config{
		SearchTemplate:  navigation.DefaultSearchTemplate,
		MaxTabs:         10,
		EnableBookmarks: true,
		EnableHistory:   true,
		BookmarkFile:    defaultBookmarkFile(),
		FetchTimeout:    Duration(15 * time.Second),
		FetchRetries:    2,
		LogLevel:        "info",
	}
}

// Fetcher returns the HTTP client settings. An unset timeout or user agent
// keeps the client's default.
func (c Config) Fetcher() fetcher.Config {
	fc := fetcher.DefaultConfig()
	if c.FetchTimeout > 0 {
		fc.Timeout = time.Duration(c.FetchTimeout)
	}
	if c.UserAgent != "" {
		fc.UserAgent = c.UserAgent
	}
	fc.Retries = c.FetchRetries
	fc.Rate = c.FetchRate
	return fc
}

// Logging returns the logger settings.
func (c Config) Logging() logging.Config {
	lc := logging.DefaultConfig()
	if c.LogLevel != "" {
		lc.Level = c.LogLevel
	}
	lc.Development = c.LogDev
	lc.File = c.LogFile
	return lc
}

func defaultBookmarkFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "bookmarks.json"
	}
	return filepath.Join(dir, "ferrum", "bookmarks.json")
}

// registerFlags adds the command-line overrides to fs.
func registerFlags(fs *pflag.FlagSet) {
	d := DefaultConfig()
	fs.String("config", "", "Path to a JSON config file")
	fs.String("search", d.SearchTemplate, "Search URL template, %s is replaced by the query")
	fs.Int("max-tabs", d.MaxTabs, "Maximum number of open tabs")
	fs.Bool("bookmarks", d.EnableBookmarks, "Enable bookmarks")
	fs.Bool("history", d.EnableHistory, "Enable the history view")
	fs.String("bookmark-file", d.BookmarkFile, "Bookmark file")
	fs.Duration("timeout", time.Duration(d.FetchTimeout), "Page fetch timeout")
	fs.Int("retries", d.FetchRetries, "Fetch retries")
	fs.String("log-file", d.LogFile, "Write logs to this file")
	fs.String("log-level", d.LogLevel, "Log level (debug, info, warn, error)")
	fs.Bool("log-dev", d.LogDev, "Human-readable log output")
}

// loadConfig layers defaults, the config file, FERRUM_* environment
// variables and finally any flags the user actually set.
func loadConfig(fs *pflag.FlagSet) (Config, error) {
	cfg := DefaultConfig()

	if path, _ := fs.GetString("config"); path != "" {
		if err := loadConfigFromFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	if err := applyFlags(fs, &cfg); err != nil {
		return cfg, err
	}

	if cfg.MaxTabs < 1 {
		return cfg, fmt.Errorf("max tabs must be at least 1, got %d", cfg.MaxTabs)
	}
	return cfg, nil
}

func loadConfigFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyFlags(fs *pflag.FlagSet, cfg *Config) error {
	var err error
	set := func(name string, apply func() error) {
		if err == nil && fs.Changed(name) {
			err = apply()
		}
	}

	set("search", func() (e error) { cfg.SearchTemplate, e = fs.GetString("search"); return })
	set("max-tabs", func() (e error) { cfg.MaxTabs, e = fs.GetInt("max-tabs"); return })
	set("bookmarks", func() (e error) { cfg.EnableBookmarks, e = fs.GetBool("bookmarks"); return })
	set("history", func() (e error) { cfg.EnableHistory, e = fs.GetBool("history"); return })
	set("bookmark-file", func() (e error) { cfg.BookmarkFile, e = fs.GetString("bookmark-file"); return })
	set("timeout", func() error {
		v, e := fs.GetDuration("timeout")
		cfg.FetchTimeout = Duration(v)
		return e
	})
	set("retries", func() (e error) { cfg.FetchRetries, e = fs.GetInt("retries"); return })
	set("log-file", func() (e error) { cfg.LogFile, e = fs.GetString("log-file"); return })
	set("log-level", func() (e error) { cfg.LogLevel, e = fs.GetString("log-level"); return })
	set("log-dev", func() (e error) { cfg.LogDev, e = fs.GetBool("log-dev"); return })
	return err
}
