package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"SwingSentinel/internal/collector"
)

// DefaultPath is read when CONFIG_PATH is not set.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		BaseURL       string              `yaml:"base_url"`
		APIKey        string              `yaml:"api_key"`
		DataDir       string              `yaml:"data_dir"`
		Days          int                 `yaml:"days"`
		YahooGateways []collector.Gateway `yaml:"yahoo_gateways"`
	} `yaml:"data_source"`
	Fetch struct {
		MaxRetries    int           `yaml:"max_retries"`
		ProviderPause time.Duration `yaml:"provider_pause"`
		RetryStep     time.Duration `yaml:"retry_step"`
		Timeout       time.Duration `yaml:"timeout"`
	} `yaml:"fetch"`
	Profiles struct {
		File    string `yaml:"file"`
		Default string `yaml:"default"`
	} `yaml:"profiles"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	HTTP struct {
		Addr     string        `yaml:"addr"`
		CacheTTL time.Duration `yaml:"cache_ttl"` // age limit for serving scanned results
	} `yaml:"http"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Proxy     string   `yaml:"proxy"`
	Watchlist []string `yaml:"watchlist"`
}

// Path returns CONFIG_PATH or DefaultPath.
func Path() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// LoadDotEnv loads KEY=VALUE pairs from envPath into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadDotEnv(envPath string) error {
	if _, err := os.Stat(envPath); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(envPath); err != nil {
		return fmt.Errorf("load %s: %w", envPath, err)
	}
	log.Printf("[INFO] environment loaded from %s", envPath)
	return nil
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.DataSource.DataDir = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("PROFILES_FILE"); v != "" {
		cfg.Profiles.File = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("HTTP_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.CacheTTL = d
		}
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		cfg.Watchlist = splitList(v)
	}
	if v := os.Getenv("FETCH_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Fetch.MaxRetries = n
		}
	}

	// Defaults
	if len(cfg.DataSource.YahooGateways) == 0 {
		cfg.DataSource.YahooGateways = collector.DefaultGateways()
	}
	if cfg.Fetch.MaxRetries == 0 {
		cfg.Fetch.MaxRetries = 3
	}
	if cfg.Fetch.ProviderPause == 0 {
		cfg.Fetch.ProviderPause = 500 * time.Millisecond
	}
	if cfg.Fetch.RetryStep == 0 {
		cfg.Fetch.RetryStep = time.Second
	}
	if cfg.Fetch.Timeout == 0 {
		cfg.Fetch.Timeout = 20 * time.Second
	}
	if len(cfg.Watchlist) == 0 {
		cfg.Watchlist = []string{"6669", "3231"}
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 0 14 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/swing_sentinel.db"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.CacheTTL == 0 {
		cfg.HTTP.CacheTTL = 15 * time.Minute
	}

	for i, s := range cfg.Watchlist {
		cfg.Watchlist[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// TelegramEnabled reports whether reports should be pushed to Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != ""
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	if len(c.Watchlist) == 0 {
		return fmt.Errorf("watchlist must not be empty")
	}
	for _, s := range c.Watchlist {
		if s == "" {
			return fmt.Errorf("watchlist contains an empty symbol")
		}
	}
	if c.DataSource.Days < 0 {
		return fmt.Errorf("data_source.days must not be negative")
	}
	for i, gw := range c.DataSource.YahooGateways {
		if gw.Name == "" {
			return fmt.Errorf("data_source.yahoo_gateways[%d].name is required", i)
		}
		if gw.URL != "" && !strings.Contains(gw.URL, "{url}") {
			return fmt.Errorf("data_source.yahoo_gateways[%d].url must contain {url}", i)
		}
	}
	if c.Fetch.MaxRetries < 1 {
		return fmt.Errorf("fetch.max_retries must be at least 1")
	}
	if c.Fetch.ProviderPause < 0 || c.Fetch.RetryStep < 0 || c.Fetch.Timeout < 0 {
		return fmt.Errorf("fetch durations must not be negative")
	}
	if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow).Parse(c.Schedule.DailyCron); err != nil {
		return fmt.Errorf("schedule.daily_cron: %w", err)
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}
	if c.HTTP.CacheTTL < 0 {
		return fmt.Errorf("http.cache_ttl must not be negative")
	}
	return nil
}
