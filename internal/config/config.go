package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token      string `yaml:"token"`
	Mode       string `yaml:"mode"` // polling | webhook
	WebhookURL string `yaml:"webhook_url"`
	Username   string `yaml:"username"`
	Workers    int    `yaml:"workers"` // update workers
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type ContentConfig struct {
	MaxDay     int           `yaml:"max_day"`     // highest /dayN command registered
	ChunkLimit int           `yaml:"chunk_limit"` // rune limit per chunk
	ChunkDelay time.Duration `yaml:"chunk_delay"` // pause between chunk sends
	Locale     string        `yaml:"locale"`
}

type DedupeConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

type WebConfig struct {
	Port int `yaml:"port"`
}

type AdminConfig struct {
	Password   string        `yaml:"password"`
	JWTSecret  string        `yaml:"jwt_secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type ReminderConfig struct {
	Interval       time.Duration `yaml:"interval"`
	InactiveWindow time.Duration `yaml:"inactive_window"`
}

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Content  ContentConfig  `yaml:"content"`
	Dedupe   DedupeConfig   `yaml:"dedupe"`
	Web      WebConfig      `yaml:"web"`
	Admin    AdminConfig    `yaml:"admin"`
	Reminder ReminderConfig `yaml:"reminder"`

	Runtime RuntimeConfig `yaml:"-"`
}

// partIndicatorHeadroom reserves room in each chunk for the appended
// "\n\npart i/N" annotation.
const partIndicatorHeadroom = 64

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Bot.Mode == "" {
		cfg.Bot.Mode = "polling"
	}
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Content.MaxDay <= 0 {
		cfg.Content.MaxDay = 7
	}
	if cfg.Content.ChunkLimit <= 0 {
		cfg.Content.ChunkLimit = 3500
	}
	if cfg.Content.ChunkDelay <= 0 {
		cfg.Content.ChunkDelay = 500 * time.Millisecond
	}
	if cfg.Content.Locale == "" {
		cfg.Content.Locale = "km"
	}
	if cfg.Dedupe.TTL <= 0 {
		cfg.Dedupe.TTL = 10 * time.Minute
	}
	if cfg.Web.Port <= 0 {
		cfg.Web.Port = 5000
	}
	if cfg.Admin.SessionTTL <= 0 {
		cfg.Admin.SessionTTL = 30 * time.Minute
	}
	if cfg.Reminder.Interval <= 0 {
		cfg.Reminder.Interval = time.Hour
	}
	if cfg.Reminder.InactiveWindow <= 0 {
		cfg.Reminder.InactiveWindow = 48 * time.Hour
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if cfg.Bot.Mode != "polling" && cfg.Bot.Mode != "webhook" {
		return nil, fmt.Errorf("bot.mode must be polling or webhook, got %q", cfg.Bot.Mode)
	}
	if cfg.Bot.Mode == "webhook" && cfg.Bot.WebhookURL == "" {
		return nil, errors.New("bot.webhook_url is required in webhook mode")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Content.ChunkLimit+partIndicatorHeadroom > 4096 {
		return nil, fmt.Errorf("content.chunk_limit %d leaves no headroom below the 4096 message cap", cfg.Content.ChunkLimit)
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
