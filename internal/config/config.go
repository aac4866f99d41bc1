// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string  `yaml:"token"`
	Mode     string  `yaml:"mode"` // polling | noop
	Username string  `yaml:"username"`
	Workers  int     `yaml:"workers"` // update handling workers
	AdminIDs []int64 `yaml:"admin_ids"`
	Language string  `yaml:"language"` // ru | en
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port         int           `yaml:"port"`
	APIKey       string        `yaml:"api_key"`
	JWTSecret    string        `yaml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
	SecureCookie bool          `yaml:"secure_cookie"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type QueueConfig struct {
	Name            string        `yaml:"name"`
	Concurrency     int           `yaml:"concurrency"`
	MaxRetry        int           `yaml:"max_retry"`
	ReminderTimeout time.Duration `yaml:"reminder_timeout"`
	// SendBudget is the per-recipient allowance for one Telegram send when a
	// broadcast deadline is computed; values below 1s are raised to 1s.
	SendBudget time.Duration `yaml:"send_budget"`
	Timezone        string        `yaml:"timezone"`
}

// ReminderSchedule enqueues reminders for today+OffsetDays whenever Cron fires.
type ReminderSchedule struct {
	Cron       string `yaml:"cron"`
	OffsetDays int    `yaml:"offset_days"`
	Title      string `yaml:"title"`
}

type RemindersConfig struct {
	Schedules    []ReminderSchedule `yaml:"schedules"`
	Stickers     []string           `yaml:"stickers"`
	SendStickers bool               `yaml:"send_stickers"`
}

type BroadcastConfig struct {
	Delay     time.Duration `yaml:"delay"`
	ParseMode string        `yaml:"parse_mode"`
}

type RegistrationConfig struct {
	DefaultRole string `yaml:"default_role"`
}

type SessionConfig struct {
	Store string        `yaml:"store"` // redis | memory
	TTL   time.Duration `yaml:"ttl"`   // 0 keeps state until the flow ends or /start resets it
}

type SecurityConfig struct {
	RateLimitCount  int           `yaml:"rate_limit_count"`  // messages per window per user
	RateLimitWindow time.Duration `yaml:"rate_limit_window"`
}

type Config struct {
	Bot          BotConfig          `yaml:"bot"`
	Log          LogConfig          `yaml:"log"`
	Admin        AdminConfig        `yaml:"admin"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Queue        QueueConfig        `yaml:"queue"`
	Reminders    RemindersConfig    `yaml:"reminders"`
	Broadcast    BroadcastConfig    `yaml:"broadcast"`
	Registration RegistrationConfig `yaml:"registration"`
	Session      SessionConfig      `yaml:"session"`
	Security     SecurityConfig     `yaml:"security"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path, expands ${ENV} references, applies
// defaults and validates the required settings.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b, dev)
}

func Parse(b []byte, dev bool) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(b))), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Bot.Mode != "polling" && cfg.Bot.Mode != "noop" {
		return nil, fmt.Errorf("bot.mode must be polling or noop, got %q", cfg.Bot.Mode)
	}
	if cfg.Session.Store != "redis" && cfg.Session.Store != "memory" {
		return nil, fmt.Errorf("session.store must be redis or memory, got %q", cfg.Session.Store)
	}
	if _, err := time.LoadLocation(cfg.Queue.Timezone); err != nil {
		return nil, fmt.Errorf("queue.timezone: %w", err)
	}
	for i, s := range cfg.Reminders.Schedules {
		if strings.TrimSpace(s.Cron) == "" {
			return nil, fmt.Errorf("reminders.schedules[%d].cron is required", i)
		}
		if s.OffsetDays < 0 {
			return nil, fmt.Errorf("reminders.schedules[%d].offset_days must be >= 0", i)
		}
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

// Location returns the time zone used to decide what "today" means for reminders.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Queue.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.Mode == "" {
		cfg.Bot.Mode = "polling"
	}
	if cfg.Bot.Language == "" {
		cfg.Bot.Language = "ru"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 8080
	}
	if cfg.Admin.TokenTTL <= 0 {
		cfg.Admin.TokenTTL = 30 * time.Minute
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Queue.Name == "" {
		cfg.Queue.Name = "dispatch"
	}
	if cfg.Queue.Concurrency <= 0 {
		cfg.Queue.Concurrency = 4
	}
	if cfg.Queue.MaxRetry < 0 {
		cfg.Queue.MaxRetry = 0
	}
	if cfg.Queue.ReminderTimeout <= 0 {
		cfg.Queue.ReminderTimeout = 2 * time.Hour
	}
	if cfg.Queue.SendBudget <= 0 {
		cfg.Queue.SendBudget = 2 * time.Second
	}
	if cfg.Queue.Timezone == "" {
		cfg.Queue.Timezone = "UTC"
	}
	if len(cfg.Reminders.Schedules) == 0 {
		cfg.Reminders.Schedules = []ReminderSchedule{
			{Cron: "0 9 * * *", OffsetDays: 0, Title: "Напоминание! Сегодня запланировано событие"},
			{Cron: "0 18 * * *", OffsetDays: 1, Title: "Напоминание! Завтра запланировано событие"},
		}
	}
	if cfg.Broadcast.Delay <= 0 {
		cfg.Broadcast.Delay = 400 * time.Millisecond
	}
	if cfg.Broadcast.ParseMode == "" {
		cfg.Broadcast.ParseMode = "HTML"
	}
	if cfg.Registration.DefaultRole == "" {
		cfg.Registration.DefaultRole = "Гость"
	}
	if cfg.Session.Store == "" {
		cfg.Session.Store = "redis"
	}
	if cfg.Security.RateLimitCount <= 0 {
		cfg.Security.RateLimitCount = 20
	}
	if cfg.Security.RateLimitWindow <= 0 {
		cfg.Security.RateLimitWindow = time.Minute
	}
	if cfg.Session.TTL < 0 {
		cfg.Session.TTL = 0
	}
}
