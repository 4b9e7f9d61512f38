package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot transport settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// ChannelConfig identifies the broadcast destination for published submissions.
type ChannelConfig struct {
	ID int64 `yaml:"id" envconfig:"CHANNEL_ID"`
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// SubmissionConfig tunes the submission cooldown window.
type SubmissionConfig struct {
	CooldownHours int `yaml:"cooldown_hours" envconfig:"SUBMISSION_COOLDOWN_HOURS"`
}

// SessionConfig tunes the volatile session store.
// TTLMinutes = 0 disables the idle-session janitor.
type SessionConfig struct {
	TTLMinutes   int `yaml:"ttl_minutes" envconfig:"SESSION_TTL_MINUTES"`
	SweepMinutes int `yaml:"sweep_minutes" envconfig:"SESSION_SWEEP_MINUTES"`
}

// FloodConfig holds settings for the per-message flood interval middleware.
// This is independent of the 12-hour submission cooldown.
type FloodConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"FLOOD_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"FLOOD_EXCLUDE_UPDATES"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	Dir     string `yaml:"dir"`
	BotFile string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// UpdateCallback identifies callback updates for flood exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for flood exclusions.
	UpdateMessage = "message"
)

const defaultCooldownHours = 12

// Config aggregates all process configuration.
type Config struct {
	Telegram   TelegramConfig   `yaml:"telegram"`
	Webhook    WebhookConfig    `yaml:"webhook"`
	Channel    ChannelConfig    `yaml:"channel"`
	Database   DatabaseConfig   `yaml:"database"`
	Submission SubmissionConfig `yaml:"submission"`
	Session    SessionConfig    `yaml:"session"`
	Flood      FloodConfig      `yaml:"flood"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// CooldownWindow returns the configured submission cooldown as a duration.
func (c *Config) CooldownWindow() time.Duration {
	return time.Duration(c.Submission.CooldownHours) * time.Hour
}

// SessionTTL returns the idle-session TTL; zero disables the janitor.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLMinutes) * time.Minute
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}
	if cfg.Channel.ID == 0 {
		return fmt.Errorf("channel.id is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	if cfg.Submission.CooldownHours < 0 {
		return fmt.Errorf("submission.cooldown_hours must be >= 0")
	}
	if cfg.Submission.CooldownHours == 0 {
		cfg.Submission.CooldownHours = defaultCooldownHours
	}

	if cfg.Session.TTLMinutes < 0 {
		return fmt.Errorf("session.ttl_minutes must be >= 0")
	}
	if cfg.Session.SweepMinutes <= 0 {
		cfg.Session.SweepMinutes = 5
	}

	allowed := map[string]struct{}{
		UpdateCallback: {},
		UpdateMessage:  {},
	}
	for i, v := range cfg.Flood.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("invalid flood.exclude_updates value %q; allowed: callback, message", v)
		}
		cfg.Flood.ExcludeUpdates[i] = key
	}
	return nil
}
