// Package config loads cronbot's settings from the environment, an optional
// .env file, and an optional YAML file, then validates them.
package config

import "time"

// Defaults for optional settings.
const (
	DefaultBaseURL              = "http://localhost:3000"
	DefaultSnapshotInterval     = 60 * time.Second
	DefaultCleanupCheckInterval = time.Hour
	DefaultTelegramAPIURL       = "https://api.telegram.org"
	DefaultPollTimeout          = 30
	DefaultLogLevel             = "info"
	DefaultLogFormat            = "text"
)

// Config is the top-level configuration structure. Every field can be set
// from YAML or from the environment variable named in its env tag; the
// environment wins.
type Config struct {
	// BotToken is the Telegram bot token. Required.
	BotToken string `yaml:"bot_token" env:"BOT_TOKEN"`

	// AdminChatID is the single chat that receives notifications. Required.
	AdminChatID string `yaml:"admin_chat_id" env:"ADMIN_CHAT_ID"`

	// BaseURL is the root of the service whose jobs are triggered.
	BaseURL string `yaml:"base_url" env:"BASE_URL"`

	// CronSecret, when set, is sent as a bearer token on every trigger.
	CronSecret string `yaml:"cron_secret" env:"CRON_SECRET"`

	Schedule  ScheduleConfig  `yaml:"schedule"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Log       LogConfig       `yaml:"log"`
	HTTP      HTTPConfig      `yaml:"http"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ScheduleConfig controls the two timers.
type ScheduleConfig struct {
	SnapshotInterval     time.Duration `yaml:"snapshot_interval" env:"SNAPSHOT_INTERVAL"`
	CleanupCheckInterval time.Duration `yaml:"cleanup_check_interval" env:"CLEANUP_CHECK_INTERVAL"`
	// TriggerTimeout bounds each POST. Zero means no explicit timeout.
	TriggerTimeout time.Duration `yaml:"trigger_timeout" env:"TRIGGER_TIMEOUT"`
}

// TelegramConfig holds Bot API transport settings.
type TelegramConfig struct {
	APIURL      string `yaml:"api_url" env:"TELEGRAM_API_URL"`
	PollTimeout int    `yaml:"poll_timeout" env:"TELEGRAM_POLL_TIMEOUT"`
}

// LogConfig selects the log level and handler format.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// HTTPConfig configures the optional status/metrics listener.
type HTTPConfig struct {
	// Addr is the listen address. Empty disables the listener.
	Addr string `yaml:"addr" env:"HTTP_ADDR"`
}

// TelemetryConfig configures tracing export.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// SnapshotURL returns the snapshot job endpoint.
func (c *Config) SnapshotURL() string { return c.BaseURL + "/api/pods/snapshot" }

// CleanupURL returns the cleanup job endpoint.
func (c *Config) CleanupURL() string { return c.BaseURL + "/api/cleanup" }

// defaults fills zero values.
func (c *Config) defaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Schedule.SnapshotInterval == 0 {
		c.Schedule.SnapshotInterval = DefaultSnapshotInterval
	}
	if c.Schedule.CleanupCheckInterval == 0 {
		c.Schedule.CleanupCheckInterval = DefaultCleanupCheckInterval
	}
	if c.Telegram.APIURL == "" {
		c.Telegram.APIURL = DefaultTelegramAPIURL
	}
	if c.Telegram.PollTimeout == 0 {
		c.Telegram.PollTimeout = DefaultPollTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}
