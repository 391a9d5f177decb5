package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// Sentinel errors for required settings.
var (
	ErrMissingBotToken    = errors.New("config: BOT_TOKEN is required")
	ErrMissingAdminChatID = errors.New("config: ADMIN_CHAT_ID is required")
)

// Validate checks a loaded Config. All problems are reported together.
func Validate(cfg *Config) error {
	var errs []error

	if strings.TrimSpace(cfg.BotToken) == "" {
		errs = append(errs, ErrMissingBotToken)
	}
	if strings.TrimSpace(cfg.AdminChatID) == "" {
		errs = append(errs, ErrMissingAdminChatID)
	}

	if err := validateHTTPURL("BASE_URL", cfg.BaseURL); err != nil {
		errs = append(errs, err)
	}
	if err := validateHTTPURL("TELEGRAM_API_URL", cfg.Telegram.APIURL); err != nil {
		errs = append(errs, err)
	}

	if cfg.Schedule.SnapshotInterval < 0 {
		errs = append(errs, fmt.Errorf("config: SNAPSHOT_INTERVAL must be positive, got %s", cfg.Schedule.SnapshotInterval))
	}
	if cfg.Schedule.CleanupCheckInterval < 0 {
		errs = append(errs, fmt.Errorf("config: CLEANUP_CHECK_INTERVAL must be positive, got %s", cfg.Schedule.CleanupCheckInterval))
	}
	if cfg.Schedule.TriggerTimeout < 0 {
		errs = append(errs, fmt.Errorf("config: TRIGGER_TIMEOUT must not be negative, got %s", cfg.Schedule.TriggerTimeout))
	}
	if cfg.Telegram.PollTimeout < 0 || cfg.Telegram.PollTimeout > 50 {
		errs = append(errs, fmt.Errorf("config: TELEGRAM_POLL_TIMEOUT must be 0-50, got %d", cfg.Telegram.PollTimeout))
	}

	if _, err := cfg.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("config: LOG_FORMAT must be \"text\" or \"json\", got %q", cfg.Log.Format))
	}

	return errors.Join(errs...)
}

// SlogLevel parses Level into a slog.Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("config: invalid LOG_LEVEL %q", l.Level)
	}
	return lvl, nil
}

func validateHTTPURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: %s must be a valid http/https URL, got %q", name, raw)
	}
	return nil
}
