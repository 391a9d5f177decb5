// Package app is the shared entry point behind the cronbot commands: it
// loads configuration, builds every component and runs them until shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/flemzord/cronbot/internal/config"
	"github.com/flemzord/cronbot/internal/security"
)

// StartupMessage is sent to the administrator once every module is running.
const StartupMessage = "🚀 Cron Service Started & Monitoring Enabled"

// ErrInvalidConfig wraps every configuration failure so callers can map it
// to a distinct exit status.
var ErrInvalidConfig = errors.New("invalid configuration")

// RunParams configures the main application loop.
type RunParams struct {
	// ConfigPath is an explicit path to an optional YAML file. If empty,
	// ResolveConfigPath is consulted; finding nothing is not an error.
	ConfigPath string

	// EnvFiles are loaded into the environment before configuration is
	// read. Missing files are skipped. Defaults to ".env".
	EnvFiles []string

	// Version, Commit, and Date are injected at build time via ldflags.
	Version string
	Commit  string
	Date    string

	// LogOutput receives log records. Defaults to os.Stderr.
	LogOutput io.Writer
}

// LoadConfig loads .env files, the optional YAML file and the environment,
// then validates the result. Every returned error wraps ErrInvalidConfig.
func LoadConfig(params RunParams) (*config.Config, error) {
	envFiles := params.EnvFiles
	if envFiles == nil {
		envFiles = []string{".env"}
	}
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	cfgPath := params.ConfigPath
	if cfgPath == "" {
		cfgPath = ResolveConfigPath()
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// NewLogger builds the process logger. Configured secrets are registered
// as literals so they never reach the output.
func NewLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return nil, err
	}
	redactor := security.NewRedactor()
	redactor.AddLiteral(cfg.BotToken)
	redactor.AddLiteral(cfg.CronSecret)
	return security.NewLogger(w, level, cfg.Log.Format, redactor), nil
}

// Run loads configuration, starts all modules, and blocks until ctx is
// cancelled or a shutdown signal is received. Configuration errors are
// returned before any module (and therefore any timer) is created.
func Run(ctx context.Context, params RunParams) error {
	cfg, err := LoadConfig(params)
	if err != nil {
		return err
	}

	logger, err := NewLogger(cfg, params.LogOutput)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	bot, err := Build(ctx, cfg, params, logger)
	if err != nil {
		return err
	}
	return bot.App.Run(ctx)
}

// ResolveConfigPath searches for an optional config file in standard locations.
// Search order: $XDG_CONFIG_HOME/cronbot/cronbot.yaml → ~/.config/cronbot/cronbot.yaml → ./cronbot.yaml.
// It returns "" when none exists.
func ResolveConfigPath() string {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "cronbot", "cronbot.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "cronbot", "cronbot.yaml"))
	}

	candidates = append(candidates, "cronbot.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
