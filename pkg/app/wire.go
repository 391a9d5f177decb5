package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/flemzord/cronbot/internal/command"
	"github.com/flemzord/cronbot/internal/config"
	"github.com/flemzord/cronbot/internal/core"
	"github.com/flemzord/cronbot/internal/cron"
	"github.com/flemzord/cronbot/internal/gateway"
	"github.com/flemzord/cronbot/internal/job"
	"github.com/flemzord/cronbot/internal/metrics"
	"github.com/flemzord/cronbot/internal/notify"
	"github.com/flemzord/cronbot/internal/status"
	"github.com/flemzord/cronbot/internal/telemetry"
	"github.com/flemzord/cronbot/internal/trigger"
	"github.com/flemzord/cronbot/modules/channel/telegram"
)

// Bot is the fully wired process. Every field is exposed for tests and
// for the service wrapper.
type Bot struct {
	App       *core.App
	Store     *status.Store
	Metrics   *metrics.Metrics
	Notifier  notify.Notifier
	Commands  *command.Router
	Scheduler *cron.Scheduler
	Snapshot  *job.Runner
	Cleanup   *job.Runner
	Telegram  *telegram.Channel
	Gateway   *gateway.Gateway // nil when HTTP_ADDR is empty
}

type namedModule struct {
	id  string
	mod any
}

// Build constructs every component from cfg and registers them with a
// core.App in start order: telemetry, telegram, scheduler, gateway.
func Build(ctx context.Context, cfg *config.Config, params RunParams, logger *slog.Logger) (_ *Bot, err error) {
	tel, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		ServiceName: "cronbot",
		Version:     params.Version,
		Logger:      logger.With("component", "telemetry"),
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tel.Stop(context.WithoutCancel(ctx))
		}
	}()

	bot := &Bot{
		App:     core.NewApp(logger),
		Store:   status.NewStore(time.Now()),
		Metrics: metrics.New(),
	}

	bot.Commands = command.NewRouter(logger.With("component", "command"))
	bot.Commands.OnHandled(bot.Metrics.RecordCommand)
	if err := bot.Commands.Handle("health", command.Health(bot.Store, time.Now)); err != nil {
		return nil, err
	}

	bot.Telegram, err = telegram.New(telegram.Config{
		Token:          cfg.BotToken,
		AdminChatID:    cfg.AdminChatID,
		APIURL:         cfg.Telegram.APIURL,
		PollingTimeout: cfg.Telegram.PollTimeout,
	}, bot.Commands, logger.With("component", "telegram"))
	if err != nil {
		return nil, err
	}
	bot.Notifier = notify.NewFallback(bot.Telegram, logger.With("component", "notify"), bot.Metrics)

	poster := trigger.NewClient(cfg.CronSecret,
		trigger.WithTimeout(cfg.Schedule.TriggerTimeout),
		trigger.WithTracerProvider(tel.TracerProvider()),
	)
	jobLogger := logger.With("component", "job")
	newRunner := func(spec job.Spec) (*job.Runner, error) {
		return job.NewRunner(job.Config{
			Spec:     spec,
			Poster:   poster,
			Notifier: bot.Notifier,
			Store:    bot.Store,
			Metrics:  bot.Metrics,
			Logger:   jobLogger,
			Tracer:   tel.TracerProvider().Tracer("github.com/flemzord/cronbot/internal/job"),
		})
	}
	if bot.Snapshot, err = newRunner(job.Snapshot(cfg.BaseURL)); err != nil {
		return nil, err
	}
	if bot.Cleanup, err = newRunner(job.Cleanup(cfg.BaseURL)); err != nil {
		return nil, err
	}

	schedLogger := logger.With("component", "cron")
	bot.Scheduler = cron.NewScheduler(schedLogger, cron.WithSkipHook(func(name string) {
		bot.Metrics.RecordJob(name, metrics.OutcomeSkipped, 0)
	}))
	if err := bot.Scheduler.RegisterJob(cron.Every(cfg.Schedule.SnapshotInterval, bot.Snapshot)); err != nil {
		return nil, err
	}
	if err := bot.Scheduler.RegisterJob(&cron.GatedJob{
		Runner:       bot.Cleanup,
		ScheduleExpr: cron.EveryExpr(cfg.Schedule.CleanupCheckInterval),
		Gate:         cron.QuarterStart,
		OnClosed: func(name string) {
			schedLogger.Debug("cron: outside quarterly window, skipping", "job", name)
		},
	}); err != nil {
		return nil, err
	}

	if cfg.HTTP.Addr != "" {
		bot.Gateway, err = gateway.New(gateway.Config{Bind: cfg.HTTP.Addr},
			bot.Store, bot.Metrics.Handler(), logger.With("component", "gateway"))
		if err != nil {
			return nil, err
		}
	}

	modules := []namedModule{
		{"telemetry", tel},
		{"telegram", bot.Telegram},
		{"scheduler", bot.Scheduler},
	}
	if bot.Gateway != nil {
		modules = append(modules, namedModule{"gateway", bot.Gateway})
	}
	for _, m := range modules {
		if err := bot.App.Register(m.id, m.mod); err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
	}

	bot.App.OnStarted(func(ctx context.Context) {
		logger.Info("cron service started", "version", params.Version)
		logger.Info("snapshot job", "url", bot.Snapshot.Spec().URL, "interval", cfg.Schedule.SnapshotInterval)
		logger.Info("cleanup job", "url", bot.Cleanup.Spec().URL, "check_interval", cfg.Schedule.CleanupCheckInterval)
		_ = bot.Notifier.Notify(ctx, StartupMessage)
	})

	return bot, nil
}
