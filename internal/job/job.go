// Package job runs one remote job invocation: trigger the endpoint, record
// the result in the status store, and tell the administrator.
package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/flemzord/cronbot/internal/metrics"
	"github.com/flemzord/cronbot/internal/notify"
	"github.com/flemzord/cronbot/internal/status"
	"github.com/flemzord/cronbot/internal/trigger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/flemzord/cronbot/internal/job"

// Spec describes one of the remote jobs.
type Spec struct {
	// Name is the machine name used in logs, metrics and the scheduler.
	Name string
	// Label is the human name used in chat messages ("Snapshot").
	Label string
	// Icon prefixes the success message.
	Icon string
	// URL is the endpoint to POST to.
	URL string
	// Field is the status timestamp updated on success.
	Field status.Field
}

// Snapshot returns the Spec for the snapshot job under baseURL.
func Snapshot(baseURL string) Spec {
	return Spec{
		Name:  "snapshot",
		Label: "Snapshot",
		Icon:  "📸",
		URL:   baseURL + "/api/pods/snapshot",
		Field: status.FieldSnapshot,
	}
}

// Cleanup returns the Spec for the quarterly cleanup job under baseURL.
func Cleanup(baseURL string) Spec {
	return Spec{
		Name:  "cleanup",
		Label: "Cleanup",
		Icon:  "🧹",
		URL:   baseURL + "/api/cleanup",
		Field: status.FieldCleanup,
	}
}

// Outcome is the transient result of one trigger call.
type Outcome struct {
	StatusCode int
	At         time.Time
	Err        error
}

// Message formats the notification for o.
func (s Spec) Message(o Outcome) string {
	if o.Err != nil {
		return fmt.Sprintf("❌ %s Failed\nError: %s", s.Label, o.Err.Error())
	}
	return fmt.Sprintf("%s %s Job\nStatus: %d\nTime: %s", s.Icon, s.Label, o.StatusCode, status.FormatTime(o.At))
}

// Config holds the collaborators of a Runner.
type Config struct {
	Spec     Spec
	Poster   trigger.Poster
	Notifier notify.Notifier
	Store    *status.Store
	Metrics  *metrics.Metrics // optional
	Logger   *slog.Logger
	Tracer   trace.Tracer     // optional
	Now      func() time.Time // injectable for testing
}

// Runner executes one job. It implements cron.Job once paired with a schedule.
type Runner struct {
	cfg Config
}

// NewRunner creates a Runner. Poster, Notifier and Store are required.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Poster == nil {
		return nil, fmt.Errorf("job %s: nil Poster", cfg.Spec.Name)
	}
	if cfg.Notifier == nil {
		return nil, fmt.Errorf("job %s: nil Notifier", cfg.Spec.Name)
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("job %s: nil Store", cfg.Spec.Name)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.GetTracerProvider().Tracer(tracerName)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cfg.Logger = cfg.Logger.With("job", cfg.Spec.Name)
	return &Runner{cfg: cfg}, nil
}

// Name returns the job's machine name.
func (r *Runner) Name() string { return r.cfg.Spec.Name }

// Spec returns the job description.
func (r *Runner) Spec() Spec { return r.cfg.Spec }

// Run triggers the endpoint, updates the status store, and sends exactly one
// notification. The returned error is the trigger failure, if any; delivery
// failures are the Notifier's concern.
func (r *Runner) Run(ctx context.Context) error {
	spec := r.cfg.Spec
	ctx, span := r.cfg.Tracer.Start(ctx, "job."+spec.Name,
		trace.WithAttributes(attribute.String("job.name", spec.Name)),
	)
	defer span.End()

	started := r.cfg.Now()
	outcome := r.trigger(ctx)

	if outcome.Err != nil {
		r.cfg.Store.SetError(outcome.Err.Error())
		span.RecordError(outcome.Err)
		span.SetStatus(codes.Error, "trigger failed")
		r.cfg.Logger.Error("job: trigger failed", "url", spec.URL, "error", outcome.Err)
	} else {
		r.cfg.Store.MarkRun(spec.Field, outcome.At)
		span.SetAttributes(attribute.Int("http.response.status_code", outcome.StatusCode))
		r.cfg.Logger.Info("job: triggered", "url", spec.URL, "status", outcome.StatusCode)
	}

	notifyErr := r.cfg.Notifier.Notify(ctx, spec.Message(outcome))
	if notifyErr != nil {
		r.cfg.Logger.Error("job: notification failed", "error", notifyErr)
	}

	if r.cfg.Metrics != nil {
		result := metrics.OutcomeSuccess
		if outcome.Err != nil {
			result = metrics.OutcomeFailure
		} else {
			r.cfg.Metrics.RecordSuccess(spec.Name, outcome.At)
		}
		r.cfg.Metrics.RecordJob(spec.Name, result, r.cfg.Now().Sub(started))
	}

	if outcome.Err != nil {
		return fmt.Errorf("job %s: %w", spec.Name, outcome.Err)
	}
	return nil
}

func (r *Runner) trigger(ctx context.Context) Outcome {
	code, err := r.cfg.Poster.Post(ctx, r.cfg.Spec.URL)
	if err != nil {
		return Outcome{Err: err}
	}
	return Outcome{StatusCode: code, At: r.cfg.Now().UTC()}
}
