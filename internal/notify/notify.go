// Package notify defines the outbound message capability used to reach the
// administrator, plus a decorator that keeps delivery failures from
// propagating into job execution.
package notify

import (
	"context"
	"log/slog"
)

// Notifier delivers a plain-text message to the fixed administrator.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Func adapts a function to the Notifier interface (useful for tests).
type Func func(ctx context.Context, text string) error

// Notify implements Notifier.
func (f Func) Notify(ctx context.Context, text string) error {
	if f == nil {
		return nil
	}
	return f(ctx, text)
}

// FailureRecorder is notified of every undelivered message.
type FailureRecorder interface {
	RecordNotificationFailure()
}

// Fallback wraps a Notifier and turns delivery errors into log entries.
// Notify on a Fallback always returns nil.
type Fallback struct {
	next     Notifier
	logger   *slog.Logger
	recorder FailureRecorder
}

// Compile-time interface guard.
var _ Notifier = (*Fallback)(nil)

// NewFallback creates a Fallback around next. recorder may be nil.
func NewFallback(next Notifier, logger *slog.Logger, recorder FailureRecorder) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{next: next, logger: logger, recorder: recorder}
}

// Notify implements Notifier.
func (f *Fallback) Notify(ctx context.Context, text string) error {
	if err := f.next.Notify(ctx, text); err != nil {
		f.logger.Error("notify: delivery failed, message logged instead",
			"error", err,
			"text", text,
		)
		if f.recorder != nil {
			f.recorder.RecordNotificationFailure()
		}
	}
	return nil
}
