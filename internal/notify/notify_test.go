package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
)

type countingRecorder struct{ n atomic.Int32 }

func (c *countingRecorder) RecordNotificationFailure() { c.n.Add(1) }

func TestFallback_PassesThroughOnSuccess(t *testing.T) {
	t.Parallel()

	var got string
	next := Func(func(_ context.Context, text string) error {
		got = text
		return nil
	})
	rec := &countingRecorder{}

	f := NewFallback(next, slog.Default(), rec)
	if err := f.Notify(context.Background(), "hello"); err != nil {
		t.Fatalf("Notify() error: %v", err)
	}
	if got != "hello" {
		t.Errorf("delivered %q, want %q", got, "hello")
	}
	if rec.n.Load() != 0 {
		t.Errorf("failures = %d, want 0", rec.n.Load())
	}
}

func TestFallback_SwallowsAndLogsErrors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	next := Func(func(_ context.Context, _ string) error {
		return errors.New("telegram: 403 Forbidden")
	})
	rec := &countingRecorder{}

	f := NewFallback(next, logger, rec)
	if err := f.Notify(context.Background(), "📸 Snapshot Job"); err != nil {
		t.Fatalf("Notify() error = %v, want nil", err)
	}

	out := buf.String()
	if !strings.Contains(out, "403 Forbidden") {
		t.Errorf("log missing error: %s", out)
	}
	if !strings.Contains(out, "Snapshot Job") {
		t.Errorf("log missing undelivered text: %s", out)
	}
	if rec.n.Load() != 1 {
		t.Errorf("failures = %d, want 1", rec.n.Load())
	}
}

func TestFallback_NilRecorderAndLogger(t *testing.T) {
	t.Parallel()

	f := NewFallback(Func(func(context.Context, string) error { return errors.New("x") }), nil, nil)
	if err := f.Notify(context.Background(), "msg"); err != nil {
		t.Fatalf("Notify() error = %v, want nil", err)
	}
}

func TestFunc_Nil(t *testing.T) {
	t.Parallel()

	var f Func
	if err := f.Notify(context.Background(), "x"); err != nil {
		t.Errorf("nil Func Notify() = %v, want nil", err)
	}
}
