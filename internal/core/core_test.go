package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fakeModule struct {
	id       string
	rec      *recorder
	startErr error
}

func (m *fakeModule) Start() error {
	m.rec.add("start:" + m.id)
	return m.startErr
}

func (m *fakeModule) Stop(context.Context) error {
	m.rec.add("stop:" + m.id)
	return nil
}

type stopOnly struct {
	rec *recorder
}

func (s *stopOnly) Stop(context.Context) error {
	s.rec.add("stop:only")
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestApp_StartStopOrder(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	app := NewApp(discardLogger())
	for _, m := range []any{
		&stopOnly{rec: rec},
		&fakeModule{id: "a", rec: rec},
		&fakeModule{id: "b", rec: rec},
	} {
		id := "only"
		if fm, ok := m.(*fakeModule); ok {
			id = fm.id
		}
		if err := app.Register(id, m); err != nil {
			t.Fatalf("Register(%s): %v", id, err)
		}
	}

	if got := app.Modules(); !equal(got, []string{"only", "a", "b"}) {
		t.Errorf("Modules() = %v", got)
	}

	if err := app.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	app.Stop()

	want := []string{"start:a", "start:b", "stop:b", "stop:a", "stop:only"}
	if got := rec.get(); !equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestApp_StartFailureRollsBack(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	boom := errors.New("boom")
	app := NewApp(discardLogger())
	_ = app.Register("a", &fakeModule{id: "a", rec: rec})
	_ = app.Register("b", &fakeModule{id: "b", rec: rec, startErr: boom})
	_ = app.Register("c", &fakeModule{id: "c", rec: rec})

	err := app.Start()
	if !errors.Is(err, boom) {
		t.Fatalf("Start() = %v, want %v", err, boom)
	}

	want := []string{"start:a", "start:b", "stop:a"}
	if got := rec.get(); !equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}

	// A second Stop is a no-op.
	app.Stop()
	if got := rec.get(); len(got) != len(want) {
		t.Errorf("Stop after rollback produced %v", got)
	}
}

func TestApp_RegisterRejects(t *testing.T) {
	t.Parallel()

	app := NewApp(nil)
	if err := app.Register("x", struct{}{}); !errors.Is(err, ErrNotAModule) {
		t.Errorf("Register(non-module) = %v, want ErrNotAModule", err)
	}
	rec := &recorder{}
	if err := app.Register("a", &fakeModule{id: "a", rec: rec}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := app.Register("a", &fakeModule{id: "a", rec: rec}); err == nil {
		t.Error("expected duplicate error")
	}
}

func TestApp_RunUntilContextCancelled(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	app := NewApp(discardLogger())
	_ = app.Register("a", &fakeModule{id: "a", rec: rec})

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	app.OnStarted(func(context.Context) {
		rec.add("started")
		close(started)
	})

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("OnStarted hook not called")
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	want := []string{"start:a", "started", "stop:a"}
	if got := rec.get(); !equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestApp_RunStartError(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	app := NewApp(discardLogger())
	_ = app.Register("a", &fakeModule{id: "a", rec: rec, startErr: errors.New("nope")})
	app.OnStarted(func(context.Context) { rec.add("started") })

	if err := app.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	for _, e := range rec.get() {
		if e == "started" {
			t.Error("OnStarted ran despite start failure")
		}
	}
}
