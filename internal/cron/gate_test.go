package cron_test

import (
	"context"
	"testing"
	"time"

	"github.com/flemzord/cronbot/internal/cron"
	"github.com/flemzord/cronbot/internal/cron/crontest"
)

func TestQuarterStart_FullYearHourly(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	var open []time.Time
	samples := 0
	for ts := start; ts.Before(end); ts = ts.Add(time.Hour) {
		samples++
		if cron.QuarterStart(ts) {
			open = append(open, ts)
		}
	}

	if samples != 8760 {
		t.Fatalf("samples = %d, want 8760", samples)
	}
	if len(open) != 4 {
		t.Fatalf("open hours = %d, want 4: %v", len(open), open)
	}
	for i, month := range []time.Month{time.January, time.April, time.July, time.October} {
		want := time.Date(2025, month, 1, 0, 0, 0, 0, time.UTC)
		if !open[i].Equal(want) {
			t.Errorf("open[%d] = %v, want %v", i, open[i], want)
		}
	}
}

func TestQuarterStart_Cases(t *testing.T) {
	t.Parallel()

	paris := time.FixedZone("CET", 3600)
	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"jan 1 midnight", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"jan 1 00:59:59", time.Date(2026, 1, 1, 0, 59, 59, 0, time.UTC), true},
		{"jan 1 01:00", time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC), false},
		{"oct 1 00:30", time.Date(2026, 10, 1, 0, 30, 0, 0, time.UTC), true},
		{"feb 1 midnight", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), false},
		{"apr 2 midnight", time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC), false},
		{"dec 31 23:00", time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC), false},
		{"jul 1 01:00 CET is 00:00 UTC", time.Date(2026, 7, 1, 1, 0, 0, 0, paris), true},
		{"jul 1 00:00 CET is jun 30 UTC", time.Date(2026, 7, 1, 0, 0, 0, 0, paris), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := cron.QuarterStart(tt.t); got != tt.want {
				t.Errorf("QuarterStart(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestGatedJob_ClosedGateSkipsRunner(t *testing.T) {
	t.Parallel()

	inner := &crontest.MockJob{NameVal: "cleanup"}
	var closed []string
	j := &cron.GatedJob{
		Runner:       inner,
		ScheduleExpr: "@every 1h",
		Gate:         cron.QuarterStart,
		Now:          func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) },
		OnClosed:     func(name string) { closed = append(closed, name) },
	}

	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if inner.CallCount() != 0 {
		t.Errorf("inner calls = %d, want 0", inner.CallCount())
	}
	if len(closed) != 1 || closed[0] != "cleanup" {
		t.Errorf("closed hook = %v, want [cleanup]", closed)
	}
	if j.Name() != "cleanup" || j.Schedule() != "@every 1h" {
		t.Errorf("Name/Schedule = %q/%q", j.Name(), j.Schedule())
	}
}

func TestGatedJob_OpenGateRunsRunner(t *testing.T) {
	t.Parallel()

	inner := &crontest.MockJob{NameVal: "cleanup"}
	j := &cron.GatedJob{
		Runner: inner,
		Gate:   cron.QuarterStart,
		Now:    func() time.Time { return time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC) },
	}

	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if inner.CallCount() != 1 {
		t.Errorf("inner calls = %d, want 1", inner.CallCount())
	}
}

func TestGatedJob_NilGateAlwaysRuns(t *testing.T) {
	t.Parallel()

	inner := &crontest.MockJob{NameVal: "x"}
	j := &cron.GatedJob{Runner: inner}
	_ = j.Run(context.Background())
	if inner.CallCount() != 1 {
		t.Errorf("inner calls = %d, want 1", inner.CallCount())
	}
}

func TestIntervalJob(t *testing.T) {
	t.Parallel()

	inner := &crontest.MockJob{NameVal: "snapshot"}
	j := cron.Every(60*time.Second, inner)

	if j.Name() != "snapshot" {
		t.Errorf("Name() = %q", j.Name())
	}
	if j.Schedule() != "@every 1m0s" {
		t.Errorf("Schedule() = %q, want %q", j.Schedule(), "@every 1m0s")
	}
	if _, err := cron.Parser().Parse(j.Schedule()); err != nil {
		t.Errorf("schedule does not parse: %v", err)
	}
	_ = j.Run(context.Background())
	if inner.CallCount() != 1 {
		t.Errorf("inner calls = %d, want 1", inner.CallCount())
	}
}
