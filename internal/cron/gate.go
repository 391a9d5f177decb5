package cron

import (
	"context"
	"time"
)

// Gate reports whether a gated job may run at t.
type Gate func(t time.Time) bool

// QuarterStart is true during the first hour (00:00-00:59 UTC) of the first
// day of January, April, July and October.
func QuarterStart(t time.Time) bool {
	t = t.UTC()
	switch t.Month() {
	case time.January, time.April, time.July, time.October:
	default:
		return false
	}
	return t.Day() == 1 && t.Hour() == 0
}

// GatedJob runs its inner Runner only on ticks where Gate holds.
type GatedJob struct {
	Runner       Runner
	ScheduleExpr string
	Gate         Gate
	Now          func() time.Time // injectable for testing
	// OnClosed is called for ticks rejected by the gate. Optional.
	OnClosed func(job string)
}

// Compile-time interface check.
var _ Job = (*GatedJob)(nil)

// Name implements Job.
func (j *GatedJob) Name() string { return j.Runner.Name() }

// Schedule implements Job.
func (j *GatedJob) Schedule() string { return j.ScheduleExpr }

// Run evaluates the gate against the current time and delegates when open.
func (j *GatedJob) Run(ctx context.Context) error {
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	if j.Gate != nil && !j.Gate(now()) {
		if j.OnClosed != nil {
			j.OnClosed(j.Name())
		}
		return nil
	}
	return j.Runner.Run(ctx)
}
