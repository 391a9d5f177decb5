package cron

import (
	"context"
	"time"
)

// IntervalJob runs a Runner at a fixed interval measured from scheduler start.
type IntervalJob struct {
	Runner   Runner
	Interval time.Duration
}

// Compile-time interface check.
var _ Job = (*IntervalJob)(nil)

// Every pairs r with a fixed interval.
func Every(d time.Duration, r Runner) *IntervalJob {
	return &IntervalJob{Runner: r, Interval: d}
}

// Name implements Job.
func (j *IntervalJob) Name() string { return j.Runner.Name() }

// Schedule implements Job.
func (j *IntervalJob) Schedule() string { return EveryExpr(j.Interval) }

// Run implements Job.
func (j *IntervalJob) Run(ctx context.Context) error { return j.Runner.Run(ctx) }

// EveryExpr formats d as an "@every" descriptor.
func EveryExpr(d time.Duration) string {
	return "@every " + d.String()
}
