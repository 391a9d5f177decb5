// Package cron schedules the periodic job runners. It wraps robfig/cron with
// a per-job lock so a slow run is never overlapped by the next tick, and
// provides calendar gates for jobs that poll more often than they fire.
package cron

import "context"

// Job defines a periodic background task.
type Job interface {
	// Name returns a unique identifier for this job (used for logging and dedup).
	Name() string

	// Schedule returns a 5-field cron expression (e.g., "*/5 * * * *") or a
	// descriptor such as "@every 60s".
	Schedule() string

	// Run executes the job. Implementations should check ctx.Done() for
	// graceful cancellation.
	Run(ctx context.Context) error
}

// Runner is the unscheduled half of a Job.
type Runner interface {
	Name() string
	Run(ctx context.Context) error
}
