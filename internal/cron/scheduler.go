package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler manages periodic job execution using cron expressions.
// Each job is protected by a per-job mutex to prevent parallel execution
// of the same job (uses TryLock, atomic, no race).
type Scheduler struct {
	mu     sync.Mutex
	cron   *cron.Cron
	jobs   []Job
	names  map[string]struct{}
	locks  map[string]*sync.Mutex
	logger *slog.Logger
	onSkip func(job string)
	cancel context.CancelFunc
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithSkipHook registers fn to be called whenever a tick is dropped because
// the previous run of the same job is still in flight.
func WithSkipHook(fn func(job string)) Option {
	return func(s *Scheduler) { s.onSkip = fn }
}

// NewScheduler creates a scheduler. Jobs must be registered before Start().
func NewScheduler(logger *slog.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		names:  make(map[string]struct{}),
		locks:  make(map[string]*sync.Mutex),
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Parser returns the expression parser used by the scheduler: standard
// 5-field expressions plus descriptors such as "@every 1h".
func Parser() cron.Parser {
	return cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
}

// RegisterJob adds a job to the scheduler. Must be called before Start().
// Returns an error if a job with the same name is already registered.
func (s *Scheduler) RegisterJob(j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := j.Name()
	if _, exists := s.names[name]; exists {
		return fmt.Errorf("cron: duplicate job name %q", name)
	}

	s.names[name] = struct{}{}
	s.locks[name] = &sync.Mutex{}
	s.jobs = append(s.jobs, j)
	return nil
}

// Jobs returns the registered job names in registration order.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, len(s.jobs))
	for i, j := range s.jobs {
		names[i] = j.Name()
	}
	return names
}

// Start initializes the cron scheduler and begins executing registered jobs.
// Returns an error if any job has an invalid schedule expression.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.cron = cron.New(cron.WithParser(Parser()))

	for _, job := range s.jobs {
		if _, err := s.cron.AddFunc(job.Schedule(), s.tick(ctx, job)); err != nil {
			cancel()
			return fmt.Errorf("cron: invalid schedule for job %q: %w", job.Name(), err)
		}
	}

	s.cron.Start()
	s.logger.Info("cron: scheduler started", "jobs", len(s.jobs))
	return nil
}

// tick returns the function robfig/cron calls for job on every activation.
func (s *Scheduler) tick(ctx context.Context, job Job) func() {
	lock := s.locks[job.Name()]
	return func() {
		// If the previous tick is still running, skip this one.
		if !lock.TryLock() {
			s.logger.Warn("cron: job still running, skipping tick",
				"job", job.Name(),
			)
			if s.onSkip != nil {
				s.onSkip(job.Name())
			}
			return
		}
		defer lock.Unlock()

		s.logger.Debug("cron: job started", "job", job.Name())
		if err := job.Run(ctx); err != nil {
			s.logger.Error("cron: job failed",
				"job", job.Name(),
				"error", err,
			)
		} else {
			s.logger.Debug("cron: job completed", "job", job.Name())
		}
	}
}

// Stop stops scheduling new ticks and waits for in-flight jobs. Their
// context stays live until ctx is done, then it is cancelled.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return nil
	}

	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("cron: shutdown deadline reached, cancelling running jobs")
		s.cancel()
		<-done
	}
	s.cancel()
	s.cron = nil
	s.logger.Info("cron: scheduler stopped")
	return nil
}
