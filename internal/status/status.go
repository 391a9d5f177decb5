// Package status holds the process-lifetime record of job runs that the
// health command and the HTTP gateway report on.
package status

import (
	"sync"
	"time"
)

// Field identifies which job timestamp a runner updates.
type Field int

const (
	// FieldSnapshot selects LastSnapshotRun.
	FieldSnapshot Field = iota + 1
	// FieldCleanup selects LastCleanupRun.
	FieldCleanup
)

// Store is the in-memory status record. It is created once at startup and
// shared by pointer. All methods are safe for concurrent use.
type Store struct {
	mu             sync.RWMutex
	startedAt      time.Time
	lastSnapshot   *time.Time
	lastCleanup    *time.Time
	lastError      string
	lastErrorIsSet bool
}

// NewStore creates a Store whose uptime is measured from startedAt.
func NewStore(startedAt time.Time) *Store {
	return &Store{startedAt: startedAt}
}

// MarkRun records t as the latest successful run of the job identified by f.
func (s *Store) MarkRun(f Field, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch f {
	case FieldSnapshot:
		s.lastSnapshot = &t
	case FieldCleanup:
		s.lastCleanup = &t
	}
}

// SetError records msg as the most recent job failure.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = msg
	s.lastErrorIsSet = true
}

// Snapshot returns a consistent copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{StartedAt: s.startedAt}
	if s.lastSnapshot != nil {
		t := *s.lastSnapshot
		snap.LastSnapshotRun = &t
	}
	if s.lastCleanup != nil {
		t := *s.lastCleanup
		snap.LastCleanupRun = &t
	}
	if s.lastErrorIsSet {
		msg := s.lastError
		snap.LastError = &msg
	}
	return snap
}

// Snapshot is a point-in-time view of a Store. Nil pointers mean the value
// has not been set since the process started.
type Snapshot struct {
	StartedAt       time.Time
	LastSnapshotRun *time.Time
	LastCleanupRun  *time.Time
	LastError       *string
}

// Uptime returns the time elapsed since start, truncated to whole seconds.
func (s Snapshot) Uptime(now time.Time) time.Duration {
	d := now.Sub(s.StartedAt)
	if d < 0 {
		return 0
	}
	return d.Truncate(time.Second)
}

// TimeLayout is the ISO-8601 form used in notifications and health replies.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTime renders t in UTC using TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
