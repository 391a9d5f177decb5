// Package notifytest provides test doubles for the notify package.
package notifytest

import (
	"context"
	"sync"

	"github.com/flemzord/cronbot/internal/notify"
)

// Recorder is a notify.Notifier that stores every message it receives.
type Recorder struct {
	// Err, when set, is returned from every Notify call after recording.
	Err error

	mu       sync.Mutex
	messages []string
}

// Compile-time interface check.
var _ notify.Notifier = (*Recorder)(nil)

// Notify implements notify.Notifier.
func (r *Recorder) Notify(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, text)
	return r.Err
}

// Messages returns a copy of all recorded messages in order.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	dst := make([]string, len(r.messages))
	copy(dst, r.messages)
	return dst
}

// Count returns the number of recorded messages.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}
