package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/flemzord/cronbot/internal/status"
)

// Markers rendered for status fields that have never been set.
const (
	NotYet = "Not yet"
	None   = "None"
)

// Health returns the /health handler reading from store. now may be nil.
func Health(store *status.Store, now func() time.Time) Handler {
	if now == nil {
		now = time.Now
	}
	return func(_ context.Context, _ Request) (string, error) {
		return FormatHealth(store.Snapshot(), now()), nil
	}
}

// FormatHealth renders the health report. The output always has one line
// per field regardless of which jobs have run.
func FormatHealth(s status.Snapshot, now time.Time) string {
	var b strings.Builder
	b.WriteString("🩺 Health Check\n")
	b.WriteString("🟢 Service: Running\n")
	fmt.Fprintf(&b, "📸 Last Snapshot: %s\n", timeOr(s.LastSnapshotRun, NotYet))
	fmt.Fprintf(&b, "🧹 Last Cleanup: %s\n", timeOr(s.LastCleanupRun, NotYet))
	fmt.Fprintf(&b, "⚠️ Last Error: %s\n", stringOr(s.LastError, None))
	fmt.Fprintf(&b, "⏱️ Uptime: %ds", int64(s.Uptime(now)/time.Second))
	return b.String()
}

func timeOr(t *time.Time, marker string) string {
	if t == nil {
		return marker
	}
	return status.FormatTime(*t)
}

func stringOr(s *string, marker string) string {
	if s == nil {
		return marker
	}
	return *s
}
