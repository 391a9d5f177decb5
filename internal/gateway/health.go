package gateway

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthResponse is the JSON response for GET /healthz.
type HealthResponse struct {
	Status          string     `json:"status"`
	LastSnapshotRun *time.Time `json:"last_snapshot_run"`
	LastCleanupRun  *time.Time `json:"last_cleanup_run"`
	LastError       *string    `json:"last_error"`
	UptimeSeconds   int64      `json:"uptime_seconds"`
}

// handleHealth reports the status store. It always answers 200: a failed
// job is reported through last_error, not through the HTTP status.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		snap := g.store.Snapshot()
		resp := HealthResponse{
			Status:          "running",
			LastSnapshotRun: snap.LastSnapshotRun,
			LastCleanupRun:  snap.LastCleanupRun,
			LastError:       snap.LastError,
			UptimeSeconds:   int64(snap.Uptime(g.now()) / time.Second),
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
