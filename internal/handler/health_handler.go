package handler

import (
	"net/http"
	"time"

	"github.com/motorline/boost/internal/database"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db        *database.MongoDB
	startTime time.Time
	version   string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.MongoDB, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Timestamp     string `json:"timestamp"`
	MongoDB       string `json:"mongodb"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// ReadyResponse represents the readiness check response
type ReadyResponse struct {
	Ready   bool   `json:"ready"`
	MongoDB string `json:"mongodb"`
}

func (h *HealthHandler) mongoUp(r *http.Request) bool {
	return h.db.Client.Ping(r.Context(), nil) == nil
}

// Health always reports healthy while the process is up; Mongo state is
// informational here so a flapping database does not restart the pod.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	mongoStatus := "connected"
	if !h.mongoUp(r) {
		mongoStatus = "disconnected"
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "healthy",
		Version:       h.version,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		MongoDB:       mongoStatus,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	})
}

// Ready fails when Mongo is unreachable so traffic drains away from a pod
// that cannot apply bumps.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if !h.mongoUp(r) {
		writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{
			Ready:   false,
			MongoDB: "disconnected",
		})
		return
	}

	writeJSON(w, http.StatusOK, ReadyResponse{
		Ready:   true,
		MongoDB: "connected",
	})
}
