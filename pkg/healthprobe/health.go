// Package healthprobe serves liveness and readiness, including the outcome of the last analysis cycle.
package healthprobe

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
)

// CycleStatus describes one completed analysis cycle.
type CycleStatus struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Games      int       `json:"games"`
	Alerts     int       `json:"alerts"`
	Error      string    `json:"error,omitempty"`
}

// OK reports whether the cycle finished without error.
func (c *CycleStatus) OK() bool {
	return c.Error == ""
}

// HealthChecker provides health and readiness checks.
type HealthChecker struct {
	startTime time.Time
	ready     atomic.Bool

	mu        sync.RWMutex
	lastCycle *CycleStatus
	failures  int
}

// New creates a new HealthChecker.
func New() *HealthChecker {
	return &HealthChecker{
		startTime: time.Now(),
	}
}

// SetReady marks the application as ready to serve traffic.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// RecordCycle stores the outcome of a cycle. Consecutive failures are counted until a success.
func (h *HealthChecker) RecordCycle(status CycleStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastCycle = &status
	if status.OK() {
		h.failures = 0
	} else {
		h.failures++
	}
}

// LastCycle returns the last recorded cycle and the current consecutive failure count.
func (h *HealthChecker) LastCycle() (*CycleStatus, int) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.lastCycle == nil {
		return nil, h.failures
	}
	c := *h.lastCycle
	return &c, h.failures
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status              string       `json:"status"`
	Uptime              string       `json:"uptime"`
	Message             string       `json:"message,omitempty"`
	LastCycle           *CycleStatus `json:"last_cycle,omitempty"`
	ConsecutiveFailures int          `json:"consecutive_failures,omitempty"`
}

// Health returns an HTTP handler for liveness checks.
// Always returns 200 OK if the application is running.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		last, failures := h.LastCycle()
		resp := HealthResponse{
			Status:              "healthy",
			Uptime:              time.Since(h.startTime).String(),
			LastCycle:           last,
			ConsecutiveFailures: failures,
		}
		if failures > 0 {
			resp.Status = "degraded"
			resp.Message = "last cycle failed"
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// Ready returns an HTTP handler for readiness checks.
// Returns 200 OK if ready, 503 Service Unavailable if not.
func (h *HealthChecker) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.ready.Load() {
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:  "not_ready",
				Message: "application is starting",
			})
			return
		}

		writeJSON(w, http.StatusOK, HealthResponse{
			Status: "ready",
			Uptime: time.Since(h.startTime).String(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
