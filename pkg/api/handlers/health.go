package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/marmos91/binlayout/pkg/registry"
)

// Response is the envelope of health responses.
type Response struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
}

func healthy(data any) Response {
	return Response{Status: "healthy", Timestamp: time.Now().UTC(), Data: data}
}

func unhealthy(msg string) Response {
	return Response{Status: "unhealthy", Timestamp: time.Now().UTC(), Error: msg}
}

// HealthHandler serves the unauthenticated probes.
type HealthHandler struct {
	store   registry.Store
	started time.Time
}

// NewHealthHandler creates a HealthHandler. store may be nil, in which case
// the readiness probe fails.
func NewHealthHandler(store registry.Store) *HealthHandler {
	return &HealthHandler{store: store, started: time.Now()}
}

// LivenessData is the payload of GET /health.
type LivenessData struct {
	Service   string    `json:"service"`
	StartedAt time.Time `json:"started_at"`
	Uptime    string    `json:"uptime"`
	UptimeSec int64     `json:"uptime_sec"`
}

// Liveness handles GET /health.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	up := time.Since(h.started)
	WriteJSONOK(w, healthy(LivenessData{
		Service:   "binlayout",
		StartedAt: h.started.UTC(),
		Uptime:    up.Round(time.Second).String(),
		UptimeSec: int64(up.Seconds()),
	}))
}

// Readiness handles GET /health/ready. It probes the registry and reports
// how many layouts it holds.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		WriteJSON(w, http.StatusServiceUnavailable, unhealthy("registry not initialized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	start := time.Now()
	if err := registry.Healthcheck(ctx, h.store); err != nil {
		WriteJSON(w, http.StatusServiceUnavailable, unhealthy(err.Error()))
		return
	}
	ls, err := h.store.List(ctx)
	if err != nil {
		WriteJSON(w, http.StatusServiceUnavailable, unhealthy(err.Error()))
		return
	}

	WriteJSONOK(w, healthy(map[string]any{
		"layouts": len(ls),
		"latency": time.Since(start).String(),
	}))
}
