// Package health provides shared types for health check responses.
package health

import (
	"encoding/json"
	"fmt"
	"time"
)

// Response represents the API health response structure. Data depends on
// the probe and is decoded with Liveness or Readiness.
type Response struct {
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Healthy reports whether the probe passed.
func (r *Response) Healthy() bool {
	return r.Status == "healthy"
}

// Liveness is the payload of the liveness probe.
type Liveness struct {
	Service   string    `json:"service"`
	StartedAt time.Time `json:"started_at"`
	Uptime    string    `json:"uptime"`
	UptimeSec int64     `json:"uptime_sec"`
}

// Readiness is the payload of the readiness probe.
type Readiness struct {
	Layouts int    `json:"layouts"`
	Latency string `json:"latency"`
}

// Liveness decodes the liveness payload.
func (r *Response) Liveness() (*Liveness, error) {
	var l Liveness
	if err := r.decode(&l); err != nil {
		return nil, err
	}
	return &l, nil
}

// Readiness decodes the readiness payload.
func (r *Response) Readiness() (*Readiness, error) {
	var rd Readiness
	if err := r.decode(&rd); err != nil {
		return nil, err
	}
	return &rd, nil
}

func (r *Response) decode(v any) error {
	if len(r.Data) == 0 {
		return fmt.Errorf("health response has no data (status %s)", r.Status)
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("invalid health data: %w", err)
	}
	return nil
}
