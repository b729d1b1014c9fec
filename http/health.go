package http

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

const (
	stateStarting int32 = iota
	stateReady
	stateDraining
)

// Health tracks readiness. It is safe for concurrent use.
type Health struct {
	state atomic.Int32
}

// NewHealth creates a Health in the starting state.
func NewHealth() *Health {
	return &Health{}
}

// SetReady marks the server as accepting traffic.
func (h *Health) SetReady() {
	h.state.Store(stateReady)
}

// SetDraining marks the server as shutting down.
func (h *Health) SetDraining() {
	h.state.Store(stateDraining)
}

// IsReady reports whether the server is accepting traffic.
func (h *Health) IsReady() bool {
	return h.state.Load() == stateReady
}

// State returns "starting", "ready" or "draining".
func (h *Health) State() string {
	switch h.state.Load() {
	case stateReady:
		return "ready"
	case stateDraining:
		return "draining"
	default:
		return "starting"
	}
}

type healthResponse struct {
	Status string `json:"status"`
}

// LivenessHandler always responds 200 while the process is up.
func (*Health) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, "ok")
	}
}

// ReadinessHandler responds 200 when ready and 503 otherwise.
func (h *Health) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if h.IsReady() {
			writeHealth(w, http.StatusOK, h.State())
			return
		}
		writeHealth(w, http.StatusServiceUnavailable, h.State())
	}
}

func writeHealth(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(healthResponse{Status: status})
}
