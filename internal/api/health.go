package api

import (
	"context"
	"net/http"
	"time"
)

// Check probes one dependency. It returns nil when the dependency answers.
type Check func(ctx context.Context) error

// HealthHandler serves liveness and readiness. The store check is critical:
// a failing store makes the service unready. The lock check only degrades it,
// since bookings fall back to failing fast with a retry hint.
type HealthHandler struct {
	store   Check
	lock    Check
	env     string
	version string
}

// NewHealthHandler builds the probes. A nil check means the dependency is not
// in use (memory store, in-process lock) and is reported as such.
func NewHealthHandler(store, lock Check, env, version string) *HealthHandler {
	return &HealthHandler{
		store:   store,
		lock:    lock,
		env:     env,
		version: version,
	}
}

type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Env     string `json:"env,omitempty"`
}

type ReadinessResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version,omitempty"`
	Env          string            `json:"env,omitempty"`
	Dependencies map[string]string `json:"dependencies"`
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	resp := LivenessResponse{
		Status:  "ok",
		Version: h.version,
		Env:     h.env,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]string)
	status := "ok"

	if !probe(ctx, h.store, "store", deps) {
		status = "error"
	}
	if !probe(ctx, h.lock, "lock", deps) && status == "ok" {
		status = "degraded"
	}

	resp := ReadinessResponse{
		Status:       status,
		Version:      h.version,
		Env:          h.env,
		Dependencies: deps,
	}

	httpStatus := http.StatusOK
	if status == "error" {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, resp)
}

func probe(ctx context.Context, check Check, name string, deps map[string]string) bool {
	if check == nil {
		deps[name] = "local"
		return true
	}
	checkCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := check(checkCtx); err != nil {
		deps[name] = "down"
		return false
	}
	deps[name] = "ok"
	return true
}
