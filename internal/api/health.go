package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/hackgods/clinic-booking/internal/appointment"
)

type HealthHandler struct {
	checks  map[string]appointment.Pinger
	env     string
	version string
}

func NewHealthHandler(checks map[string]appointment.Pinger, env, version string) *HealthHandler {
	return &HealthHandler{
		checks:  checks,
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

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	deps := make(map[string]string, len(names))
	status := "ok"

	for _, name := range names {
		checkCtx, checkCancel := context.WithTimeout(ctx, 1*time.Second)
		err := h.checks[name].Ping(checkCtx)
		checkCancel()
		if err != nil {
			deps[name] = "down"
			status = "error"
		} else {
			deps[name] = "ok"
		}
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
