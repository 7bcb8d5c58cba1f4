// Package http serves liveness, readiness and build info
package http

import (
	"context"
	"net/http"
	"time"

	"supplysync/internal/core/version"
	"supplysync/internal/modkit/httpkit"
)

// Probe checks one backend. A nil Ping means the backend is not configured
type Probe struct {
	Name string
	Ping func(context.Context) error
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName  string
	StartedAt    time.Time
	Probes       []Probe
	ProbeTimeout time.Duration // default 2s
}

type handlers struct{ deps Deps }

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	h := handlers{deps: d}
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
}

// RegisterHeartbeat mounts only the health check, for the unversioned root
func RegisterHeartbeat(r httpkit.Router, d Deps) {
	httpkit.Get(r, "/health", handlers{deps: d}.health)
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	OK      bool   `json:"ok"      example:"true"`
	Service string `json:"service" example:"supplysync-api"`
	Started string `json:"started" example:"2026-03-02T13:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"`
}

// ReadyCheck is the outcome of one probe: ok, fail or skipped
type ReadyCheck struct {
	Name   string `json:"name"   example:"pg"`
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432: connect: connection refused"`
	Millis int64  `json:"ms"     example:"3"`
}

// ReadyResponse summarizes readiness; status is ok or fail
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"`
	Checks []ReadyCheck `json:"checks"`
}

// @Summary Liveness
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse "ok"
// @Router /meta/health [get]
func (h handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(time.Since(h.deps.StartedAt) / time.Second),
	}, nil
}

// @Summary Readiness with a check per configured backend
// @Description Backends that are not configured report skipped. Any failing check answers 503
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse "ok"
// @Failure 503 {object} ReadyResponse "a backend is down"
// @Router /meta/ready [get]
func (h handlers) ready(r *http.Request) (any, error) {
	timeout := h.deps.ProbeTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	out := ReadyResponse{Status: "ok", Checks: make([]ReadyCheck, 0, len(h.deps.Probes))}
	for _, p := range h.deps.Probes {
		c := ReadyCheck{Name: p.Name, Status: "skipped"}
		if p.Ping != nil {
			start := time.Now()
			err := p.Ping(ctx)
			c.Millis = time.Since(start).Milliseconds()
			c.Status = "ok"
			if err != nil {
				c.Status, c.Error, out.Status = "fail", err.Error(), "fail"
			}
		}
		out.Checks = append(out.Checks, c)
	}
	if out.Status != "ok" {
		return httpkit.Response{Status: http.StatusServiceUnavailable, Body: out}, nil
	}
	return out, nil
}

// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo "ok"
// @Router /meta/version [get]
func (h handlers) version(_ *http.Request) (any, error) {
	return version.Info(h.deps.ServiceName), nil
}
