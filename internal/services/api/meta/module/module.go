// Package module wires meta endpoints into the API
package module

import (
	"context"
	"time"

	modkit "supplysync/internal/modkit"
	"supplysync/internal/modkit/httpkit"
	metahttp "supplysync/internal/services/api/meta/http"
)

// ServiceName is reported by the meta endpoints
const ServiceName = "supplysync-api"

// Module serves health, readiness and build info
type Module struct {
	modkit.Routes
	hdeps metahttp.Deps
}

// New constructs a meta module probing whichever backends deps carries
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	hd := metahttp.Deps{ServiceName: ServiceName, StartedAt: time.Now(), Probes: probes(deps)}
	return &Module{
		Routes: b.Routes(func(r httpkit.Router) { metahttp.Register(r, hd) }),
		hdeps:  hd,
	}
}

type pinger interface{ Ping(context.Context) error }

// probes lists every backend; the store adapters all ping, test fakes may not
func probes(deps modkit.Deps) []metahttp.Probe {
	pg := metahttp.Probe{Name: "pg"}
	if p, ok := deps.PG.(pinger); ok {
		pg.Ping = p.Ping
	}
	ch := metahttp.Probe{Name: "clickhouse"}
	if p, ok := deps.CH.(pinger); ok {
		ch.Ping = p.Ping
	}
	rds := metahttp.Probe{Name: "redis"}
	if deps.RDS != nil {
		rds.Ping = func(ctx context.Context) error { return deps.RDS.Ping(ctx).Err() }
	}
	return []metahttp.Probe{pg, ch, rds}
}

// MountHeartbeat mounts GET /health on r, outside the versioned api
func (m *Module) MountHeartbeat(r httpkit.Router) { metahttp.RegisterHeartbeat(r, m.hdeps) }

// Ports implements modkit.Module; meta exposes none
func (m *Module) Ports() any { return nil }
