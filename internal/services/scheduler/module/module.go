// Package module wires the refresh scheduler
package module

import (
	"supplysync/internal/modkit"
	"supplysync/internal/modkit/httpkit"
	refreshdom "supplysync/internal/services/refresh/domain"
	"supplysync/internal/services/scheduler/domain"
	"supplysync/internal/services/scheduler/repo"
	"supplysync/internal/services/scheduler/service"
)

// Needs are injected with modkit.WithPorts
type Needs struct {
	Job refreshdom.JobPort
}

// Ports exposed by the scheduler module
type Ports struct {
	Scheduler domain.SchedulerPort
}

// Module implements the scheduler module
type Module struct {
	name  string
	ports Ports
}

// New constructs the module. Schedules live in Postgres when it is configured.
// Supplier locks use redis, then Postgres leases, then nothing
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("scheduler")}, opts...)...)

	needs, _ := b.Ports.(Needs)
	if needs.Job == nil {
		panic("scheduler module requires the refresh Job port")
	}

	var st repo.Storage = repo.NewMemory()
	if deps.PG != nil {
		st = repo.NewPG().Bind(deps.PG)
	}
	var locker service.Locker
	switch {
	case deps.Locker != nil:
		locker = service.RedisLocker{Client: deps.Locker}
	case deps.PG != nil:
		locker = repo.NewLeases(deps.PG)
	}
	o := FromConfig(deps.Cfg)
	svc := service.New(st, needs.Job, locker, deps.Metrics, service.Config{LockTTL: o.LockTTL})

	return &Module{name: b.Name, ports: Ports{Scheduler: svc}}
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Typed returns the concrete port set
func (m *Module) Typed() Ports { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// MountRoutes satisfies modkit.Module; routes live in the api scheduler module
func (m *Module) MountRoutes(_ httpkit.Router) {}
