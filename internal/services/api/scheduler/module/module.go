// Package module wires the scheduler trigger and schedule management into the API
package module

import (
	modkit "supplysync/internal/modkit"
	"supplysync/internal/modkit/httpkit"
	shttp "supplysync/internal/services/api/scheduler/http"
	scheddom "supplysync/internal/services/scheduler/domain"
)

// Ports declares the injected ports this API module needs
type Ports struct {
	Scheduler scheddom.SchedulerPort
}

// Module implements the scheduler API module
type Module struct {
	modkit.Routes
	ports Ports
}

// New constructs the scheduler API module; callers attach auth with modkit.WithMiddlewares
func New(_ modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("api.scheduler"),
		modkit.WithPrefix("/scheduler"),
	}, opts...)...)

	injected, _ := b.Ports.(Ports)
	if injected.Scheduler == nil {
		panic("scheduler API module requires the Scheduler port")
	}
	return &Module{
		Routes: b.Routes(func(r httpkit.Router) { shttp.Register(r, injected.Scheduler) }),
		ports:  injected,
	}
}

// Ports returns the injected ports
func (m *Module) Ports() any { return m.ports }
