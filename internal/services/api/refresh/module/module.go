// Package module wires on demand price refreshes into the API
package module

import (
	modkit "supplysync/internal/modkit"
	"supplysync/internal/modkit/httpkit"
	rhttp "supplysync/internal/services/api/refresh/http"
	diffdom "supplysync/internal/services/diff/domain"
	refreshdom "supplysync/internal/services/refresh/domain"
)

// Ports declares the injected ports this API module needs
type Ports struct {
	Job  refreshdom.JobPort
	Runs diffdom.RunPort
}

// Module implements the refresh API module
type Module struct {
	modkit.Routes
	ports Ports
}

// New constructs the refresh API module; callers attach auth with modkit.WithMiddlewares
func New(_ modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("api.refresh"),
		modkit.WithPrefix("/refresh"),
	}, opts...)...)

	injected, _ := b.Ports.(Ports)
	if injected.Job == nil || injected.Runs == nil {
		panic("refresh API module requires Job and Runs ports")
	}
	return &Module{
		Routes: b.Routes(func(r httpkit.Router) {
			rhttp.Register(r, rhttp.Deps{Job: injected.Job, Runs: injected.Runs})
		}),
		ports: injected,
	}
}

// Ports returns the injected ports
func (m *Module) Ports() any { return m.ports }
