// Package module wires import runs and diff review into the API
package module

import (
	modkit "supplysync/internal/modkit"
	"supplysync/internal/modkit/httpkit"
	ihttp "supplysync/internal/services/api/imports/http"
	isvc "supplysync/internal/services/api/imports/service"
	diffdom "supplysync/internal/services/diff/domain"
	impdom "supplysync/internal/services/imports/domain"
)

// Ports declares the injected ports this API module needs
type Ports struct {
	Runner impdom.RunnerPort
	Engine diffdom.EnginePort
	Runs   diffdom.RunPort
}

// Module implements the imports API module
type Module struct {
	modkit.Routes
	svc isvc.Service
}

// New constructs the imports API module
func New(_ modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("api.imports"),
		modkit.WithPrefix("/imports"),
	}, opts...)...)

	injected, _ := b.Ports.(Ports)
	if injected.Runner == nil || injected.Engine == nil || injected.Runs == nil {
		panic("imports API module requires Runner, Engine and Runs ports")
	}

	m := &Module{svc: isvc.New(injected.Runner, injected.Engine, injected.Runs)}
	m.Routes = b.Routes(func(r httpkit.Router) { ihttp.Register(r, m.svc) })
	return m
}

// Ports returns the api service for cross module lookups
func (m *Module) Ports() any { return m.svc }
