// Package module wires the source registry and exposes its ports
package module

import (
	"supplysync/internal/modkit"
	"supplysync/internal/modkit/httpkit"
	"supplysync/internal/services/sources/domain"
	"supplysync/internal/services/sources/repo"
	"supplysync/internal/services/sources/service"
)

// Ports exposed by the sources module
type Ports struct {
	Registry domain.RegistryPort
	Misses   domain.MissPort
}

// Module implements the source registry module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the module; without Postgres the registry lives in memory
func New(deps modkit.Deps) *Module {
	var st repo.Storage
	if deps.PG != nil {
		st = repo.NewPG().Bind(deps.PG)
	} else {
		st = repo.NewMemory()
	}
	svc := service.New(st, deps.Named("sources").Log)

	m := &Module{deps: deps}
	m.ports = Ports{Registry: svc, Misses: svc}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "sources" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Typed returns the concrete port set
func (m *Module) Typed() Ports { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// MountRoutes satisfies modkit.Module; the registry has no routes of its own
func (m *Module) MountRoutes(_ httpkit.Router) {}
