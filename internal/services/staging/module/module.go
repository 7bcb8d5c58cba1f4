// Package module wires the staging store
package module

import (
	"supplysync/internal/modkit"
	"supplysync/internal/modkit/httpkit"
	"supplysync/internal/services/staging/domain"
	"supplysync/internal/services/staging/repo"
	"supplysync/internal/services/staging/service"
)

// Ports exposed by the staging module
type Ports struct {
	Staging domain.StagingPort
}

// Module implements the staging module
type Module struct {
	ports Ports
}

// New constructs the module; without Postgres staging lives in memory
func New(deps modkit.Deps) *Module {
	var st repo.Storage = repo.NewMemory()
	if deps.PG != nil {
		st = repo.NewPG().Bind(deps.PG)
	}
	return &Module{ports: Ports{Staging: service.New(st)}}
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "staging" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Typed returns the concrete port set
func (m *Module) Typed() Ports { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(_ httpkit.Router) {}
