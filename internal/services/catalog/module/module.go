// Package module wires the canonical catalog reader
package module

import (
	"supplysync/internal/modkit"
	"supplysync/internal/modkit/httpkit"
	"supplysync/internal/services/catalog/domain"
	"supplysync/internal/services/catalog/repo"
	"supplysync/internal/services/catalog/service"
)

// Ports exposed by the catalog module
type Ports struct {
	Reader domain.ReaderPort
}

// Module implements the catalog module
type Module struct {
	ports Ports
}

// New constructs the module. Without Postgres there is no canonical store
func New(deps modkit.Deps) *Module {
	var st repo.Storage = (*repo.Memory)(nil)
	if deps.PG != nil {
		st = repo.NewPG().Bind(deps.PG)
	}
	return &Module{ports: Ports{Reader: service.New(st)}}
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "catalog" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Typed returns the concrete port set
func (m *Module) Typed() Ports { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(_ httpkit.Router) {}
