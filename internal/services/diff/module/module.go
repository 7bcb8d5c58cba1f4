// Package module wires the diff engine and exposes its ports
package module

import (
	"supplysync/internal/modkit"
	"supplysync/internal/modkit/httpkit"
	catdom "supplysync/internal/services/catalog/domain"
	"supplysync/internal/services/diff/domain"
	"supplysync/internal/services/diff/repo"
	"supplysync/internal/services/diff/service"
	srcdom "supplysync/internal/services/sources/domain"
	stgdom "supplysync/internal/services/staging/domain"
)

// Needs are the ports the engine consumes, injected with modkit.WithPorts
type Needs struct {
	Staging stgdom.StagingPort
	Catalog catdom.ReaderPort
	Misses  srcdom.MissPort
}

// Ports exposed by the diff module
type Ports struct {
	Engine domain.EnginePort
	Runs   domain.RunPort
}

// Module implements the diff module
type Module struct {
	name  string
	ports Ports
}

// New constructs the diff module. Staging and Catalog are required
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("diff")}, opts...)...)

	needs, _ := b.Ports.(Needs)
	if needs.Staging == nil || needs.Catalog == nil {
		panic("diff module requires Staging and Catalog ports")
	}

	var st repo.Store = repo.NewMemory()
	if deps.PG != nil {
		st = repo.NewStore(deps.PG)
	}
	o := FromConfig(deps.Cfg)
	eng := service.New(st, service.Deps{
		Staging: needs.Staging,
		Catalog: needs.Catalog,
		Misses:  needs.Misses,
		Metrics: deps.Metrics,
	}, service.Config{DeleteAfterMisses: o.DeleteAfterMisses, InsertChunk: o.InsertChunk})

	return &Module{name: b.Name, ports: Ports{Engine: eng, Runs: eng}}
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Typed returns the concrete port set
func (m *Module) Typed() Ports { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// MountRoutes satisfies modkit.Module; routes live in the api imports module
func (m *Module) MountRoutes(_ httpkit.Router) {}
