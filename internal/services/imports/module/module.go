// Package module wires the import orchestrator and the crawler it drives
package module

import (
	"supplysync/internal/adapters/events"
	"supplysync/internal/modkit"
	"supplysync/internal/modkit/httpkit"
	"supplysync/internal/services/crawler"
	diffdom "supplysync/internal/services/diff/domain"
	"supplysync/internal/services/imports/domain"
	"supplysync/internal/services/imports/service"
	srcdom "supplysync/internal/services/sources/domain"
	stgdom "supplysync/internal/services/staging/domain"
)

// eventBatch is how many crawl events are buffered per ClickHouse insert
const eventBatch = 500

// Needs are injected with modkit.WithPorts; every field is required
type Needs struct {
	Templates service.Templates
	Staging   stgdom.StagingPort
	Sources   srcdom.RegistryPort
	Engine    diffdom.EnginePort
	Runs      diffdom.RunPort
}

// Ports exposed by the imports module
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the imports module
type Module struct {
	name  string
	ports Ports
}

// New constructs the module; the crawler reads CRAWLER_ settings
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("imports")}, opts...)...)

	needs, _ := b.Ports.(Needs)
	if needs.Templates == nil || needs.Staging == nil || needs.Sources == nil || needs.Engine == nil || needs.Runs == nil {
		panic("imports module requires Templates, Staging, Sources, Engine and Runs")
	}

	cr := crawler.New(crawler.Deps{
		Staging: needs.Staging,
		Sources: needs.Sources,
		Events:  events.NewClickhouse(deps.CH, eventBatch),
		Metrics: deps.Metrics,
	}, crawler.FromConfig(deps.Cfg))

	svc := service.New(service.Deps{
		Templates: needs.Templates,
		Crawler:   cr,
		Sources:   needs.Sources,
		Engine:    needs.Engine,
		Runs:      needs.Runs,
		Metrics:   deps.Metrics,
	})
	return &Module{name: b.Name, ports: Ports{Runner: svc}}
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
