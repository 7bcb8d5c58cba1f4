// Package pipeline assembles the ingest modules shared by every binary
package pipeline

import (
	"supplysync/internal/adapters/extract"
	"supplysync/internal/modkit"
	"supplysync/internal/modkit/module"
	catmod "supplysync/internal/services/catalog/module"
	"supplysync/internal/services/crawler"
	diffmod "supplysync/internal/services/diff/module"
	impmod "supplysync/internal/services/imports/module"
	refmod "supplysync/internal/services/refresh/module"
	schedmod "supplysync/internal/services/scheduler/module"
	srcmod "supplysync/internal/services/sources/module"
	stgmod "supplysync/internal/services/staging/module"
)

// Pipeline holds the typed ports of every domain module
type Pipeline struct {
	Templates *extract.Set
	Sources   srcmod.Ports
	Staging   stgmod.Ports
	Catalog   catmod.Ports
	Diff      diffmod.Ports
	Imports   impmod.Ports
	Refresh   refmod.Ports
	Scheduler schedmod.Ports

	Modules []module.Module
}

// Build wires sources, staging, catalog, diff, imports, refresh and scheduler
// over deps and registers their ports by module name. Extraction templates come
// from CRAWLER_TEMPLATES_FILE; when they cannot be read every run fails with a
// config error instead of the process refusing to start
func Build(deps modkit.Deps) *Pipeline {
	p := &Pipeline{}

	path := crawler.FromConfig(deps.Cfg).TemplatesFile
	set, err := extract.LoadFile(path)
	if err != nil {
		deps.Log.Warn().Err(err).Str("path", path).Msg("extraction templates unavailable")
	} else {
		deps.Log.Info().Int("templates", len(set.Templates)).Str("path", path).Msg("extraction templates loaded")
	}
	p.Templates = set

	sources := srcmod.New(deps.Named("sources"))
	staging := stgmod.New(deps.Named("staging"))
	catalog := catmod.New(deps.Named("catalog"))
	p.Sources, p.Staging, p.Catalog = sources.Typed(), staging.Typed(), catalog.Typed()

	diff := diffmod.New(deps.Named("diff"), modkit.WithPorts(diffmod.Needs{
		Staging: p.Staging.Staging,
		Catalog: p.Catalog.Reader,
		Misses:  p.Sources.Misses,
	}))
	p.Diff = diff.Typed()

	imports := impmod.New(deps.Named("imports"), modkit.WithPorts(impmod.Needs{
		Templates: set,
		Staging:   p.Staging.Staging,
		Sources:   p.Sources.Registry,
		Engine:    p.Diff.Engine,
		Runs:      p.Diff.Runs,
	}))
	p.Imports = imports.Typed()

	refresh := refmod.New(deps.Named("refresh"), modkit.WithPorts(refmod.Needs{
		Templates: set,
		Staging:   p.Staging.Staging,
		Engine:    p.Diff.Engine,
		Runs:      p.Diff.Runs,
	}))
	p.Refresh = refresh.Typed()

	scheduler := schedmod.New(deps.Named("scheduler"), modkit.WithPorts(schedmod.Needs{Job: p.Refresh.Job}))
	p.Scheduler = scheduler.Typed()

	p.Modules = []module.Module{sources, staging, catalog, diff, imports, refresh, scheduler}
	for _, m := range p.Modules {
		module.Register(m.Name(), m.Ports())
	}
	return p
}
