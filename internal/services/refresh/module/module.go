// Package module wires the price refresh job
package module

import (
	"context"

	"supplysync/internal/adapters/creds"
	"supplysync/internal/adapters/session"
	"supplysync/internal/modkit"
	"supplysync/internal/modkit/httpkit"
	"supplysync/internal/services/crawler"
	diffdom "supplysync/internal/services/diff/domain"
	"supplysync/internal/services/refresh/domain"
	"supplysync/internal/services/refresh/service"
	stgdom "supplysync/internal/services/staging/domain"

	"cloud.google.com/go/storage"
)

// Needs are injected with modkit.WithPorts; every field is required
type Needs struct {
	Templates service.Templates
	Staging   stgdom.StagingPort
	Engine    diffdom.EnginePort
	Runs      diffdom.RunPort
}

// Ports exposed by the refresh module
type Ports struct {
	Job domain.JobPort
}

// Module implements the refresh module
type Module struct {
	name  string
	ports Ports
}

// New constructs the module. Sessions live in redis when it is configured;
// credentials come from the bucket when REFRESH_CREDS_BUCKET is set, then the env
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("refresh")}, opts...)...)

	needs, _ := b.Ports.(Needs)
	if needs.Templates == nil || needs.Staging == nil || needs.Engine == nil || needs.Runs == nil {
		panic("refresh module requires Templates, Staging, Engine and Runs")
	}
	o := FromConfig(deps.Cfg)

	var sessions session.Store = session.NewMemory(o.SessionTTL)
	if deps.RDS != nil {
		sessions = session.NewRedis(deps.RDS, o.SessionTTL)
	}

	chain := creds.Chain{}
	if o.CredsBucket != "" {
		gcs, err := storage.NewClient(context.Background())
		if err != nil {
			deps.Log.Warn().Err(err).Str("bucket", o.CredsBucket).Msg("credential bucket unavailable, using env only")
		} else {
			chain = append(chain, creds.NewBucket(gcs, o.CredsBucket, o.CredsPrefix))
		}
	}
	chain = append(chain, creds.NewEnv())

	co := crawler.FromConfig(deps.Cfg)
	job := service.New(service.Deps{
		Templates: needs.Templates,
		Sessions:  sessions,
		Creds:     chain,
		Staging:   needs.Staging,
		Engine:    needs.Engine,
		Runs:      needs.Runs,
		Metrics:   deps.Metrics,
	}, service.Config{Fetch: co.Fetch, RequestsPerMinute: co.Politeness.RequestsPerMinute})

	return &Module{name: b.Name, ports: Ports{Job: job}}
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.name }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Typed returns the concrete port set
func (m *Module) Typed() Ports { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// MountRoutes satisfies modkit.Module; routes live in the api refresh module
func (m *Module) MountRoutes(_ httpkit.Router) {}
