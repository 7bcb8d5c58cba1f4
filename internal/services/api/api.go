// Package api provides the HTTP API for the ingest pipeline
package api

import (
	"time"

	"supplysync/internal/adapters/session"
	"supplysync/internal/platform/config"
	"supplysync/internal/platform/logger"
	"supplysync/internal/platform/metrics"
	phttp "supplysync/internal/platform/net/http"
	"supplysync/internal/platform/store"

	"supplysync/internal/modkit"
	"supplysync/internal/modkit/httpkit"
	"supplysync/internal/modkit/module"
	"supplysync/internal/modkit/swaggerkit"

	importsmod "supplysync/internal/services/api/imports/module"
	metamod "supplysync/internal/services/api/meta/module"
	refreshmod "supplysync/internal/services/api/refresh/module"
	schedmod "supplysync/internal/services/api/scheduler/module"
	"supplysync/internal/services/pipeline"
)

// Options are the API options
type Options struct {
	// Config is the root config; CORE_API_ keys are read below it
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	Metrics        *metrics.Metrics
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router and returns the assembled pipeline
func Mount(r phttp.Router, opt Options) *pipeline.Pipeline {
	apiCfg := opt.Config.Prefix("CORE_API_")

	deps := modkit.Deps{Cfg: opt.Config, Metrics: opt.Metrics}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}
	deps = modkit.FromStore(deps, opt.Store)

	p := pipeline.Build(deps)

	// operator actions accept the shared tick token or a review UI session
	auth := httpkit.NewPortFunc(
		httpkit.StaticToken(apiCfg.MayString("TICK_TOKEN", ""), "scheduler"),
		httpkit.WithCookie(apiCfg.MayString("OPERATOR_COOKIE", "supplysync_op"), session.OperatorLookup(deps.RDS, 0)),
	)
	guarded := modkit.WithMiddlewares(httpkit.Auth(auth))

	meta := metamod.New(deps)
	mods := []module.Module{
		meta,
		importsmod.New(deps, modkit.WithPorts(importsmod.Ports{
			Runner: p.Imports.Runner,
			Engine: p.Diff.Engine,
			Runs:   p.Diff.Runs,
		})),
		refreshmod.New(deps, guarded, modkit.WithPorts(refreshmod.Ports{
			Job:  p.Refresh.Job,
			Runs: p.Diff.Runs,
		})),
		schedmod.New(deps, guarded, modkit.WithPorts(schedmod.Ports{
			Scheduler: p.Scheduler.Scheduler,
		})),
	}

	// unversioned probes
	meta.MountHeartbeat(r)
	r.Handle("/metrics", opt.Metrics.Handler())

	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	stack := httpkit.CommonStack(httpkit.StackOptions{
		Metrics:     opt.Metrics,
		CORSOrigins: apiCfg.MayCSV("CORS_ORIGINS", nil),
		SlowRequest: apiCfg.MayDuration("SLOW_REQUEST", 5*time.Second),
	})
	httpkit.MountAPIV1(r, stack, func(api httpkit.Router) {
		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})
	return p
}
