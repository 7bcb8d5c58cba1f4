// @title         Supplysync API
// @version       0.1.0
// @description   Supplier catalog imports, diff review, price refresh and scheduling
// @BasePath      /api/v1

//go:generate swag init --v3.1 -g main.go -d ./,../../internal/services/api -o ../../internal/services/api/docs --instanceName api

package main

import (
	"context"
	"os/signal"
	"syscall"

	"supplysync/internal/core/version"
	"supplysync/internal/platform/config"
	"supplysync/internal/platform/logger"
	"supplysync/internal/platform/metrics"
	phttp "supplysync/internal/platform/net/http"
	"supplysync/internal/platform/store"
	"supplysync/internal/platform/store/schema"

	"supplysync/internal/services/api"
)

func main() {
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	l := logger.Get()
	bi := version.Info("supplysync-api")
	l.Info().Str("version", bi.Version).Str("commit", bi.Commit).Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.FromEnv(root, "api"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// dev and test stacks create the tables on boot
	if st.PG != nil && root.MayBool("SERVICE_PGSQL_AUTO_MIGRATE", false) {
		if err := schema.Apply(ctx, st.PG, root.MayBool("SERVICE_PGSQL_CANONICAL_DDL", false)); err != nil {
			l.Panic().Err(err).Msg("schema apply failed")
		}
	}

	// http server (reads CORE_API_PORT / CORE_API_ADDR)
	srv := phttp.NewServer(apiCfg)

	api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			Metrics:        metrics.New(),
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
		},
	)

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
