package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"supplysync/internal/core/version"
	"supplysync/internal/modkit"
	"supplysync/internal/platform/config"
	"supplysync/internal/platform/logger"
	"supplysync/internal/platform/metrics"
	"supplysync/internal/platform/store"

	"supplysync/internal/services/pipeline"
)

func main() {
	var (
		fMode     = flag.String("mode", "loop", "scheduler mode: loop | tick | refresh")
		fEvery    = flag.Duration("every", time.Minute, "tick interval in loop mode")
		fSupplier = flag.Int64("supplier", 0, "supplier id for refresh mode")
	)
	flag.Parse()

	root := config.New()
	l := logger.Get()
	bi := version.Info("supplysync-scheduler")
	l.Info().Str("version", bi.Version).Str("mode", *fMode).Msg("starting")

	code := 0
	defer func() {
		if code != 0 {
			os.Exit(code)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.FromEnv(root, "scheduler"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	p := pipeline.Build(modkit.FromStore(modkit.Deps{Cfg: root, Log: *l, Metrics: metrics.New()}, st))
	sched := p.Scheduler.Scheduler

	switch *fMode {
	case "tick":
		res, err := sched.Tick(ctx, time.Now())
		if err != nil {
			l.Error().Err(err).Msg("scheduler tick failed")
			code = 1
		}
		_ = json.NewEncoder(os.Stdout).Encode(res)

	case "loop":
		t := time.NewTicker(*fEvery)
		defer t.Stop()
		for {
			if _, err := sched.Tick(ctx, time.Now()); err != nil && ctx.Err() == nil {
				l.Error().Err(err).Msg("scheduler tick failed")
			}
			select {
			case <-ctx.Done():
				l.Info().Msg("scheduler stopping")
				return
			case <-t.C:
			}
		}

	case "refresh":
		if *fSupplier <= 0 {
			l.Error().Msg("scheduler refresh mode: -supplier is required")
			code = 2
			return
		}
		id, err := p.Refresh.Job.Run(ctx, *fSupplier)
		if err != nil {
			l.Error().Err(err).Str("run_id", id.String()).Int64("supplier_id", *fSupplier).Msg("refresh failed")
			code = 1
		}
		if run, gerr := p.Diff.Runs.GetRun(ctx, id); gerr == nil {
			_ = json.NewEncoder(os.Stdout).Encode(run)
		}

	default:
		l.Error().Str("mode", *fMode).Msg("scheduler unknown -mode (expected: loop | tick | refresh)")
		code = 2
	}
}
