package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"supplysync/internal/core/version"
	"supplysync/internal/modkit"
	"supplysync/internal/platform/config"
	"supplysync/internal/platform/logger"
	"supplysync/internal/platform/metrics"
	"supplysync/internal/platform/store"

	impdom "supplysync/internal/services/imports/domain"
	"supplysync/internal/services/pipeline"
)

func main() {
	var (
		fSupplier = flag.Int64("supplier", 0, "supplier id to import (required)")
		fURLs     = flag.String("urls", "", "comma-separated manual urls to crawl")
		fSeeds    = flag.Bool("seeds", false, "also crawl template seeds and every active source")
		fSkip     = flag.Bool("skip-successful", false, "mark rows already matching the approved catalog after diffing")
		fTemplate = flag.Int64("template", 0, "template key override (0 = the supplier's own)")
		fNotes    = flag.String("notes", "", "free text stored on the run summary")
	)
	flag.Parse()

	root := config.New()
	l := logger.Get()
	bi := version.Info("supplysync-crawl")
	l.Info().Str("version", bi.Version).Msg("starting")

	if *fSupplier <= 0 {
		l.Fatal().Msg("crawl: -supplier is required")
	}

	// runs after every other defer so the store is closed first
	code := 0
	defer func() {
		if code != 0 {
			os.Exit(code)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.FromEnv(root, "crawl"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	o := impdom.Options{
		IncludeSeeds:   *fSeeds,
		SkipSuccessful: *fSkip,
		Notes:          *fNotes,
	}
	for _, u := range strings.Split(*fURLs, ",") {
		if u = strings.TrimSpace(u); u != "" {
			o.ManualURLs = append(o.ManualURLs, u)
		}
	}
	if *fTemplate > 0 {
		o.TemplateKey = fTemplate
	}

	if err := crawl(ctx, root, st, *l, *fSupplier, o); err != nil {
		code = 1
	}
}

// crawl runs one import and prints the recorded run
func crawl(ctx context.Context, root config.Conf, st *store.Store, l logger.Logger, supplierID int64, o impdom.Options) error {
	deps := modkit.FromStore(modkit.Deps{Cfg: root, Log: l, Metrics: metrics.New()}, st)
	p := pipeline.Build(deps)

	log := l.With().Int64("supplier_id", supplierID).Logger()
	id, runErr := p.Imports.Runner.StartRun(ctx, supplierID, o)
	if runErr != nil {
		log.Error().Err(runErr).Str("run_id", id.String()).Msg("import run failed")
	}

	// print the recorded run so scripts can pick up the counts
	if run, err := p.Diff.Runs.GetRun(ctx, id); err == nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(run)
	}
	return runErr
}
