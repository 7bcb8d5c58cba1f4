// Package service orchestrates a full import run: register, crawl, diff, finish
package service

import (
	"context"
	"time"

	"supplysync/internal/adapters/extract"
	"supplysync/internal/core/urlnorm"
	perr "supplysync/internal/platform/errors"
	"supplysync/internal/platform/logger"
	"supplysync/internal/platform/metrics"
	"supplysync/internal/services/crawler"
	diffdom "supplysync/internal/services/diff/domain"
	"supplysync/internal/services/imports/domain"
	srcdom "supplysync/internal/services/sources/domain"

	"github.com/google/uuid"
)

// Templates resolves a supplier's extraction template, *extract.Set satisfies it
type Templates interface {
	For(supplierID int64, templateID *int64) (*extract.Template, error)
}

// Crawler is the subset of *crawler.Crawler a run needs
type Crawler interface {
	Crawl(ctx context.Context, job crawler.Job) (crawler.Result, error)
}

// Deps are the collaborators of a run
type Deps struct {
	Templates Templates
	Crawler   Crawler
	Sources   srcdom.RegistryPort
	Engine    diffdom.EnginePort
	Runs      diffdom.RunPort
	Metrics   *metrics.Metrics
}

// Service implements domain.RunnerPort
type Service struct {
	deps Deps
	now  func() time.Time
}

// New constructs the import orchestrator
func New(deps Deps) *Service { return &Service{deps: deps, now: time.Now} }

// StartRun runs one full import synchronously and returns its run id.
// Once the run row exists every failure finishes it as failed; the id is
// returned alongside the error so callers can inspect the summary
func (s *Service) StartRun(ctx context.Context, supplierID int64, o domain.Options) (uuid.UUID, error) {
	if supplierID <= 0 {
		return uuid.Nil, perr.InvalidArgf("supplier id must be positive")
	}
	if len(o.ManualURLs) == 0 && !o.IncludeSeeds {
		return uuid.Nil, perr.InvalidArgf("run needs manual urls or includeSeeds")
	}

	run, err := s.deps.Runs.CreateRun(ctx, supplierID, diffdom.Full, o, o.Notes)
	if err != nil {
		return uuid.Nil, err
	}
	ctx = logger.WithRun(ctx, supplierID, run.ID.String())
	started := s.now()

	counts, err := s.execute(ctx, supplierID, run.ID, o)
	status := diffdom.StatusSuccess
	sum := diffdom.Summary{Type: diffdom.Full, Counts: counts, Options: o, Notes: o.Notes}
	if err != nil {
		status = diffdom.StatusFailed
		sum.Error = err.Error()
		logger.C(ctx).Error().Err(err).Msg("import run failed")
	}
	// the run row is finished even when the caller went away
	if _, ferr := s.deps.Runs.FinishRun(context.WithoutCancel(ctx), run.ID, status, sum); ferr != nil {
		logger.C(ctx).Error().Err(ferr).Msg("import run finish failed")
		if err == nil {
			err = ferr
		}
	}
	s.deps.Metrics.RunFinished(string(diffdom.Full), string(status), s.now().Sub(started))
	return run.ID, err
}

func (s *Service) execute(ctx context.Context, supplierID int64, runID uuid.UUID, o domain.Options) (diffdom.Counts, error) {
	var counts diffdom.Counts
	log := logger.C(ctx)

	tpl, err := s.deps.Templates.For(supplierID, o.TemplateKey)
	if err != nil {
		return counts, err
	}

	urls := newURLSet()
	for _, raw := range o.ManualURLs {
		if !urls.add(raw, tpl.BaseURL) {
			log.Warn().Str("url", raw).Msg("manual url skipped")
			continue
		}
		out, err := s.deps.Sources.UpsertSource(ctx, supplierID, tpl.TemplateID, raw, srcdom.OriginManual, o.Notes)
		if err != nil {
			log.Warn().Err(err).Str("url", raw).Str("strategy", string(out.Strategy)).Msg("manual source not registered")
		}
	}
	if o.IncludeSeeds {
		for _, seed := range tpl.Seeds {
			urls.add(seed, tpl.BaseURL)
		}
		active, err := s.deps.Sources.FetchActiveSources(ctx, supplierID, tpl.TemplateID)
		if err != nil {
			return counts, err
		}
		for _, src := range active {
			urls.add(src.URL, tpl.BaseURL)
		}
	}
	if len(urls.list) == 0 {
		return counts, perr.InvalidArgf("supplier %d has no urls to crawl", supplierID)
	}

	res, err := s.deps.Crawler.Crawl(ctx, crawler.Job{
		RunID:      runID.String(),
		SupplierID: supplierID,
		Template:   tpl,
		URLs:       urls.list,
	})
	counts.Staged, counts.Suppressed, counts.FailedURLs = res.Staged, res.Suppressed, res.Failed
	if err != nil {
		return counts, err
	}

	diffs, err := s.deps.Engine.Run(ctx, supplierID, runID, diffdom.Full)
	if err != nil {
		return counts, err
	}
	tally := s.deps.Engine.Tally(diffs)
	tally.Staged, tally.Suppressed, tally.FailedURLs = counts.Staged, counts.Suppressed, counts.FailedURLs
	counts = tally

	if o.SkipSuccessful {
		n, err := s.deps.Engine.MarkSkipSuccessful(ctx, supplierID, runID)
		if err != nil {
			return counts, err
		}
		counts.Skipped = n
	}
	return counts, nil
}

// urlSet keeps normalized urls in first-seen order
type urlSet struct {
	seen map[string]struct{}
	list []string
}

func newURLSet() *urlSet { return &urlSet{seen: map[string]struct{}{}} }

func (u *urlSet) add(raw, base string) bool {
	n, ok := urlnorm.Normalize(raw, base)
	if !ok {
		return false
	}
	if _, dup := u.seen[n]; !dup {
		u.seen[n] = struct{}{}
		u.list = append(u.list, n)
	}
	return true
}
