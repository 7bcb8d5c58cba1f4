package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"supplysync/internal/adapters/extract"
	perr "supplysync/internal/platform/errors"
	catdom "supplysync/internal/services/catalog/domain"
	catrepo "supplysync/internal/services/catalog/repo"
	catsvc "supplysync/internal/services/catalog/service"
	"supplysync/internal/services/crawler"
	diffdom "supplysync/internal/services/diff/domain"
	diffrepo "supplysync/internal/services/diff/repo"
	diffsvc "supplysync/internal/services/diff/service"
	"supplysync/internal/services/imports/domain"
	srcdom "supplysync/internal/services/sources/domain"
	srcrepo "supplysync/internal/services/sources/repo"
	srcsvc "supplysync/internal/services/sources/service"
	stgdom "supplysync/internal/services/staging/domain"
	stgrepo "supplysync/internal/services/staging/repo"
	stgsvc "supplysync/internal/services/staging/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const templatesYAML = `
templates:
  - supplier_id: 3
    base_url: https://www.blanks.example.com
    seeds: [https://www.blanks.example.com/collections/all, /collections/all/]
    detail_path: '^/products/'
  - supplier_id: 4
    base_url: https://www.reels.example.com
    detail_path: '^/p/'
`

// fakeCrawler stages a fixed set of ids and records the job it was given
type fakeCrawler struct {
	staging stgdom.StagingPort
	ids     []string
	err     error
	jobs    []crawler.Job
}

func (f *fakeCrawler) Crawl(ctx context.Context, job crawler.Job) (crawler.Result, error) {
	f.jobs = append(f.jobs, job)
	if f.err != nil {
		return crawler.Result{Visited: 1, Failed: 1}, f.err
	}
	for _, id := range f.ids {
		if _, err := f.staging.UpsertStaging(ctx, job.SupplierID, stgdom.Record{ExternalID: id, Title: "part " + id}); err != nil {
			return crawler.Result{}, err
		}
	}
	return crawler.Result{Visited: len(f.ids), Staged: len(f.ids), Suppressed: 1, StagedIDs: f.ids}, nil
}

type fixture struct {
	svc     *Service
	crawler *fakeCrawler
	sources *srcsvc.Service
	canon   *catrepo.Memory
	engine  *diffsvc.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	set, err := extract.Load(strings.NewReader(templatesYAML))
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	staging := stgsvc.New(stgrepo.NewMemory())
	f := &fixture{
		crawler: &fakeCrawler{staging: staging},
		sources: srcsvc.New(srcrepo.NewMemory(), zerolog.New(io.Discard)),
		canon:   catrepo.NewMemory(),
	}
	f.engine = diffsvc.New(diffrepo.NewMemory(), diffsvc.Deps{
		Staging: staging,
		Catalog: catsvc.New(f.canon),
		Misses:  f.sources,
	}, diffsvc.Config{DeleteAfterMisses: 2})
	f.svc = New(Deps{
		Templates: set,
		Crawler:   f.crawler,
		Sources:   f.sources,
		Engine:    f.engine,
		Runs:      f.engine,
	})
	return f
}

func (f *fixture) run(t *testing.T, id uuid.UUID) diffdom.Run {
	t.Helper()
	r, err := f.engine.GetRun(context.Background(), id)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	return r
}

func TestStartRun_FullPipeline(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	f.crawler.ids = []string{"A", "B"}
	f.canon.Put(catdom.Part{SupplierID: 3, ExternalID: "B", Title: "old B", ContentHash: "stale"})
	f.canon.Put(catdom.Part{SupplierID: 3, ExternalID: "C", Title: "gone", ContentHash: "c"})
	if _, err := f.sources.UpsertSource(ctx, 3, nil, "https://www.blanks.example.com/products/known", srcdom.OriginDiscovered, ""); err != nil {
		t.Fatal(err)
	}

	id, err := f.svc.StartRun(ctx, 3, domain.Options{
		ManualURLs:   []string{"https://www.blanks.example.com/products/new?utm_source=mail", "mailto:x@y.z"},
		IncludeSeeds: true,
		Notes:        "weekly sync",
	})
	if err != nil {
		t.Fatalf("start run: %v", err)
	}

	job := f.crawler.jobs[0]
	want := []string{
		"https://www.blanks.example.com/products/new",
		"https://www.blanks.example.com/collections/all",
		"https://www.blanks.example.com/products/known",
	}
	if strings.Join(job.URLs, ",") != strings.Join(want, ",") {
		t.Fatalf("urls=%v", job.URLs)
	}
	if job.RunID != id.String() {
		t.Fatalf("crawl job not tied to run")
	}

	r := f.run(t, id)
	if r.Status != diffdom.StatusSuccess || r.FinishedAt == nil {
		t.Fatalf("run=%+v", r)
	}
	c := r.Summary.Counts
	if c.Add != 1 || c.Change != 1 || c.Delete != 1 || c.PendingDelete != 1 || c.Staged != 2 || c.Suppressed != 1 {
		t.Fatalf("counts=%+v", c)
	}
	if r.Summary.Type != diffdom.Full || r.Summary.Notes != "weekly sync" {
		t.Fatalf("summary=%+v", r.Summary)
	}

	srcs, _ := f.sources.FetchActiveSources(ctx, 3, nil)
	var manual bool
	for _, s := range srcs {
		if s.URL == want[0] && s.OriginKind == srcdom.OriginManual {
			manual = true
		}
	}
	if !manual {
		t.Fatalf("manual url not registered as manual source: %+v", srcs)
	}
}

func TestStartRun_SkipSuccessful(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.crawler.ids = []string{"A"}

	first, err := f.svc.StartRun(ctx, 3, domain.Options{IncludeSeeds: true})
	if err != nil {
		t.Fatal(err)
	}
	diffs, err := f.engine.ListDiffs(ctx, first, true)
	if err != nil || len(diffs) != 1 {
		t.Fatalf("diffs=%v err=%v", diffs, err)
	}
	if _, err := f.engine.Resolve(ctx, diffs[0].ID, diffdom.Approve, nil); err != nil {
		t.Fatal(err)
	}

	second, err := f.svc.StartRun(ctx, 3, domain.Options{IncludeSeeds: true, SkipSuccessful: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := f.run(t, second).Summary.Counts.Skipped; got != 1 {
		t.Fatalf("skipped=%d", got)
	}
	left, _ := f.engine.ListDiffs(ctx, second, true)
	if len(left) != 0 {
		t.Fatalf("skip-successful rows should not be actionable: %+v", left)
	}
}

func TestStartRun_Failures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("nothing to crawl is rejected before a run exists", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id, err := f.svc.StartRun(ctx, 3, domain.Options{})
		if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) || id != uuid.Nil {
			t.Fatalf("id=%s err=%v", id, err)
		}
	})

	t.Run("no seeds and no sources fails the run", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id, err := f.svc.StartRun(ctx, 4, domain.Options{IncludeSeeds: true})
		if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
			t.Fatalf("err=%v", err)
		}
		if r := f.run(t, id); r.Status != diffdom.StatusFailed || r.Summary.Error == "" {
			t.Fatalf("run=%+v", r)
		}
	})

	t.Run("missing template is a config error", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id, err := f.svc.StartRun(ctx, 99, domain.Options{IncludeSeeds: true})
		if !perr.IsCode(err, perr.ErrorCodeConfig) {
			t.Fatalf("err=%v", err)
		}
		if f.run(t, id).Status != diffdom.StatusFailed {
			t.Fatalf("run not failed")
		}
	})

	t.Run("crawl error fails the run and keeps counts", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.crawler.err = errors.New("boom")
		id, err := f.svc.StartRun(ctx, 3, domain.Options{IncludeSeeds: true})
		if err == nil {
			t.Fatalf("expected error")
		}
		r := f.run(t, id)
		if r.Status != diffdom.StatusFailed || r.Summary.Counts.FailedURLs != 1 || !strings.Contains(r.Summary.Error, "boom") {
			t.Fatalf("run=%+v", r)
		}
	})
}
