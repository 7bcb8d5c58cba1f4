// Package crawler walks a supplier site from its seeds, discovers product
// pages and stages every product record it extracts
package crawler

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"supplysync/internal/adapters/events"
	"supplysync/internal/adapters/extract"
	"supplysync/internal/adapters/fetch"
	"supplysync/internal/adapters/sitemap"
	"supplysync/internal/core/classify"
	perr "supplysync/internal/platform/errors"
	"supplysync/internal/platform/logger"
	"supplysync/internal/platform/metrics"
	sourcesdom "supplysync/internal/services/sources/domain"
	stagingdom "supplysync/internal/services/staging/domain"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Deps are the collaborators a crawl writes to
type Deps struct {
	Staging stagingdom.StagingPort
	Sources sourcesdom.RegistryPort
	Events  events.Sink
	Metrics *metrics.Metrics
	// Fetch options appended when a crawl builds its fetcher, tests swap the client here
	Fetch []fetch.Option
}

// Job is one crawl of one supplier site
type Job struct {
	RunID      string
	SupplierID int64
	Template   *extract.Template
	URLs       []string
}

// Result counts what a crawl did
type Result struct {
	Visited    int
	Staged     int
	Suppressed int
	Failed     int
	Discovered int
	// StagedIDs are the external ids staged by this crawl, in staging order
	StagedIDs []string
}

// Crawler is safe for concurrent crawls; each Crawl gets its own fetcher and limiter
type Crawler struct {
	deps  Deps
	opt   Options
	sleep func(ctx context.Context, d time.Duration) error
}

// New builds a Crawler
func New(deps Deps, opt Options) *Crawler {
	if deps.Events == nil {
		deps.Events = events.Nop{}
	}
	return &Crawler{deps: deps, opt: opt.normalized(), sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// crawl is the mutable state of one Crawl call
type crawl struct {
	job      Job
	fetcher  *fetch.Fetcher
	frontier *frontier
	sitemap  sync.Once

	mu  sync.Mutex
	res Result
	ids map[string]struct{}
}

func (c *crawl) count(fn func(r *Result)) {
	c.mu.Lock()
	fn(&c.res)
	c.mu.Unlock()
}

// claim reports whether id is staged for the first time in this crawl
func (c *crawl) claim(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.ids[id]; dup {
		return false
	}
	c.ids[id] = struct{}{}
	return true
}

// Crawl fetches the job's urls and everything discovered from them.
// Per url failures are counted and never stop the crawl; only a cancelled
// context or a missing template fails it
func (cr *Crawler) Crawl(ctx context.Context, job Job) (Result, error) {
	if job.Template == nil {
		return Result{}, perr.Configf("crawl of supplier %d has no extraction template", job.SupplierID)
	}
	log := logger.C(ctx)
	p := cr.opt.Politeness

	lim := rate.NewLimiter(rate.Every(time.Minute/time.Duration(p.RequestsPerMinute)), 1)
	opts := append([]fetch.Option{fetch.WithLimiter(lim)}, cr.deps.Fetch...)
	c := &crawl{
		job:      job,
		fetcher:  fetch.New(cr.opt.Fetch, opts...),
		frontier: newFrontier(cr.opt.MaxPages),
		ids:      map[string]struct{}{},
	}
	for _, u := range job.URLs {
		c.frontier.push(u, job.Template.BaseURL, kindOf(job.Template, u))
	}
	g, gctx := errgroup.WithContext(ctx)
	stop := context.AfterFunc(gctx, c.frontier.close)
	defer stop()

	g.SetLimit(p.MaxConcurrency)
	for range p.MaxConcurrency {
		g.Go(func() error { return cr.worker(gctx, c) })
	}
	err := g.Wait()

	if ferr := cr.deps.Events.Flush(context.WithoutCancel(ctx)); ferr != nil {
		log.Warn().Err(ferr).Msg("crawl events flush failed")
	}
	c.res.Discovered = c.frontier.size()
	log.Info().
		Int("visited", c.res.Visited).
		Int("staged", c.res.Staged).
		Int("suppressed", c.res.Suppressed).
		Int("failed", c.res.Failed).
		Int("discovered", c.res.Discovered).
		Msg("crawl finished")
	if err != nil {
		return c.res, err
	}
	return c.res, ctx.Err()
}

// worker drains the frontier until it is empty, pausing with jitter between detail fetches
func (cr *Crawler) worker(ctx context.Context, c *crawl) error {
	lastDetail := false
	for {
		it, ok := c.frontier.next()
		if !ok {
			return ctx.Err()
		}
		if it.kind == KindDetail && lastDetail {
			if err := cr.sleep(ctx, cr.jitter()); err != nil {
				c.frontier.done()
				return err
			}
		}
		lastDetail = it.kind == KindDetail
		err := cr.visit(ctx, c, it)
		c.frontier.done()
		if err != nil {
			return err
		}
	}
}

func (cr *Crawler) jitter() time.Duration {
	p := cr.opt.Politeness
	span := p.JitterMax - p.JitterMin
	if span <= 0 {
		return p.JitterMin
	}
	return p.JitterMin + rand.N(span)
}

// visit fetches one url, queues what it links to and stages what it holds.
// Only context errors are returned
func (cr *Crawler) visit(ctx context.Context, c *crawl, it item) error {
	log := logger.C(ctx)
	t := c.job.Template
	started := time.Now()

	pol := fetch.RequestPolicy{Origin: t.BaseURL}
	if it.kind != KindDetail {
		pol.BlockAssets = cr.opt.Politeness.BlockAssetsOnListPages
	}
	page, err := c.fetcher.Load(ctx, it.url, fetch.LoadOptions{Policy: pol, Capture: t.SearchPattern()})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn().Err(err).Str("url", it.url).Str("kind", string(it.kind)).Msg("crawl page failed")
		c.count(func(r *Result) { r.Failed++ })
		cr.deps.Metrics.CrawlPage(string(it.kind), "failed")
		cr.emit(ctx, c, events.Event{URL: it.url, Kind: string(it.kind), Outcome: "failed", Reason: trimErr(err), Elapsed: time.Since(started)})
		return nil
	}
	c.count(func(r *Result) { r.Visited++ })
	cr.deps.Metrics.CrawlPage(string(it.kind), "ok")
	cr.emit(ctx, c, events.Event{URL: page.URL, Kind: string(it.kind), Outcome: "ok", Status: page.Status, Elapsed: time.Since(started)})

	if page.Doc == nil {
		return nil
	}

	links, productAnchors := discover(t, page)
	for _, l := range links {
		if _, fresh := c.frontier.push(l.url, page.URL, l.kind); fresh {
			cr.emit(ctx, c, events.Event{URL: l.url, Kind: string(l.kind), Outcome: "discovered"})
		}
	}
	if (it.kind == KindList || it.kind == KindSeed) && productAnchors < minProductAnchors {
		c.sitemap.Do(func() { cr.sitemapFallback(ctx, c, page.URL) })
	}

	cr.extract(ctx, c, page, it.kind)
	return nil
}

// sitemapFallback queues product urls listed in the site's sitemap
func (cr *Crawler) sitemapFallback(ctx context.Context, c *crawl, pageURL string) {
	t := c.job.Template
	locs, err := sitemap.New(c.fetcher, cr.opt.SitemapCap).Read(ctx, pageURL, t.IsDetail)
	if err != nil {
		logger.C(ctx).Debug().Err(err).Str("url", pageURL).Msg("sitemap fallback unavailable")
		return
	}
	for _, u := range locs {
		if _, fresh := c.frontier.push(u, pageURL, KindDetail); fresh {
			cr.emit(ctx, c, events.Event{URL: u, Kind: "sitemap", Outcome: "discovered"})
		}
	}
	logger.C(ctx).Debug().Int("urls", len(locs)).Str("url", pageURL).Msg("sitemap fallback")
}

// extract runs the series extractor on series pages and the single record
// extractor on detail pages, skipping the latter when series rows were found
func (cr *Crawler) extract(ctx context.Context, c *crawl, page *fetch.Page, kind Kind) {
	t := c.job.Template
	series := t.IsSeries(page.URL)
	if series {
		rows := extract.SeriesRows(page.Doc, t, page.URL)
		if len(rows) > 0 {
			staged := 0
			for _, rec := range rows {
				if cr.stage(ctx, c, page.URL, rec, true) {
					staged++
				}
			}
			if staged > 0 {
				cr.register(ctx, c, page.URL, "")
			}
			return
		}
	}
	if kind != KindDetail && !t.IsDetail(page.URL) {
		return
	}
	rec, err := extract.Single(page.Doc, t, page.URL)
	if err != nil {
		logger.C(ctx).Info().Err(err).Str("url", page.URL).Msg("extraction dropped page")
		cr.emit(ctx, c, events.Event{URL: page.URL, Kind: string(KindDetail), Outcome: "suppressed", Reason: "extraction"})
		return
	}
	if cr.stage(ctx, c, page.URL, rec, series) {
		cr.register(ctx, c, page.URL, strings.TrimSpace(rec.ExternalID))
	}
}

// stage classifies rec and writes it to staging, reporting whether it was staged
func (cr *Crawler) stage(ctx context.Context, c *crawl, pageURL string, rec extract.Record, series bool) bool {
	log := logger.C(ctx)
	d := classify.ClassifyRecord(pageURL, classify.Record{ExternalID: rec.ExternalID, Header: rec.Header}, series)
	if !d.Stage {
		log.Info().
			Str("url", pageURL).
			Str("external_id", rec.ExternalID).
			Str("title", rec.Title).
			Str("reason", d.Reason).
			Msg("record suppressed")
		c.count(func(r *Result) { r.Suppressed++ })
		cr.deps.Metrics.Suppressed(d.Reason)
		cr.emit(ctx, c, events.Event{URL: pageURL, Kind: kindLabel(series), Outcome: "suppressed", Reason: d.Reason})
		return false
	}
	id := strings.TrimSpace(rec.ExternalID)
	if !c.claim(id) {
		return false
	}
	_, err := cr.deps.Staging.UpsertStaging(ctx, c.job.SupplierID, stagingdom.Record{
		ExternalID:     id,
		Title:          rec.Title,
		PartType:       rec.PartType,
		Description:    rec.Description,
		Images:         rec.Images,
		RawSpecs:       rec.Specs,
		PriceMsrp:      rec.PriceMsrp,
		PriceWholesale: rec.PriceWholesale,
		Availability:   rec.Availability,
		SourceURL:      rec.SourceURL,
	})
	if err != nil {
		log.Warn().Err(err).Str("external_id", id).Str("url", pageURL).Msg("staging upsert failed")
		return false
	}
	c.count(func(r *Result) {
		r.Staged++
		r.StagedIDs = append(r.StagedIDs, id)
	})
	cr.deps.Metrics.Staged()
	cr.emit(ctx, c, events.Event{URL: pageURL, Kind: kindLabel(series), Outcome: "staged"})
	return true
}

// register records pageURL as a discovered source and links the external id
// of a single product page back to it. Failures only cost the registration
func (cr *Crawler) register(ctx context.Context, c *crawl, pageURL, externalID string) {
	if cr.deps.Sources == nil {
		return
	}
	log := logger.C(ctx)
	t := c.job.Template
	if _, err := cr.deps.Sources.UpsertSource(ctx, c.job.SupplierID, t.TemplateID, pageURL, sourcesdom.OriginDiscovered, ""); err != nil {
		log.Debug().Err(err).Str("url", pageURL).Msg("source registration skipped")
		return
	}
	if externalID == "" {
		return
	}
	if err := cr.deps.Sources.LinkExternalID(ctx, c.job.SupplierID, pageURL, externalID); err != nil {
		log.Debug().Err(err).Str("url", pageURL).Str("external_id", externalID).Msg("source link skipped")
	}
}

func (cr *Crawler) emit(ctx context.Context, c *crawl, e events.Event) {
	e.RunID = c.job.RunID
	e.SupplierID = c.job.SupplierID
	cr.deps.Events.Emit(ctx, e)
}

func kindLabel(series bool) string {
	if series {
		return string(KindSeries)
	}
	return string(KindDetail)
}

func trimErr(err error) string {
	s := err.Error()
	if len(s) > 240 {
		return s[:240]
	}
	return s
}
