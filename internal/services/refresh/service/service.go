// Package service implements the authenticated price and availability refresh
package service

import (
	"context"
	"net/url"
	"time"

	"supplysync/internal/adapters/creds"
	"supplysync/internal/adapters/extract"
	"supplysync/internal/adapters/fetch"
	"supplysync/internal/adapters/session"
	perr "supplysync/internal/platform/errors"
	"supplysync/internal/platform/logger"
	"supplysync/internal/platform/metrics"
	diffdom "supplysync/internal/services/diff/domain"
	stgdom "supplysync/internal/services/staging/domain"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Templates resolves a supplier's extraction template, *extract.Set satisfies it
type Templates interface {
	For(supplierID int64, templateID *int64) (*extract.Template, error)
}

// Deps are the collaborators of a refresh
type Deps struct {
	Templates Templates
	Sessions  session.Store
	Creds     creds.Source
	Staging   stgdom.StagingPort
	Engine    diffdom.EnginePort
	Runs      diffdom.RunPort
	Metrics   *metrics.Metrics
	// Fetch options appended when a refresh builds its fetcher
	Fetch []fetch.Option
}

// Config tunes the refresh fetches
type Config struct {
	Fetch             fetch.Options
	RequestsPerMinute int
}

// Job implements domain.JobPort
type Job struct {
	deps Deps
	cfg  Config
	now  func() time.Time
}

// New constructs a refresh job
func New(deps Deps, cfg Config) *Job {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 30
	}
	return &Job{deps: deps, cfg: cfg, now: time.Now}
}

// outcome counts one refresh pass over staged urls
type outcome struct {
	updated int
	failed  int
}

// Run refreshes prices of every staged record of the supplier from its source
// page and writes a price-only diff run. Credential and template problems are
// config errors; staging is untouched when authentication fails
func (j *Job) Run(ctx context.Context, supplierID int64) (uuid.UUID, error) {
	if supplierID <= 0 {
		return uuid.Nil, perr.InvalidArgf("supplier id must be positive")
	}
	run, err := j.deps.Runs.CreateRun(ctx, supplierID, diffdom.PriceAvail, nil, "price refresh")
	if err != nil {
		return uuid.Nil, err
	}
	ctx = logger.WithRun(ctx, supplierID, run.ID.String())
	started := j.now()

	counts, err := j.execute(ctx, supplierID, run.ID)
	status := diffdom.StatusSuccess
	sum := diffdom.Summary{Type: diffdom.PriceAvail, Counts: counts}
	if err != nil {
		status = diffdom.StatusFailed
		sum.Error = err.Error()
		logger.C(ctx).Error().Err(err).Msg("price refresh failed")
	}
	if _, ferr := j.deps.Runs.FinishRun(context.WithoutCancel(ctx), run.ID, status, sum); ferr != nil {
		logger.C(ctx).Error().Err(ferr).Msg("price refresh finish failed")
		if err == nil {
			err = ferr
		}
	}
	j.deps.Metrics.RunFinished(string(diffdom.PriceAvail), string(status), j.now().Sub(started))
	return run.ID, err
}

func (j *Job) execute(ctx context.Context, supplierID int64, runID uuid.UUID) (diffdom.Counts, error) {
	var counts diffdom.Counts

	tpl, err := j.deps.Templates.For(supplierID, nil)
	if err != nil {
		return counts, err
	}
	lim := rate.NewLimiter(rate.Every(time.Minute/time.Duration(j.cfg.RequestsPerMinute)), 1)
	f := fetch.New(j.cfg.Fetch, append([]fetch.Option{fetch.WithLimiter(lim)}, j.deps.Fetch...)...)
	restored, err := j.authenticate(ctx, supplierID, tpl, f)
	if err != nil {
		return counts, err
	}

	res, err := j.refresh(ctx, supplierID, tpl, f, restored)
	counts.Staged, counts.FailedURLs = res.updated, res.failed
	if err != nil {
		return counts, err
	}

	diffs, err := j.deps.Engine.Run(ctx, supplierID, runID, diffdom.PriceAvail)
	if err != nil {
		return counts, err
	}
	tally := j.deps.Engine.Tally(diffs)
	tally.Staged, tally.FailedURLs = counts.Staged, counts.FailedURLs
	return tally, nil
}

// authenticate restores a cached session or logs in with the supplier's
// credentials and caches the resulting cookies. restored reports a session
// taken from the cache. Templates without a login url are refreshed anonymously
func (j *Job) authenticate(ctx context.Context, supplierID int64, tpl *extract.Template, f *fetch.Fetcher) (restored bool, err error) {
	if tpl.Login.URL == "" {
		return false, nil
	}
	if j.deps.Sessions != nil {
		cookies, ok, err := j.deps.Sessions.Load(ctx, supplierID)
		switch {
		case err != nil:
			logger.C(ctx).Warn().Err(err).Msg("session cache unavailable, logging in")
		case ok && len(cookies) > 0:
			logger.C(ctx).Debug().Int("cookies", len(cookies)).Msg("session restored")
			return true, f.SetCookies(tpl.BaseURL, cookies)
		}
	}
	return false, j.login(ctx, supplierID, tpl, f)
}

func loginURL(tpl *extract.Template) (*url.URL, error) {
	base, err := url.Parse(tpl.BaseURL)
	if err != nil {
		return nil, perr.Configf("template %s: bad base_url", tpl.Key())
	}
	u, err := base.Parse(tpl.Login.URL)
	if err != nil {
		return nil, perr.Configf("template %s: bad login url", tpl.Key())
	}
	return u, nil
}

// login posts the supplier's credentials and caches the session cookies
func (j *Job) login(ctx context.Context, supplierID int64, tpl *extract.Template, f *fetch.Fetcher) error {
	log := logger.C(ctx)
	if j.deps.Creds == nil {
		return perr.Configf("no credential source configured for supplier %d", supplierID)
	}
	c, err := j.deps.Creds.Get(ctx, supplierID)
	if err != nil {
		return err
	}
	target, err := loginURL(tpl)
	if err != nil {
		return err
	}
	form := url.Values{}
	for k, v := range tpl.Login.Extra {
		form.Set(k, v)
	}
	for k, v := range c.Extra {
		form.Set(k, v)
	}
	form.Set(tpl.Login.UsernameField, c.Username)
	form.Set(tpl.Login.PasswordField, c.Password)

	if _, err := f.PostForm(ctx, target.String(), form); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "supplier %d login", supplierID)
	}
	cookies := f.Cookies(tpl.BaseURL)
	if len(cookies) == 0 {
		return perr.Unauthorizedf("supplier %d login returned no session cookie", supplierID)
	}
	if j.deps.Sessions != nil {
		if err := j.deps.Sessions.Save(ctx, supplierID, cookies); err != nil {
			log.Warn().Err(err).Msg("session cache save failed")
		}
	}
	log.Info().Int("cookies", len(cookies)).Msg("supplier login ok")
	return nil
}

// sessionRejected reports a page answered as if nobody were logged in: a 401
// or 403, or a redirect that ended on the login page
func sessionRejected(page *fetch.Page, err error, login *url.URL) bool {
	if err != nil {
		return perr.IsCode(err, perr.ErrorCodeUnauthorized) || perr.IsCode(err, perr.ErrorCodeForbidden)
	}
	u, uerr := url.Parse(page.URL)
	return uerr == nil && login != nil && u.Path == login.Path
}

// refresh fetches each distinct source url of the staged records once and
// writes whatever prices it finds. Per url failures are counted and skipped.
// A restored session the supplier rejects is dropped and replaced by one
// fresh login, then the page is fetched again
func (j *Job) refresh(ctx context.Context, supplierID int64, tpl *extract.Template, f *fetch.Fetcher, restored bool) (outcome, error) {
	var out outcome
	log := logger.C(ctx)

	recs, err := j.deps.Staging.ListStaging(ctx, supplierID)
	if err != nil {
		return out, err
	}
	byURL := map[string][]string{}
	var order []string
	for _, r := range recs {
		if r.SourceURL == "" {
			continue
		}
		if _, ok := byURL[r.SourceURL]; !ok {
			order = append(order, r.SourceURL)
		}
		byURL[r.SourceURL] = append(byURL[r.SourceURL], r.ExternalID)
	}

	var login *url.URL
	if restored {
		if login, err = loginURL(tpl); err != nil {
			return out, err
		}
	}
	verified := !restored

	pol := fetch.RequestPolicy{Origin: tpl.BaseURL, BlockAssets: true}
	for _, u := range order {
		page, err := f.Load(ctx, u, fetch.LoadOptions{Policy: pol})
		if !verified && sessionRejected(page, err, login) {
			log.Info().Str("url", u).Msg("cached session rejected, logging in again")
			if derr := j.deps.Sessions.Drop(ctx, supplierID); derr != nil {
				log.Warn().Err(derr).Msg("session cache drop failed")
			}
			if err := j.login(ctx, supplierID, tpl, f); err != nil {
				return out, err
			}
			verified = true
			page, err = f.Load(ctx, u, fetch.LoadOptions{Policy: pol})
		}
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			log.Warn().Err(err).Str("url", u).Msg("refresh page failed")
			out.failed++
			continue
		}
		verified = true
		if page.Doc == nil {
			out.failed++
			continue
		}
		for id, pa := range prices(tpl, page, byURL[u]) {
			if pa.Empty() {
				continue
			}
			err := j.deps.Staging.UpdatePriceAvail(ctx, supplierID, id, stgdom.PriceAvail{
				PriceMsrp:      pa.PriceMsrp,
				PriceWholesale: pa.PriceWholesale,
				Availability:   pa.Availability,
			})
			if err != nil {
				log.Warn().Err(err).Str("external_id", id).Msg("price update failed")
				continue
			}
			out.updated++
		}
	}
	log.Info().Int("urls", len(order)).Int("updated", out.updated).Int("failed", out.failed).Msg("prices refreshed")
	return out, nil
}

// prices maps each wanted id to what the page says about it. Series pages are
// read row by row; any other page prices all of its ids alike
func prices(tpl *extract.Template, page *fetch.Page, ids []string) map[string]extract.PriceAvail {
	out := make(map[string]extract.PriceAvail, len(ids))
	if tpl.IsSeries(page.URL) {
		rows := map[string]extract.PriceAvail{}
		for _, r := range extract.SeriesRows(page.Doc, tpl, page.URL) {
			if r.Header || r.ExternalID == "" {
				continue
			}
			rows[r.ExternalID] = extract.PriceAvail{PriceMsrp: r.PriceMsrp, PriceWholesale: r.PriceWholesale, Availability: r.Availability}
		}
		for _, id := range ids {
			if pa, ok := rows[id]; ok {
				out[id] = pa
			}
		}
		return out
	}
	pa := extract.Prices(page.Doc, tpl)
	for _, id := range ids {
		out[id] = pa
	}
	return out
}
