// Package fetch loads supplier pages over HTTP with a per-site cookie jar,
// a same-site request policy and capture of the page's data endpoints
package fetch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"supplysync/internal/core/urlnorm"
	perr "supplysync/internal/platform/errors"
	"supplysync/internal/platform/logger"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

const (
	defaultUA          = "supplysync-crawler/1.0"
	defaultNavTimeout  = 60 * time.Second
	defaultIdleTimeout = 5 * time.Second
	defaultMaxBody     = 8 << 20
	maxCaptures        = 8
)

// Options configures a Fetcher
type Options struct {
	UserAgent   string
	NavTimeout  time.Duration
	IdleTimeout time.Duration
	MaxBody     int64
}

// Captured is a data response observed while loading a page
type Captured struct {
	URL         string
	ContentType string
	Body        []byte
}

// JSON reports whether the captured body looks like JSON
func (c Captured) JSON() bool {
	if strings.Contains(c.ContentType, "json") {
		return true
	}
	b := bytes.TrimSpace(c.Body)
	return len(b) > 0 && (b[0] == '{' || b[0] == '[')
}

// Page is a loaded document
type Page struct {
	URL         string
	Status      int
	ContentType string
	Body        []byte
	Doc         *goquery.Document
	Captured    []Captured
}

// LoadOptions tunes one page load
type LoadOptions struct {
	Policy RequestPolicy
	// Capture selects which data endpoints referenced by the page get requested
	Capture *regexp.Regexp
}

// Fetcher is safe for concurrent use
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	opt     Options
	log     logger.Logger
}

// Option mutates a Fetcher at construction
type Option func(*Fetcher)

// WithClient swaps the http client, tests use it with httptest servers
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		cp := *c
		if cp.Jar == nil {
			cp.Jar = NewJar()
		}
		f.client = &cp
	}
}

// WithLimiter makes every request wait for a token of l: navigations,
// captured endpoints, sitemap reads and form posts alike
func WithLimiter(l *rate.Limiter) Option {
	return func(f *Fetcher) { f.limiter = l }
}

// NewJar returns a cookie jar keyed on registrable domains
func NewJar() http.CookieJar {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return jar
}

// New builds a Fetcher with its own cookie jar
func New(o Options, opts ...Option) *Fetcher {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.NavTimeout <= 0 {
		o.NavTimeout = defaultNavTimeout
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = defaultIdleTimeout
	}
	if o.MaxBody <= 0 {
		o.MaxBody = defaultMaxBody
	}
	f := &Fetcher{
		client: &http.Client{Jar: NewJar()},
		opt:    o,
		log:    *logger.Named("fetch"),
	}
	for _, fn := range opts {
		fn(f)
	}
	return f
}

// Jar exposes the cookie jar so sessions can be saved and restored
func (f *Fetcher) Jar() http.CookieJar { return f.client.Jar }

// SetCookies seeds the jar for base
func (f *Fetcher) SetCookies(base string, cookies []*http.Cookie) error {
	u, err := url.Parse(base)
	if err != nil {
		return perr.InvalidArgf("bad cookie base %q", base)
	}
	if f.client.Jar == nil {
		f.client.Jar = NewJar()
	}
	f.client.Jar.SetCookies(u, cookies)
	return nil
}

// Cookies returns the jar's cookies for base
func (f *Fetcher) Cookies(base string) []*http.Cookie {
	u, err := url.Parse(base)
	if err != nil || f.client.Jar == nil {
		return nil
	}
	return f.client.Jar.Cookies(u)
}

// Load navigates to target under the navigation timeout, then requests the
// page's data endpoints matching lo.Capture and keeps what answers within the idle window
func (f *Fetcher) Load(ctx context.Context, target string, lo LoadOptions) (*Page, error) {
	if lo.Policy.Origin == "" {
		lo.Policy.Origin = target
	}
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	navCtx, cancel := context.WithTimeout(ctx, f.opt.NavTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(navCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, perr.InvalidArgf("bad url %q", target)
	}
	p, err := f.do(req, lo.Policy)
	if err != nil {
		return nil, err
	}
	if lo.Capture != nil && p.Doc != nil {
		p.Captured = f.capture(ctx, p, lo)
	}
	return p, nil
}

// Get fetches target and returns the raw body, used for sitemaps
func (f *Fetcher) Get(ctx context.Context, target string) ([]byte, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	navCtx, cancel := context.WithTimeout(ctx, f.opt.NavTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(navCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, perr.InvalidArgf("bad url %q", target)
	}
	p, err := f.do(req, RequestPolicy{Origin: target})
	if err != nil {
		return nil, err
	}
	return p.Body, nil
}

// PostForm submits a form, used for supplier logins. Cookies land in the jar
func (f *Fetcher) PostForm(ctx context.Context, target string, form url.Values) (*Page, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	navCtx, cancel := context.WithTimeout(ctx, f.opt.NavTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(navCtx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, perr.InvalidArgf("bad url %q", target)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return f.do(req, RequestPolicy{Origin: target})
}

// wait blocks for the limiter; a wait that cannot finish before ctx ends fails at once
func (f *Fetcher) wait(ctx context.Context) error {
	if f.limiter == nil {
		return nil
	}
	if err := f.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return perr.Wrapf(err, perr.ErrorCodeTooManyRequests, "request budget exhausted")
	}
	return nil
}

func (f *Fetcher) do(req *http.Request, pol RequestPolicy) (*Page, error) {
	target := req.URL.String()
	if !pol.Allow(Document, target) {
		return nil, perr.Forbiddenf("request to %s refused by policy", target)
	}
	req.Header.Set("User-Agent", f.opt.UserAgent)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	}

	c := *f.client
	c.CheckRedirect = func(r *http.Request, via []*http.Request) error {
		if len(via) >= 10 {
			return errors.New("too many redirects")
		}
		if !pol.Allow(Document, r.URL.String()) {
			return perr.Forbiddenf("redirect to %s refused by policy", r.URL.Host)
		}
		return nil
	}

	resp, err := c.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "navigation timeout %s", target)
		}
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "fetch %s", target)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.opt.MaxBody))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "read %s", target)
	}
	if resp.StatusCode >= 400 {
		code := perr.ErrorCodeUnavailable
		switch resp.StatusCode {
		case http.StatusNotFound, http.StatusGone:
			code = perr.ErrorCodeNotFound
		case http.StatusUnauthorized:
			code = perr.ErrorCodeUnauthorized
		case http.StatusForbidden:
			code = perr.ErrorCodeForbidden
		}
		return nil, perr.Newf(code, "fetch %s status %d", target, resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	p := &Page{URL: resp.Request.URL.String(), Status: resp.StatusCode, ContentType: ct, Body: body}
	if ct == "" || strings.Contains(ct, "html") {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err == nil {
			doc.Url = resp.Request.URL
			p.Doc = doc
		}
	}
	return p, nil
}

// endpointRe finds quoted url-ish strings in inline scripts
var endpointRe = regexp.MustCompile(`["'](/[^"'\s<>]+|https?://[^"'\s<>]+)["']`)

// Endpoints lists same-site urls referenced by the page that match re.
// Attributes and inline script literals are both scanned
func Endpoints(p *Page, re *regexp.Regexp, pol RequestPolicy) []string {
	if p == nil || p.Doc == nil || re == nil {
		return nil
	}
	seen := map[string]struct{}{}
	var out []string
	add := func(raw string) {
		u, ok := urlnorm.Normalize(raw, p.URL)
		if !ok || !re.MatchString(u) || !pol.Allow(XHR, u) {
			return
		}
		if _, dup := seen[u]; dup {
			return
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	p.Doc.Find("[data-url],[data-src],[data-endpoint],form[action]").Each(func(_ int, s *goquery.Selection) {
		for _, a := range []string{"data-url", "data-src", "data-endpoint", "action"} {
			if v, ok := s.Attr(a); ok {
				add(v)
			}
		}
	})
	p.Doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		for _, m := range endpointRe.FindAllStringSubmatch(s.Text(), -1) {
			add(m[1])
		}
	})
	if len(out) > maxCaptures {
		out = out[:maxCaptures]
	}
	return out
}

// capture requests the page's data endpoints in parallel and keeps what
// arrives before the idle window closes
func (f *Fetcher) capture(ctx context.Context, p *Page, lo LoadOptions) []Captured {
	eps := Endpoints(p, lo.Capture, lo.Policy)
	if len(eps) == 0 {
		return nil
	}
	idleCtx, cancel := context.WithTimeout(ctx, f.opt.IdleTimeout)
	defer cancel()

	var (
		mu  sync.Mutex
		out []Captured
		wg  sync.WaitGroup
	)
	for _, ep := range eps {
		wg.Add(1)
		go func(ep string) {
			defer wg.Done()
			if err := f.wait(idleCtx); err != nil {
				f.log.Debug().Err(err).Str("endpoint", ep).Msg("capture dropped")
				return
			}
			req, err := http.NewRequestWithContext(idleCtx, http.MethodGet, ep, nil)
			if err != nil {
				return
			}
			req.Header.Set("X-Requested-With", "XMLHttpRequest")
			req.Header.Set("Accept", "application/json, text/html;q=0.9")
			req.Header.Set("Referer", p.URL)
			cp, err := f.do(req, lo.Policy)
			if err != nil {
				f.log.Debug().Err(err).Str("endpoint", ep).Msg("capture dropped")
				return
			}
			mu.Lock()
			out = append(out, Captured{URL: cp.URL, ContentType: cp.ContentType, Body: cp.Body})
			mu.Unlock()
		}(ep)
	}
	wg.Wait()
	if idleCtx.Err() != nil {
		f.log.Debug().Str("url", p.URL).Int("captured", len(out)).Int("expected", len(eps)).Msg("idle wait elapsed")
	}
	return out
}
