package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"
	"time"

	perr "supplysync/internal/platform/errors"
	kit "supplysync/internal/platform/testkit"

	"golang.org/x/time/rate"
)

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	return kit.Site(t, map[string]http.HandlerFunc{
		"/collections/rods": kit.HTML(`<html><body>
			<div id="grid" data-url="/search/suggest.json?q=rods"></div>
			<script>fetch("/search/page.html?p=2"); var img = "/cdn/a.png";</script>
			<script>load('/search/slow.json')</script>
		</body></html>`),
		"/search/suggest.json": kit.JSON(`{"items":[{"url":"/products/rb-1"}]}`),
		"/search/page.html":    kit.HTML(`<a href="/products/rb-2">x</a>`),
		"/search/slow.json": func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		},
		"/login": func(w http.ResponseWriter, r *http.Request) {
			_ = r.ParseForm()
			if r.PostForm.Get("user") == "u" {
				http.SetCookie(w, &http.Cookie{Name: "sid", Value: "abc", Path: "/"})
			}
			w.WriteHeader(http.StatusNoContent)
		},
		"/away": func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "https://elsewhere.example.org/", http.StatusFound)
		},
		"/gone":    kit.Status(http.StatusNotFound),
		"/private": kit.Status(http.StatusUnauthorized),
		"/denied":  kit.Status(http.StatusForbidden),
	})
}

func TestLoad_CapturesMatchingEndpoints(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	f := New(Options{IdleTimeout: 300 * time.Millisecond}, WithClient(srv.Client()))

	p, err := f.Load(context.Background(), srv.URL+"/collections/rods", LoadOptions{
		Policy:  RequestPolicy{Origin: srv.URL, BlockAssets: true},
		Capture: regexp.MustCompile(`/search/`),
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Doc == nil || p.Doc.Find("#grid").Length() != 1 {
		t.Fatalf("document not parsed")
	}
	// slow.json misses the idle window and is dropped
	if len(p.Captured) != 2 {
		t.Fatalf("captured=%d %+v", len(p.Captured), p.Captured)
	}
	var sawJSON bool
	for _, c := range p.Captured {
		if c.JSON() {
			sawJSON = true
		}
	}
	if !sawJSON {
		t.Fatalf("expected a json capture")
	}
}

func TestWithLimiter_GovernsEveryRequest(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	// one token, the next one an hour away: only the navigation gets through
	lim := rate.NewLimiter(rate.Every(time.Hour), 1)
	f := New(Options{IdleTimeout: 200 * time.Millisecond}, WithLimiter(lim), WithClient(srv.Client()))

	p, err := f.Load(context.Background(), srv.URL+"/collections/rods", LoadOptions{
		Policy:  RequestPolicy{Origin: srv.URL},
		Capture: regexp.MustCompile(`/search/`),
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(p.Captured) != 0 {
		t.Fatalf("captures bypassed the limiter: %+v", p.Captured)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := f.Get(ctx, srv.URL+"/search/suggest.json"); !perr.IsCode(err, perr.ErrorCodeTooManyRequests) {
		t.Fatalf("sitemap style get: want too many requests, got %v", err)
	}
	if _, err := f.PostForm(ctx, srv.URL+"/login", url.Values{"user": {"u"}}); !perr.IsCode(err, perr.ErrorCodeTooManyRequests) {
		t.Fatalf("post: want too many requests, got %v", err)
	}
}

func TestLoad_StatusErrors(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	f := New(Options{}, WithClient(srv.Client()))

	for path, want := range map[string]perr.ErrorCode{
		"/gone":    perr.ErrorCodeNotFound,
		"/private": perr.ErrorCodeUnauthorized,
		"/denied":  perr.ErrorCodeForbidden,
	} {
		if _, err := f.Load(context.Background(), srv.URL+path, LoadOptions{}); !perr.IsCode(err, want) {
			t.Fatalf("%s: want %s, got %v", path, want, err)
		}
	}
	_, err := f.Load(context.Background(), srv.URL+"/away", LoadOptions{})
	if err == nil {
		t.Fatalf("cross-site redirect should be refused")
	}
}

func TestLoad_NavigationTimeout(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	f := New(Options{NavTimeout: 50 * time.Millisecond}, WithClient(srv.Client()))
	_, err := f.Load(context.Background(), srv.URL+"/search/slow.json", LoadOptions{})
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("want unavailable, got %v", err)
	}
}

func TestPostForm_StoresCookies(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	f := New(Options{}, WithClient(srv.Client()))
	if _, err := f.PostForm(context.Background(), srv.URL+"/login", url.Values{"user": {"u"}}); err != nil {
		t.Fatalf("login: %v", err)
	}
	cs := f.Cookies(srv.URL)
	if len(cs) != 1 || cs[0].Value != "abc" {
		t.Fatalf("cookies=%v", cs)
	}

	g := New(Options{}, WithClient(srv.Client()))
	if err := g.SetCookies(srv.URL, cs); err != nil {
		t.Fatalf("set: %v", err)
	}
	if len(g.Cookies(srv.URL)) != 1 {
		t.Fatalf("restored jar empty")
	}
}

func TestRequestPolicy(t *testing.T) {
	t.Parallel()

	p := RequestPolicy{Origin: "https://www.rods.example.com/collections/a", BlockAssets: true}
	cases := []struct {
		kind   Kind
		target string
		want   bool
	}{
		{Document, "https://shop.rods.example.com/products/x", true},
		{XHR, "https://www.rods.example.com/search.json", true},
		{Document, "https://tracker.other.net/pixel", false},
		{Asset, "https://www.rods.example.com/a.css", false},
		{XHR, "https://www.rods.example.com/img/a.JPG", false},
	}
	for _, tc := range cases {
		if got := p.Allow(tc.kind, tc.target); got != tc.want {
			t.Fatalf("Allow(%v,%s)=%v want %v", tc.kind, tc.target, got, tc.want)
		}
	}
	open := RequestPolicy{Origin: "https://www.rods.example.com/"}
	if !open.Allow(Asset, "https://www.rods.example.com/a.css") {
		t.Fatalf("assets allowed when not blocked")
	}
}
