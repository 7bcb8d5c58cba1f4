package testkit

import (
	"io"
	"net/http"
	"testing"
)

var seam = func() string { return "real" }

func TestAssertions(t *testing.T) {
	t.Parallel()

	MustPanic(t, func() { panic("boom") })
	MustNotPanic(t, func() {})
	MustContain(t, "level=info component=crawler", "component=crawler")
}

func TestSwap_RestoresAfterSubtest(t *testing.T) {
	Serial(t)

	t.Run("swapped", func(t *testing.T) {
		Swap(t, &seam, func() string { return "fake" })
		if got := seam(); got != "fake" {
			t.Fatalf("seam=%q", got)
		}
	})
	if got := seam(); got != "real" {
		t.Fatalf("seam not restored: %q", got)
	}
}

func TestSite(t *testing.T) {
	t.Parallel()

	srv := Site(t, map[string]http.HandlerFunc{
		"/products/rb-1": HTML(`<h1>Blank One</h1>`),
		"/suggest.json":  JSON(`{"items":[]}`),
		"/gone":          Status(http.StatusGone),
	})

	for path, want := range map[string]struct {
		code int
		ct   string
		body string
	}{
		"/products/rb-1": {http.StatusOK, "text/html; charset=utf-8", `<h1>Blank One</h1>`},
		"/suggest.json":  {http.StatusOK, "application/json", `{"items":[]}`},
		"/gone":          {http.StatusGone, "", ""},
		"/missing":       {http.StatusNotFound, "text/plain; charset=utf-8", "404 page not found\n"},
	} {
		res, err := srv.Client().Get(srv.URL + path)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		b, _ := io.ReadAll(res.Body)
		_ = res.Body.Close()
		if res.StatusCode != want.code || res.Header.Get("Content-Type") != want.ct || string(b) != want.body {
			t.Fatalf("%s: code=%d ct=%q body=%q", path, res.StatusCode, res.Header.Get("Content-Type"), b)
		}
	}
}
