package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.RecordRequest("GET", "/x", 200, time.Millisecond)
	m.CrawlPage("detail", "ok")
	m.Staged()
	m.Suppressed("explicit-header")
	m.DiffRows("add", 2)
	m.RunFinished("full", "success", time.Second)
	m.SchedulerTrigger("ok")
	if m.Registry() != nil {
		t.Fatalf("nil metrics should have nil registry")
	}
}

func TestCounters(t *testing.T) {
	t.Parallel()

	m := New()
	m.CrawlPage("detail", "ok")
	m.CrawlPage("detail", "ok")
	m.CrawlPage("list", "failed")
	m.Suppressed("series-path-slug")
	m.DiffRows("add", 3)
	m.DiffRows("change", 0)

	if got := testutil.ToFloat64(m.crawlPages.WithLabelValues("detail", "ok")); got != 2 {
		t.Fatalf("detail ok=%v", got)
	}
	if got := testutil.ToFloat64(m.suppressed.WithLabelValues("series-path-slug")); got != 1 {
		t.Fatalf("suppressed=%v", got)
	}
	if got := testutil.ToFloat64(m.diffRows.WithLabelValues("add")); got != 3 {
		t.Fatalf("diff add=%v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	t.Parallel()

	m := New()
	m.RecordRequest("POST", "/api/v1/imports/runs", 201, 20*time.Millisecond)
	m.Staged()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`supplysync_http_requests_total{method="POST",route="/api/v1/imports/runs",status="2xx"} 1`,
		"supplysync_staged_total 1",
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("missing %q in exposition", want)
		}
	}
}

func TestClassifyStatus(t *testing.T) {
	t.Parallel()

	cases := map[int]string{200: "2xx", 302: "3xx", 404: "4xx", 503: "5xx", 99: "unknown"}
	for code, want := range cases {
		if got := classifyStatus(code); got != want {
			t.Fatalf("classifyStatus(%d)=%q want %q", code, got, want)
		}
	}
}
