package api

import (
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"supplysync/internal/platform/config"
	"supplysync/internal/platform/metrics"
	phttp "supplysync/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func TestMount_Routes(t *testing.T) {
	t.Setenv("CRAWLER_TEMPLATES_FILE", filepath.Join(t.TempDir(), "none.yaml"))
	t.Setenv("CORE_API_TICK_TOKEN", "tick-secret")

	m := chi.NewRouter()
	p := Mount(phttp.AdaptChi(m), Options{Config: config.New(), Metrics: metrics.New()})
	if p == nil || p.Scheduler.Scheduler == nil {
		t.Fatalf("pipeline not assembled")
	}

	cases := []struct {
		method, target, auth string
		want                 int
	}{
		{"GET", "/health", "", 200},
		{"GET", "/metrics", "", 200},
		{"GET", "/api/v1/meta/ready", "", 200},
		{"GET", "/api/v1/meta/version", "", 200},
		{"POST", "/api/v1/scheduler/tick", "", 401},
		{"POST", "/api/v1/scheduler/tick", "Bearer tick-secret", 200},
		{"POST", "/api/v1/refresh/4", "", 401},
		{"GET", "/api/v1/imports/runs/not-a-uuid", "", 422},
		{"GET", "/api/docs/doc.json", "", 404},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.target, strings.NewReader(""))
		if tc.auth != "" {
			req.Header.Set("Authorization", tc.auth)
		}
		rr := httptest.NewRecorder()
		m.ServeHTTP(rr, req)
		if rr.Code != tc.want {
			t.Fatalf("%s %s: status=%d want %d body=%s", tc.method, tc.target, rr.Code, tc.want, rr.Body.String())
		}
	}
}
