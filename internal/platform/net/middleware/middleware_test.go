package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "supplysync/internal/platform/errors"
	"supplysync/internal/platform/metrics"
	pnet "supplysync/internal/platform/net"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type portFunc func(r *http.Request) (string, error)

func (f portFunc) Parse(r *http.Request) (string, error) { return f(r) }

func TestAuth(t *testing.T) {
	t.Parallel()

	port := portFunc(func(r *http.Request) (string, error) {
		if r.Header.Get("Authorization") == "Bearer ok" {
			return "scheduler", nil
		}
		return "", perr.Unauthorizedf("invalid bearer token")
	})
	var seen string
	h := Auth(port)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = pnet.UserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/tick", nil)
	r.Header.Set("Authorization", "Bearer ok")
	h.ServeHTTP(rr, r)
	if rr.Code != 204 || seen != "scheduler" {
		t.Fatalf("code=%d user=%q", rr.Code, seen)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("POST", "/tick", nil))
	if rr.Code != 401 || !strings.Contains(rr.Body.String(), "invalid bearer token") {
		t.Fatalf("code=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAuth_NilPortPassesThrough(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	Auth(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Code != http.StatusTeapot {
		t.Fatalf("code=%d", rr.Code)
	}
}

func TestRecoverJSON(t *testing.T) {
	t.Parallel()

	h := RequestID()(RecoverJSON(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	})))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Code != 500 {
		t.Fatalf("code=%d", rr.Code)
	}
	var body pnet.Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.RequestID == "" || rr.Header().Get("X-Request-ID") != body.RequestID {
		t.Fatalf("request id not mirrored: %+v hdr=%q", body, rr.Header().Get("X-Request-ID"))
	}
	if body.Code != perr.ErrorCodePanic {
		t.Fatalf("code=%v", body.Code)
	}
}

func TestRecoverJSON_AbortHandlerPropagates(t *testing.T) {
	t.Parallel()

	h := RecoverJSON(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	defer func() {
		if v := recover(); v != http.ErrAbortHandler {
			t.Fatalf("recovered %v", v)
		}
	}()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
}

func TestObserve_PassesThrough(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusAccepted, http.StatusBadGateway} {
		h := Observe(ObserveOptions{Slow: 1})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte("ok"))
		}))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
		if rr.Code != status || rr.Body.String() != "ok" {
			t.Fatalf("code=%d body=%q", rr.Code, rr.Body.String())
		}
	}
}

func TestObserve_MetricsByRoutePattern(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	r := chi.NewRouter()
	r.Use(Observe(ObserveOptions{Metrics: m}))
	r.Get("/runs/{id}", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("{}")) })

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/runs/"+id, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/nowhere", nil))

	// one series for the pattern plus one for unmatched, not one per id
	n, err := testutil.GatherAndCount(m.Registry(), "supplysync_http_requests_total")
	if err != nil || n != 2 {
		t.Fatalf("series=%d err=%v", n, err)
	}
}

func TestCORS_Preflight(t *testing.T) {
	t.Parallel()

	h := CORS(CORSOptions{AllowedOrigins: []string{"https://ops.example.com"}})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	r := httptest.NewRequest(http.MethodOptions, "/api/v1/scheduler/tick", nil)
	r.Header.Set("Origin", "https://ops.example.com")
	r.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	if rr.Header().Get("Access-Control-Allow-Origin") != "https://ops.example.com" {
		t.Fatalf("headers=%v", rr.Header())
	}
}

func TestRequestID_EchoesAndPropagates(t *testing.T) {
	t.Parallel()

	var seen string
	h := RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = pnet.RequestID(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/imports/runs", nil))
	if seen == "" || rr.Header().Get("X-Request-Id") != seen {
		t.Fatalf("minted id=%q header=%q", seen, rr.Header().Get("X-Request-Id"))
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/imports/runs", nil)
	req.Header.Set("X-Request-Id", "upstream-7")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if seen != "upstream-7" || rr.Header().Get("X-Request-Id") != "upstream-7" {
		t.Fatalf("propagated id=%q header=%q", seen, rr.Header().Get("X-Request-Id"))
	}
}
