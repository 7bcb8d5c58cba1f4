package http

import (
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"supplysync/internal/platform/config"
	perr "supplysync/internal/platform/errors"

	"github.com/go-chi/chi/v5"
)

func decode(t *testing.T, rr *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v body=%s", err, rr.Body.String())
	}
	return env
}

func TestHandle_StatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		resp Response
		want int
	}{
		{"ok", OK(map[string]int{"a": 1}), 200},
		{"created", Created("x"), 201},
		{"zero status", Response{Body: "x"}, 200},
		{"not found", Error(perr.NotFoundf("diff %s", "d1")), 404},
		{"config", Error(perr.Configf("missing credentials")), 500},
		{"plain error", Error(errors.New("boom")), 500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rr := httptest.NewRecorder()
			Handle(func(*stdhttp.Request) Response { return tc.resp })(rr, httptest.NewRequest("GET", "/", nil))
			if rr.Code != tc.want {
				t.Fatalf("status=%d want %d", rr.Code, tc.want)
			}
			if env := decode(t, rr); env.StatusCode != tc.want {
				t.Fatalf("envelope status=%d", env.StatusCode)
			}
		})
	}
}

func TestHandle_NoContentAndHeaders(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	h := stdhttp.Header{}
	h.Set("X-Run", "r1")
	Handle(func(*stdhttp.Request) Response {
		r := NoContent()
		r.Header = h
		return r
	})(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Code != 204 || rr.Body.Len() != 0 || rr.Header().Get("X-Run") != "r1" {
		t.Fatalf("code=%d body=%q hdr=%v", rr.Code, rr.Body.String(), rr.Header())
	}
}

func TestHandle_ErrorCarriesField(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	Handle(func(*stdhttp.Request) Response {
		return Error(perr.WithField(perr.InvalidArgf("supplier id must be positive"), "supplierId"))
	})(rr, httptest.NewRequest("POST", "/", nil))
	if rr.Code != 422 {
		t.Fatalf("status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"field":"supplierId"`) {
		t.Fatalf("body=%s", rr.Body.String())
	}
}

func TestRouter_RouteAndProfiler(t *testing.T) {
	t.Parallel()

	m := chi.NewRouter()
	r := AdaptChi(m)
	r.Route("/api/v1", func(api Router) {
		api.Use(func(next stdhttp.Handler) stdhttp.Handler {
			return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
				w.Header().Set("X-Scope", "v1")
				next.ServeHTTP(w, req)
			})
		})
		api.Put("/scheduler/schedules", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) { w.WriteHeader(stdhttp.StatusAccepted) })
	})
	MountProfiler(r, "/debug", true)

	rr := httptest.NewRecorder()
	m.ServeHTTP(rr, httptest.NewRequest(stdhttp.MethodPut, "/api/v1/scheduler/schedules", nil))
	if rr.Code != stdhttp.StatusAccepted || rr.Header().Get("X-Scope") != "v1" {
		t.Fatalf("route code=%d hdr=%v", rr.Code, rr.Header())
	}

	rr = httptest.NewRecorder()
	m.ServeHTTP(rr, httptest.NewRequest(stdhttp.MethodGet, "/debug/pprof/", nil))
	if rr.Code != stdhttp.StatusOK || !strings.Contains(rr.Body.String(), "goroutine") {
		t.Fatalf("pprof code=%d", rr.Code)
	}
}

func TestNewServer_AddrAndOptions(t *testing.T) {
	t.Setenv("SRVTEST_PORT", ":4810")

	s := NewServer(config.New().Prefix("SRVTEST_"), func(m *chi.Mux) {
		m.Get("/ping", func(w stdhttp.ResponseWriter, _ *stdhttp.Request) { w.WriteHeader(stdhttp.StatusNoContent) })
	})
	if s.Addr() != ":4810" {
		t.Fatalf("addr=%q", s.Addr())
	}
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(stdhttp.MethodGet, "/ping", nil))
	if rr.Code != stdhttp.StatusNoContent {
		t.Fatalf("code=%d", rr.Code)
	}
}
