package modkit

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	phttp "supplysync/internal/platform/net/http"
	"supplysync/internal/platform/store"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func TestBuild_OptionsAndRoutes(t *testing.T) {
	t.Parallel()

	var order []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	b := Build(
		WithName("api.imports"),
		WithPrefix("imports/"),
		WithMiddlewares(tag("auth")),
		WithMiddlewares(tag("audit")),
		WithPorts("ports"),
	)
	if b.Name != "api.imports" || len(b.Mw) != 2 || b.Ports != "ports" {
		t.Fatalf("unexpected build %+v", b)
	}

	var m Module = struct {
		Routes
		portsStub
	}{Routes: b.Routes(func(r phttp.Router) {
		r.Get("/runs", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	})}
	if m.Name() != "api.imports" {
		t.Fatalf("name=%q", m.Name())
	}

	mux := chi.NewRouter()
	m.MountRoutes(phttp.AdaptChi(mux))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/imports/runs", nil))
	if rec.Code != http.StatusNoContent || strings.Join(order, ",") != "auth,audit" {
		t.Fatalf("code=%d middleware order=%v", rec.Code, order)
	}
}

type portsStub struct{}

func (portsStub) Ports() any { return nil }

func TestFromStore(t *testing.T) {
	t.Parallel()

	if got := FromStore(Deps{}, nil); got.PG != nil || got.Locker != nil {
		t.Fatalf("nil store should leave deps untouched")
	}

	rds := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = rds.Close() })

	d := FromStore(Deps{}, &store.Store{RDS: rds})
	if d.RDS != rds || d.Locker == nil {
		t.Fatalf("redis and locker should be wired: %+v", d)
	}
}

func TestDeps_Named(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	d := Deps{Log: zerolog.New(&buf)}.Named("crawler")
	d.Log.Info().Msg("hi")
	if !strings.Contains(buf.String(), `"component":"crawler"`) {
		t.Fatalf("component missing: %s", buf.String())
	}
}
