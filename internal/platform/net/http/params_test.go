package http

import (
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	perr "supplysync/internal/platform/errors"

	"github.com/go-chi/chi/v5"
)

func routed(t *testing.T, pattern, target string, fn func(*stdhttp.Request)) {
	t.Helper()
	m := chi.NewRouter()
	called := false
	m.Get(pattern, func(_ stdhttp.ResponseWriter, r *stdhttp.Request) {
		called = true
		fn(r)
	})
	m.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", target, nil))
	if !called {
		t.Fatalf("route %s did not match %s", pattern, target)
	}
}

func TestParams(t *testing.T) {
	t.Parallel()

	routed(t, "/runs/{id}", "/runs/6f1c2a3e-0d5b-4c7e-9a2f-1b3c4d5e6f70?actionable=true", func(r *stdhttp.Request) {
		id, err := UUIDParam(r, "id")
		if err != nil || id.String() != "6f1c2a3e-0d5b-4c7e-9a2f-1b3c4d5e6f70" {
			t.Fatalf("id=%v err=%v", id, err)
		}
		if !BoolQuery(r, "actionable", false) || BoolQuery(r, "missing", false) {
			t.Fatalf("bool query")
		}
	})
	routed(t, "/runs/{id}", "/runs/nope", func(r *stdhttp.Request) {
		if _, err := UUIDParam(r, "id"); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
			t.Fatalf("want invalid argument, got %v", err)
		}
	})
	for target, ok := range map[string]bool{"/s/42": true, "/s/0": false, "/s/-3": false, "/s/x": false} {
		routed(t, "/s/{supplierId}", target, func(r *stdhttp.Request) {
			n, err := Int64Param(r, "supplierId")
			if (err == nil) != ok {
				t.Fatalf("%s: n=%d err=%v", target, n, err)
			}
		})
	}
}
