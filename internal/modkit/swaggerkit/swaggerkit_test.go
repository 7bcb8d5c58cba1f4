package swaggerkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	phttp "supplysync/internal/platform/net/http"
	kit "supplysync/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
)

func TestServeDocJSON(t *testing.T) {
	kit.Serial(t)
	r := chi.NewRouter()
	Mount(phttp.AdaptChi(r), true)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	var spec map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &spec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if spec["openapi"] != "3.0.3" {
		t.Fatalf("openapi=%v", spec["openapi"])
	}
	info := spec["info"].(map[string]any)
	if info["title"] != "Supplysync API" {
		t.Fatalf("title=%v", info["title"])
	}

	paths := spec["paths"].(map[string]any)
	for _, p := range []string{"/imports/runs", "/imports/diffs/{id}/resolve", "/refresh/{supplierId}", "/scheduler/tick"} {
		if _, ok := paths[p]; !ok {
			t.Fatalf("missing path %s", p)
		}
	}
	op := paths["/scheduler/tick"].(map[string]any)["post"].(map[string]any)
	resps := op["responses"].(map[string]any)
	if _, ok := resps["500"]; !ok {
		t.Fatalf("default 500 not injected: %v", resps)
	}
	schemas := spec["components"].(map[string]any)["schemas"].(map[string]any)
	if _, ok := schemas["ErrorResponse"]; !ok {
		t.Fatalf("ErrorResponse schema missing")
	}
}

func TestServeDocJSON_BadSpec(t *testing.T) {
	kit.Serial(t)
	kit.Swap(t, &docReader, func() string { return "{" })

	rec := httptest.NewRecorder()
	serveDocJSON()(rec, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestMount_Disabled(t *testing.T) {
	t.Parallel()
	r := chi.NewRouter()
	Mount(phttp.AdaptChi(r), false)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestAddDefault_KeepsDocumentedResponses(t *testing.T) {
	t.Parallel()

	spec := map[string]any{"paths": map[string]any{
		"/imports/runs": map[string]any{
			"parameters": []any{},
			"post":       map[string]any{"responses": map[string]any{"400": "documented"}},
			"get":        map[string]any{},
		},
	}}
	addDefault(spec, "400", "Bad Request", map[string]any{"code": 8})

	item := spec["paths"].(map[string]any)["/imports/runs"].(map[string]any)
	if got := item["post"].(map[string]any)["responses"].(map[string]any)["400"]; got != "documented" {
		t.Fatalf("documented 400 replaced: %v", got)
	}
	if _, ok := item["get"].(map[string]any)["responses"].(map[string]any)["400"]; !ok {
		t.Fatalf("default 400 not added to get")
	}
}
