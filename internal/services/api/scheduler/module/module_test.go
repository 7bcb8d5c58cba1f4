package module

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"supplysync/internal/modkit"
	"supplysync/internal/modkit/httpkit"
	perr "supplysync/internal/platform/errors"
	phttp "supplysync/internal/platform/net/http"
	scheddom "supplysync/internal/services/scheduler/domain"
	schedrepo "supplysync/internal/services/scheduler/repo"
	schedsvc "supplysync/internal/services/scheduler/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type countingJob struct{ n int }

func (j *countingJob) Run(context.Context, int64) (uuid.UUID, error) {
	j.n++
	return uuid.New(), nil
}

func newAPI(t *testing.T) (*chi.Mux, *countingJob) {
	t.Helper()
	job := &countingJob{}
	svc := schedsvc.New(schedrepo.NewMemory(), job, nil, nil, schedsvc.Config{})
	operators := func(tok string) (string, error) {
		if tok == "op-session" {
			return "operator:7", nil
		}
		return "", perr.Unauthorizedf("unknown operator session")
	}
	port := httpkit.NewPortFunc(httpkit.StaticToken("s3cret", "scheduler"), httpkit.WithCookie("supplysync_op", operators))

	m := chi.NewRouter()
	New(modkit.Deps{},
		modkit.WithPorts(Ports{Scheduler: svc}),
		modkit.WithMiddlewares(httpkit.Auth(port)),
	).MountRoutes(phttp.AdaptChi(m))
	return m, job
}

func do(t *testing.T, h http.Handler, method, target, body string, auth func(*http.Request), into any) int {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth != nil {
		auth(req)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if into != nil && rr.Code < 300 {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
			t.Fatal(err)
		}
		if err := json.Unmarshal(env.Data, into); err != nil {
			t.Fatalf("data %s: %v", env.Data, err)
		}
	}
	return rr.Code
}

func bearer(tok string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }
}

func TestSchedulerAPI_TickAuth(t *testing.T) {
	t.Parallel()
	h, _ := newAPI(t)

	cases := []struct {
		name string
		auth func(*http.Request)
		want int
	}{
		{"none", nil, 401},
		{"wrong token", bearer("nope"), 401},
		{"token", bearer("s3cret"), 200},
		{"operator cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "supplysync_op", Value: "op-session"}) }, 200},
		{"stale cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "supplysync_op", Value: "gone"}) }, 401},
	}
	for _, tc := range cases {
		if got := do(t, h, "POST", "/scheduler/tick", "", tc.auth, nil); got != tc.want {
			t.Fatalf("%s: status=%d want %d", tc.name, got, tc.want)
		}
	}
}

func TestSchedulerAPI_ManageAndTick(t *testing.T) {
	t.Parallel()
	h, job := newAPI(t)
	auth := bearer("s3cret")

	var s scheddom.Schedule
	if code := do(t, h, "PUT", "/scheduler/schedules", `{"supplierId":3,"freq":"none","at":"00:00"}`, auth, &s); code != 200 {
		t.Fatalf("put status=%d", code)
	}
	if s.ID == uuid.Nil || !s.Enabled || s.NextRunAt == nil {
		t.Fatalf("schedule=%+v", s)
	}

	var list []scheddom.Schedule
	if code := do(t, h, "GET", "/scheduler/suppliers/3/schedules", "", auth, &list); code != 200 || len(list) != 1 {
		t.Fatalf("list status=%d len=%d", code, len(list))
	}

	var res scheddom.TickResult
	if code := do(t, h, "POST", "/scheduler/tick", "", auth, &res); code != 200 {
		t.Fatalf("tick status=%d", code)
	}
	if len(res.Triggered) != 1 || res.Triggered[0] != 3 || job.n != 1 {
		t.Fatalf("tick=%+v job=%d", res, job.n)
	}

	for body, want := range map[string]int{
		`{"supplierId":3,"freq":"hourly","at":"02:00"}`: 400,
		`{"supplierId":3,"freq":"daily","at":"2am"}`:    400,
		`{"supplierId":3,"freq":"daily","at":"25:00"}`:  400,
		`{"freq":"daily","at":"02:00"}`:                 400,
	} {
		if code := do(t, h, "PUT", "/scheduler/schedules", body, auth, nil); code != want {
			t.Fatalf("%s: status=%d want %d", body, code, want)
		}
	}
	if code := do(t, h, "GET", "/scheduler/suppliers/x/schedules", "", auth, nil); code != 422 {
		t.Fatalf("bad supplier status=%d", code)
	}
}
