// Package http provides http transport for import runs and diff review
package http

import (
	stdhttp "net/http"

	"supplysync/internal/modkit/httpkit"
	"supplysync/internal/services/api/imports/domain"
	svc "supplysync/internal/services/api/imports/service"
)

// Register mounts the imports routes
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.StartRunInput](r, "/runs", h.startRun)
	httpkit.Get(r, "/runs/{id}", h.getRun)
	httpkit.Get(r, "/runs/{id}/diffs", h.listDiffs)
	httpkit.Post(r, "/runs/{id}/skip-successful", h.skipSuccessful)
	httpkit.PostJSON[domain.ResolveInput](r, "/diffs/{id}/resolve", h.resolve)
}

type handlers struct{ svc svc.Service }

// swagger:route POST /imports/runs Imports importsStartRun
// @Summary Run a full import for a supplier
// @Description Crawls manual urls and optionally seeds, stages records and computes diffs. Blocks until the run finishes
// @Tags Imports
// @Accept json
// @Produce json
// @Param payload body domain.StartRunInput true "Run"
// @Success 201 {object} domain.RunOutput "run recorded"
// @Failure 400 {object} httpkit.Envelope "invalid input"
// @Router /imports/runs [post]
func (h *handlers) startRun(r *stdhttp.Request, in domain.StartRunInput) (any, error) {
	out, err := h.svc.StartRun(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(out), nil
}

// swagger:route GET /imports/runs/{id} Imports importsGetRun
// @Summary Get an import run
// @Tags Imports
// @Produce json
// @Param id path string true "Run id"
// @Success 200 {object} diffdom.Run "ok"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /imports/runs/{id} [get]
func (h *handlers) getRun(r *stdhttp.Request) (any, error) {
	id, err := httpkit.UUIDParam(r, "id")
	if err != nil {
		return nil, err
	}
	return h.svc.GetRun(r.Context(), id)
}

// swagger:route GET /imports/runs/{id}/diffs Imports importsListDiffs
// @Summary List a run's diff rows
// @Tags Imports
// @Produce json
// @Param id path string true "Run id"
// @Param actionable query bool false "Only unresolved rows, minus deletes still pending misses"
// @Success 200 {object} domain.DiffList "ok"
// @Router /imports/runs/{id}/diffs [get]
func (h *handlers) listDiffs(r *stdhttp.Request) (any, error) {
	id, err := httpkit.UUIDParam(r, "id")
	if err != nil {
		return nil, err
	}
	return h.svc.ListDiffs(r.Context(), id, httpkit.BoolQuery(r, "actionable", false))
}

// swagger:route POST /imports/runs/{id}/skip-successful Imports importsSkipSuccessful
// @Summary Mark rows already matching the approved state
// @Tags Imports
// @Produce json
// @Param id path string true "Run id"
// @Success 200 {object} domain.SkipOutput "ok"
// @Router /imports/runs/{id}/skip-successful [post]
func (h *handlers) skipSuccessful(r *stdhttp.Request) (any, error) {
	id, err := httpkit.UUIDParam(r, "id")
	if err != nil {
		return nil, err
	}
	return h.svc.SkipSuccessful(r.Context(), id)
}

// swagger:route POST /imports/diffs/{id}/resolve Imports importsResolve
// @Summary Approve or reject a diff row
// @Tags Imports
// @Accept json
// @Produce json
// @Param id path string true "Diff id"
// @Param payload body domain.ResolveInput true "Verdict"
// @Success 200 {object} diffdom.Diff "ok"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /imports/diffs/{id}/resolve [post]
func (h *handlers) resolve(r *stdhttp.Request, in domain.ResolveInput) (any, error) {
	id, err := httpkit.UUIDParam(r, "id")
	if err != nil {
		return nil, err
	}
	return h.svc.Resolve(r.Context(), id, in)
}
