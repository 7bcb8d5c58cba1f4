// Package http provides http transport for on demand price refreshes
package http

import (
	stdhttp "net/http"

	"supplysync/internal/modkit/httpkit"
	"supplysync/internal/platform/logger"
	"supplysync/internal/services/api/refresh/domain"
	diffdom "supplysync/internal/services/diff/domain"
	refreshdom "supplysync/internal/services/refresh/domain"

	"github.com/google/uuid"
)

// Deps are the handler dependencies
type Deps struct {
	Job  refreshdom.JobPort
	Runs diffdom.RunPort
}

// Register mounts the refresh routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}
	httpkit.Post(r, "/{supplierId}", h.refresh)
}

type handlers struct{ deps Deps }

// swagger:route POST /refresh/{supplierId} Refresh refreshSupplier
// @Summary Refresh a supplier's prices and availability
// @Description Logs in to the supplier portal when needed, updates staged prices and records a price-only diff run
// @Tags Refresh
// @Produce json
// @Security BearerAuth
// @Param supplierId path int true "Supplier id"
// @Success 201 {object} domain.RefreshOutput "run recorded"
// @Failure 401 {object} httpkit.Envelope "unauthorized"
// @Router /refresh/{supplierId} [post]
func (h *handlers) refresh(r *stdhttp.Request) (any, error) {
	supplierID, err := httpkit.Int64Param(r, "supplierId")
	if err != nil {
		return nil, err
	}
	caller, _ := httpkit.User(r)
	logger.C(r.Context()).Info().Int64("supplier_id", supplierID).Str("caller", caller).Msg("price refresh requested")

	id, err := h.deps.Job.Run(r.Context(), supplierID)
	if id == uuid.Nil {
		return nil, err
	}
	if err != nil {
		logger.C(r.Context()).Warn().Err(err).Str("run_id", id.String()).Msg("price refresh failed")
	}
	run, gerr := h.deps.Runs.GetRun(r.Context(), id)
	if gerr != nil {
		return nil, gerr
	}
	return httpkit.Created(domain.RefreshOutput{RunID: id, Run: run}), nil
}
