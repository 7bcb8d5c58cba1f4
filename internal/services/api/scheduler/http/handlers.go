// Package http provides http transport for the refresh scheduler
package http

import (
	stdhttp "net/http"
	"time"

	"supplysync/internal/core/cadence"
	"supplysync/internal/modkit/httpkit"
	"supplysync/internal/platform/logger"
	"supplysync/internal/services/api/scheduler/domain"
	scheddom "supplysync/internal/services/scheduler/domain"
)

// Register mounts the scheduler routes
func Register(r httpkit.Router, s scheddom.SchedulerPort) {
	h := &handlers{svc: s, now: time.Now}
	httpkit.Post(r, "/tick", h.tick)
	httpkit.PutJSON[domain.PutScheduleInput](r, "/schedules", h.putSchedule)
	httpkit.Get(r, "/suppliers/{supplierId}/schedules", h.listSchedules)
}

type handlers struct {
	svc scheddom.SchedulerPort
	now func() time.Time
}

// swagger:route POST /scheduler/tick Scheduler schedulerTick
// @Summary Run every due refresh schedule
// @Tags Scheduler
// @Produce json
// @Security BearerAuth
// @Success 200 {object} scheddom.TickResult "ok"
// @Failure 401 {object} httpkit.Envelope "unauthorized"
// @Router /scheduler/tick [post]
func (h *handlers) tick(r *stdhttp.Request) (any, error) {
	caller, _ := httpkit.User(r)
	logger.C(r.Context()).Info().Str("caller", caller).Msg("scheduler tick requested")
	return h.svc.Tick(r.Context(), h.now())
}

// swagger:route PUT /scheduler/schedules Scheduler schedulerPut
// @Summary Create or replace a refresh schedule
// @Tags Scheduler
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body domain.PutScheduleInput true "Schedule"
// @Success 200 {object} scheddom.Schedule "ok"
// @Router /scheduler/schedules [put]
func (h *handlers) putSchedule(r *stdhttp.Request, in domain.PutScheduleInput) (any, error) {
	s := scheddom.Schedule{
		SupplierID: in.SupplierID,
		TemplateID: in.TemplateID,
		Enabled:    in.Enabled == nil || *in.Enabled,
		Freq:       cadence.Freq(in.Freq),
		At:         in.At,
	}
	if in.ID != nil {
		s.ID = *in.ID
	}
	return h.svc.PutSchedule(r.Context(), s)
}

// swagger:route GET /scheduler/suppliers/{supplierId}/schedules Scheduler schedulerList
// @Summary List a supplier's refresh schedules
// @Tags Scheduler
// @Produce json
// @Security BearerAuth
// @Param supplierId path int true "Supplier id"
// @Success 200 {array} scheddom.Schedule "ok"
// @Router /scheduler/suppliers/{supplierId}/schedules [get]
func (h *handlers) listSchedules(r *stdhttp.Request) (any, error) {
	supplierID, err := httpkit.Int64Param(r, "supplierId")
	if err != nil {
		return nil, err
	}
	out, err := h.svc.ListSchedules(r.Context(), supplierID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []scheddom.Schedule{}
	}
	return out, nil
}
