// Package domain defines refresh schedules and the scheduler port
package domain

import (
	"context"
	"time"

	"supplysync/internal/core/cadence"
	perr "supplysync/internal/platform/errors"

	"github.com/google/uuid"
)

// ProfilePriceAvail is the only refresh profile
const ProfilePriceAvail = "price_avail"

// Last run statuses recorded on a schedule
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Schedule triggers a supplier's price refresh at a clock time
type Schedule struct {
	ID         uuid.UUID    `json:"id"`
	SupplierID int64        `json:"supplierId"`
	TemplateID *int64       `json:"templateId,omitempty"`
	Profile    string       `json:"profile"`
	Enabled    bool         `json:"enabled"`
	Freq       cadence.Freq `json:"freq"`
	At         string       `json:"at"`
	NextRunAt  *time.Time   `json:"nextRunAt,omitempty"`
	LastRunAt  *time.Time   `json:"lastRunAt,omitempty"`
	LastStatus *string      `json:"lastStatus,omitempty"`
}

// Due reports whether the schedule should fire at now; a nil next run is due
func (s Schedule) Due(now time.Time) bool {
	return s.Enabled && (s.NextRunAt == nil || !s.NextRunAt.After(now))
}

// TickResult reports what one tick did
type TickResult struct {
	// Triggered lists suppliers whose refresh ran, success or not
	Triggered []int64 `json:"triggered"`
	// Updated lists schedules whose next run was recomputed
	Updated []uuid.UUID `json:"updated"`
	// Locked lists due suppliers skipped because another tick holds their lock
	Locked []int64 `json:"locked,omitempty"`
}

// ErrLocked is returned by a Locker when the supplier is already being refreshed
var ErrLocked = perr.New(perr.ErrorCodeConflict, "supplier refresh already running")

// SchedulerPort runs due refreshes and manages schedules
type SchedulerPort interface {
	Tick(ctx context.Context, now time.Time) (TickResult, error)
	PutSchedule(ctx context.Context, s Schedule) (Schedule, error)
	ListSchedules(ctx context.Context, supplierID int64) ([]Schedule, error)
}
