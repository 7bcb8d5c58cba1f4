// Package domain holds DTOs for the imports http surface
package domain

import (
	diffdom "supplysync/internal/services/diff/domain"

	"github.com/google/uuid"
)

// StartRunInput starts a synchronous full import for one supplier
type StartRunInput struct {
	SupplierID     int64    `json:"supplierId"               validate:"required,gt=0" example:"12"`
	ManualURLs     []string `json:"manualUrls,omitempty"     validate:"omitempty,max=500,dive,required,httpurl" example:"https://parts.example.com/p/rb-1"` //nolint:lll
	IncludeSeeds   bool     `json:"includeSeeds"             example:"true"`
	SkipSuccessful bool     `json:"skipSuccessful"           example:"false"`
	TemplateKey    *int64   `json:"templateKey,omitempty"    validate:"omitempty,gt=0" example:"3"`
	Notes          string   `json:"notes,omitempty"          validate:"max=500" example:"spring catalog"`
}

// RunOutput reports a recorded run; a failed run carries its error in the summary
type RunOutput struct {
	RunID uuid.UUID   `json:"runId" example:"6f1c2a3e-0d5b-4c7e-9a2f-1b3c4d5e6f70"`
	Run   diffdom.Run `json:"run"`
}

// DiffList is the listing of one run's diff rows
type DiffList struct {
	RunID      uuid.UUID      `json:"runId"`
	Actionable bool           `json:"actionable"`
	Diffs      []diffdom.Diff `json:"diffs"`
}

// ResolveInput is a reviewer's verdict; edits are merged into the after side
type ResolveInput struct {
	Resolution diffdom.Resolution `json:"resolution" validate:"required,oneof=approve reject" example:"approve"`
	Edits      map[string]any     `json:"edits,omitempty"`
}

// SkipOutput reports how many rows a skip-successful pass marked
type SkipOutput struct {
	RunID  uuid.UUID `json:"runId"`
	Marked int       `json:"marked" example:"41"`
}
