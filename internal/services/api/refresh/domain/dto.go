// Package domain holds DTOs for the price refresh http surface
package domain

import (
	diffdom "supplysync/internal/services/diff/domain"

	"github.com/google/uuid"
)

// RefreshOutput reports the price-only run a refresh recorded
type RefreshOutput struct {
	RunID uuid.UUID   `json:"runId" example:"6f1c2a3e-0d5b-4c7e-9a2f-1b3c4d5e6f70"`
	Run   diffdom.Run `json:"run"`
}
