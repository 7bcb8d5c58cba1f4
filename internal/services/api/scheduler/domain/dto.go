// Package domain holds DTOs for the scheduler http surface
package domain

import "github.com/google/uuid"

// PutScheduleInput creates a schedule, or replaces it when ID is set
type PutScheduleInput struct {
	ID         *uuid.UUID `json:"id,omitempty"`
	SupplierID int64      `json:"supplierId"           validate:"required,gt=0" example:"12"`
	TemplateID *int64     `json:"templateId,omitempty" validate:"omitempty,gt=0"`
	Enabled    *bool      `json:"enabled,omitempty"    example:"true"`
	Freq       string     `json:"freq"                 validate:"required,oneof=daily weekly monthly none" example:"daily"`
	At         string     `json:"at"                   validate:"required,hhmm" example:"02:30"`
}
