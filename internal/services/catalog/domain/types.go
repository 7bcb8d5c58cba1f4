// Package domain defines the read-only canonical part
package domain

import (
	"context"
	"time"

	perr "supplysync/internal/platform/errors"

	"github.com/shopspring/decimal"
)

// Part is a published catalog entry
type Part struct {
	SupplierID     int64
	ExternalID     string
	Title          string
	PartType       string
	Description    string
	Images         []string
	Specs          map[string]string
	PriceMsrp      *decimal.Decimal
	PriceWholesale *decimal.Decimal
	Availability   *string
	ContentHash    string
	PublishedAt    time.Time
}

// ErrAbsent is returned when the canonical table does not exist in this deployment
var ErrAbsent = perr.New(perr.ErrorCodeNotFound, "canonical catalog absent")

// ReaderPort reads canonical parts
type ReaderPort interface {
	// ListCanonical returns ErrAbsent when there is no canonical store to read
	ListCanonical(ctx context.Context, supplierID int64) ([]Part, error)
}
