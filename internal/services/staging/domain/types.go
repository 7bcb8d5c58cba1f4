// Package domain defines the staging record and the staging ports
package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Record is the latest extracted snapshot of one supplier part
type Record struct {
	SupplierID     int64
	ExternalID     string
	Title          string
	PartType       string
	Description    string
	Images         []string
	RawSpecs       map[string]string
	NormSpecs      map[string]string
	PriceMsrp      *decimal.Decimal
	PriceWholesale *decimal.Decimal
	Availability   *string
	SourceURL      string
	ContentHash    string
	FetchedAt      time.Time
}

// PriceAvail is the refreshable subset of a record. Nil fields are left as they are
type PriceAvail struct {
	PriceMsrp      *decimal.Decimal
	PriceWholesale *decimal.Decimal
	Availability   *string
}

// StagingPort reads and writes staged records
type StagingPort interface {
	UpsertStaging(ctx context.Context, supplierID int64, rec Record) (Record, error)
	ListStaging(ctx context.Context, supplierID int64) ([]Record, error)
	GetStaging(ctx context.Context, supplierID int64, externalID string) (Record, error)
	UpdatePriceAvail(ctx context.Context, supplierID int64, externalID string, pa PriceAvail) error
}
