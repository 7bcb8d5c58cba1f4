// Package domain defines the price and availability refresh port
package domain

import (
	"context"

	"github.com/google/uuid"
)

// JobPort runs one price refresh for a supplier and returns its run id
type JobPort interface {
	Run(ctx context.Context, supplierID int64) (uuid.UUID, error)
}
