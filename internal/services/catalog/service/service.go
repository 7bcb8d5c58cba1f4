// Package service implements the canonical catalog reader
package service

import (
	"context"

	perr "supplysync/internal/platform/errors"
	"supplysync/internal/services/catalog/domain"
	"supplysync/internal/services/catalog/repo"
)

// Reader implements domain.ReaderPort
type Reader struct {
	st repo.Storage
}

// New constructs the reader
func New(st repo.Storage) *Reader { return &Reader{st: st} }

// ListCanonical implements domain.ReaderPort
func (r *Reader) ListCanonical(ctx context.Context, supplierID int64) ([]domain.Part, error) {
	parts, err := r.st.List(ctx, supplierID)
	switch {
	case err == nil:
		return parts, nil
	case perr.IsUndefinedTable(err):
		return nil, domain.ErrAbsent
	}
	return nil, err
}
