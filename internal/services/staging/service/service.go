// Package service implements the content-addressed staging store
package service

import (
	"context"
	"strings"
	"time"

	"supplysync/internal/core/fingerprint"
	perr "supplysync/internal/platform/errors"
	"supplysync/internal/services/staging/domain"
	"supplysync/internal/services/staging/repo"
)

// Service implements domain.StagingPort
type Service struct {
	st  repo.Storage
	now func() time.Time
}

// New constructs the staging service
func New(st repo.Storage) *Service { return &Service{st: st, now: time.Now} }

// Hash returns the content hash of a record; prices and fetch time do not take part
func Hash(r domain.Record) string {
	return fingerprint.ContentHash(fingerprint.Fields{
		Title:       r.Title,
		Description: r.Description,
		Specs:       r.RawSpecs,
		Images:      r.Images,
	})
}

// UpsertStaging implements domain.StagingPort
func (s *Service) UpsertStaging(ctx context.Context, supplierID int64, rec domain.Record) (domain.Record, error) {
	rec.ExternalID = strings.TrimSpace(rec.ExternalID)
	if rec.ExternalID == "" {
		return domain.Record{}, perr.InvalidArgf("staging record needs an external id")
	}
	rec.SupplierID = supplierID
	rec.ContentHash = Hash(rec)
	rec.FetchedAt = s.now().UTC()
	if err := s.st.Upsert(ctx, rec); err != nil {
		return domain.Record{}, perr.FromPostgresf(err, "stage %s", rec.ExternalID)
	}
	return rec, nil
}

// ListStaging implements domain.StagingPort
func (s *Service) ListStaging(ctx context.Context, supplierID int64) ([]domain.Record, error) {
	return s.st.List(ctx, supplierID)
}

// GetStaging implements domain.StagingPort
func (s *Service) GetStaging(ctx context.Context, supplierID int64, externalID string) (domain.Record, error) {
	r, err := s.st.Get(ctx, supplierID, externalID)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return r, perr.NotFoundf("staging record %s not found", externalID)
	}
	return r, err
}

// UpdatePriceAvail implements domain.StagingPort
func (s *Service) UpdatePriceAvail(ctx context.Context, supplierID int64, externalID string, pa domain.PriceAvail) error {
	err := s.st.UpdatePriceAvail(ctx, supplierID, externalID, pa, s.now().UTC())
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return perr.NotFoundf("staging record %s not found", externalID)
	}
	return err
}
