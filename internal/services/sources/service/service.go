// Package service implements the source registry
package service

import (
	"context"
	"time"

	"supplysync/internal/core/urlnorm"
	perr "supplysync/internal/platform/errors"
	"supplysync/internal/platform/logger"
	"supplysync/internal/services/sources/domain"
	"supplysync/internal/services/sources/repo"

	"github.com/google/uuid"
)

// Service implements domain.RegistryPort and domain.MissPort
type Service struct {
	st  repo.Storage
	log logger.Logger
	now func() time.Time
}

// New constructs the registry over a bound storage
func New(st repo.Storage, log logger.Logger) *Service {
	return &Service{st: st, log: log, now: time.Now}
}

type step struct {
	name domain.Strategy
	run  func(ctx context.Context, r domain.Registration) (domain.Result, error)
}

// errNoMatch lets update-by-url hand over to insert without counting as a failure
var errNoMatch = perr.NotFoundf("no source row matched")

func (s *Service) chain() []step {
	return []step{
		{domain.StrategyUpsert, s.st.UpsertOnConflict},
		{domain.StrategyUpdateURL, func(ctx context.Context, r domain.Registration) (domain.Result, error) {
			ok, err := s.st.UpdateBySupplierURL(ctx, r)
			switch {
			case err != nil:
				return domain.ResultError, err
			case !ok:
				return domain.ResultError, errNoMatch
			}
			return domain.ResultUpdated, nil
		}},
		{domain.StrategyInsert, func(ctx context.Context, r domain.Registration) (domain.Result, error) {
			err := s.st.Insert(ctx, uuid.New(), r)
			switch {
			case err == nil:
				return domain.ResultInserted, nil
			case perr.IsDuplicateKey(err) || perr.IsCode(err, perr.ErrorCodeDuplicateKey):
				// a concurrent writer got there first
				return domain.ResultDuplicate, nil
			}
			return domain.ResultError, err
		}},
	}
}

// UpsertSource implements domain.RegistryPort. It returns the outcome of the
// strategy that persisted the URL, or the last failure once all are exhausted
func (s *Service) UpsertSource(
	ctx context.Context,
	supplierID int64,
	templateID *int64,
	rawURL string,
	kind domain.OriginKind,
	notes string,
) (domain.Outcome, error) {
	u, ok := urlnorm.Normalize(rawURL, "")
	if !ok {
		return domain.Outcome{Result: domain.ResultError}, perr.InvalidArgf("url %q is not a crawlable http(s) url", rawURL)
	}
	if !kind.Valid() {
		return domain.Outcome{Result: domain.ResultError}, perr.InvalidArgf("unknown origin kind %q", kind)
	}
	r := domain.Registration{
		SupplierID: supplierID,
		TemplateID: templateID,
		URL:        u,
		OriginKind: kind,
		Notes:      notes,
		At:         s.now().UTC(),
	}

	var last domain.Outcome
	for _, st := range s.chain() {
		res, err := st.run(ctx, r)
		last = domain.Outcome{Strategy: st.name, Result: res, Err: err}
		if err == nil {
			return last, nil
		}
		if err != errNoMatch {
			s.log.Debug().Err(err).Str("strategy", string(st.name)).Str("url", u).Msg("source strategy failed")
		}
	}
	s.log.Warn().Err(last.Err).
		Int64("supplier_id", supplierID).
		Str("url", u).
		Msg("source registration dropped")
	return last, perr.Wrapf(last.Err, perr.ErrorCodeDB, "register source %s", u)
}

// LinkExternalID implements domain.RegistryPort
func (s *Service) LinkExternalID(ctx context.Context, supplierID int64, rawURL, externalID string) error {
	if externalID == "" {
		return perr.InvalidArgf("external id is required")
	}
	u, ok := urlnorm.Normalize(rawURL, "")
	if !ok {
		return perr.InvalidArgf("url %q is not a crawlable http(s) url", rawURL)
	}
	return s.st.LinkExternalID(ctx, supplierID, u, externalID)
}

// FetchActiveSources implements domain.RegistryPort
func (s *Service) FetchActiveSources(ctx context.Context, supplierID int64, templateID *int64) ([]domain.Source, error) {
	return s.st.ListActive(ctx, supplierID, templateID)
}

// RecordMisses implements domain.MissPort
func (s *Service) RecordMisses(ctx context.Context, supplierID int64, present, absent []string) (map[string]int, error) {
	if err := s.st.ResetMisses(ctx, supplierID, present); err != nil {
		return nil, err
	}
	return s.st.IncrementMisses(ctx, supplierID, absent)
}
