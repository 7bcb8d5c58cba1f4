// Package service implements the diff engine, skip-successful filter and run bookkeeping
package service

import (
	"context"
	"errors"
	"time"

	perr "supplysync/internal/platform/errors"
	"supplysync/internal/platform/logger"
	"supplysync/internal/platform/metrics"
	"supplysync/internal/platform/store"
	catdom "supplysync/internal/services/catalog/domain"
	"supplysync/internal/services/diff/domain"
	"supplysync/internal/services/diff/repo"
	srcdom "supplysync/internal/services/sources/domain"
	stgdom "supplysync/internal/services/staging/domain"

	"github.com/google/uuid"
)

// Config for the engine
type Config struct {
	DeleteAfterMisses int
	InsertChunk       int
}

// Deps are the collaborators the engine reads from
type Deps struct {
	Staging stgdom.StagingPort
	Catalog catdom.ReaderPort
	// Misses is optional; without it deletes carry no miss count
	Misses  srcdom.MissPort
	Metrics *metrics.Metrics
}

// Engine implements domain.EnginePort and domain.RunPort
type Engine struct {
	st   repo.Store
	deps Deps
	cfg  Config
	now  func() time.Time
}

// New constructs the engine
func New(st repo.Store, deps Deps, cfg Config) *Engine {
	if cfg.DeleteAfterMisses <= 0 {
		cfg.DeleteAfterMisses = 2
	}
	if cfg.InsertChunk <= 0 {
		cfg.InsertChunk = 500
	}
	return &Engine{st: st, deps: deps, cfg: cfg, now: time.Now}
}

// Run implements domain.EnginePort. It replaces the unresolved diffs of runID
// and returns the freshly written rows. External ids already resolved in runID
// keep their resolved row and get no new one
func (e *Engine) Run(ctx context.Context, supplierID int64, runID uuid.UUID, mode domain.Mode) ([]domain.Diff, error) {
	log := logger.C(ctx)

	staged, err := e.deps.Staging.ListStaging(ctx, supplierID)
	if err != nil {
		return nil, perr.FromPostgresf(err, "load staging for supplier %d", supplierID)
	}
	canon, err := e.deps.Catalog.ListCanonical(ctx, supplierID)
	if errors.Is(err, catdom.ErrAbsent) {
		log.Info().Int64("supplier_id", supplierID).Msg("canonical catalog absent, nothing to diff")
		return []domain.Diff{}, nil
	}
	if err != nil {
		return nil, perr.FromPostgresf(err, "load canonical for supplier %d", supplierID)
	}

	var diffs []domain.Diff
	switch mode {
	case domain.Full:
		diffs = ComputeDiffs(staged, canon)
		if err := e.conflicts(ctx, supplierID, diffs); err != nil {
			return nil, err
		}
		if err := e.misses(ctx, supplierID, staged, diffs); err != nil {
			return nil, err
		}
	case domain.PriceAvail:
		diffs = DiffPriceOnly(staged, canon)
	default:
		return nil, perr.InvalidArgf("unknown diff mode %q", mode)
	}

	now := e.now().UTC()
	for i := range diffs {
		diffs[i].ID = uuid.New()
		diffs[i].RunID = runID
		diffs[i].SupplierID = supplierID
		diffs[i].CreatedAt = now
	}

	computed := diffs
	err = e.st.Atomic(ctx, func(st repo.Storage) error {
		if _, err := st.DeleteUnresolved(ctx, runID); err != nil {
			return err
		}
		resolved, err := st.ResolvedIDs(ctx, runID)
		if err != nil {
			return err
		}
		diffs = withoutResolved(computed, resolved)
		for _, w := range store.Chunks(len(diffs), e.cfg.InsertChunk) {
			if err := st.InsertDiffs(ctx, diffs[w[0]:w[1]]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, perr.FromPostgresf(err, "write diffs for run %s", runID)
	}

	c := e.Tally(diffs)
	for t, n := range map[domain.Type]int{domain.Add: c.Add, domain.Change: c.Change, domain.Delete: c.Delete, domain.Conflict: c.Conflict} {
		e.deps.Metrics.DiffRows(string(t), n)
	}
	log.Info().
		Str("mode", string(mode)).
		Int("add", c.Add).Int("change", c.Change).Int("delete", c.Delete).
		Int("conflict", c.Conflict).Int("pending_delete", c.PendingDelete).
		Msg("diffs computed")
	return diffs, nil
}

func withoutResolved(diffs []domain.Diff, resolved map[string]struct{}) []domain.Diff {
	if len(resolved) == 0 {
		return diffs
	}
	out := make([]domain.Diff, 0, len(diffs))
	for _, d := range diffs {
		if _, ok := resolved[d.ExternalID]; !ok {
			out = append(out, d)
		}
	}
	return out
}

func (e *Engine) conflicts(ctx context.Context, supplierID int64, diffs []domain.Diff) error {
	var ids []string
	for _, d := range diffs {
		if d.Type == domain.Change {
			ids = append(ids, d.ExternalID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	approved, err := e.st.ApprovedHashes(ctx, supplierID, ids)
	if err != nil {
		return perr.FromPostgres(err, "load approved history")
	}
	ClassifyConflicts(diffs, approved)
	return nil
}

// misses advances the consecutive-miss counters and annotates delete diffs
func (e *Engine) misses(ctx context.Context, supplierID int64, staged []stgdom.Record, diffs []domain.Diff) error {
	if e.deps.Misses == nil {
		return nil
	}
	present := make([]string, 0, len(staged))
	for _, r := range staged {
		present = append(present, r.ExternalID)
	}
	var absent []string
	for _, d := range diffs {
		if d.Type == domain.Delete {
			absent = append(absent, d.ExternalID)
		}
	}
	counts, err := e.deps.Misses.RecordMisses(ctx, supplierID, present, absent)
	if err != nil {
		return perr.FromPostgres(err, "record misses")
	}
	for i := range diffs {
		if diffs[i].Type == domain.Delete {
			diffs[i].Before[domain.MissCountKey] = counts[diffs[i].ExternalID]
		}
	}
	return nil
}

// Tally implements domain.EnginePort
func (e *Engine) Tally(diffs []domain.Diff) domain.Counts { return Tally(diffs, e.cfg.DeleteAfterMisses) }

// ListDiffs implements domain.EnginePort
func (e *Engine) ListDiffs(ctx context.Context, runID uuid.UUID, actionable bool) ([]domain.Diff, error) {
	if _, err := e.GetRun(ctx, runID); err != nil {
		return nil, err
	}
	return e.st.ListDiffs(ctx, runID, domain.Filter{Actionable: actionable, DeleteAfter: e.cfg.DeleteAfterMisses})
}

// Resolve implements domain.EnginePort. Edits are merged shallowly onto the after side
func (e *Engine) Resolve(ctx context.Context, diffID uuid.UUID, res domain.Resolution, edits map[string]any) (domain.Diff, error) {
	if !res.Valid() {
		return domain.Diff{}, perr.InvalidArgf("invalid resolution %q", res)
	}
	d, err := e.st.GetDiff(ctx, diffID)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return domain.Diff{}, perr.NotFoundf("diff %s not found", diffID)
	}
	if err != nil {
		return domain.Diff{}, err
	}

	after := d.After
	if len(edits) > 0 {
		merged := make(domain.Snapshot, len(after)+len(edits))
		for k, v := range after {
			merged[k] = v
		}
		for k, v := range edits {
			merged[k] = v
		}
		after = merged
	}
	at := e.now().UTC()
	if err := e.st.SetResolution(ctx, diffID, res, after, at); err != nil {
		return domain.Diff{}, perr.FromPostgresf(err, "resolve diff %s", diffID)
	}
	d.After, d.Resolution, d.ResolvedAt = after, &res, &at
	logger.C(ctx).Info().Str("diff_id", diffID.String()).Str("resolution", string(res)).Msg("diff resolved")
	return d, nil
}

// MarkSkipSuccessful implements domain.EnginePort
func (e *Engine) MarkSkipSuccessful(ctx context.Context, supplierID int64, runID uuid.UUID) (int, error) {
	n, err := e.st.MarkSkipSuccessful(ctx, supplierID, runID, e.now().UTC())
	if err != nil {
		return 0, perr.FromPostgresf(err, "skip successful for run %s", runID)
	}
	return int(n), nil
}

// CreateRun implements domain.RunPort
func (e *Engine) CreateRun(ctx context.Context, supplierID int64, mode domain.Mode, options any, notes string) (domain.Run, error) {
	r := domain.Run{
		ID:         uuid.New(),
		SupplierID: supplierID,
		Status:     domain.StatusStarted,
		StartedAt:  e.now().UTC(),
		Summary:    domain.Summary{Type: mode, Options: options, Notes: notes},
	}
	if err := e.st.CreateRun(ctx, r); err != nil {
		return domain.Run{}, perr.FromPostgres(err, "create import run")
	}
	return r, nil
}

// FinishRun implements domain.RunPort
func (e *Engine) FinishRun(ctx context.Context, runID uuid.UUID, status domain.RunStatus, s domain.Summary) (domain.Run, error) {
	if err := e.st.FinishRun(ctx, runID, status, s, e.now().UTC()); err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.Run{}, perr.NotFoundf("run %s not found", runID)
		}
		return domain.Run{}, perr.FromPostgres(err, "finish import run")
	}
	return e.GetRun(ctx, runID)
}

// GetRun implements domain.RunPort
func (e *Engine) GetRun(ctx context.Context, runID uuid.UUID) (domain.Run, error) {
	r, err := e.st.GetRun(ctx, runID)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return r, perr.NotFoundf("run %s not found", runID)
	}
	return r, err
}
