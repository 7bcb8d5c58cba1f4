// Package repo persists import runs and diff rows
package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"supplysync/internal/modkit/repokit"
	"supplysync/internal/platform/store"
	"supplysync/internal/services/diff/domain"

	"github.com/google/uuid"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the runs and diffs repository
type Storage interface {
	CreateRun(ctx context.Context, r domain.Run) error
	FinishRun(ctx context.Context, id uuid.UUID, status domain.RunStatus, s domain.Summary, at time.Time) error
	GetRun(ctx context.Context, id uuid.UUID) (domain.Run, error)

	DeleteUnresolved(ctx context.Context, runID uuid.UUID) (int64, error)
	// ResolvedIDs returns the external ids that already carry a resolved row in runID
	ResolvedIDs(ctx context.Context, runID uuid.UUID) (map[string]struct{}, error)
	InsertDiffs(ctx context.Context, xs []domain.Diff) error
	ListDiffs(ctx context.Context, runID uuid.UUID, f domain.Filter) ([]domain.Diff, error)
	GetDiff(ctx context.Context, id uuid.UUID) (domain.Diff, error)
	SetResolution(ctx context.Context, id uuid.UUID, res domain.Resolution, after domain.Snapshot, at time.Time) error

	// ApprovedHashes returns, per external id, the content hash of the latest approved after side
	ApprovedHashes(ctx context.Context, supplierID int64, ids []string) (map[string]string, error)
	MarkSkipSuccessful(ctx context.Context, supplierID int64, runID uuid.UUID, at time.Time) (int64, error)
}

// Store is a Storage that can also run a unit of work atomically
type Store interface {
	Storage
	Atomic(ctx context.Context, fn func(Storage) error) error
}

type pgStore struct {
	Storage
	db repokit.TxRunner
}

// NewStore binds the Postgres repo to db and runs Atomic work in db transactions
func NewStore(db repokit.TxRunner) Store {
	return &pgStore{Storage: NewPG().Bind(db), db: db}
}

// Atomic implements Store
func (s *pgStore) Atomic(ctx context.Context, fn func(Storage) error) error {
	return repokit.WithTx(ctx, s.db, func(q repokit.Queryer) error {
		return fn(NewPG().Bind(q))
	})
}

// CreateRun implements Storage
func (s *pg) CreateRun(ctx context.Context, r domain.Run) error {
	sum, err := store.JSONArg(r.Summary)
	if err != nil {
		return err
	}
	_, err = s.q.Exec(ctx, `
		INSERT INTO import_runs (id, supplier_id, status, started_at, summary)
		VALUES ($1, $2, $3, $4, $5::jsonb)`,
		r.ID.String(), r.SupplierID, string(r.Status), r.StartedAt, sum,
	)
	return err
}

// FinishRun implements Storage
func (s *pg) FinishRun(ctx context.Context, id uuid.UUID, status domain.RunStatus, sum domain.Summary, at time.Time) error {
	js, err := store.JSONArg(sum)
	if err != nil {
		return err
	}
	return store.ExecOne(ctx, s.q, `
		UPDATE import_runs SET status = $2, summary = $3::jsonb, finished_at = $4
		WHERE id = $1`,
		id.String(), string(status), js, at,
	)
}

// GetRun implements Storage
func (s *pg) GetRun(ctx context.Context, id uuid.UUID) (domain.Run, error) {
	return store.One(ctx, s.q, func(row store.Row) (domain.Run, error) {
		var (
			r      domain.Run
			rid    string
			status string
			sum    *string
		)
		if err := row.Scan(&rid, &r.SupplierID, &status, &r.StartedAt, &r.FinishedAt, &sum); err != nil {
			return r, err
		}
		r.Status = domain.RunStatus(status)
		if err := store.ParseJSON(sum, &r.Summary); err != nil {
			return r, err
		}
		var err error
		r.ID, err = uuid.Parse(rid)
		return r, err
	}, `SELECT id::text, supplier_id, status, started_at, finished_at, summary::text
		FROM import_runs WHERE id = $1`, id.String())
}

// DeleteUnresolved implements Storage
func (s *pg) DeleteUnresolved(ctx context.Context, runID uuid.UUID) (int64, error) {
	tag, err := s.q.Exec(ctx, `DELETE FROM import_diffs WHERE import_run_id = $1 AND resolution IS NULL`, runID.String())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ResolvedIDs implements Storage
func (s *pg) ResolvedIDs(ctx context.Context, runID uuid.UUID) (map[string]struct{}, error) {
	ids, err := store.Many(ctx, s.q, func(r store.Row) (string, error) {
		var id string
		err := r.Scan(&id)
		return id, err
	}, `SELECT DISTINCT external_id FROM import_diffs WHERE import_run_id = $1 AND resolution IS NOT NULL`, runID.String())
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

// import_diffs column casts, in insert order
var diffCasts = []string{"", "", "", "", "", "jsonb", "jsonb", ""}

// InsertDiffs implements Storage with one multi-row insert; callers chunk
func (s *pg) InsertDiffs(ctx context.Context, xs []domain.Diff) error {
	if len(xs) == 0 {
		return nil
	}
	args := make([]any, 0, len(xs)*len(diffCasts))
	for _, d := range xs {
		before, err := snapshotArg(d.Before)
		if err != nil {
			return err
		}
		after, err := snapshotArg(d.After)
		if err != nil {
			return err
		}
		args = append(args,
			d.ID.String(), d.RunID.String(), d.SupplierID, d.ExternalID, string(d.Type),
			before, after, d.CreatedAt,
		)
	}
	_, err := s.q.Exec(ctx, `INSERT INTO import_diffs
		(id, import_run_id, supplier_id, external_id, diff_type, before, after, created_at)
		VALUES `+store.Tuples(len(xs), diffCasts...), args...)
	return err
}

const selectDiff = `SELECT id::text, import_run_id::text, supplier_id, external_id, diff_type,
	before::text, after::text, resolution, resolved_at, created_at FROM import_diffs`

// ListDiffs implements Storage
func (s *pg) ListDiffs(ctx context.Context, runID uuid.UUID, f domain.Filter) ([]domain.Diff, error) {
	var sb strings.Builder
	var args []any
	arg := func(v any) string { args = append(args, v); return fmt.Sprintf("$%d", len(args)) }

	sb.WriteString(selectDiff + "\nWHERE import_run_id = " + arg(runID.String()) + "\n")
	if f.Actionable {
		sb.WriteString("  AND resolution IS NULL\n")
		sb.WriteString("  AND NOT (diff_type = 'delete' AND coalesce((before->>'missCount')::int, 0) < " +
			arg(f.DeleteAfter) + "::int)\n")
	}
	sb.WriteString("ORDER BY external_id, created_at")
	return store.Many(ctx, s.q, scanDiff, sb.String(), args...)
}

// GetDiff implements Storage
func (s *pg) GetDiff(ctx context.Context, id uuid.UUID) (domain.Diff, error) {
	return store.One(ctx, s.q, scanDiff, selectDiff+` WHERE id = $1`, id.String())
}

// SetResolution implements Storage
func (s *pg) SetResolution(ctx context.Context, id uuid.UUID, res domain.Resolution, after domain.Snapshot, at time.Time) error {
	js, err := snapshotArg(after)
	if err != nil {
		return err
	}
	return store.ExecOne(ctx, s.q, `
		UPDATE import_diffs SET resolution = $2, after = $3::jsonb, resolved_at = $4
		WHERE id = $1`,
		id.String(), string(res), js, at,
	)
}

// ApprovedHashes implements Storage
func (s *pg) ApprovedHashes(ctx context.Context, supplierID int64, ids []string) (map[string]string, error) {
	out := map[string]string{}
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.q.Query(ctx, `
		SELECT DISTINCT ON (external_id) external_id, after->>'contentHash'
		FROM import_diffs
		WHERE supplier_id = $1 AND external_id = ANY($2) AND resolution = 'approve'
			AND diff_type IN ('add', 'change', 'conflict') AND after->>'contentHash' IS NOT NULL
		ORDER BY external_id, resolved_at DESC`,
		supplierID, ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id, h string
		if err := rows.Scan(&id, &h); err != nil {
			return nil, err
		}
		out[id] = h
	}
	return out, rows.Err()
}

// MarkSkipSuccessful implements Storage
func (s *pg) MarkSkipSuccessful(ctx context.Context, supplierID int64, runID uuid.UUID, at time.Time) (int64, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE import_diffs d SET resolution = 'skip-successful', resolved_at = $3
		WHERE d.import_run_id = $2 AND d.supplier_id = $1 AND d.resolution IS NULL
			AND EXISTS (
				SELECT 1 FROM import_diffs h
				WHERE h.supplier_id = $1 AND h.external_id = d.external_id
					AND h.import_run_id <> $2 AND h.resolution = 'approve'
					AND h.diff_type IN ('add', 'change')
			)`,
		supplierID, runID.String(), at,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanDiff(row store.Row) (domain.Diff, error) {
	var (
		d             domain.Diff
		id, run, typ  string
		before, after *string
		res           *string
	)
	if err := row.Scan(&id, &run, &d.SupplierID, &d.ExternalID, &typ,
		&before, &after, &res, &d.ResolvedAt, &d.CreatedAt); err != nil {
		return d, err
	}
	d.Type = domain.Type(typ)
	if res != nil {
		r := domain.Resolution(*res)
		d.Resolution = &r
	}
	var err error
	if d.ID, err = uuid.Parse(id); err != nil {
		return d, err
	}
	if d.RunID, err = uuid.Parse(run); err != nil {
		return d, err
	}
	if d.Before, err = DecodeSnapshot(before); err != nil {
		return d, err
	}
	d.After, err = DecodeSnapshot(after)
	return d, err
}

func snapshotArg(s domain.Snapshot) (any, error) {
	if s == nil {
		return nil, nil
	}
	return store.JSONArg(map[string]any(s))
}

// DecodeSnapshot parses a jsonb side keeping numbers exact
func DecodeSnapshot(s *string) (domain.Snapshot, error) {
	if s == nil || *s == "" || *s == "null" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(*s)))
	dec.UseNumber()
	var out domain.Snapshot
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
