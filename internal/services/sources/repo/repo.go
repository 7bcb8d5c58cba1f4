// Package repo provides the source registry storage
package repo

import (
	"context"

	"supplysync/internal/modkit/repokit"
	pstrings "supplysync/internal/platform/strings"
	"supplysync/internal/services/sources/domain"

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

// Storage is the persistence surface of the registry. Each upsert strategy is
// its own method so the service can fall through them in order
type Storage interface {
	UpsertOnConflict(ctx context.Context, r domain.Registration) (domain.Result, error)
	// UpdateBySupplierURL reports whether a row matched
	UpdateBySupplierURL(ctx context.Context, r domain.Registration) (bool, error)
	Insert(ctx context.Context, id uuid.UUID, r domain.Registration) error
	LinkExternalID(ctx context.Context, supplierID int64, url, externalID string) error
	ListActive(ctx context.Context, supplierID int64, templateID *int64) ([]domain.Source, error)
	ResetMisses(ctx context.Context, supplierID int64, ids []string) error
	IncrementMisses(ctx context.Context, supplierID int64, ids []string) (map[string]int, error)
}

// UpsertOnConflict implements Storage
func (s *pg) UpsertOnConflict(ctx context.Context, r domain.Registration) (domain.Result, error) {
	// manual and forced origins survive rediscovery; external_id is never touched here
	const q = `
		INSERT INTO supplier_sources
			(id, supplier_id, template_id, url, origin_kind, notes, first_seen_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (supplier_id, template_key, url) DO UPDATE SET
			last_seen_at = EXCLUDED.last_seen_at,
			origin_kind  = CASE WHEN EXCLUDED.origin_kind = 'discovered'
				THEN supplier_sources.origin_kind ELSE EXCLUDED.origin_kind END,
			notes        = coalesce(EXCLUDED.notes, supplier_sources.notes)
		RETURNING (xmax = 0)`

	var inserted bool
	err := s.q.QueryRow(ctx, q,
		uuid.NewString(), r.SupplierID, r.TemplateID, r.URL, string(r.OriginKind),
		pstrings.SQLNull(r.Notes), r.At,
	).Scan(&inserted)
	if err != nil {
		return domain.ResultError, err
	}
	if inserted {
		return domain.ResultInserted, nil
	}
	return domain.ResultUpdated, nil
}

// UpdateBySupplierURL implements Storage
func (s *pg) UpdateBySupplierURL(ctx context.Context, r domain.Registration) (bool, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE supplier_sources SET
			last_seen_at = $4,
			origin_kind  = CASE WHEN $5::text = 'discovered' THEN origin_kind ELSE $5::text END,
			notes        = coalesce($6::text, notes)
		WHERE supplier_id = $1 AND coalesce(template_id, 0) = coalesce($2::bigint, 0) AND url = $3`,
		r.SupplierID, r.TemplateID, r.URL, r.At, string(r.OriginKind), pstrings.SQLNull(r.Notes),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Insert implements Storage
func (s *pg) Insert(ctx context.Context, id uuid.UUID, r domain.Registration) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO supplier_sources
			(id, supplier_id, template_id, url, origin_kind, notes, first_seen_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		id.String(), r.SupplierID, r.TemplateID, r.URL, string(r.OriginKind), pstrings.SQLNull(r.Notes), r.At,
	)
	return err
}

// LinkExternalID implements Storage; an id already linked is left alone
func (s *pg) LinkExternalID(ctx context.Context, supplierID int64, url, externalID string) error {
	_, err := s.q.Exec(ctx, `
		UPDATE supplier_sources SET external_id = $3
		WHERE supplier_id = $1 AND url = $2 AND external_id IS NULL`,
		supplierID, url, externalID,
	)
	return err
}

// ListActive implements Storage
func (s *pg) ListActive(ctx context.Context, supplierID int64, templateID *int64) ([]domain.Source, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id::text, supplier_id, template_id, url, external_id, origin_kind, notes,
			first_seen_at, last_seen_at, miss_count
		FROM supplier_sources
		WHERE supplier_id = $1 AND coalesce(template_id, 0) = coalesce($2::bigint, 0)
		ORDER BY first_seen_at, url`,
		supplierID, templateID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Source
	for rows.Next() {
		var (
			src  domain.Source
			id   string
			kind string
		)
		if err := rows.Scan(&id, &src.SupplierID, &src.TemplateID, &src.URL, &src.ExternalID,
			&kind, &src.Notes, &src.FirstSeenAt, &src.LastSeenAt, &src.MissCount); err != nil {
			return nil, err
		}
		if src.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		src.OriginKind = domain.OriginKind(kind)
		out = append(out, src)
	}
	return out, rows.Err()
}

// ResetMisses implements Storage
func (s *pg) ResetMisses(ctx context.Context, supplierID int64, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.q.Exec(ctx, `
		UPDATE supplier_sources SET miss_count = 0
		WHERE supplier_id = $1 AND external_id = ANY($2) AND miss_count <> 0`,
		supplierID, ids,
	); err != nil {
		return err
	}
	_, err := s.q.Exec(ctx, `DELETE FROM miss_counts WHERE supplier_id = $1 AND external_id = ANY($2)`, supplierID, ids)
	return err
}

// IncrementMisses implements Storage. Ids linked to a source are counted on the
// source rows, the rest in miss_counts
func (s *pg) IncrementMisses(ctx context.Context, supplierID int64, ids []string) (map[string]int, error) {
	out := make(map[string]int, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	collect := func(sql string, args ...any) error {
		rows, err := s.q.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				id string
				n  int
			)
			if err := rows.Scan(&id, &n); err != nil {
				return err
			}
			out[id] = max(out[id], n)
		}
		return rows.Err()
	}

	if err := collect(`
		UPDATE supplier_sources SET miss_count = miss_count + 1
		WHERE supplier_id = $1 AND external_id = ANY($2)
		RETURNING external_id, miss_count`, supplierID, ids); err != nil {
		return nil, err
	}

	var orphans []string
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			orphans = append(orphans, id)
		}
	}
	if len(orphans) == 0 {
		return out, nil
	}
	err := collect(`
		INSERT INTO miss_counts (supplier_id, external_id, miss_count, updated_at)
		SELECT $1, x, 1, now() FROM unnest($2::text[]) AS x
		ON CONFLICT (supplier_id, external_id) DO UPDATE SET
			miss_count = miss_counts.miss_count + 1,
			updated_at = now()
		RETURNING external_id, miss_count`, supplierID, orphans)
	if err != nil {
		return nil, err
	}
	return out, nil
}
