// Package repo provides the staging storage
package repo

import (
	"context"
	"time"

	"supplysync/internal/modkit/repokit"
	"supplysync/internal/platform/store"
	pstrings "supplysync/internal/platform/strings"
	"supplysync/internal/services/staging/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the staging repository
type Storage interface {
	Upsert(ctx context.Context, r domain.Record) error
	List(ctx context.Context, supplierID int64) ([]domain.Record, error)
	Get(ctx context.Context, supplierID int64, externalID string) (domain.Record, error)
	UpdatePriceAvail(ctx context.Context, supplierID int64, externalID string, pa domain.PriceAvail, at time.Time) error
}

const columns = `supplier_id, external_id, title, part_type, description, images::text, raw_specs::text,
	norm_specs::text, price_msrp::text, price_wholesale::text, availability, source_url, content_hash, fetched_at`

// Upsert implements Storage. Prices missing from a crawl keep the last refreshed value
func (s *pg) Upsert(ctx context.Context, r domain.Record) error {
	images, err := store.JSONArg(nonNil(r.Images))
	if err != nil {
		return err
	}
	raw, err := store.JSONArg(nonNilMap(r.RawSpecs))
	if err != nil {
		return err
	}
	norm, err := store.JSONArg(r.NormSpecs)
	if err != nil {
		return err
	}
	_, err = s.q.Exec(ctx, `
		INSERT INTO staging_parts
			(supplier_id, external_id, title, part_type, description, images, raw_specs, norm_specs,
			 price_msrp, price_wholesale, availability, source_url, content_hash, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, $8::jsonb,
			$9::numeric, $10::numeric, $11, $12, $13, $14)
		ON CONFLICT (supplier_id, external_id) DO UPDATE SET
			title           = EXCLUDED.title,
			part_type       = EXCLUDED.part_type,
			description     = EXCLUDED.description,
			images          = EXCLUDED.images,
			raw_specs       = EXCLUDED.raw_specs,
			norm_specs      = coalesce(EXCLUDED.norm_specs, staging_parts.norm_specs),
			price_msrp      = coalesce(EXCLUDED.price_msrp, staging_parts.price_msrp),
			price_wholesale = coalesce(EXCLUDED.price_wholesale, staging_parts.price_wholesale),
			availability    = coalesce(EXCLUDED.availability, staging_parts.availability),
			source_url      = EXCLUDED.source_url,
			content_hash    = EXCLUDED.content_hash,
			fetched_at      = EXCLUDED.fetched_at`,
		r.SupplierID, r.ExternalID, r.Title, r.PartType, r.Description, images, raw, norm,
		store.DecimalArg(r.PriceMsrp), store.DecimalArg(r.PriceWholesale), pstrings.SQLNullPtr(r.Availability),
		r.SourceURL, r.ContentHash, r.FetchedAt,
	)
	return err
}

// List implements Storage
func (s *pg) List(ctx context.Context, supplierID int64) ([]domain.Record, error) {
	return store.Many(ctx, s.q, scanRecord,
		`SELECT `+columns+` FROM staging_parts WHERE supplier_id = $1 ORDER BY external_id`, supplierID)
}

// Get implements Storage
func (s *pg) Get(ctx context.Context, supplierID int64, externalID string) (domain.Record, error) {
	return store.One(ctx, s.q, scanRecord,
		`SELECT `+columns+` FROM staging_parts WHERE supplier_id = $1 AND external_id = $2`, supplierID, externalID)
}

// UpdatePriceAvail implements Storage; content_hash is left alone
func (s *pg) UpdatePriceAvail(ctx context.Context, supplierID int64, externalID string, pa domain.PriceAvail, at time.Time) error {
	return store.ExecOne(ctx, s.q, `
		UPDATE staging_parts SET
			price_msrp      = coalesce($3::numeric, price_msrp),
			price_wholesale = coalesce($4::numeric, price_wholesale),
			availability    = coalesce($5::text, availability),
			fetched_at      = $6
		WHERE supplier_id = $1 AND external_id = $2`,
		supplierID, externalID, store.DecimalArg(pa.PriceMsrp), store.DecimalArg(pa.PriceWholesale), pstrings.SQLNullPtr(pa.Availability), at,
	)
}

func scanRecord(row store.Row) (domain.Record, error) {
	var (
		r                 domain.Record
		images, raw, norm *string
		msrp, wholesale   *string
	)
	if err := row.Scan(&r.SupplierID, &r.ExternalID, &r.Title, &r.PartType, &r.Description,
		&images, &raw, &norm, &msrp, &wholesale, &r.Availability, &r.SourceURL, &r.ContentHash, &r.FetchedAt); err != nil {
		return r, err
	}
	if err := store.ParseJSON(images, &r.Images); err != nil {
		return r, err
	}
	if err := store.ParseJSON(raw, &r.RawSpecs); err != nil {
		return r, err
	}
	if err := store.ParseJSON(norm, &r.NormSpecs); err != nil {
		return r, err
	}
	var err error
	if r.PriceMsrp, err = store.ParseDecimal(msrp); err != nil {
		return r, err
	}
	r.PriceWholesale, err = store.ParseDecimal(wholesale)
	return r, err
}

func nonNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
