// Package repo reads canonical parts
package repo

import (
	"context"
	"sort"
	"sync"

	"supplysync/internal/modkit/repokit"
	"supplysync/internal/platform/store"
	"supplysync/internal/services/catalog/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the canonical read repository
type Storage interface {
	List(ctx context.Context, supplierID int64) ([]domain.Part, error)
}

// List implements Storage
func (s *pg) List(ctx context.Context, supplierID int64) ([]domain.Part, error) {
	return store.Many(ctx, s.q, scanPart, `
		SELECT supplier_id, external_id, title, part_type, description, images::text, specs::text,
			price_msrp::text, price_wholesale::text, availability, content_hash, published_at
		FROM canonical_parts
		WHERE supplier_id = $1
		ORDER BY external_id`, supplierID)
}

func scanPart(row store.Row) (domain.Part, error) {
	var (
		p               domain.Part
		images, specs   *string
		msrp, wholesale *string
	)
	if err := row.Scan(&p.SupplierID, &p.ExternalID, &p.Title, &p.PartType, &p.Description,
		&images, &specs, &msrp, &wholesale, &p.Availability, &p.ContentHash, &p.PublishedAt); err != nil {
		return p, err
	}
	if err := store.ParseJSON(images, &p.Images); err != nil {
		return p, err
	}
	if err := store.ParseJSON(specs, &p.Specs); err != nil {
		return p, err
	}
	var err error
	if p.PriceMsrp, err = store.ParseDecimal(msrp); err != nil {
		return p, err
	}
	p.PriceWholesale, err = store.ParseDecimal(wholesale)
	return p, err
}

// Memory holds canonical parts in process. A nil Memory behaves like a missing table
type Memory struct {
	mu    sync.Mutex
	parts map[int64][]domain.Part
}

// NewMemory returns an empty canonical store
func NewMemory() *Memory { return &Memory{parts: map[int64][]domain.Part{}} }

// Put replaces one part, keyed by supplier and external id
func (m *Memory) Put(p domain.Part) {
	m.mu.Lock()
	defer m.mu.Unlock()
	xs := m.parts[p.SupplierID]
	for i := range xs {
		if xs[i].ExternalID == p.ExternalID {
			xs[i] = p
			return
		}
	}
	m.parts[p.SupplierID] = append(xs, p)
}

// List implements Storage
func (m *Memory) List(_ context.Context, supplierID int64) ([]domain.Part, error) {
	if m == nil {
		return nil, domain.ErrAbsent
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]domain.Part(nil), m.parts[supplierID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].ExternalID < out[j].ExternalID })
	return out, nil
}
