package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	perr "supplysync/internal/platform/errors"
	"supplysync/internal/services/staging/domain"
)

type memKey struct {
	supplier int64
	external string
}

// Memory is an in-process Storage for tests and database-less runs
type Memory struct {
	mu   sync.Mutex
	rows map[memKey]domain.Record
}

// NewMemory returns an empty Memory store
func NewMemory() *Memory { return &Memory{rows: map[memKey]domain.Record{}} }

// Upsert implements Storage
func (m *Memory) Upsert(_ context.Context, r domain.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey{r.SupplierID, r.ExternalID}
	if old, ok := m.rows[k]; ok {
		if r.PriceMsrp == nil {
			r.PriceMsrp = old.PriceMsrp
		}
		if r.PriceWholesale == nil {
			r.PriceWholesale = old.PriceWholesale
		}
		if r.Availability == nil {
			r.Availability = old.Availability
		}
		if r.NormSpecs == nil {
			r.NormSpecs = old.NormSpecs
		}
	}
	m.rows[k] = r
	return nil
}

// List implements Storage
func (m *Memory) List(_ context.Context, supplierID int64) ([]domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Record
	for k, r := range m.rows {
		if k.supplier == supplierID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExternalID < out[j].ExternalID })
	return out, nil
}

// Get implements Storage
func (m *Memory) Get(_ context.Context, supplierID int64, externalID string) (domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[memKey{supplierID, externalID}]
	if !ok {
		return domain.Record{}, perr.ErrNotFound
	}
	return r, nil
}

// UpdatePriceAvail implements Storage
func (m *Memory) UpdatePriceAvail(_ context.Context, supplierID int64, externalID string, pa domain.PriceAvail, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey{supplierID, externalID}
	r, ok := m.rows[k]
	if !ok {
		return perr.ErrNotFound
	}
	if pa.PriceMsrp != nil {
		r.PriceMsrp = pa.PriceMsrp
	}
	if pa.PriceWholesale != nil {
		r.PriceWholesale = pa.PriceWholesale
	}
	if pa.Availability != nil {
		r.Availability = pa.Availability
	}
	r.FetchedAt = at
	m.rows[k] = r
	return nil
}
