package repo

import (
	"context"
	"errors"
	"sort"
	"sync"

	perr "supplysync/internal/platform/errors"
	"supplysync/internal/services/sources/domain"

	"github.com/google/uuid"
)

// ErrNoConstraint mirrors the failure of ON CONFLICT on a schema without the unique key
var ErrNoConstraint = errors.New("no unique or exclusion constraint matching the ON CONFLICT specification")

type memKey struct {
	supplier int64
	template int64
	url      string
}

// Memory is an in-process Storage for tests and database-less runs
type Memory struct {
	mu      sync.Mutex
	rows    map[memKey]*domain.Source
	orphans map[int64]map[string]int

	// Legacy makes UpsertOnConflict fail like a schema missing the unique key
	Legacy bool
	// FailInsert forces Insert to error
	FailInsert error
}

// NewMemory returns an empty Memory store
func NewMemory() *Memory {
	return &Memory{rows: map[memKey]*domain.Source{}, orphans: map[int64]map[string]int{}}
}

func keyOf(r domain.Registration) memKey {
	k := memKey{supplier: r.SupplierID, url: r.URL}
	if r.TemplateID != nil {
		k.template = *r.TemplateID
	}
	return k
}

func (m *Memory) touch(src *domain.Source, r domain.Registration) {
	src.LastSeenAt = r.At
	if r.OriginKind != domain.OriginDiscovered {
		src.OriginKind = r.OriginKind
	}
	if r.Notes != "" {
		n := r.Notes
		src.Notes = &n
	}
}

// UpsertOnConflict implements Storage
func (m *Memory) UpsertOnConflict(ctx context.Context, r domain.Registration) (domain.Result, error) {
	if m.Legacy {
		return domain.ResultError, ErrNoConstraint
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if src, ok := m.rows[keyOf(r)]; ok {
		m.touch(src, r)
		return domain.ResultUpdated, nil
	}
	m.put(uuid.New(), r)
	return domain.ResultInserted, nil
}

// UpdateBySupplierURL implements Storage
func (m *Memory) UpdateBySupplierURL(_ context.Context, r domain.Registration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	src, ok := m.rows[keyOf(r)]
	if !ok {
		return false, nil
	}
	m.touch(src, r)
	return true, nil
}

// Insert implements Storage
func (m *Memory) Insert(_ context.Context, id uuid.UUID, r domain.Registration) error {
	if m.FailInsert != nil {
		return m.FailInsert
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[keyOf(r)]; ok {
		return perr.DuplicateKeyf("source %s already registered", r.URL)
	}
	m.put(id, r)
	return nil
}

func (m *Memory) put(id uuid.UUID, r domain.Registration) {
	src := &domain.Source{
		ID:          id,
		SupplierID:  r.SupplierID,
		TemplateID:  r.TemplateID,
		URL:         r.URL,
		OriginKind:  r.OriginKind,
		FirstSeenAt: r.At,
		LastSeenAt:  r.At,
	}
	if r.Notes != "" {
		n := r.Notes
		src.Notes = &n
	}
	m.rows[keyOf(r)] = src
}

// LinkExternalID implements Storage
func (m *Memory) LinkExternalID(_ context.Context, supplierID int64, url, externalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, src := range m.rows {
		if k.supplier == supplierID && k.url == url && src.ExternalID == nil {
			id := externalID
			src.ExternalID = &id
		}
	}
	return nil
}

// ListActive implements Storage
func (m *Memory) ListActive(_ context.Context, supplierID int64, templateID *int64) ([]domain.Source, error) {
	var tk int64
	if templateID != nil {
		tk = *templateID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Source
	for k, src := range m.rows {
		if k.supplier == supplierID && k.template == tk {
			out = append(out, *src)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FirstSeenAt.Equal(out[j].FirstSeenAt) {
			return out[i].URL < out[j].URL
		}
		return out[i].FirstSeenAt.Before(out[j].FirstSeenAt)
	})
	return out, nil
}

// ResetMisses implements Storage
func (m *Memory) ResetMisses(_ context.Context, supplierID int64, ids []string) error {
	set := toSet(ids)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, src := range m.rows {
		if src.SupplierID == supplierID && src.ExternalID != nil && set[*src.ExternalID] {
			src.MissCount = 0
		}
	}
	for id := range set {
		delete(m.orphans[supplierID], id)
	}
	return nil
}

// IncrementMisses implements Storage
func (m *Memory) IncrementMisses(_ context.Context, supplierID int64, ids []string) (map[string]int, error) {
	set := toSet(ids)
	out := make(map[string]int, len(ids))
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, src := range m.rows {
		if src.SupplierID == supplierID && src.ExternalID != nil && set[*src.ExternalID] {
			src.MissCount++
			out[*src.ExternalID] = max(out[*src.ExternalID], src.MissCount)
		}
	}
	for id := range set {
		if _, ok := out[id]; ok {
			continue
		}
		if m.orphans[supplierID] == nil {
			m.orphans[supplierID] = map[string]int{}
		}
		m.orphans[supplierID][id]++
		out[id] = m.orphans[supplierID][id]
	}
	return out, nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
