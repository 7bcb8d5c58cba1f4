package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	perr "supplysync/internal/platform/errors"
	"supplysync/internal/services/scheduler/domain"

	"github.com/google/uuid"
)

// Memory is an in-process Storage for tests and database-less runs
type Memory struct {
	mu   sync.Mutex
	rows map[uuid.UUID]domain.Schedule
}

// NewMemory returns an empty Memory store
func NewMemory() *Memory { return &Memory{rows: map[uuid.UUID]domain.Schedule{}} }

// Put implements Storage
func (m *Memory) Put(_ context.Context, s domain.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.rows[s.ID]; ok {
		s.LastRunAt, s.LastStatus = old.LastRunAt, old.LastStatus
	}
	m.rows[s.ID] = s
	return nil
}

func (m *Memory) filter(keep func(domain.Schedule) bool) []domain.Schedule {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Schedule
	for _, s := range m.rows {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SupplierID != out[j].SupplierID {
			return out[i].SupplierID < out[j].SupplierID
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// Due implements Storage
func (m *Memory) Due(_ context.Context, now time.Time) ([]domain.Schedule, error) {
	return m.filter(func(s domain.Schedule) bool { return s.Due(now) }), nil
}

// List implements Storage
func (m *Memory) List(_ context.Context, supplierID int64) ([]domain.Schedule, error) {
	return m.filter(func(s domain.Schedule) bool { return s.SupplierID == supplierID }), nil
}

// Advance implements Storage
func (m *Memory) Advance(_ context.Context, id uuid.UUID, next *time.Time, ranAt time.Time, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return perr.ErrNotFound
	}
	s.NextRunAt = next
	s.Enabled = s.Enabled && next != nil
	s.LastRunAt = &ranAt
	s.LastStatus = &status
	m.rows[id] = s
	return nil
}
