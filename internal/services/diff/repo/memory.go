package repo

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	perr "supplysync/internal/platform/errors"
	"supplysync/internal/services/diff/domain"

	"github.com/google/uuid"
)

// Memory is an in-process Store for tests and database-less runs
type Memory struct {
	mu    sync.Mutex
	tx    sync.Mutex
	runs  map[uuid.UUID]domain.Run
	diffs map[uuid.UUID]domain.Diff
}

// NewMemory returns an empty Memory store
func NewMemory() *Memory {
	return &Memory{runs: map[uuid.UUID]domain.Run{}, diffs: map[uuid.UUID]domain.Diff{}}
}

// Atomic implements Store; work is serialized, not rolled back
func (m *Memory) Atomic(_ context.Context, fn func(Storage) error) error {
	m.tx.Lock()
	defer m.tx.Unlock()
	return fn(m)
}

// CreateRun implements Storage
func (m *Memory) CreateRun(_ context.Context, r domain.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[r.ID]; ok {
		return perr.DuplicateKeyf("run %s exists", r.ID)
	}
	m.runs[r.ID] = r
	return nil
}

// FinishRun implements Storage
func (m *Memory) FinishRun(_ context.Context, id uuid.UUID, status domain.RunStatus, s domain.Summary, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return perr.ErrNotFound
	}
	r.Status, r.Summary, r.FinishedAt = status, s, &at
	m.runs[id] = r
	return nil
}

// GetRun implements Storage
func (m *Memory) GetRun(_ context.Context, id uuid.UUID) (domain.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return r, perr.ErrNotFound
	}
	return r, nil
}

// DeleteUnresolved implements Storage
func (m *Memory) DeleteUnresolved(_ context.Context, runID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, d := range m.diffs {
		if d.RunID == runID && d.Resolution == nil {
			delete(m.diffs, id)
			n++
		}
	}
	return n, nil
}

// ResolvedIDs implements Storage
func (m *Memory) ResolvedIDs(_ context.Context, runID uuid.UUID) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]struct{}{}
	for _, d := range m.diffs {
		if d.RunID == runID && d.Resolution != nil {
			out[d.ExternalID] = struct{}{}
		}
	}
	return out, nil
}

// InsertDiffs implements Storage
func (m *Memory) InsertDiffs(_ context.Context, xs []domain.Diff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range xs {
		if _, ok := m.runs[d.RunID]; !ok {
			return perr.InvalidArgf("run %s does not exist", d.RunID)
		}
		m.diffs[d.ID] = clone(d)
	}
	return nil
}

// ListDiffs implements Storage
func (m *Memory) ListDiffs(_ context.Context, runID uuid.UUID, f domain.Filter) ([]domain.Diff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Diff
	for _, d := range m.diffs {
		if d.RunID != runID {
			continue
		}
		if f.Actionable && (d.Resolution != nil || d.Pending(f.DeleteAfter)) {
			continue
		}
		out = append(out, clone(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExternalID < out[j].ExternalID })
	return out, nil
}

// GetDiff implements Storage
func (m *Memory) GetDiff(_ context.Context, id uuid.UUID) (domain.Diff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.diffs[id]
	if !ok {
		return d, perr.ErrNotFound
	}
	return clone(d), nil
}

// SetResolution implements Storage
func (m *Memory) SetResolution(_ context.Context, id uuid.UUID, res domain.Resolution, after domain.Snapshot, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.diffs[id]
	if !ok {
		return perr.ErrNotFound
	}
	d.Resolution, d.After, d.ResolvedAt = &res, after, &at
	m.diffs[id] = clone(d)
	return nil
}

// ApprovedHashes implements Storage
func (m *Memory) ApprovedHashes(_ context.Context, supplierID int64, ids []string) (map[string]string, error) {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]string{}
	latest := map[string]time.Time{}
	for _, d := range m.diffs {
		if d.SupplierID != supplierID || !want[d.ExternalID] || d.Resolution == nil || *d.Resolution != domain.Approve {
			continue
		}
		if d.Type == domain.Delete || d.ResolvedAt == nil {
			continue
		}
		h, ok := d.After["contentHash"].(string)
		if !ok {
			continue
		}
		if t, seen := latest[d.ExternalID]; !seen || d.ResolvedAt.After(t) {
			latest[d.ExternalID], out[d.ExternalID] = *d.ResolvedAt, h
		}
	}
	return out, nil
}

// MarkSkipSuccessful implements Storage
func (m *Memory) MarkSkipSuccessful(_ context.Context, supplierID int64, runID uuid.UUID, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	approved := map[string]bool{}
	for _, d := range m.diffs {
		if d.SupplierID == supplierID && d.RunID != runID && d.Resolution != nil && *d.Resolution == domain.Approve &&
			(d.Type == domain.Add || d.Type == domain.Change) {
			approved[d.ExternalID] = true
		}
	}
	var n int64
	skip := domain.SkipSuccessful
	for id, d := range m.diffs {
		if d.RunID == runID && d.SupplierID == supplierID && d.Resolution == nil && approved[d.ExternalID] {
			d.Resolution, d.ResolvedAt = &skip, &at
			m.diffs[id] = d
			n++
		}
	}
	return n, nil
}

// clone round-trips the snapshots so callers never share maps with the store
func clone(d domain.Diff) domain.Diff {
	d.Before, d.After = cloneSnap(d.Before), cloneSnap(d.After)
	return d
}

func cloneSnap(s domain.Snapshot) domain.Snapshot {
	if s == nil {
		return nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return s
	}
	str := string(b)
	out, err := DecodeSnapshot(&str)
	if err != nil {
		return s
	}
	return out
}
