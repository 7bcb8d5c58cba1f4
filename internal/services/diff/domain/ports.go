package domain

import (
	"context"

	"github.com/google/uuid"
)

// EnginePort computes, lists and resolves diffs
type EnginePort interface {
	Run(ctx context.Context, supplierID int64, runID uuid.UUID, mode Mode) ([]Diff, error)
	ListDiffs(ctx context.Context, runID uuid.UUID, actionable bool) ([]Diff, error)
	Resolve(ctx context.Context, diffID uuid.UUID, res Resolution, edits map[string]any) (Diff, error)
	MarkSkipSuccessful(ctx context.Context, supplierID int64, runID uuid.UUID) (int, error)
	// Tally counts diffs by type, including deletes still pending misses
	Tally(diffs []Diff) Counts
}

// RunPort persists import runs
type RunPort interface {
	CreateRun(ctx context.Context, supplierID int64, mode Mode, options any, notes string) (Run, error)
	FinishRun(ctx context.Context, runID uuid.UUID, status RunStatus, s Summary) (Run, error)
	GetRun(ctx context.Context, runID uuid.UUID) (Run, error)
}
