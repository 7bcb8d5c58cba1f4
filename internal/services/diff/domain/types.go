// Package domain defines import runs, diff rows and the diff ports
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Type classifies one diff row
type Type string

// Diff types
const (
	Add      Type = "add"
	Change   Type = "change"
	Delete   Type = "delete"
	Conflict Type = "conflict"
)

// Resolution is the reviewer's verdict on a diff
type Resolution string

// Resolutions
const (
	Approve        Resolution = "approve"
	Reject         Resolution = "reject"
	SkipSuccessful Resolution = "skip-successful"
)

// Valid reports whether r is a known resolution
func (r Resolution) Valid() bool {
	switch r {
	case Approve, Reject, SkipSuccessful:
		return true
	}
	return false
}

// Mode selects which comparison a run performs
type Mode string

// Modes; the value doubles as summary.type
const (
	Full       Mode = "full"
	PriceAvail Mode = "price_avail"
)

// RunStatus is the lifecycle of an import run
type RunStatus string

// Run statuses
const (
	StatusStarted RunStatus = "started"
	StatusSuccess RunStatus = "success"
	StatusFailed  RunStatus = "failed"
)

// Snapshot is the JSON payload of a diff side
type Snapshot map[string]any

// MissCountKey is set on the before side of delete diffs
const MissCountKey = "missCount"

// Diff is one reviewable row of a run
type Diff struct {
	ID         uuid.UUID   `json:"id"`
	RunID      uuid.UUID   `json:"importRunId"`
	SupplierID int64       `json:"supplierId"`
	ExternalID string      `json:"externalId"`
	Type       Type        `json:"diffType"`
	Before     Snapshot    `json:"before"`
	After      Snapshot    `json:"after"`
	Resolution *Resolution `json:"resolution"`
	ResolvedAt *time.Time  `json:"resolvedAt,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// MissCount reads the miss annotation of a delete diff, zero when absent
func (d Diff) MissCount() int {
	switch v := d.Before[MissCountKey].(type) {
	case int:
		return v
	case float64:
		return int(v)
	case interface{ Int64() (int64, error) }:
		n, _ := v.Int64()
		return int(n)
	}
	return 0
}

// Pending reports a delete that has not been missing long enough to act on
func (d Diff) Pending(deleteAfter int) bool {
	return d.Type == Delete && d.MissCount() < deleteAfter
}

// Counts summarizes a run
type Counts struct {
	Add           int `json:"add"`
	Change        int `json:"change"`
	Delete        int `json:"delete"`
	Conflict      int `json:"conflict"`
	Skipped       int `json:"skipped"`
	Staged        int `json:"staged"`
	Suppressed    int `json:"suppressed"`
	FailedURLs    int `json:"failedUrls"`
	PendingDelete int `json:"pendingDelete"`
}

// Summary is the jsonb payload of a run
type Summary struct {
	Type    Mode   `json:"type"`
	Counts  Counts `json:"counts"`
	Options any    `json:"options,omitempty"`
	Notes   string `json:"notes,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Run groups exactly one diff computation pass
type Run struct {
	ID         uuid.UUID  `json:"id"`
	SupplierID int64      `json:"supplierId"`
	Status     RunStatus  `json:"status"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Summary    Summary    `json:"summary"`
}

// Filter narrows a diff listing
type Filter struct {
	// Actionable keeps unresolved rows, minus deletes still pending misses
	Actionable  bool
	DeleteAfter int
}
