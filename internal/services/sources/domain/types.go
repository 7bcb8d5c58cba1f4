// Package domain defines the types and ports of the source registry
package domain

import (
	"time"

	"github.com/google/uuid"
)

// OriginKind records how a URL entered the registry
type OriginKind string

// Origin kinds
const (
	OriginManual     OriginKind = "manual"
	OriginDiscovered OriginKind = "discovered"
	OriginForced     OriginKind = "forced"
)

// Valid reports whether k is a known origin
func (k OriginKind) Valid() bool {
	switch k {
	case OriginManual, OriginDiscovered, OriginForced:
		return true
	}
	return false
}

// Source is a known supplier URL. Rows are never deleted
type Source struct {
	ID          uuid.UUID
	SupplierID  int64
	TemplateID  *int64
	URL         string
	ExternalID  *string
	OriginKind  OriginKind
	Notes       *string
	FirstSeenAt time.Time
	LastSeenAt  time.Time
	MissCount   int
}

// Registration is the input of one upsert attempt, URL already normalized
type Registration struct {
	SupplierID int64
	TemplateID *int64
	URL        string
	OriginKind OriginKind
	Notes      string
	At         time.Time
}

// Strategy names one persistence attempt of the upsert chain
type Strategy string

// Strategies in the order they are tried
const (
	StrategyUpsert    Strategy = "upsert-on-conflict"
	StrategyUpdateURL Strategy = "update-by-supplier-url"
	StrategyInsert    Strategy = "insert"
)

// Result of one strategy
type Result string

// Results
const (
	ResultInserted  Result = "inserted"
	ResultUpdated   Result = "updated"
	ResultDuplicate Result = "duplicate"
	ResultError     Result = "error"
)

// Outcome is what a strategy reports back
type Outcome struct {
	Strategy Strategy
	Result   Result
	Err      error
}

// OK is true when the registration was persisted or already present
func (o Outcome) OK() bool { return o.Result != ResultError && o.Result != "" }
