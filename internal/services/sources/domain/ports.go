package domain

import "context"

// RegistryPort registers and reads supplier URLs
type RegistryPort interface {
	UpsertSource(ctx context.Context, supplierID int64, templateID *int64, rawURL string, kind OriginKind, notes string) (Outcome, error)
	LinkExternalID(ctx context.Context, supplierID int64, url, externalID string) error
	FetchActiveSources(ctx context.Context, supplierID int64, templateID *int64) ([]Source, error)
}

// MissPort tracks how many consecutive full runs an external id was absent from staging
type MissPort interface {
	// RecordMisses resets counters of present ids and bumps absent ones, returning the new absent counts
	RecordMisses(ctx context.Context, supplierID int64, present, absent []string) (map[string]int, error)
}
