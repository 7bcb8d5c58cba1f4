// Package schema embeds the database DDL applied by the cmd tools and the
// integration tests
package schema

import (
	"context"
	_ "embed"
	"strings"

	"supplysync/internal/platform/store"
)

var (
	//go:embed schema.sql
	core string

	//go:embed canonical.sql
	canonical string

	//go:embed clickhouse.sql
	clickhouse string
)

// Core returns the pipeline DDL
func Core() string { return core }

// Canonical returns the canonical catalog DDL, used by local setups and tests
func Canonical() string { return canonical }

// Clickhouse returns the crawl events DDL
func Clickhouse() string { return clickhouse }

// Apply runs the pipeline DDL, plus the canonical table when withCanonical
func Apply(ctx context.Context, q store.RowQuerier, withCanonical bool) error {
	if _, err := q.Exec(ctx, core); err != nil {
		return err
	}
	if withCanonical {
		if _, err := q.Exec(ctx, canonical); err != nil {
			return err
		}
	}
	return nil
}

// Statements splits a DDL file on semicolons, for drivers that take one statement per call
func Statements(ddl string) []string {
	var out []string
	for _, s := range strings.Split(ddl, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
