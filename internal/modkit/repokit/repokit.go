// Package repokit holds the shared surface SQL repos are written against
package repokit

import (
	"context"
	"time"

	perr "supplysync/internal/platform/errors"
	"supplysync/internal/platform/store"
)

type (
	// Queryer is the minimal read and write surface for SQL repos
	Queryer = store.RowQuerier

	// TxRunner can execute a function inside a transaction
	TxRunner = store.TxRunner

	// Rows are the result set of a query
	Rows = store.Rows

	// Row is a single row result from a query
	Row = store.Row

	// CommandTag is the result of a command that modifies data
	CommandTag = store.CommandTag
)

// Binder binds a repo to a Queryer, either the pool or an open transaction
type Binder[T any] interface {
	Bind(Queryer) T
}

// TxAttempts bounds how often WithTx runs fn when Postgres reports contention
const TxAttempts = 3

// txBackoff is the pause before the second attempt; it doubles after that
var txBackoff = 50 * time.Millisecond

// WithTx runs fn in a transaction. Serialization failures, deadlocks and lock
// timeouts roll back and run fn again, so fn must not keep state across calls
func WithTx(ctx context.Context, tx TxRunner, fn func(q Queryer) error) error {
	wait := txBackoff
	for attempt := 1; ; attempt++ {
		err := tx.Tx(ctx, fn)
		if err == nil || attempt == TxAttempts || !perr.Retryable(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(wait):
		}
		wait *= 2
	}
}
