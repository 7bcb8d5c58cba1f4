// Package store opens the backends a binary is configured for and exposes
// them through narrow seams. Postgres holds catalog, staging, runs and
// schedules; ClickHouse gets run history; Redis backs sessions and locks
package store

import (
	"context"
	"errors"

	"supplysync/internal/platform/logger"

	"github.com/redis/go-redis/v9"
)

// Store holds whichever backends are enabled; the others stay nil
type Store struct {
	Log logger.Logger

	PG  TxRunner
	CH  Clickhouse
	RDS *redis.Client
}

// Row exposes the minimal scan contract a single row needs
type Row interface {
	Scan(dest ...any) error
}

// Rows exposes the minimal iteration and scan for a result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// CommandTag is a tiny interface to inspect command results
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is the read and write surface repos use for sql
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner wraps transaction execution around a function
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Clickhouse receives append-only run events
type Clickhouse interface {
	Insert(ctx context.Context, table string, rows [][]any) error
	Close() error
}

// Option adjusts a Store before any backend is dialed
type Option func(*Store) error

// WithLogger sets the logger subclients log through
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error { s.Log = log; return nil }
}

// WithPG uses tx instead of dialing Postgres
func WithPG(tx TxRunner) Option {
	return func(s *Store) error { s.PG = tx; return nil }
}

// Open dials every backend cfg enables. On failure whatever was already
// opened is closed again
func Open(ctx context.Context, cfg Config, opts ...Option) (_ *Store, err error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	defer func() {
		if err != nil {
			_ = s.Close(ctx)
		}
	}()

	if cfg.PG.Enabled && s.PG == nil {
		if s.PG, err = openPG(ctx, cfg, s); err != nil {
			return nil, err
		}
	}
	if cfg.CH.Enabled {
		if s.CH, err = openCH(ctx, cfg, s); err != nil {
			return nil, err
		}
	}
	if cfg.RDS.Enabled {
		if s.RDS, err = openRedis(ctx, cfg, s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Close closes every open backend, Postgres last
func (s *Store) Close(context.Context) error {
	var errs []error
	if s.CH != nil {
		errs = append(errs, s.CH.Close())
	}
	if s.RDS != nil {
		errs = append(errs, s.RDS.Close())
	}
	if c, ok := s.PG.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
