// Package pg opens the Postgres pool behind the catalog, run and schedule repos
package pg

import (
	"context"
	"strconv"
	"strings"
	"time"

	"supplysync/internal/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Config is the pool shape for one binary
type Config struct {
	URL      string
	MaxConns int32
	AppName  string // reported as application_name

	// LockTimeout bounds row lock waits so a diff apply racing another run
	// fails with 55P03 and is retried instead of hanging. Zero leaves the server default
	LockTimeout time.Duration

	// Slow marks traced statements at or above it; zero traces nothing as slow
	Slow time.Duration
}

// PG is an open pool with its tracing knobs
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	Slow   time.Duration
}

var newPool = pgxpool.NewWithConfig

// poolConfig turns cfg into a pgxpool config without dialing
func poolConfig(cfg Config) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	params := pc.ConnConfig.RuntimeParams
	if cfg.AppName != "" {
		params["application_name"] = cfg.AppName
	}
	if cfg.LockTimeout > 0 {
		params["lock_timeout"] = strconv.FormatInt(cfg.LockTimeout.Milliseconds(), 10)
	}
	return pc, nil
}

// Open builds the pool. It does not ping; callers decide how long to wait for the server
func Open(ctx context.Context, cfg Config, tracer QueryTracer) (*PG, error) {
	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := newPool(ctx, pc)
	if err != nil {
		return nil, err
	}
	return &PG{Pool: pool, Tracer: tracer, Slow: cfg.Slow}, nil
}

// Close releases the pool; nil safe
func (p *PG) Close() {
	if p == nil || p.Pool == nil {
		return
	}
	p.Pool.Close()
}

// QueryEvent describes one finished statement
type QueryEvent struct {
	SQL     string
	Args    any
	Elapsed time.Duration
	Err     error
	Slow    bool
}

// QueryTracer is told about every statement the store runs
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs statements through root at info, slow ones at warn. The request
// and run ids in ctx are attached so SQL lines join their run
func Tracer(root logger.Logger) QueryTracer {
	return logTracer{log: root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()}
}

type logTracer struct{ log logger.Logger }

func (l logTracer) OnQuery(ctx context.Context, ev QueryEvent) {
	log := logger.Tag(ctx, l.log.With()).Logger()
	evt := log.Info()
	if ev.Slow {
		evt = log.Warn()
	}
	evt.Dur("elapsed", ev.Elapsed).
		Str("sql", oneLine(ev.SQL)).
		Interface("args", ev.Args).
		Err(ev.Err).
		Msg("pg query")
}

func oneLine(s string) string { return strings.Join(strings.Fields(s), " ") }
