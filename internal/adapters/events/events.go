// Package events records crawl telemetry to ClickHouse
package events

import (
	"context"
	"sync"
	"time"

	"supplysync/internal/platform/logger"
)

// Table is the ClickHouse table events land in
const Table = "crawl_events"

// Event is one observation about a crawled url
type Event struct {
	At         time.Time
	RunID      string
	SupplierID int64
	URL        string
	Kind       string // seed|list|detail|series|xhr|sitemap
	Outcome    string // ok|failed|staged|suppressed|discovered
	Reason     string
	Status     int
	Elapsed    time.Duration
}

// Sink accepts events. Emit never blocks the crawl on I/O failures
type Sink interface {
	Emit(ctx context.Context, e Event)
	Flush(ctx context.Context) error
}

// Inserter is the subset of the ClickHouse store used here
type Inserter interface {
	Insert(ctx context.Context, table string, rows [][]any) error
}

// Nop discards events
type Nop struct{}

// Emit implements Sink
func (Nop) Emit(context.Context, Event) {}

// Flush implements Sink
func (Nop) Flush(context.Context) error { return nil }

// Buffered batches events and writes them with one insert per batch
type Buffered struct {
	ins   Inserter
	batch int
	log   logger.Logger

	mu  sync.Mutex
	buf [][]any
}

// NewClickhouse returns a buffered sink, or Nop when ins is nil
func NewClickhouse(ins Inserter, batch int) Sink {
	if ins == nil {
		return Nop{}
	}
	if batch <= 0 {
		batch = 500
	}
	return &Buffered{ins: ins, batch: batch, log: *logger.Named("events")}
}

// Emit implements Sink
func (b *Buffered) Emit(ctx context.Context, e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	row := []any{
		e.At.UTC(), e.RunID, e.SupplierID, e.URL, e.Kind, e.Outcome, e.Reason,
		int32(e.Status), uint32(e.Elapsed / time.Millisecond),
	}
	b.mu.Lock()
	b.buf = append(b.buf, row)
	full := len(b.buf) >= b.batch
	b.mu.Unlock()
	if full {
		if err := b.Flush(ctx); err != nil {
			b.log.Warn().Err(err).Msg("crawl events flush failed")
		}
	}
}

// Flush writes whatever is buffered. Failed batches are dropped
func (b *Buffered) Flush(ctx context.Context) error {
	b.mu.Lock()
	rows := b.buf
	b.buf = nil
	b.mu.Unlock()
	if len(rows) == 0 {
		return nil
	}
	return b.ins.Insert(ctx, Table, rows)
}
