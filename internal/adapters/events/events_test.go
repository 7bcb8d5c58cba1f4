package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recIns struct {
	mu    sync.Mutex
	calls [][][]any
	err   error
}

func (r *recIns) Insert(_ context.Context, table string, rows [][]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if table != Table {
		return errors.New("wrong table " + table)
	}
	r.calls = append(r.calls, rows)
	return r.err
}

func TestBuffered_FlushesPerBatch(t *testing.T) {
	t.Parallel()

	ins := &recIns{}
	s := NewClickhouse(ins, 2)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		s.Emit(ctx, Event{RunID: "r1", SupplierID: 12, URL: "https://a.example.com/p", Kind: "detail", Outcome: "ok", Status: 200, Elapsed: 1500 * time.Millisecond})
	}
	if len(ins.calls) != 2 {
		t.Fatalf("batches=%d", len(ins.calls))
	}
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(ins.calls) != 3 || len(ins.calls[2]) != 1 {
		t.Fatalf("final flush missing: %v", ins.calls)
	}
	row := ins.calls[0][0]
	if row[8].(uint32) != 1500 || row[7].(int32) != 200 {
		t.Fatalf("row=%v", row)
	}
	if _, ok := row[0].(time.Time); !ok {
		t.Fatalf("timestamp not filled")
	}
}

func TestBuffered_ErrorDropsBatch(t *testing.T) {
	t.Parallel()

	ins := &recIns{err: errors.New("ch down")}
	s := NewClickhouse(ins, 10)
	s.Emit(context.Background(), Event{URL: "u"})
	if err := s.Flush(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("buffer should be empty after a failed flush: %v", err)
	}
}

func TestNilInserterIsNop(t *testing.T) {
	t.Parallel()

	s := NewClickhouse(nil, 0)
	if _, ok := s.(Nop); !ok {
		t.Fatalf("want Nop, got %T", s)
	}
	s.Emit(context.Background(), Event{})
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("nop flush: %v", err)
	}
}
