package pg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"supplysync/internal/platform/logger"
	kit "supplysync/internal/platform/testkit"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const dsn = "postgres://sync:pw@db:5432/supplysync?sslmode=disable"

func TestPoolConfig(t *testing.T) {
	t.Parallel()

	pc, err := poolConfig(Config{URL: dsn, MaxConns: 6, AppName: "supplysync-api", LockTimeout: 1500 * time.Millisecond})
	if err != nil {
		t.Fatalf("poolConfig: %v", err)
	}
	rp := pc.ConnConfig.RuntimeParams
	if pc.MaxConns != 6 || rp["application_name"] != "supplysync-api" || rp["lock_timeout"] != "1500" {
		t.Fatalf("max=%d params=%v", pc.MaxConns, rp)
	}

	pc, err = poolConfig(Config{URL: dsn})
	if err != nil {
		t.Fatalf("poolConfig: %v", err)
	}
	if _, set := pc.ConnConfig.RuntimeParams["lock_timeout"]; set {
		t.Fatalf("lock_timeout set without a config value")
	}

	if _, err := poolConfig(Config{URL: "://nope"}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestOpen(t *testing.T) {
	kit.Serial(t)

	t.Run("pool error", func(t *testing.T) {
		kit.Swap(t, &newPool, func(context.Context, *pgxpool.Config) (*pgxpool.Pool, error) {
			return nil, errors.New("dial refused")
		})
		if _, err := Open(context.Background(), Config{URL: dsn}, nil); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("keeps tracing knobs", func(t *testing.T) {
		// zero value pool; never closed
		kit.Swap(t, &newPool, func(context.Context, *pgxpool.Config) (*pgxpool.Pool, error) {
			return &pgxpool.Pool{}, nil
		})
		tr := Tracer(zerolog.Nop())
		p, err := Open(context.Background(), Config{URL: dsn, Slow: time.Second}, tr)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if p.Pool == nil || p.Tracer != tr || p.Slow != time.Second {
			t.Fatalf("pg=%+v", p)
		}
	})
}

func TestClose_NilSafe(t *testing.T) {
	t.Parallel()

	var p *PG
	p.Close()
	(&PG{}).Close()
}

func TestTracer(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tr := Tracer(zerolog.New(&buf))
	ctx := logger.WithRun(context.Background(), 12, "run-7")

	for _, slow := range []bool{false, true} {
		buf.Reset()
		tr.OnQuery(ctx, QueryEvent{
			SQL:     "UPDATE supplier_12_catalog\n   SET price = $1\n WHERE sku = $2",
			Elapsed: 2500 * time.Microsecond,
			Err:     errors.New("canceling statement due to lock timeout"),
			Slow:    slow,
		})
		var got struct {
			Level     string  `json:"level"`
			SQL       string  `json:"sql"`
			Elapsed   float64 `json:"elapsed"`
			Component string  `json:"component"`
			Supplier  int64   `json:"supplier_id"`
			Run       string  `json:"run_id"`
		}
		if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &got); err != nil {
			t.Fatalf("unmarshal: %v raw=%s", err, buf.String())
		}
		want := "info"
		if slow {
			want = "warn"
		}
		if got.Level != want || got.SQL != "UPDATE supplier_12_catalog SET price = $1 WHERE sku = $2" {
			t.Fatalf("line %+v slow=%v", got, slow)
		}
		if got.Elapsed != 2.5 || got.Component != "pg" || got.Supplier != 12 || got.Run != "run-7" {
			t.Fatalf("fields %+v", got)
		}
	}
}
