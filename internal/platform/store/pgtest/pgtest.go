//go:build integration_pg

// Package pgtest gives each integration test its own freshly migrated
// database. One postgres container serves the whole test binary; the
// testcontainers reaper removes it when the binary exits
package pgtest

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"supplysync/internal/platform/store"
	"supplysync/internal/platform/store/schema"

	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	once    sync.Once
	server  *url.URL
	bootErr error
	dbSeq   atomic.Int64
)

func boot() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env:          map[string]string{"POSTGRES_PASSWORD": "postgres"},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		bootErr = fmt.Errorf("start postgres: %w", err)
		return
	}
	ep, err := c.PortEndpoint(ctx, "5432/tcp", "")
	if err != nil {
		bootErr = fmt.Errorf("postgres endpoint: %w", err)
		return
	}
	server = &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword("postgres", "postgres"),
		Host:     ep,
		Path:     "/postgres",
		RawQuery: "sslmode=disable",
	}
}

func open(t *testing.T, ctx context.Context, db string) store.TxRunner {
	t.Helper()
	u := *server
	u.Path = "/" + db
	s, err := store.Open(ctx, store.Config{
		AppName: "supplysync-test",
		PG:      store.PGConfig{Enabled: true, URL: u.String(), MaxConns: 4, ConnectRetries: 5},
	}, store.WithLogger(zerolog.New(io.Discard)))
	if err != nil {
		t.Fatalf("open %s: %v", db, err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s.PG
}

// Start creates an empty database for t, applies the schema and returns a
// runner bound to it. withCanonical also creates the canonical catalog tables
func Start(t *testing.T, withCanonical bool) store.TxRunner {
	t.Helper()
	once.Do(boot)
	if bootErr != nil {
		t.Fatalf("pgtest: %v", bootErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db := fmt.Sprintf("supplysync_t%d", dbSeq.Add(1))
	if _, err := open(t, ctx, "postgres").Exec(ctx, "CREATE DATABASE "+db); err != nil {
		t.Fatalf("create %s: %v", db, err)
	}
	q := open(t, ctx, db)
	if err := schema.Apply(ctx, q, withCanonical); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return q
}
