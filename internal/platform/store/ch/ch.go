// Package ch writes run events to ClickHouse over the native protocol
package ch

import (
	"context"
	"fmt"
	"os"
	"time"

	"supplysync/internal/core/version"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Config configures the connection
type Config struct {
	URL         string
	ClientName  string // product name in system.query_log
	ClientTag   string // binary role: api, crawl or scheduler
	DialTimeout time.Duration
}

// CH is an open native connection
type CH struct {
	conn driver.Conn
}

var openConn = clickhouse.Open

// Open parses the DSN and prepares the connection; nothing is dialed until first use
func Open(_ context.Context, cfg Config) (*CH, error) {
	opts, err := clickhouse.ParseDSN(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("ch: parse dsn: %w", err)
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	opts.ClientInfo = clientInfo(cfg.ClientName, cfg.ClientTag)

	conn, err := openConn(opts)
	if err != nil {
		return nil, fmt.Errorf("ch: open: %w", err)
	}
	return &CH{conn: conn}, nil
}

type product = struct{ Name, Version string }

// clientInfo names the binary and build in system.query_log
func clientInfo(name, tag string) clickhouse.ClientInfo {
	if name == "" {
		name = "supplysync"
	}
	bi := version.Info(name + "-" + tag)
	ps := []product{{Name: name, Version: bi.Version}}
	if tag != "" {
		ps = append(ps, product{Name: "role", Version: tag})
	}
	if c := bi.Commit; c != "" {
		ps = append(ps, product{Name: "commit", Version: c[:min(len(c), 7)]})
	}
	if host, err := os.Hostname(); err == nil {
		ps = append(ps, product{Name: "host", Version: host})
	}
	return clickhouse.ClientInfo{Products: ps}
}

// Insert sends rows to table as one batch
func (c *CH) Insert(ctx context.Context, table string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	batch, err := c.conn.PrepareBatch(ctx, "INSERT INTO "+table)
	if err != nil {
		return fmt.Errorf("ch: prepare %s: %w", table, err)
	}
	for _, r := range rows {
		if err := batch.Append(r...); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("ch: append %s: %w", table, err)
		}
	}
	return batch.Send()
}

// Ping checks connectivity
func (c *CH) Ping(ctx context.Context) error { return c.conn.Ping(ctx) }

// Close closes the connection
func (c *CH) Close() error { return c.conn.Close() }
