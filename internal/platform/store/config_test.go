package store

import (
	"testing"
	"time"

	"supplysync/internal/platform/config"
	kit "supplysync/internal/platform/testkit"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("SERVICE_PGSQL_DBURL", "postgres://u@localhost/supplysync")
	t.Setenv("SERVICE_PGSQL_MAX_CONNS", "9")
	t.Setenv("SERVICE_PGSQL_LOCK_TIMEOUT", "2s")
	t.Setenv("SERVICE_CLICKHOUSE_DBURL", "clickhouse://localhost:9000/default")
	t.Setenv("SERVICE_CLICKHOUSE_ENABLED", "false")
	t.Setenv("SERVICE_REDIS_ADDR", "")

	c := FromEnv(config.New(), "crawl")
	if !c.PG.Enabled || c.PG.MaxConns != 9 || c.PG.LockTimeout != 2*time.Second || c.PG.SlowQuery != 500*time.Millisecond || c.AppName != "supplysync-crawl" {
		t.Fatalf("pg=%+v app=%s", c.PG, c.AppName)
	}
	if c.CH.Enabled || c.CH.ClientTag != "crawl" {
		t.Fatalf("clickhouse=%+v", c.CH)
	}
	if c.RDS.Enabled {
		t.Fatalf("redis enabled without an addr: %+v", c.RDS)
	}
}

func TestFromEnv_EnabledWithoutURLPanics(t *testing.T) {
	t.Setenv("SERVICE_PGSQL_DBURL", "")
	t.Setenv("SERVICE_PGSQL_ENABLED", "true")

	kit.MustPanic(t, func() { _ = FromEnv(config.New(), "api") })
}
