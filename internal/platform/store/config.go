package store

import (
	"time"

	"supplysync/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG  PGConfig
	CH  CHConfig
	RDS RedisConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQuery   time.Duration
	LockTimeout time.Duration

	// boot knobs, zero picks the default
	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled    bool
	URL        string
	ClientName string
	ClientTag  string
}

// RedisConfig configures redis connectivity
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// FromEnv reads backend settings for one binary. A backend is enabled when its
// SERVICE_<NAME>_ENABLED flag is set, or by default when its url is present.
// Enabling a backend without its url panics
func FromEnv(root config.Conf, tag string) Config {
	pg := root.Prefix("SERVICE_PGSQL_")
	ch := root.Prefix("SERVICE_CLICKHOUSE_")
	rds := root.Prefix("SERVICE_REDIS_")

	pgURL := pg.MayString("DBURL", "")
	chURL := ch.MayString("DBURL", "")
	rdsAddr := rds.MayString("ADDR", "")
	c := Config{
		AppName: "supplysync-" + tag,
		PG: PGConfig{
			Enabled:     pg.MayBool("ENABLED", pgURL != ""),
			URL:         pgURL,
			MaxConns:    int32(pg.MayInt("MAX_CONNS", 4)),
			SlowQuery:   pg.MayDuration("SLOW_QUERY", 500*time.Millisecond),
			LockTimeout: pg.MayDuration("LOCK_TIMEOUT", 5*time.Second),
			LogSQL:      pg.MayBool("LOG_SQL", false),
		},
		CH: CHConfig{
			Enabled:    ch.MayBool("ENABLED", chURL != ""),
			URL:        chURL,
			ClientName: "supplysync",
			ClientTag:  tag,
		},
		RDS: RedisConfig{
			Enabled:  rds.MayBool("ENABLED", rdsAddr != ""),
			Addr:     rdsAddr,
			Password: rds.MayString("PASSWORD", ""),
			DB:       rds.MayInt("DB", 0),
		},
	}
	// an explicitly enabled backend must say where it lives
	if c.PG.Enabled {
		pg.Require("DBURL")
	}
	if c.CH.Enabled {
		ch.Require("DBURL")
	}
	if c.RDS.Enabled {
		rds.Require("ADDR")
	}
	return c
}
