// Package modkit provides module wiring and core deps
package modkit

import (
	"supplysync/internal/modkit/repokit"
	"supplysync/internal/platform/config"
	"supplysync/internal/platform/logger"
	"supplysync/internal/platform/metrics"
	"supplysync/internal/platform/store"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// Deps holds core dependencies passed to modules
// every backend is optional; modules nil check what they use
type Deps struct {
	Log     logger.Logger
	Cfg     config.Conf
	PG      repokit.TxRunner
	CH      store.Clickhouse
	RDS     *redis.Client
	Locker  *redislock.Client
	Metrics *metrics.Metrics
}

// FromStore fills the backend fields from an opened store; a lock client is derived from redis
func FromStore(d Deps, s *store.Store) Deps {
	if s == nil {
		return d
	}
	d.PG, d.CH, d.RDS = s.PG, s.CH, s.RDS
	if s.RDS != nil && d.Locker == nil {
		d.Locker = redislock.New(s.RDS)
	}
	return d
}

// Named returns a copy whose logger carries the component name
func (d Deps) Named(component string) Deps {
	d.Log = d.Log.With().Str("component", component).Logger()
	return d
}
