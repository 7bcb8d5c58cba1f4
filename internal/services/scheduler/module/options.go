package module

import (
	"time"

	"supplysync/internal/platform/config"
)

// Options holds configuration settings for the scheduler module
type Options struct {
	LockTTL time.Duration
}

// FromConfig reads SCHEDULER_ settings
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("SCHEDULER_")
	return Options{
		LockTTL: c.MayDuration("LOCK_TTL", 30*time.Minute),
	}
}
