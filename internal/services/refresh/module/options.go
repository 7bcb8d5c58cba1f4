package module

import (
	"time"

	"supplysync/internal/adapters/session"
	"supplysync/internal/platform/config"
)

// Options holds configuration settings for the refresh module
type Options struct {
	SessionTTL  time.Duration
	CredsBucket string
	CredsPrefix string
}

// FromConfig reads REFRESH_ settings
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("REFRESH_")
	return Options{
		SessionTTL:  c.MayDuration("SESSION_TTL", session.DefaultTTL),
		CredsBucket: c.MayString("CREDS_BUCKET", ""),
		CredsPrefix: c.MayString("CREDS_PREFIX", "supplier-credentials"),
	}
}
