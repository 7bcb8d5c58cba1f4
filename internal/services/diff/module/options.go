package module

import "supplysync/internal/platform/config"

// Options holds configuration settings for the diff module
type Options struct {
	DeleteAfterMisses int
	InsertChunk       int
}

// FromConfig reads DIFF_ settings
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("DIFF_")
	return Options{
		DeleteAfterMisses: c.MayInt("DELETE_AFTER_MISSES", 2),
		InsertChunk:       c.MayInt("INSERT_CHUNK", 500),
	}
}
