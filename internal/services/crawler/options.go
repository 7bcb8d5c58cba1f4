package crawler

import (
	"time"

	"supplysync/internal/adapters/fetch"
	"supplysync/internal/adapters/sitemap"
	"supplysync/internal/platform/config"
)

// Politeness bounds how hard a supplier site gets hit
type Politeness struct {
	MaxConcurrency    int
	RequestsPerMinute int
	// JitterMin and JitterMax bound the pause a worker takes between two detail fetches
	JitterMin              time.Duration
	JitterMax              time.Duration
	BlockAssetsOnListPages bool
}

// DefaultPoliteness is one worker at 30 requests a minute
func DefaultPoliteness() Politeness {
	return Politeness{
		MaxConcurrency:         1,
		RequestsPerMinute:      30,
		JitterMin:              300 * time.Millisecond,
		JitterMax:              800 * time.Millisecond,
		BlockAssetsOnListPages: true,
	}
}

// Options configures a Crawler
type Options struct {
	Politeness Politeness
	Fetch      fetch.Options
	SitemapCap int
	// MaxPages stops the frontier from handing out more urls in one crawl
	MaxPages      int
	TemplatesFile string
}

// FromConfig reads CRAWLER_ settings
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CRAWLER_")
	def := DefaultPoliteness()
	return Options{
		Politeness: Politeness{
			MaxConcurrency:         c.MayInt("MAX_CONCURRENCY", def.MaxConcurrency),
			RequestsPerMinute:      c.MayInt("RPM", def.RequestsPerMinute),
			JitterMin:              c.MayDuration("JITTER_MIN", def.JitterMin),
			JitterMax:              c.MayDuration("JITTER_MAX", def.JitterMax),
			BlockAssetsOnListPages: c.MayBool("BLOCK_ASSETS", def.BlockAssetsOnListPages),
		},
		Fetch: fetch.Options{
			UserAgent:   c.MayString("USER_AGENT", ""),
			NavTimeout:  c.MayDuration("NAV_TIMEOUT", 60*time.Second),
			IdleTimeout: c.MayDuration("IDLE_TIMEOUT", 5*time.Second),
		},
		SitemapCap:    c.MayInt("SITEMAP_CAP", sitemap.DefaultCap),
		MaxPages:      c.MayInt("MAX_PAGES", 5000),
		TemplatesFile: c.MayString("TEMPLATES_FILE", "templates.yaml"),
	}
}

func (o Options) normalized() Options {
	def := DefaultPoliteness()
	p := &o.Politeness
	if p.MaxConcurrency <= 0 {
		p.MaxConcurrency = def.MaxConcurrency
	}
	if p.RequestsPerMinute <= 0 {
		p.RequestsPerMinute = def.RequestsPerMinute
	}
	if p.JitterMin < 0 {
		p.JitterMin = 0
	}
	if p.JitterMax < p.JitterMin {
		p.JitterMax = p.JitterMin
	}
	if o.SitemapCap <= 0 {
		o.SitemapCap = sitemap.DefaultCap
	}
	if o.MaxPages <= 0 {
		o.MaxPages = 5000
	}
	return o
}
