// Package sitemap reads /sitemap.xml as a discovery fallback
package sitemap

import (
	"bytes"
	"context"
	"strings"

	"supplysync/internal/core/urlnorm"
	"supplysync/internal/platform/logger"

	"github.com/antchfx/xmlquery"
)

// DefaultCap bounds how many urls one read returns
const DefaultCap = 200

// Getter fetches a url body
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Reader walks a site's sitemap and at most one level of nested indexes
type Reader struct {
	get Getter
	cap int
	log logger.Logger
}

// New returns a Reader. cap <= 0 uses DefaultCap
func New(g Getter, cap int) *Reader {
	if cap <= 0 {
		cap = DefaultCap
	}
	return &Reader{get: g, cap: cap, log: *logger.Named("sitemap")}
}

// Read returns normalized same-site <loc> urls accepted by keep, in sitemap order
func (r *Reader) Read(ctx context.Context, site string, keep func(string) bool) ([]string, error) {
	root, ok := urlnorm.Normalize("/sitemap.xml", site)
	if !ok {
		return nil, nil
	}
	locs, nested, err := r.parse(ctx, root)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	out := make([]string, 0, len(locs))
	add := func(list []string) bool {
		for _, l := range list {
			u, ok := urlnorm.Normalize(l, site)
			if !ok || !urlnorm.SameSite(site, u) {
				continue
			}
			if keep != nil && !keep(u) {
				continue
			}
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			out = append(out, u)
			if len(out) >= r.cap {
				return false
			}
		}
		return true
	}
	if !add(locs) {
		return out, nil
	}
	for _, child := range nested {
		if ctx.Err() != nil {
			break
		}
		cu, ok := urlnorm.Normalize(child, site)
		if !ok || !urlnorm.SameSite(site, cu) {
			continue
		}
		// nested indexes inside a child are ignored
		childLocs, _, err := r.parse(ctx, cu)
		if err != nil {
			r.log.Warn().Err(err).Str("sitemap", cu).Msg("nested sitemap skipped")
			continue
		}
		if !add(childLocs) {
			break
		}
	}
	return out, nil
}

// parse returns page locs and nested sitemap locs of one document
func (r *Reader) parse(ctx context.Context, u string) (pages, nested []string, err error) {
	body, err := r.get.Get(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	xmlquery.FindEach(doc, "//urlset/url/loc", func(_ int, n *xmlquery.Node) {
		if s := strings.TrimSpace(n.InnerText()); s != "" {
			pages = append(pages, s)
		}
	})
	xmlquery.FindEach(doc, "//sitemapindex/sitemap/loc", func(_ int, n *xmlquery.Node) {
		if s := strings.TrimSpace(n.InnerText()); s != "" {
			nested = append(nested, s)
		}
	})
	return pages, nested, nil
}
