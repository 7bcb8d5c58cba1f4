package crawler

import (
	"bytes"
	"encoding/json"
	"regexp"

	"supplysync/internal/adapters/extract"
	"supplysync/internal/adapters/fetch"
	"supplysync/internal/core/urlnorm"

	"github.com/PuerkitoBio/goquery"
)

// minProductAnchors below this a collection page falls back to the sitemap
const minProductAnchors = 2

var hrefRe = regexp.MustCompile(`href\s*=\s*["']([^"'#][^"']*)["']`)

// link is a discovered url with the kind it will be fetched as
type link struct {
	url  string
	kind Kind
}

// kindOf classifies u with the template. Series wins over list
func kindOf(t *extract.Template, u string) Kind {
	switch {
	case t.IsDetail(u):
		return KindDetail
	case t.IsSeries(u):
		return KindSeries
	case t.IsList(u):
		return KindList
	}
	return KindSeed
}

// anchors returns normalized same-site hrefs of the page accepted by keep, in document order
func anchors(p *fetch.Page, keep func(string) bool) []string {
	if p == nil || p.Doc == nil {
		return nil
	}
	seen := map[string]struct{}{}
	var out []string
	p.Doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		u, ok := urlnorm.Normalize(href, p.URL)
		if !ok || !urlnorm.SameSite(p.URL, u) || !keep(u) {
			return
		}
		if _, dup := seen[u]; dup {
			return
		}
		seen[u] = struct{}{}
		out = append(out, u)
	})
	return out
}

// discover lists the page's links in priority order: detail anchors, then
// collection links, then product urls found in captured data responses.
// It also returns how many detail anchors the page itself carried
func discover(t *extract.Template, p *fetch.Page) (links []link, productAnchors int) {
	details := anchors(p, t.IsDetail)
	for _, u := range details {
		links = append(links, link{url: u, kind: KindDetail})
	}
	for _, u := range anchors(p, func(u string) bool { return t.IsList(u) || t.IsSeries(u) }) {
		links = append(links, link{url: u, kind: kindOf(t, u)})
	}
	for _, u := range capturedProducts(t, p) {
		links = append(links, link{url: u, kind: KindDetail})
	}
	return links, len(details)
}

// capturedProducts pulls detail urls out of the page's captured data responses.
// JSON bodies are walked for string values, anything else is scanned for hrefs
func capturedProducts(t *extract.Template, p *fetch.Page) []string {
	if p == nil || len(p.Captured) == 0 {
		return nil
	}
	search := t.SearchPattern()
	seen := map[string]struct{}{}
	var out []string
	add := func(raw string) {
		u, ok := urlnorm.Normalize(raw, p.URL)
		if !ok || !urlnorm.SameSite(p.URL, u) || !t.IsDetail(u) {
			return
		}
		if _, dup := seen[u]; dup {
			return
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	for _, c := range p.Captured {
		if search != nil && !search.MatchString(c.URL) {
			continue
		}
		if c.JSON() {
			var v any
			dec := json.NewDecoder(bytes.NewReader(c.Body))
			if err := dec.Decode(&v); err == nil {
				walkStrings(v, add)
				continue
			}
		}
		for _, m := range hrefRe.FindAllSubmatch(c.Body, -1) {
			add(string(m[1]))
		}
	}
	return out
}

// walkStrings calls fn for every string in a decoded JSON value
func walkStrings(v any, fn func(string)) {
	switch x := v.(type) {
	case string:
		fn(x)
	case []any:
		for _, e := range x {
			walkStrings(e, fn)
		}
	case map[string]any:
		for _, e := range x {
			walkStrings(e, fn)
		}
	}
}
