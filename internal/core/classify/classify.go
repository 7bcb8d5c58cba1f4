// Package classify decides whether an extracted row is a real product or a
// header/aggregate placeholder that must not be staged
package classify

import (
	"net/url"
	"path"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Suppression reasons, logged verbatim
const (
	ReasonExplicitHeader    = "explicit-header"
	ReasonSeriesPathSlug    = "series-path-slug"
	ReasonMissingExternalID = "missing-external-id"
)

// Record is the subset of an extracted row the classifier looks at
type Record struct {
	ExternalID string
	// Header is set by extractors that recognise a header row themselves
	Header bool
}

// Decision is the tagged classifier result
type Decision struct {
	Stage  bool
	Reason string
}

// ClassifyRecord returns whether rec found on pageURL should be staged.
// seriesPage reports that pageURL matched the supplier's series listing pattern
//
// The series-path-slug rule drops a row whose external id equals the slug of
// the page's last path segment. A genuine single-SKU series page whose SKU is
// its slug is misclassified by this rule.
func ClassifyRecord(pageURL string, rec Record, seriesPage bool) Decision {
	id := strings.TrimSpace(rec.ExternalID)
	if id == "" {
		return Decision{Stage: false, Reason: ReasonMissingExternalID}
	}
	if rec.Header {
		return Decision{Stage: false, Reason: ReasonExplicitHeader}
	}
	if seriesPage {
		if slug := LastSegmentSlug(pageURL); slug != "" && strings.EqualFold(id, slug) {
			return Decision{Stage: false, Reason: ReasonSeriesPathSlug}
		}
	}
	return Decision{Stage: true}
}

// LastSegmentSlug slugifies the last non-empty path segment of u
func LastSegmentSlug(u string) string {
	pu, err := url.Parse(strings.TrimSpace(u))
	if err != nil {
		return ""
	}
	p := strings.TrimRight(pu.Path, "/")
	if p == "" {
		return ""
	}
	return Slugify(path.Base(p))
}

var slugChain = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKD,
			runes.Remove(runes.In(unicode.Mn)),
			cases.Lower(language.Und),
			norm.NFC,
		)
	},
}

// Slugify folds s to lowercase ascii words joined by single dashes
func Slugify(s string) string {
	s = strings.ToValidUTF8(strings.TrimSpace(s), "")
	if s == "" {
		return ""
	}
	tr := slugChain.Get().(transform.Transformer)
	folded, _, err := transform.String(tr, s)
	tr.Reset()
	slugChain.Put(tr)
	if err != nil {
		folded = strings.ToLower(s)
	}

	var b strings.Builder
	b.Grow(len(folded))
	dash := false
	for _, r := range folded {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if b.Len() > 0 && !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
