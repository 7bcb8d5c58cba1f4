package extract

import (
	"strings"

	"supplysync/internal/core/normalize"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// Record is one extracted product row
type Record struct {
	ExternalID     string
	Title          string
	PartType       string
	Description    string
	Images         []string
	Specs          map[string]string
	PriceMsrp      *decimal.Decimal
	PriceWholesale *decimal.Decimal
	Availability   *string
	SourceURL      string
	// Header marks a row the extractor itself recognised as a series header
	Header bool
}

// PriceAvail is the refresh subset of a record
type PriceAvail struct {
	PriceMsrp      *decimal.Decimal
	PriceWholesale *decimal.Decimal
	Availability   *string
}

// Empty reports that nothing was found
func (p PriceAvail) Empty() bool {
	return p.PriceMsrp == nil && p.PriceWholesale == nil && p.Availability == nil
}

// ParsePrice reads a display price such as "$1,299.00" or "USD 45".
// Returns nil when no number is present
func ParsePrice(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	neg := strings.HasPrefix(s, "-")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	clean := strings.Trim(b.String(), ".")
	if clean == "" {
		return nil
	}
	if neg {
		clean = "-" + clean
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return nil
	}
	return &d
}

func text(s *goquery.Selection) string { return normalize.Text(s.Text()) }

// read applies a field to the document, first match wins
func (f Field) read(doc *goquery.Selection) string {
	if f.Selector == "" {
		return ""
	}
	sel := doc.Find(f.Selector).First()
	if sel.Length() == 0 {
		return ""
	}
	return f.clean(f.value(sel))
}

// readAll returns every non-empty match, in document order
func (f Field) readAll(doc *goquery.Selection) []string {
	if f.Selector == "" {
		return nil
	}
	var out []string
	doc.Find(f.Selector).Each(func(_ int, s *goquery.Selection) {
		if v := f.clean(f.value(s)); v != "" {
			out = append(out, v)
		}
	})
	return out
}

func (f Field) value(s *goquery.Selection) string {
	if f.Attr != "" {
		v, _ := s.Attr(f.Attr)
		return strings.TrimSpace(v)
	}
	return text(s)
}

func (f Field) clean(v string) string {
	if f.re == nil || v == "" {
		return v
	}
	m := f.re.FindStringSubmatch(v)
	switch {
	case len(m) > 1:
		return strings.TrimSpace(m[1])
	case len(m) == 1:
		return strings.TrimSpace(m[0])
	}
	return ""
}
