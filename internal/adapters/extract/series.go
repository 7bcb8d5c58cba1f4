package extract

import (
	"supplysync/internal/core/normalize"
	pstrings "supplysync/internal/platform/strings"

	"github.com/PuerkitoBio/goquery"
)

// record fields a series column can map to
const (
	colExternalID     = "external_id"
	colTitle          = "title"
	colPartType       = "part_type"
	colDescription    = "description"
	colPriceMsrp      = "price_msrp"
	colPriceWholesale = "price_wholesale"
	colAvailability   = "availability"
)

// SeriesRows extracts every row of a series table. An all-<th> row sets the
// column names. Rows carrying the template's header class are returned with
// Header set so the classifier can drop them
func SeriesRows(doc *goquery.Document, t *Template, pageURL string) []Record {
	if t.Series.Rows == "" {
		return nil
	}
	cols := map[string]string{}
	for k, v := range t.Series.Columns {
		cols[normHeader(k)] = v
	}

	var (
		names []string
		out   []Record
	)
	doc.Find(t.Series.Rows).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("th,td")
		if cells.Length() == 0 {
			return
		}
		if row.Find("td").Length() == 0 {
			names = names[:0]
			cells.Each(func(_ int, c *goquery.Selection) { names = append(names, text(c)) })
			return
		}

		rec := Record{Specs: map[string]string{}, SourceURL: pageURL}
		if hc := t.Series.HeaderClass; hc != "" && row.HasClass(hc) {
			rec.Header = true
		}
		cells.Each(func(i int, c *goquery.Selection) {
			field, label := "", ""
			switch {
			case i < len(names):
				label = names[i]
				field = cols[normHeader(label)]
			case i < len(t.Series.Order):
				field = t.Series.Order[i]
				label = field
			}
			assign(&rec, field, label, text(c))
		})
		row.Find("img[src]").Each(func(_ int, im *goquery.Selection) {
			src, _ := im.Attr("src")
			rec.Images = append(rec.Images, absolute([]string{src}, pageURL)...)
		})
		if rec.ExternalID == "" && rec.Title == "" && !rec.Header {
			return
		}
		out = append(out, rec)
	})
	return out
}

func assign(rec *Record, field, label, v string) {
	switch field {
	case colExternalID:
		rec.ExternalID = v
	case colTitle:
		rec.Title = v
	case colPartType:
		rec.PartType = v
	case colDescription:
		rec.Description = v
	case colPriceMsrp:
		rec.PriceMsrp = ParsePrice(v)
	case colPriceWholesale:
		rec.PriceWholesale = ParsePrice(v)
	case colAvailability:
		rec.Availability = pstrings.Ptr(v)
	default:
		if label != "" && v != "" {
			rec.Specs[label] = v
		}
	}
}

func normHeader(s string) string { return normalize.Key(s) }
