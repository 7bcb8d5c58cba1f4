package extract

import (
	"strings"

	"supplysync/internal/core/urlnorm"
	perr "supplysync/internal/platform/errors"
	pstrings "supplysync/internal/platform/strings"

	"github.com/PuerkitoBio/goquery"
)

// Single extracts the one product on a detail page. Template selectors win;
// JSON-LD fills whatever they leave empty.
// A page with neither an id nor a title is an extraction error
func Single(doc *goquery.Document, t *Template, pageURL string) (Record, error) {
	root := doc.Selection
	f := t.Fields
	rec := Record{
		ExternalID:     f.ExternalID.read(root),
		Title:          f.Title.read(root),
		PartType:       f.PartType.read(root),
		Description:    f.Description.read(root),
		Images:         absolute(f.Images.readAll(root), pageURL),
		Specs:          specs(root, t.Specs),
		PriceMsrp:      ParsePrice(f.PriceMsrp.read(root)),
		PriceWholesale: ParsePrice(f.PriceWholesale.read(root)),
		Availability:   pstrings.Ptr(f.Availability.read(root)),
		SourceURL:      pageURL,
	}

	if ld, ok := findLDProduct(doc); ok {
		if rec.ExternalID == "" {
			rec.ExternalID = ld.SKU
		}
		if rec.Title == "" {
			rec.Title = ld.Name
		}
		if rec.Description == "" {
			rec.Description = ld.Description
		}
		if rec.PartType == "" {
			rec.PartType = ld.Category
		}
		if len(rec.Images) == 0 {
			rec.Images = absolute(ld.Images, pageURL)
		}
		if rec.PriceWholesale == nil {
			rec.PriceWholesale = ParsePrice(ld.Price)
		}
		if rec.Availability == nil {
			rec.Availability = pstrings.Ptr(ld.Availability)
		}
		for k, v := range ld.Specs {
			if _, set := rec.Specs[k]; !set {
				rec.Specs[k] = v
			}
		}
	}

	if rec.ExternalID == "" && rec.Title == "" {
		return Record{}, perr.Extractionf("no product on %s", pageURL)
	}
	return rec, nil
}

// Prices reads only price and availability, used by the refresh job
func Prices(doc *goquery.Document, t *Template) PriceAvail {
	root := doc.Selection
	pa := PriceAvail{
		PriceMsrp:      ParsePrice(t.Fields.PriceMsrp.read(root)),
		PriceWholesale: ParsePrice(t.Fields.PriceWholesale.read(root)),
		Availability:   pstrings.Ptr(t.Fields.Availability.read(root)),
	}
	if pa.PriceWholesale == nil || pa.Availability == nil {
		if ld, ok := findLDProduct(doc); ok {
			if pa.PriceWholesale == nil {
				pa.PriceWholesale = ParsePrice(ld.Price)
			}
			if pa.Availability == nil {
				pa.Availability = pstrings.Ptr(ld.Availability)
			}
		}
	}
	return pa
}

func specs(root *goquery.Selection, sr SpecRows) map[string]string {
	out := map[string]string{}
	if sr.Rows == "" {
		return out
	}
	keySel, valSel := sr.Key, sr.Value
	if keySel == "" {
		keySel = "th"
	}
	if valSel == "" {
		valSel = "td"
	}
	root.Find(sr.Rows).Each(func(_ int, row *goquery.Selection) {
		k := text(row.Find(keySel).First())
		v := text(row.Find(valSel).First())
		k = strings.TrimSuffix(k, ":")
		if k != "" {
			out[k] = v
		}
	})
	return out
}

// absolute resolves image references against the page
func absolute(in []string, pageURL string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if u, ok := urlnorm.Normalize(s, pageURL); ok {
			out = append(out, u)
		}
	}
	return out
}
