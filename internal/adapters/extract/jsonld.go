package extract

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ldProduct is the slice of schema.org/Product we read
type ldProduct struct {
	SKU          string
	Name         string
	Description  string
	Category     string
	Images       []string
	Price        string
	Availability string
	Specs        map[string]string
}

// findLDProduct returns the first schema.org Product in the page's JSON-LD blocks
func findLDProduct(doc *goquery.Document) (ldProduct, bool) {
	var found ldProduct
	ok := false
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var v any
		if err := json.Unmarshal([]byte(s.Text()), &v); err != nil {
			return true
		}
		if m := productNode(v); m != nil {
			found, ok = toProduct(m), true
			return false
		}
		return true
	})
	return found, ok
}

func productNode(v any) map[string]any {
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			if m := productNode(e); m != nil {
				return m
			}
		}
	case map[string]any:
		if isType(t["@type"], "Product") {
			return t
		}
		if g, ok := t["@graph"]; ok {
			return productNode(g)
		}
	}
	return nil
}

func isType(v any, want string) bool {
	switch t := v.(type) {
	case string:
		return strings.EqualFold(t, want)
	case []any:
		for _, e := range t {
			if isType(e, want) {
				return true
			}
		}
	}
	return false
}

func str(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case map[string]any:
		if n, ok := t["name"]; ok {
			return str(n)
		}
		if u, ok := t["url"]; ok {
			return str(u)
		}
	}
	return ""
}

func toProduct(m map[string]any) ldProduct {
	p := ldProduct{
		SKU:         firstNonEmpty(str(m["sku"]), str(m["mpn"]), str(m["productID"])),
		Name:        str(m["name"]),
		Description: str(m["description"]),
		Category:    str(m["category"]),
		Specs:       map[string]string{},
	}
	switch im := m["image"].(type) {
	case []any:
		for _, e := range im {
			if s := str(e); s != "" {
				p.Images = append(p.Images, s)
			}
		}
	default:
		if s := str(im); s != "" {
			p.Images = []string{s}
		}
	}
	offer := m["offers"]
	if arr, ok := offer.([]any); ok && len(arr) > 0 {
		offer = arr[0]
	}
	if o, ok := offer.(map[string]any); ok {
		p.Price = firstNonEmpty(str(o["price"]), str(o["lowPrice"]))
		p.Availability = schemaTail(str(o["availability"]))
	}
	if props, ok := m["additionalProperty"].([]any); ok {
		for _, e := range props {
			if pm, ok := e.(map[string]any); ok {
				if k := str(pm["name"]); k != "" {
					p.Specs[k] = str(pm["value"])
				}
			}
		}
	}
	return p
}

// schemaTail turns "https://schema.org/InStock" into "InStock"
func schemaTail(s string) string {
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
