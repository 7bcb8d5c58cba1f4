package service

import (
	"encoding/json"
	"sort"

	catdom "supplysync/internal/services/catalog/domain"
	"supplysync/internal/services/diff/domain"
	stgdom "supplysync/internal/services/staging/domain"

	"github.com/shopspring/decimal"
)

// Snapshot keys shared by staging and canonical sides
const (
	keyExternalID     = "externalId"
	keyTitle          = "title"
	keyPartType       = "partType"
	keyDescription    = "description"
	keyImages         = "images"
	keySpecs          = "specs"
	keyPriceMsrp      = "priceMsrp"
	keyPriceWholesale = "priceWholesale"
	keyAvailability   = "availability"
	keyContentHash    = "contentHash"
	keySourceURL      = "sourceUrl"
)

func money(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return json.Number(d.String())
}

func strOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// StagingSnapshot renders the after side of a diff
func StagingSnapshot(r stgdom.Record) domain.Snapshot {
	return domain.Snapshot{
		keyExternalID:     r.ExternalID,
		keyTitle:          r.Title,
		keyPartType:       r.PartType,
		keyDescription:    r.Description,
		keyImages:         r.Images,
		keySpecs:          r.RawSpecs,
		keyPriceMsrp:      money(r.PriceMsrp),
		keyPriceWholesale: money(r.PriceWholesale),
		keyAvailability:   strOrNil(r.Availability),
		keyContentHash:    r.ContentHash,
		keySourceURL:      r.SourceURL,
	}
}

// CanonicalSnapshot renders the before side of a diff
func CanonicalSnapshot(p catdom.Part) domain.Snapshot {
	return domain.Snapshot{
		keyExternalID:     p.ExternalID,
		keyTitle:          p.Title,
		keyPartType:       p.PartType,
		keyDescription:    p.Description,
		keyImages:         p.Images,
		keySpecs:          p.Specs,
		keyPriceMsrp:      money(p.PriceMsrp),
		keyPriceWholesale: money(p.PriceWholesale),
		keyAvailability:   strOrNil(p.Availability),
		keyContentHash:    p.ContentHash,
	}
}

// ComputeDiffs compares the full staging set with canonical. Unchanged pairs are
// omitted and the output is ordered by external id
func ComputeDiffs(staging []stgdom.Record, canonical []catdom.Part) []domain.Diff {
	canon := make(map[string]catdom.Part, len(canonical))
	for _, p := range canonical {
		canon[p.ExternalID] = p
	}
	seen := make(map[string]bool, len(staging))

	var out []domain.Diff
	for _, r := range staging {
		if seen[r.ExternalID] {
			continue
		}
		seen[r.ExternalID] = true
		p, ok := canon[r.ExternalID]
		switch {
		case !ok:
			out = append(out, domain.Diff{ExternalID: r.ExternalID, Type: domain.Add, After: StagingSnapshot(r)})
		case p.ContentHash != r.ContentHash:
			out = append(out, domain.Diff{
				ExternalID: r.ExternalID,
				Type:       domain.Change,
				Before:     CanonicalSnapshot(p),
				After:      StagingSnapshot(r),
			})
		}
	}
	for _, p := range canonical {
		if seen[p.ExternalID] {
			continue
		}
		seen[p.ExternalID] = true
		out = append(out, domain.Diff{ExternalID: p.ExternalID, Type: domain.Delete, Before: CanonicalSnapshot(p)})
	}
	sortDiffs(out)
	return out
}

// DiffPriceOnly compares price and availability of records present on both
// sides. Sides are sparse: only differing keys appear. A field the supplier did
// not expose (nil in staging) is never proposed as a change
func DiffPriceOnly(staging []stgdom.Record, canonical []catdom.Part) []domain.Diff {
	canon := make(map[string]catdom.Part, len(canonical))
	for _, p := range canonical {
		canon[p.ExternalID] = p
	}

	var out []domain.Diff
	seen := map[string]bool{}
	for _, r := range staging {
		p, ok := canon[r.ExternalID]
		if !ok || seen[r.ExternalID] {
			continue
		}
		seen[r.ExternalID] = true

		before, after := domain.Snapshot{}, domain.Snapshot{}
		if r.PriceMsrp != nil && !decEqual(p.PriceMsrp, r.PriceMsrp) {
			before[keyPriceMsrp], after[keyPriceMsrp] = money(p.PriceMsrp), money(r.PriceMsrp)
		}
		if r.PriceWholesale != nil && !decEqual(p.PriceWholesale, r.PriceWholesale) {
			before[keyPriceWholesale], after[keyPriceWholesale] = money(p.PriceWholesale), money(r.PriceWholesale)
		}
		if r.Availability != nil && (p.Availability == nil || *p.Availability != *r.Availability) {
			before[keyAvailability], after[keyAvailability] = strOrNil(p.Availability), *r.Availability
		}
		if len(after) == 0 {
			continue
		}
		out = append(out, domain.Diff{ExternalID: r.ExternalID, Type: domain.Change, Before: before, After: after})
	}
	sortDiffs(out)
	return out
}

// ClassifyConflicts turns a change into a conflict when canonical drifted from
// the last approved after side while staging also moved away from it
func ClassifyConflicts(diffs []domain.Diff, approved map[string]string) {
	for i := range diffs {
		d := &diffs[i]
		if d.Type != domain.Change {
			continue
		}
		h, ok := approved[d.ExternalID]
		if !ok {
			continue
		}
		canonHash, _ := d.Before[keyContentHash].(string)
		stageHash, _ := d.After[keyContentHash].(string)
		if canonHash != h && stageHash != h {
			d.Type = domain.Conflict
		}
	}
}

// Tally counts diffs by type; deletes under deleteAfter misses are also counted as pending
func Tally(diffs []domain.Diff, deleteAfter int) domain.Counts {
	var c domain.Counts
	for _, d := range diffs {
		switch d.Type {
		case domain.Add:
			c.Add++
		case domain.Change:
			c.Change++
		case domain.Delete:
			c.Delete++
			if d.Pending(deleteAfter) {
				c.PendingDelete++
			}
		case domain.Conflict:
			c.Conflict++
		}
		if d.Resolution != nil && *d.Resolution == domain.SkipSuccessful {
			c.Skipped++
		}
	}
	return c
}

func decEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func sortDiffs(xs []domain.Diff) {
	sort.SliceStable(xs, func(i, j int) bool { return xs[i].ExternalID < xs[j].ExternalID })
}
