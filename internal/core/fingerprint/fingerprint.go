// Package fingerprint computes the content hash used to detect that nothing
// material changed between two snapshots of a product
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"supplysync/internal/core/normalize"
)

// Fields are the semantically meaningful parts of a record.
// Fetch timestamps and prices are deliberately absent
type Fields struct {
	Title       string
	Description string
	Specs       map[string]string
	Images      []string
}

// canonical is the stable shape that gets hashed
type canonical struct {
	Title       string      `json:"t"`
	Description string      `json:"d"`
	Specs       [][2]string `json:"s"`
	Images      []string    `json:"i"`
}

// ContentHash returns a hex sha256 over the normalized fields
func ContentHash(f Fields) string {
	c := canonical{
		Title:       collapse(f.Title),
		Description: collapse(f.Description),
		Specs:       sortedSpecs(f.Specs),
		Images:      cleanImages(f.Images),
	}
	b, err := json.Marshal(c)
	if err != nil {
		// canonical only holds strings, Marshal cannot fail
		panic(err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func collapse(s string) string { return normalize.Text(s) }

func sortedSpecs(m map[string]string) [][2]string {
	out := make([][2]string, 0, len(m))
	for k, v := range m {
		k = collapse(k)
		if k == "" {
			continue
		}
		out = append(out, [2]string{k, collapse(v)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] == out[j][0] {
			return out[i][1] < out[j][1]
		}
		return out[i][0] < out[j][0]
	})
	return out
}

func cleanImages(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
