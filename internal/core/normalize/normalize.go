// Package normalize cleans supplier page text before it is staged or hashed.
//
// Text runs the chain below and collapses whitespace to single spaces:
//
//	strip controls and invalid UTF-8
//	NFKC (ligatures, nbsp, superscripts)
//	drop format chars (zero width joiners, soft hyphens, BOM)
//	fold fullwidth forms to ASCII
//
// Block does the same but keeps line breaks, for descriptions.
// Key additionally case folds and drops combining marks, for comparing labels.
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// transformers are stateful, so each call takes one from a pool
var (
	textPool = sync.Pool{New: func() any {
		return transform.Chain(norm.NFKC, runes.Remove(runes.In(unicode.Cf)), width.Fold)
	}}
	keyPool = sync.Pool{New: func() any {
		return transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFKC,
			cases.Fold(), runes.Remove(runes.In(unicode.Cf)), width.Fold)
	}}
)

func run(p *sync.Pool, s string) string {
	tr := p.Get().(transform.Transformer)
	defer p.Put(tr)
	tr.Reset()
	out, _, err := transform.String(tr, s)
	if err != nil {
		return s
	}
	return out
}

// Text returns s cleaned and collapsed onto one line
func Text(s string) string {
	if s == "" {
		return ""
	}
	return collapse(run(&textPool, Sanitize(s)), false)
}

// Block returns s cleaned with line breaks kept; runs of blank lines become one
func Block(s string) string {
	if s == "" {
		return ""
	}
	return collapse(run(&textPool, Sanitize(s)), true)
}

// Key returns a comparison form of s, e.g. "Ｐｒｉｃｅ (Café)" -> "price (cafe)"
func Key(s string) string {
	if s == "" {
		return ""
	}
	return collapse(run(&keyPool, Sanitize(s)), false)
}

// collapse turns whitespace runs into one space, or one newline when the run
// held a line break and keepLines is set. Edges are trimmed
func collapse(s string, keepLines bool) string {
	var b strings.Builder
	b.Grow(len(s))
	pending, nl := false, false
	for _, r := range s {
		if unicode.IsSpace(r) {
			pending = true
			nl = nl || r == '\n' || r == '\r'
			continue
		}
		if pending && b.Len() > 0 {
			if keepLines && nl {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		pending, nl = false, false
		b.WriteRune(r)
	}
	return b.String()
}
