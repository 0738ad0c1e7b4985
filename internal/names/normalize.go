// Package names canonicalizes organization names and scores how closely two
// names match after canonicalization.
package names

import "strings"

// stopwords are dropped before comparison: English function words plus the
// corporate boilerplate that varies between filings of the same entity.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"a", "in", "for", "and", "the", "as", "at", "by", "from", "into", "to",
		"of", "on", "off", "our", "that", "so", "own", "out",
		"communication", "communications",
		"inc", "incorporated", "company", "corporation", "co", "corp",
		"enterprise", "enterprises", "group", "industries",
		"llc", "llp", "international",
		"product", "products", "technologies", "technology",
		"holdings", "holding", "global", "financial",
		"service", "services", "resource", "resources",
	} {
		stopwords[w] = struct{}{}
	}
}

// IsStopword reports whether w (lowercase) is dropped by Normalize.
func IsStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}

// Normalize reduces a name to its comparison form: ASCII letters, digits and
// whitespace are kept, the rest removed; the result is lowercased, split on
// whitespace, stripped of stopwords and joined with no separator.
//
// A join that spells a stopword ("I NC") is dropped too, so that
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == ' ', r == '\t', r == '\n', r == '\r', r == '\v', r == '\f':
			return ' '
		}
		return -1
	}, name)

	var b strings.Builder
	for _, tok := range strings.Fields(cleaned) {
		if IsStopword(tok) {
			continue
		}
		b.WriteString(tok)
	}
	out := b.String()
	if IsStopword(out) {
		return ""
	}
	return out
}
