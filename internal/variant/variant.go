// Package variant derives normalized name variants for a brand so that
// mention detection can match loose spellings. Generation is pure.
package variant

import (
	"strings"
	"unicode"
)

// legalSuffixes are removed as whole words when building the suffix-free
// variant. The dotted forms never survive the alnum strip but are kept so the
// list reads the same as the published rule.
var legalSuffixes = map[string]bool{
	"inc": true, "inc.": true,
	"ltd": true, "ltd.": true,
	"llc":  true,
	"corp": true, "corp.": true,
	"co": true, "co.": true,
	"company": true,
}

// Generate returns the ordered, de-duplicated variant set for brand:
// base (lowercase, trimmed), stripped (alphanumerics and single spaces),
// stripped without spaces, and stripped without legal-entity suffixes.
// Empty variants are dropped, so an empty brand yields an empty set.
func Generate(brand string) []string {
	base := Normalize(brand)
	stripped := strip(base)
	noSpaces := strings.ReplaceAll(stripped, " ", "")
	withoutSuffix := removeSuffixes(stripped)

	var out []string
	seen := make(map[string]bool, 4)
	for _, v := range []string{base, stripped, noSpaces, withoutSuffix} {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Normalize lowercases and trims s. It is the comparison form used to decide
// whether a matched variant is the exact brand name.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// strip keeps letters, digits and whitespace, then collapses whitespace runs.
func strip(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			sb.WriteRune(r)
		}
	}
	return collapse(sb.String())
}

func removeSuffixes(s string) string {
	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		if !legalSuffixes[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
