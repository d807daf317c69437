// Package urlextract pulls http(s) URLs out of free text.
package urlextract

import (
	"regexp"
	"strings"

	"mvdan.cc/xurls/v2"
)

// urlRe matches scheme-qualified http and https URLs. xurls stops at
// whitespace and at closing brackets that have no opening partner inside the
// URL, so "(see https://a.example/x)" yields "https://a.example/x" while
// "https://en.wikipedia.org/wiki/Acme_(company)" keeps its balanced suffix.
// Quotes and angle brackets always end a URL, and "!" or "'" may appear
// inside a path but never as its last character.
var urlRe = mustMatchingScheme(`https?://`)

func mustMatchingScheme(exp string) *regexp.Regexp {
	re, err := xurls.StrictMatchingScheme(exp)
	if err != nil {
		panic("urlextract: " + err.Error())
	}
	return re
}

// trailingPunct is trimmed from the end of every match.
const trailingPunct = ".,;:"

// Extract returns the distinct URLs in text in first-seen order. It returns an
// empty, non-nil slice when text contains no URL.
func Extract(text string) []string {
	out := []string{}
	if text == "" {
		return out
	}
	seen := make(map[string]bool)
	for _, m := range urlRe.FindAllString(text, -1) {
		u := strings.TrimRight(m, trailingPunct)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// Contains reports whether text holds at least one URL.
func Contains(text string) bool {
	return urlRe.MatchString(text)
}

// Merge appends the URLs of extra that are not already in base, trimming
// surrounding whitespace and dropping blanks. Order is base first, then extra,
// each in first-seen order.
func Merge(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]bool, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, u := range list {
			u = strings.TrimSpace(u)
			if u == "" || seen[u] {
				continue
			}
			seen[u] = true
			out = append(out, u)
		}
	}
	return out
}
