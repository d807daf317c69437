// Package citation classifies cited URLs by source authority.
//
// Authority scores are a static proxy per source type, not a live reputation
// lookup. Classification is a pure function of (url, brand).
package citation

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/brandlens/internal/schema"
)

// minBrandTokenLen is the shortest normalized brand token that may mark a
// domain as brand-owned. Shorter tokens produce too many substring hits.
const minBrandTokenLen = 4

var authorityByType = map[schema.SourceType]float64{
	schema.SourceGovernment: 0.95,
	schema.SourceWikipedia:  0.95,
	schema.SourceBrandOwned: 0.85,
	schema.SourcePublisher:  0.75,
	schema.SourceUnknown:    0.60,
}

// AuthorityScore returns the fixed authority for t. Unrecognized values score
// as SourceUnknown.
func AuthorityScore(t schema.SourceType) float64 {
	if s, ok := authorityByType[t]; ok {
		return s
	}
	return authorityByType[schema.SourceUnknown]
}

// Classify derives a CitationRecord from rawURL. brand may be empty.
func Classify(rawURL, brand string) schema.CitationRecord {
	rec := schema.CitationRecord{URL: rawURL, SourceType: schema.SourceUnknown}
	if domain, ok := Domain(rawURL); ok {
		rec.Domain = &domain
		rec.SourceType = SourceTypeFor(domain, brand)
	}
	rec.AuthorityScore = AuthorityScore(rec.SourceType)
	return rec
}

// ClassifyAll classifies each URL in order. The result is never nil.
func ClassifyAll(urls []string, brand string) []schema.CitationRecord {
	out := make([]schema.CitationRecord, 0, len(urls))
	for _, u := range urls {
		out = append(out, Classify(u, brand))
	}
	return out
}

// Domain returns the lowercased hostname of rawURL. ok is false when the URL
// does not parse or carries no host (e.g. "acme.com/about" without a scheme).
func Domain(rawURL string) (domain string, ok bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", false
	}
	return host, true
}

// SourceTypeFor classifies a lowercased domain. Rules are evaluated in order
// and the first match wins:
//  1. wikipedia.org or any subdomain → wikipedia
//  2. *.gov, *.gov.*, canada.ca, *.gc.ca → government
//  3. normalized brand token (≥4 chars) contained in the domain → brand_owned
//  4. otherwise → publisher
func SourceTypeFor(domain, brand string) schema.SourceType {
	switch {
	case isWikipedia(domain):
		return schema.SourceWikipedia
	case isGovernment(domain):
		return schema.SourceGovernment
	case isBrandOwned(domain, brand):
		return schema.SourceBrandOwned
	default:
		return schema.SourcePublisher
	}
}

func isWikipedia(domain string) bool {
	return domain == "wikipedia.org" || strings.HasSuffix(domain, ".wikipedia.org")
}

func isGovernment(domain string) bool {
	return strings.HasSuffix(domain, ".gov") ||
		strings.Contains(domain, ".gov.") ||
		domain == "canada.ca" ||
		strings.HasSuffix(domain, ".gc.ca")
}

func isBrandOwned(domain, brand string) bool {
	token := BrandToken(brand)
	return utf8.RuneCountInString(token) >= minBrandTokenLen && strings.Contains(domain, token)
}

// BrandToken lowercases brand and keeps only letters and digits.
func BrandToken(brand string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(brand) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
