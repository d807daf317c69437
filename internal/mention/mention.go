// Package mention detects whether a brand is mentioned in an answer and
// classifies how prominently. Detection is deterministic local logic; no LLM
// calls are made here.
package mention

import (
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dshills/brandlens/internal/schema"
	"github.com/dshills/brandlens/internal/urlextract"
	"github.com/dshills/brandlens/internal/variant"
)

const (
	// PrimaryWindow is how many leading characters of an answer count as the
	// "lead" for the primary-mention heuristic. A mention leads when it starts
	// before this index.
	PrimaryWindow = 250
	// CitationLookBehind and CitationLookAhead bound the window around the
	// match, [index-CitationLookBehind, index+CitationLookAhead), that is
	// searched for a URL.
	CitationLookBehind = 100
	CitationLookAhead  = 250
)

// confidenceByType is the fixed confidence per detected mention type.
var confidenceByType = map[schema.MentionType]float64{
	schema.MentionPrimary:   0.90,
	schema.MentionSecondary: 0.75,
	schema.MentionImplied:   0.60,
}

// Confidence returns the fixed confidence for t, or nil for MentionNone.
func Confidence(t schema.MentionType) *float64 {
	c, ok := confidenceByType[t]
	if !ok {
		return nil
	}
	return &c
}

// Detection carries the intermediate values behind a PresenceResult.
type Detection struct {
	Variants     []string              `json:"variants"`
	Match        schema.MentionMatch   `json:"match"`
	ExactMatched bool                  `json:"exactMatched"`
	Presence     schema.PresenceResult `json:"presence"`
}

// Detect classifies the presence of brand in text. declared holds the
// citation URLs the answer declared alongside its text.
func Detect(text, brand string, declared []string) schema.PresenceResult {
	return Analyze(text, brand, declared).Presence
}

// Analyze runs detection and returns every intermediate value. It never
// fails: empty or malformed input yields a MentionNone result.
//
// When two variants match at the same character index the one generated
// first wins, so the base form takes precedence over looser variants.
func Analyze(text, brand string, declared []string) Detection {
	d := Detection{
		Variants: variant.Generate(brand),
		Presence: schema.PresenceResult{MentionType: schema.MentionNone},
	}

	matched, idx, ok := earliestMatch(text, d.Variants)
	if !ok {
		return d
	}
	d.Match = schema.MentionMatch{MatchedVariant: &matched, CharacterIndex: &idx}
	d.ExactMatched = variant.Normalize(brand) == variant.Normalize(matched)

	mt := schema.MentionImplied
	if d.ExactMatched {
		mt = schema.MentionSecondary
		if isPrimaryMention(text, brand) {
			mt = schema.MentionPrimary
		}
	}

	d.Presence = schema.PresenceResult{
		BrandDetected:   true,
		MentionType:     mt,
		CitationPresent: hasDeclared(declared) || urlNear(text, idx),
		Confidence:      Confidence(mt),
	}
	return d
}

// earliestMatch returns the variant with the smallest character index in text.
func earliestMatch(text string, variants []string) (string, int, bool) {
	best, bestIdx := "", -1
	for _, v := range variants {
		idx, ok := WordIndex(text, v)
		if !ok {
			continue
		}
		if bestIdx < 0 || idx < bestIdx {
			best, bestIdx = v, idx
		}
	}
	return best, bestIdx, bestIdx >= 0
}

// WordIndex finds the first case-insensitive whole-word occurrence of needle
// in text and returns its character (rune) index. A word boundary is any
// position not adjacent to a letter, digit or underscore.
func WordIndex(text, needle string) (int, bool) {
	if needle == "" || text == "" {
		return 0, false
	}
	loc := wordPattern(needle).FindStringSubmatchIndex(text)
	if loc == nil {
		return 0, false
	}
	return utf8.RuneCountInString(text[:loc[2]]), true
}

// wordPatterns caches compiled whole-word patterns by needle.
var wordPatterns sync.Map

func wordPattern(needle string) *regexp.Regexp {
	if re, ok := wordPatterns.Load(needle); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_])(` + regexp.QuoteMeta(needle) + `)(?:[^\p{L}\p{N}_]|$)`)
	actual, _ := wordPatterns.LoadOrStore(needle, re)
	return actual.(*regexp.Regexp)
}

// isPrimaryMention reports whether the exact brand name leads the answer:
// its first whole-word occurrence starts within the first PrimaryWindow
// characters, or it appears inside the first list item (a line starting with
// "1.", "-" or "*"). The full text is searched so a longer word straddling the
// window edge is never taken for the brand.
func isPrimaryMention(text, brand string) bool {
	exact := strings.TrimSpace(brand)
	if exact == "" {
		return false
	}
	if idx, ok := WordIndex(text, exact); ok && idx < PrimaryWindow {
		return true
	}
	for _, line := range strings.Split(text, "\n") {
		rest, ok := cutListMarker(line)
		if !ok {
			continue
		}
		_, found := WordIndex(rest, exact)
		return found
	}
	return false
}

// cutListMarker strips a leading "1.", "-" or "*" marker and reports whether
// line is a list item.
func cutListMarker(line string) (string, bool) {
	t := strings.TrimLeft(line, " \t")
	for _, marker := range []string{"1.", "-", "*"} {
		if rest, ok := strings.CutPrefix(t, marker); ok {
			return rest, true
		}
	}
	return "", false
}

// urlNear reports whether a URL appears in the citation window around the
// match at character index idx.
func urlNear(text string, idx int) bool {
	return urlextract.Contains(runeSlice(text, idx-CitationLookBehind, idx+CitationLookAhead))
}

func hasDeclared(declared []string) bool {
	for _, u := range declared {
		if strings.TrimSpace(u) != "" {
			return true
		}
	}
	return false
}

// runeSlice returns the characters of s in [start, end), clamped to s.
func runeSlice(s string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if start >= end {
		return ""
	}
	i, byteStart, byteEnd := 0, len(s), len(s)
	for pos := range s {
		if i == start {
			byteStart = pos
		}
		if i == end {
			byteEnd = pos
			break
		}
		i++
	}
	if byteStart > byteEnd {
		return ""
	}
	return s[byteStart:byteEnd]
}
