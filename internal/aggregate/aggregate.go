// Package aggregate reduces per-run evidence into audit-level visibility
// metrics. No LLM calls are made here.
//
// The reduction is commutative up to tie order in the grouped breakdowns, so
// an Accumulator may be filled incrementally or in shards and merged.
package aggregate

import (
	"sort"

	"github.com/dshills/brandlens/internal/schema"
)

// maxTopDomains caps the topDomains breakdown.
const maxTopDomains = 10

// Compute builds the report for runs. An empty run list yields zero rates.
func Compute(runs []schema.RunEvidence) schema.AuditVisibilityReport {
	var acc Accumulator
	for _, r := range runs {
		acc.Add(r)
	}
	return acc.Report()
}

// MeetsThreshold reports whether the presence rate reaches minPresence.
// Used by the --min-presence gate: exit 2 when this returns false.
func MeetsThreshold(report schema.AuditVisibilityReport, minPresence float64) bool {
	return report.PresenceRate >= minPresence
}

// Accumulator holds running counts for a report. The zero value is ready to use.
type Accumulator struct {
	runs      int
	detected  int
	cited     int
	primary   int
	missing   int
	byMention map[schema.MentionType]int

	citations    int
	brandOwned   int
	authoritySum float64
	types        orderedCounts[schema.SourceType]
	domains      orderedCounts[string]
}

// Add folds one run into the accumulator.
func (a *Accumulator) Add(r schema.RunEvidence) {
	a.runs++
	if r.Presence.BrandDetected {
		a.detected++
	}
	if r.Presence.CitationPresent {
		a.cited++
	}
	if r.Presence.MentionType == schema.MentionPrimary {
		a.primary++
	}
	if len(r.DeclaredCitations) == 0 {
		a.missing++
	}
	if a.byMention == nil {
		a.byMention = make(map[schema.MentionType]int, 4)
	}
	mt := r.Presence.MentionType
	if !mt.Valid() {
		mt = schema.MentionNone
	}
	a.byMention[mt]++

	for _, c := range r.Citations {
		a.citations++
		a.authoritySum += c.AuthorityScore
		if c.SourceType == schema.SourceBrandOwned {
			a.brandOwned++
		}
		a.types.add(c.SourceType, 1)
		if c.Domain != nil {
			a.domains.add(*c.Domain, 1)
		}
	}
}

// Merge folds the counts of b into a. Groups first seen in b are ordered
// after those already in a.
func (a *Accumulator) Merge(b *Accumulator) {
	if b == nil {
		return
	}
	a.runs += b.runs
	a.detected += b.detected
	a.cited += b.cited
	a.primary += b.primary
	a.missing += b.missing
	if len(b.byMention) > 0 && a.byMention == nil {
		a.byMention = make(map[schema.MentionType]int, 4)
	}
	for k, v := range b.byMention {
		a.byMention[k] += v
	}
	a.citations += b.citations
	a.brandOwned += b.brandOwned
	a.authoritySum += b.authoritySum
	a.types.merge(&b.types)
	a.domains.merge(&b.domains)
}

// Report computes the rates and breakdowns from the current counts.
func (a *Accumulator) Report() schema.AuditVisibilityReport {
	r := schema.AuditVisibilityReport{
		TotalRuns:             a.runs,
		BrandDetectedCount:    a.detected,
		TotalCitations:        a.citations,
		BrandOwnedRate:        ratio(a.brandOwned, a.citations),
		MissingCitationsCount: a.missing,
		PresenceRate:          ratio(a.detected, a.runs),
		CitationRate:          ratio(a.cited, a.runs),
		RecommendationRate:    ratio(a.primary, a.runs),
		ByType:                []schema.SourceTypeStat{},
		ByMentionType:         make([]schema.MentionTypeStat, 0, 4),
		TopDomains:            []schema.DomainStat{},
	}
	if a.citations > 0 {
		r.AverageAuthorityScore = a.authoritySum / float64(a.citations)
	}

	for _, k := range a.types.sorted() {
		n := a.types.counts[k]
		r.ByType = append(r.ByType, schema.SourceTypeStat{
			SourceType: k,
			Count:      n,
			Percent:    ratio(n, a.citations),
		})
	}

	for _, mt := range schema.AllMentionTypes() {
		n := a.byMention[mt]
		r.ByMentionType = append(r.ByMentionType, schema.MentionTypeStat{
			MentionType: mt,
			Count:       n,
			Percent:     ratio(n, a.runs),
		})
	}

	for i, d := range a.domains.sorted() {
		if i == maxTopDomains {
			break
		}
		r.TopDomains = append(r.TopDomains, schema.DomainStat{Domain: d, Count: a.domains.counts[d]})
	}
	return r
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

// orderedCounts counts keys and remembers the order each key was first seen.
type orderedCounts[K comparable] struct {
	order  []K
	counts map[K]int
}

func (o *orderedCounts[K]) add(k K, n int) {
	if o.counts == nil {
		o.counts = make(map[K]int)
	}
	if _, ok := o.counts[k]; !ok {
		o.order = append(o.order, k)
	}
	o.counts[k] += n
}

func (o *orderedCounts[K]) merge(b *orderedCounts[K]) {
	for _, k := range b.order {
		o.add(k, b.counts[k])
	}
}

// sorted returns keys by count descending; ties keep first-seen order.
func (o *orderedCounts[K]) sorted() []K {
	keys := append([]K(nil), o.order...)
	sort.SliceStable(keys, func(i, j int) bool {
		return o.counts[keys[i]] > o.counts[keys[j]]
	})
	return keys
}
