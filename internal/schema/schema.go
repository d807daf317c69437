// Package schema defines all canonical data types for the brandlens output format.
// JSON field names are part of the wire contract consumed by dashboards.
package schema

// MentionType classifies how prominently a brand is referenced in an answer.
type MentionType string

const (
	MentionPrimary   MentionType = "primary"
	MentionSecondary MentionType = "secondary"
	MentionImplied   MentionType = "implied"
	MentionNone      MentionType = "none"
)

// AllMentionTypes lists every MentionType in report order.
func AllMentionTypes() []MentionType {
	return []MentionType{MentionPrimary, MentionSecondary, MentionImplied, MentionNone}
}

// Valid reports whether m is one of the declared constants.
func (m MentionType) Valid() bool {
	switch m {
	case MentionPrimary, MentionSecondary, MentionImplied, MentionNone:
		return true
	}
	return false
}

// SourceType classifies the domain of a cited URL.
type SourceType string

const (
	SourceBrandOwned SourceType = "brand_owned"
	SourceWikipedia  SourceType = "wikipedia"
	SourceGovernment SourceType = "government"
	SourcePublisher  SourceType = "publisher"
	SourceUnknown    SourceType = "unknown"
)

// AllSourceTypes lists every SourceType.
func AllSourceTypes() []SourceType {
	return []SourceType{SourceBrandOwned, SourceWikipedia, SourceGovernment, SourcePublisher, SourceUnknown}
}

// Valid reports whether s is one of the declared constants.
func (s SourceType) Valid() bool {
	switch s {
	case SourceBrandOwned, SourceWikipedia, SourceGovernment, SourcePublisher, SourceUnknown:
		return true
	}
	return false
}

// MentionMatch is the earliest variant match found in an answer.
// Both fields are nil when nothing matched.
type MentionMatch struct {
	MatchedVariant *string `json:"matchedVariant"`
	CharacterIndex *int    `json:"characterIndex"`
}

// Found reports whether the match holds a position.
func (m MentionMatch) Found() bool {
	return m.CharacterIndex != nil
}

// PresenceResult is the per-run brand presence record.
// Confidence is nil iff MentionType is MentionNone.
type PresenceResult struct {
	BrandDetected   bool        `json:"brandDetected"`
	MentionType     MentionType `json:"mentionType"`
	CitationPresent bool        `json:"citationPresent"`
	Confidence      *float64    `json:"confidence"`
}

// CitationRecord is a classified URL. Domain is nil when the URL has no
// parseable host.
type CitationRecord struct {
	URL            string     `json:"url"`
	Domain         *string    `json:"domain"`
	SourceType     SourceType `json:"sourceType"`
	AuthorityScore float64    `json:"authorityScore"`
}

// RunInput is one prompt execution as supplied by the collection layer.
type RunInput struct {
	ID        string   `json:"id" yaml:"id"`
	Prompt    string   `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Answer    string   `json:"answer" yaml:"answer"`
	Citations []string `json:"citations" yaml:"citations"`
}

// RunEvidence is the unit the aggregator consumes. All values are derived
// from RunInput and never updated afterwards.
type RunEvidence struct {
	RunID             string           `json:"runId"`
	Prompt            string           `json:"prompt,omitempty"`
	AnswerText        string           `json:"answerText"`
	DeclaredCitations []string         `json:"declaredCitations"`
	Presence          PresenceResult   `json:"presence"`
	Citations         []CitationRecord `json:"citations"`
}

// SourceTypeStat is one row of the byType breakdown.
type SourceTypeStat struct {
	SourceType SourceType `json:"sourceType"`
	Count      int        `json:"count"`
	Percent    float64    `json:"percent"`
}

// MentionTypeStat is one row of the byMentionType breakdown.
type MentionTypeStat struct {
	MentionType MentionType `json:"mentionType"`
	Count       int         `json:"count"`
	Percent     float64     `json:"percent"`
}

// DomainStat counts citations per domain.
type DomainStat struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// AuditVisibilityReport aggregates RunEvidence across one audit.
// Rates and percents are fractions in [0,1].
type AuditVisibilityReport struct {
	TotalRuns             int               `json:"totalRuns"`
	BrandDetectedCount    int               `json:"brandDetectedCount"`
	TotalCitations        int               `json:"totalCitations"`
	BrandOwnedRate        float64           `json:"brandOwnedRate"`
	AverageAuthorityScore float64           `json:"averageAuthorityScore"`
	MissingCitationsCount int               `json:"missingCitationsCount"`
	ByType                []SourceTypeStat  `json:"byType"`
	ByMentionType         []MentionTypeStat `json:"byMentionType"`
	TopDomains            []DomainStat      `json:"topDomains"`
	PresenceRate          float64           `json:"presenceRate"`
	CitationRate          float64           `json:"citationRate"`
	RecommendationRate    float64           `json:"recommendationRate"`
}

// AuditResult is the top-level output document.
type AuditResult struct {
	Tool    string                `json:"tool"`
	Version string                `json:"version"`
	AuditID string                `json:"auditId"`
	Brand   string                `json:"brand"`
	Report  AuditVisibilityReport `json:"report"`
	Runs    []RunEvidence         `json:"runs"`
}

// Answer is a model answer together with the URLs it declared as sources.
type Answer struct {
	Text      string   `json:"answer"`
	Citations []string `json:"citations"`
}
