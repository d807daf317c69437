// Package metrics exposes an audit report as Prometheus gauges so it can be
// picked up by a node_exporter textfile collector.
package metrics

import (
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rotisserie/eris"

	"github.com/dshills/brandlens/internal/schema"
)

const (
	namespace = "brandlens"
	subsystem = "audit"
)

// Metrics holds the gauges for a single audit.
type Metrics struct {
	registry *prometheus.Registry

	Runs             prometheus.Gauge
	BrandDetected    prometheus.Gauge
	Citations        prometheus.Gauge
	MissingCitations prometheus.Gauge

	PresenceRate          prometheus.Gauge
	CitationRate          prometheus.Gauge
	RecommendationRate    prometheus.Gauge
	BrandOwnedRate        prometheus.Gauge
	AverageAuthorityScore prometheus.Gauge

	CitationsBySource *prometheus.GaugeVec
	RunsByMention     *prometheus.GaugeVec
}

// New registers the audit gauges on a private registry. Every series carries
// the brand and audit id as constant labels.
func New(brand, auditID string) *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	labels := prometheus.Labels{"brand": brand, "audit_id": auditID}

	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
	}

	return &Metrics{
		registry: registry,

		Runs:             gauge("runs", "Runs analyzed in the audit"),
		BrandDetected:    gauge("brand_detected_runs", "Runs whose answer mentions the brand"),
		Citations:        gauge("citations", "Classified citations across all runs"),
		MissingCitations: gauge("missing_citation_runs", "Runs that declared no citations"),

		PresenceRate:          gauge("presence_rate", "Fraction of runs mentioning the brand"),
		CitationRate:          gauge("citation_rate", "Fraction of runs mentioning the brand with a declared citation or a URL near the mention"),
		RecommendationRate:    gauge("recommendation_rate", "Fraction of runs with a primary mention"),
		BrandOwnedRate:        gauge("brand_owned_rate", "Fraction of citations pointing at brand-owned domains"),
		AverageAuthorityScore: gauge("average_authority_score", "Mean authority score of all citations"),

		CitationsBySource: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "citations_by_source",
			Help:        "Citations per source type",
			ConstLabels: labels,
		}, []string{"source_type"}),
		RunsByMention: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "runs_by_mention",
			Help:        "Runs per mention type",
			ConstLabels: labels,
		}, []string{"mention_type"}),
	}
}

// Observe sets every gauge from r. Source types absent from the report are
// exported as zero so series do not disappear between audits.
func (m *Metrics) Observe(r schema.AuditVisibilityReport) {
	m.Runs.Set(float64(r.TotalRuns))
	m.BrandDetected.Set(float64(r.BrandDetectedCount))
	m.Citations.Set(float64(r.TotalCitations))
	m.MissingCitations.Set(float64(r.MissingCitationsCount))

	m.PresenceRate.Set(r.PresenceRate)
	m.CitationRate.Set(r.CitationRate)
	m.RecommendationRate.Set(r.RecommendationRate)
	m.BrandOwnedRate.Set(r.BrandOwnedRate)
	m.AverageAuthorityScore.Set(r.AverageAuthorityScore)

	for _, st := range schema.AllSourceTypes() {
		m.CitationsBySource.WithLabelValues(string(st)).Set(0)
	}
	for _, s := range r.ByType {
		m.CitationsBySource.WithLabelValues(string(s.SourceType)).Set(float64(s.Count))
	}
	for _, s := range r.ByMentionType {
		m.RunsByMention.WithLabelValues(string(s.MentionType)).Set(float64(s.Count))
	}
}

// Gatherer returns the private registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the gauges in the Prometheus text format. The file is
// written atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "metrics: create dir %s", dir)
		}
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return eris.Wrapf(err, "metrics: write %s", path)
	}
	return nil
}

// Export is New, Observe and WriteTextfile for one audit result.
func Export(path string, result *schema.AuditResult) error {
	m := New(result.Brand, result.AuditID)
	m.Observe(result.Report)
	return m.WriteTextfile(path)
}
