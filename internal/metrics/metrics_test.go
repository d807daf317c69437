package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/brandlens/internal/aggregate"
	"github.com/dshills/brandlens/internal/evidence"
	"github.com/dshills/brandlens/internal/schema"
)

func sampleResult() *schema.AuditResult {
	runs := evidence.BuildAll([]schema.RunInput{
		{ID: "RUN-001", Answer: "1. Acme leads.", Citations: []string{"https://en.wikipedia.org/wiki/Acme"}},
		{ID: "RUN-002", Answer: "Globex is cheaper."},
	}, "Acme")
	return &schema.AuditResult{
		AuditID: "a1",
		Brand:   "Acme",
		Report:  aggregate.Compute(runs),
		Runs:    runs,
	}
}

func TestObserve_Gather(t *testing.T) {
	res := sampleResult()
	m := New(res.Brand, res.AuditID)
	m.Observe(res.Report)

	families, err := m.Gatherer().Gather()
	require.NoError(t, err)

	byName := map[string]int{}
	for _, f := range families {
		byName[f.GetName()] = len(f.GetMetric())
	}
	assert.Equal(t, 1, byName["brandlens_audit_presence_rate"])
	assert.Equal(t, 1, byName["brandlens_audit_runs"])
	assert.Equal(t, len(schema.AllSourceTypes()), byName["brandlens_audit_citations_by_source"])
	assert.Equal(t, len(schema.AllMentionTypes()), byName["brandlens_audit_runs_by_mention"])

	for _, f := range families {
		if f.GetName() != "brandlens_audit_presence_rate" {
			continue
		}
		metric := f.GetMetric()[0]
		assert.InDelta(t, 0.5, metric.GetGauge().GetValue(), 1e-9)
		labels := map[string]string{}
		for _, lp := range metric.GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		assert.Equal(t, map[string]string{"brand": "Acme", "audit_id": "a1"}, labels)
	}
}

func TestExport_WritesTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "brandlens.prom")
	require.NoError(t, Export(path, sampleResult()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "# TYPE brandlens_audit_presence_rate gauge")
	assert.Contains(t, text, `brandlens_audit_presence_rate{audit_id="a1",brand="Acme"} 0.5`)
	assert.Contains(t, text, `brandlens_audit_runs{audit_id="a1",brand="Acme"} 2`)
	assert.Contains(t, text, `brandlens_audit_citations_by_source{audit_id="a1",brand="Acme",source_type="wikipedia"} 1`)
	assert.Contains(t, text, `brandlens_audit_citations_by_source{audit_id="a1",brand="Acme",source_type="government"} 0`)
	assert.Contains(t, text, `brandlens_audit_runs_by_mention{audit_id="a1",brand="Acme",mention_type="primary"} 1`)
	assert.Contains(t, text, `brandlens_audit_missing_citation_runs{audit_id="a1",brand="Acme"} 1`)
}

func TestExport_CitationRateCountsAnswerURLs(t *testing.T) {
	runs := evidence.BuildAll([]schema.RunInput{
		{ID: "RUN-001", Answer: "Acme documents this at https://acme.com/docs."},
	}, "Acme")
	res := &schema.AuditResult{AuditID: "a2", Brand: "Acme", Report: aggregate.Compute(runs), Runs: runs}

	path := filepath.Join(t.TempDir(), "brandlens.prom")
	require.NoError(t, Export(path, res))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "# HELP brandlens_audit_citation_rate Fraction of runs mentioning the brand with a declared citation or a URL near the mention")
	assert.Contains(t, text, `brandlens_audit_citation_rate{audit_id="a2",brand="Acme"} 1`)
	assert.Contains(t, text, `brandlens_audit_missing_citation_runs{audit_id="a2",brand="Acme"} 1`)
}
