//go:build integration

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/brandlens/internal/schema"
)

// execute runs the root command with args and returns stdout and the error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestIntegration_AnalyzeJSON(t *testing.T) {
	out, err := execute(t, "analyze", fixtureAudit, "--format", "json")
	require.NoError(t, err)

	var got schema.AuditResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 4, got.Report.TotalRuns)
	assert.InDelta(t, 0.75, got.Report.PresenceRate, 1e-9)
}

func TestIntegration_AnalyzeDefaultsToConfigFormat(t *testing.T) {
	t.Setenv("BRANDLENS_OUTPUT_FORMAT", "json")
	out, err := execute(t, "analyze", fixtureAudit)
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)))
}

func TestIntegration_AnalyzeMinPresence_ExitsTwo(t *testing.T) {
	_, err := execute(t, "analyze", fixtureAudit, "--min-presence", "0.9")
	assert.Equal(t, exitCodeThreshold, exitCode(err))
}

func TestIntegration_AnalyzeMissingFile_ExitsThree(t *testing.T) {
	_, err := execute(t, "analyze", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, exitCodeBadInput, exitCode(err))
}

func TestIntegration_Detect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answer.txt")
	require.NoError(t, os.WriteFile(path, []byte("You might also consider AcmeCorp Solutions among others."), 0o644))

	out, err := execute(t, "detect", "--brand", "Acme Corp", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"mentionType": "implied"`)
	assert.Contains(t, out, `"matchedVariant": "acmecorp"`)
}

func TestIntegration_DetectRequiresBrand(t *testing.T) {
	_, err := execute(t, "detect", "-")
	assert.Equal(t, exitCodeUsage, exitCode(err))
}

func TestIntegration_Classify(t *testing.T) {
	out, err := execute(t, "classify", "--brand", "Acme", "https://www.irs.gov/x", "https://en.wikipedia.org/wiki/Acme")
	require.NoError(t, err)

	var got []schema.CitationRecord
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, schema.SourceGovernment, got[0].SourceType)
	assert.Equal(t, schema.SourceWikipedia, got[1].SourceType)
}

func TestIntegration_Collect(t *testing.T) {
	injectMock(t, &mockProvider{responses: []string{
		"```json\n{\"answer\": \"Globex leads; Acme Corp is also solid.\", \"citations\": []}\n```",
	}})
	out := filepath.Join(t.TempDir(), "audit.json")

	stdout, err := execute(t, "collect",
		"--brand", "Acme Corp",
		"--prompts", fixturePrompts,
		"--out", out,
		"--rpm", "0",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "wrote 3 of 3 runs")

	analysis, err := execute(t, "analyze", out, "--format", "json")
	require.NoError(t, err)
	var got schema.AuditResult
	require.NoError(t, json.Unmarshal([]byte(analysis), &got))
	assert.InDelta(t, 1.0, got.Report.PresenceRate, 1e-9)
	assert.Equal(t, 3, got.Report.MissingCitationsCount)
}
