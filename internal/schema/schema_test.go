package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/brandlens/internal/schema"
)

func TestAuditVisibilityReport_WireFieldNames(t *testing.T) {
	b, err := json.Marshal(schema.AuditVisibilityReport{
		ByType: []schema.SourceTypeStat{{SourceType: schema.SourceWikipedia, Count: 1, Percent: 1}},
	})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))

	for _, key := range []string{
		"totalCitations", "brandOwnedRate", "averageAuthorityScore",
		"missingCitationsCount", "byType", "presenceRate", "citationRate",
		"recommendationRate",
	} {
		assert.Contains(t, got, key)
	}

	rows, ok := got["byType"].([]any)
	require.True(t, ok)
	row := rows[0].(map[string]any)
	assert.Equal(t, "wikipedia", row["sourceType"])
	assert.Contains(t, row, "count")
	assert.Contains(t, row, "percent")
}

func TestPresenceResult_NullConfidence(t *testing.T) {
	b, err := json.Marshal(schema.PresenceResult{MentionType: schema.MentionNone})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"brandDetected":false,"mentionType":"none","citationPresent":false,"confidence":null}`,
		string(b))
}

func TestCitationRecord_NullDomain(t *testing.T) {
	b, err := json.Marshal(schema.CitationRecord{URL: "http://", SourceType: schema.SourceUnknown, AuthorityScore: 0.6})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"url":"http://","domain":null,"sourceType":"unknown","authorityScore":0.6}`,
		string(b))
}

func TestEnums_Valid(t *testing.T) {
	for _, m := range schema.AllMentionTypes() {
		assert.True(t, m.Valid(), "mention type %q", m)
	}
	for _, s := range schema.AllSourceTypes() {
		assert.True(t, s.Valid(), "source type %q", s)
	}
	assert.False(t, schema.MentionType("leading").Valid())
	assert.False(t, schema.SourceType("blog").Valid())
}

func TestMentionMatch_Found(t *testing.T) {
	assert.False(t, schema.MentionMatch{}.Found())
	idx := 0
	assert.True(t, schema.MentionMatch{CharacterIndex: &idx}.Found())
}
