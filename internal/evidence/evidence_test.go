package evidence

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/brandlens/internal/aggregate"
	"github.com/dshills/brandlens/internal/schema"
)

func TestBuild_EndToEndExample(t *testing.T) {
	ev := Build(schema.RunInput{
		ID:        "RUN-001",
		Prompt:    "What is the best tool for small teams?",
		Answer:    "1. Acme is the leading choice for small teams.",
		Citations: []string{"https://en.wikipedia.org/wiki/Acme"},
	}, "Acme")

	assert.Equal(t, "RUN-001", ev.RunID)
	assert.Equal(t, schema.MentionPrimary, ev.Presence.MentionType)
	assert.True(t, ev.Presence.CitationPresent)
	require.NotNil(t, ev.Presence.Confidence)
	assert.InDelta(t, 0.90, *ev.Presence.Confidence, 1e-9)

	r := aggregate.Compute([]schema.RunEvidence{ev})
	require.Len(t, r.ByType, 1)
	assert.Equal(t, schema.SourceWikipedia, r.ByType[0].SourceType)
	assert.Equal(t, 1, r.ByType[0].Count)
	assert.InDelta(t, 0.95, r.AverageAuthorityScore, 1e-9)
	assert.Equal(t, 0, r.MissingCitationsCount)
}

func TestBuild_MergesAnswerURLsAfterDeclared(t *testing.T) {
	ev := Build(schema.RunInput{
		ID:     "r",
		Answer: "See https://acme.com/pricing and https://en.wikipedia.org/wiki/Acme.",
		Citations: []string{
			" https://en.wikipedia.org/wiki/Acme ",
			"",
			"https://www.irs.gov",
		},
	}, "Acme")

	assert.Equal(t, []string{"https://en.wikipedia.org/wiki/Acme", "https://www.irs.gov"}, ev.DeclaredCitations)
	require.Len(t, ev.Citations, 3)
	assert.Equal(t, schema.SourceWikipedia, ev.Citations[0].SourceType)
	assert.Equal(t, schema.SourceGovernment, ev.Citations[1].SourceType)
	assert.Equal(t, "https://acme.com/pricing", ev.Citations[2].URL)
	assert.Equal(t, schema.SourceBrandOwned, ev.Citations[2].SourceType)
}

func TestBuild_BlankDeclaredCountsAsMissing(t *testing.T) {
	ev := Build(schema.RunInput{ID: "r", Answer: "Acme works.", Citations: []string{"  "}}, "Acme")
	assert.Empty(t, ev.DeclaredCitations)
	assert.NotNil(t, ev.DeclaredCitations)
	assert.False(t, ev.Presence.CitationPresent)
	assert.Equal(t, 1, aggregate.Compute([]schema.RunEvidence{ev}).MissingCitationsCount)
}

func TestBuild_NoMention(t *testing.T) {
	ev := Build(schema.RunInput{ID: "r", Answer: "Globex and Initech lead the market."}, "Acme")
	assert.False(t, ev.Presence.BrandDetected)
	assert.Equal(t, schema.MentionNone, ev.Presence.MentionType)
	assert.Nil(t, ev.Presence.Confidence)
	assert.Empty(t, ev.Citations)
	assert.NotNil(t, ev.Citations)
}

func TestBuildAll(t *testing.T) {
	assert.Equal(t, []schema.RunEvidence{}, BuildAll(nil, "Acme"))

	got := BuildAll([]schema.RunInput{
		{ID: "a", Answer: "Acme"},
		{ID: "b", Answer: "nothing"},
	}, "Acme")
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].RunID)
	assert.True(t, got[0].Presence.BrandDetected)
	assert.False(t, got[1].Presence.BrandDetected)
}

func TestBuildAllConcurrent_MatchesSequential(t *testing.T) {
	var runs []schema.RunInput
	for i := 0; i < 50; i++ {
		answer := fmt.Sprintf("Option %d: Globex.", i)
		if i%3 == 0 {
			answer = fmt.Sprintf("%d. Acme is great, see https://acme.com/%d", i, i)
		}
		runs = append(runs, schema.RunInput{ID: fmt.Sprintf("r%d", i), Answer: answer})
	}
	want := BuildAll(runs, "Acme")

	for _, workers := range []int{0, 1, 4, 64} {
		got, err := BuildAllConcurrent(context.Background(), runs, "Acme", workers)
		require.NoError(t, err)
		assert.Equal(t, want, got, "workers=%d", workers)
	}
}

func TestBuildAllConcurrent_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runs := []schema.RunInput{{ID: "a", Answer: "Acme"}, {ID: "b", Answer: "Acme"}}

	_, err := BuildAllConcurrent(ctx, runs, "Acme", 4)
	assert.ErrorIs(t, err, context.Canceled)
}
