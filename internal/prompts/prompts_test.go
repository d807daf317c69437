package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(ps []Prompt) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Text
	}
	return out
}

func TestParse(t *testing.T) {
	doc := `# CRM prompts

1. What is the best CRM for a five-person agency?
2) Which CRM has the cheapest paid plan?
   Include annual pricing.

- Recommend a CRM with a good mobile app.
* Is there an open-source CRM worth using?

## Local
Where can I buy CRM software in Toronto?

` + "```" + `
1. this is code, not a prompt
` + "```" + `
+ Last prompt
`
	ps, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"What is the best CRM for a five-person agency?",
		"Which CRM has the cheapest paid plan? Include annual pricing.",
		"Recommend a CRM with a good mobile app.",
		"Is there an open-source CRM worth using?",
		"Where can I buy CRM software in Toronto?",
		"Last prompt",
	}, texts(ps))

	assert.Equal(t, "PROMPT-001", ps[0].ID)
	assert.Equal(t, "PROMPT-006", ps[5].ID)
	assert.Equal(t, 3, ps[0].Line)
	assert.Equal(t, 4, ps[1].Line)
}

func TestParse_FenceVariants(t *testing.T) {
	doc := "~~~~\n- hidden\n~~~\n- still hidden\n~~~~\n- visible\n"
	ps, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"visible"}, texts(ps))
}

func TestParse_IndentedWithoutPromptStartsOne(t *testing.T) {
	ps, err := Parse(strings.NewReader("    orphan continuation\n1. real\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"orphan continuation", "real"}, texts(ps))
}

func TestParse_EmptyMarkerSkipped(t *testing.T) {
	ps, err := Parse(strings.NewReader("1. \n- \n---\n* * *\nok\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, texts(ps))
	assert.Equal(t, 5, ps[0].Line)
}

func TestParse_Empty(t *testing.T) {
	ps, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, ps)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.md")
	require.NoError(t, os.WriteFile(path, []byte("- one\n- two\n"), 0o644))

	ps, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, texts(ps))

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}
