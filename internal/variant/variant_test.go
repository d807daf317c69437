package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	cases := []struct {
		brand string
		want  []string
	}{
		{"Acme", []string{"acme"}},
		{"  ACME  ", []string{"acme"}},
		{"Acme Corp", []string{"acme corp", "acmecorp", "acme"}},
		{"Acme, Inc.", []string{"acme, inc.", "acme inc", "acmeinc", "acme"}},
		{"Foo   Bar Company", []string{"foo   bar company", "foo bar company", "foobarcompany", "foo bar"}},
		{"AT&T", []string{"at&t", "att"}},
		{"Co", []string{"co"}},
		{"Société Générale", []string{"société générale", "sociétégénérale"}},
		{"", nil},
		{"   ", nil},
		{"!!!", []string{"!!!"}},
	}
	for _, c := range cases {
		got := Generate(c.brand)
		assert.Equal(t, c.want, got, "Generate(%q)", c.brand)
	}
}

func TestGenerate_AlwaysContainsBase(t *testing.T) {
	for _, brand := range []string{"Acme", "Acme Corp", "The Widget Co.", "x"} {
		got := Generate(brand)
		if assert.NotEmpty(t, got) {
			assert.Equal(t, Normalize(brand), got[0])
		}
	}
}

func TestGenerate_Deduplicated(t *testing.T) {
	got := Generate("acme")
	seen := map[string]bool{}
	for _, v := range got {
		assert.False(t, seen[v], "duplicate variant %q", v)
		seen[v] = true
	}
}

func TestGenerate_SuffixOnlyWholeWords(t *testing.T) {
	// "cohort" and "incorporated" contain suffix letters but are not suffix tokens.
	got := Generate("Cohort Incorporated")
	assert.Contains(t, got, "cohort incorporated")
	assert.Len(t, got, 2)
}
