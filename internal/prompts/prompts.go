// Package prompts reads a Markdown prompt list for answer collection.
//
// Each top-level numbered or bulleted item is one prompt, as is each plain
// paragraph line. Indented lines continue the previous prompt. Headings,
// blank lines and fenced code blocks separate prompts and are never part of
// one.
package prompts

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// Prompt is one question to put to the model.
type Prompt struct {
	ID   string `json:"id" yaml:"id"`
	Line int    `json:"line" yaml:"line"`
	Text string `json:"text" yaml:"text"`
}

// ID formats the sequential id of the n-th prompt (1-based).
func ID(n int) string {
	return fmt.Sprintf("PROMPT-%03d", n)
}

var (
	numberedRe = regexp.MustCompile(`^\d+[.)](?:\s+|$)`)
	bulletRe   = regexp.MustCompile(`^[-*+•](?:\s+|$)`)
	ruleRe     = regexp.MustCompile(`^(?:(?:-\s*){3,}|(?:\*\s*){3,}|(?:_\s*){3,})$`)
	fenceRe    = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")
)

// ParseFile reads the prompt list at path.
func ParseFile(path string) ([]Prompt, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "prompts: open %s", path)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a prompt list from r.
func Parse(r io.Reader) ([]Prompt, error) {
	var (
		out   []Prompt
		cur   *Prompt
		fence string
		n     int
	)
	flush := func() {
		if cur != nil && cur.Text != "" {
			out = append(out, *cur)
		}
		cur = nil
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		n++
		line := sc.Text()

		if fence != "" {
			if m := fenceRe.FindStringSubmatch(line); m != nil &&
				m[1][0] == fence[0] && len(m[1]) >= len(fence) &&
				strings.TrimSpace(line[len(m[0]):]) == "" {
				fence = ""
			}
			continue
		}
		if m := fenceRe.FindStringSubmatch(line); m != nil {
			flush()
			fence = m[1]
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flush()
		case strings.HasPrefix(trimmed, "#"), ruleRe.MatchString(trimmed):
			flush()
		case isIndented(line) && cur != nil:
			cur.Text = strings.TrimSpace(cur.Text + " " + trimmed)
		default:
			flush()
			text := stripMarker(trimmed)
			cur = &Prompt{Line: n, Text: text}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "prompts: scan")
	}
	flush()

	for i := range out {
		out[i].ID = ID(i + 1)
	}
	return out, nil
}

func stripMarker(s string) string {
	if loc := numberedRe.FindStringIndex(s); loc != nil {
		return strings.TrimSpace(s[loc[1]:])
	}
	if loc := bulletRe.FindStringIndex(s); loc != nil {
		return strings.TrimSpace(s[loc[1]:])
	}
	return s
}

// isIndented reports whether line starts with a tab or at least two spaces.
func isIndented(line string) bool {
	return strings.HasPrefix(line, "\t") || strings.HasPrefix(line, "  ")
}
