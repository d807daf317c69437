// Package render produces output from a fully assembled schema.AuditResult.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/dshills/brandlens/internal/schema"
)

// maxPromptCell caps the prompt column of the per-run table, in runes.
const maxPromptCell = 80

// RenderJSON produces a pretty-printed JSON representation of the result.
// The output round-trips through json.Unmarshal back to an equal AuditResult.
func RenderJSON(result *schema.AuditResult) ([]byte, error) {
	if result == nil {
		return nil, eris.New("render: nil result")
	}
	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "render: json marshal")
	}
	return b, nil
}

// RenderMarkdown produces a GitHub-flavoured Markdown summary of the result,
// suitable for PR comments or terminal output. Every run ID present in the
// result appears in the output.
func RenderMarkdown(result *schema.AuditResult) string {
	if result == nil {
		return ""
	}
	r := result.Report
	var sb strings.Builder

	fmt.Fprintf(&sb, "## Brand Visibility: %s\n\n", mdEscape(result.Brand))
	if result.AuditID != "" {
		fmt.Fprintf(&sb, "**Audit:** `%s`  \n", result.AuditID)
	}
	fmt.Fprintf(&sb, "**Runs:** %d | **Brand detected:** %d\n\n", r.TotalRuns, r.BrandDetectedCount)

	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|---|---|\n")
	fmt.Fprintf(&sb, "| Presence rate | %s |\n", pct(r.PresenceRate))
	fmt.Fprintf(&sb, "| Citation rate | %s |\n", pct(r.CitationRate))
	fmt.Fprintf(&sb, "| Recommendation rate | %s |\n", pct(r.RecommendationRate))
	fmt.Fprintf(&sb, "| Total citations | %d |\n", r.TotalCitations)
	fmt.Fprintf(&sb, "| Brand-owned rate | %s |\n", pct(r.BrandOwnedRate))
	fmt.Fprintf(&sb, "| Average authority | %.2f |\n", r.AverageAuthorityScore)
	fmt.Fprintf(&sb, "| Runs without citations | %d |\n", r.MissingCitationsCount)
	sb.WriteString("\n")

	if len(r.ByType) > 0 {
		sb.WriteString("## Citation Sources\n\n")
		sb.WriteString("| Source type | Count | Share |\n")
		sb.WriteString("|---|---|---|\n")
		for _, s := range r.ByType {
			fmt.Fprintf(&sb, "| %s | %d | %s |\n", s.SourceType, s.Count, pct(s.Percent))
		}
		sb.WriteString("\n")
	}

	if r.TotalRuns > 0 {
		sb.WriteString("## Mentions\n\n")
		sb.WriteString("| Mention type | Runs | Share |\n")
		sb.WriteString("|---|---|---|\n")
		for _, m := range r.ByMentionType {
			fmt.Fprintf(&sb, "| %s | %d | %s |\n", m.MentionType, m.Count, pct(m.Percent))
		}
		sb.WriteString("\n")
	}

	if len(r.TopDomains) > 0 {
		sb.WriteString("## Top Domains\n\n")
		sb.WriteString("| Domain | Citations |\n")
		sb.WriteString("|---|---|\n")
		for _, d := range r.TopDomains {
			fmt.Fprintf(&sb, "| %s | %d |\n", mdEscape(d.Domain), d.Count)
		}
		sb.WriteString("\n")
	}

	if len(result.Runs) > 0 {
		sb.WriteString("## Runs\n\n")
		sb.WriteString("| Run | Mention | Confidence | Cited | Citations | Prompt |\n")
		sb.WriteString("|---|---|---|---|---|---|\n")
		for _, run := range result.Runs {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %d | %s |\n",
				mdEscape(run.RunID),
				run.Presence.MentionType,
				confidence(run.Presence.Confidence),
				yesNo(run.Presence.CitationPresent),
				len(run.Citations),
				mdEscape(truncate(run.Prompt, maxPromptCell)),
			)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func pct(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

func confidence(c *float64) string {
	if c == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *c)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// mdEscape replaces characters that would break Markdown table cells.
func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return s
}
