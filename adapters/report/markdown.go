package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"impactproof/app"
)

// Markdown renders a run result as a donor-readable report.
func Markdown(res *app.RunResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Data Quality Scorecard\n\n")
	fmt.Fprintf(&b, "Run `%s`, overall **%s**\n\n", res.RunID, res.Scorecard.Overall)

	b.WriteString("| Check | Verdict | Metric | Issues | Detail |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, row := range res.Scorecard.Rows {
		detail := row.Detail
		if row.ConfigFailure {
			detail = "configuration failure: " + detail
		}
		fmt.Fprintf(&b, "| %s | %s | %.4f | %d | %s |\n", row.Check, row.Verdict, row.Metric, row.IssueCount, detail)
	}

	if len(res.FixList.Groups) > 0 {
		b.WriteString("\n## Recommended fixes\n\n")
		for i, g := range res.FixList.Groups {
			fmt.Fprintf(&b, "%d. **%s / %s**: %d issue(s). %s", i+1, g.Check, g.GroupKey, g.Count, g.Action)
			if len(g.Examples) > 0 {
				parts := make([]string, 0, len(g.Examples))
				for _, ex := range g.Examples {
					parts = append(parts, string(ex))
				}
				fmt.Fprintf(&b, " Examples: %s.", strings.Join(parts, ", "))
			}
			b.WriteString("\n")
		}
	}

	if len(res.Profile.Fields) > 0 {
		b.WriteString("\n## Field profile\n\n")
		b.WriteString("| Field | Present | NA | NO | Unknown | Absent | Missing rate | Distinct |\n")
		b.WriteString("|---|---|---|---|---|---|---|---|\n")
		for _, f := range res.Profile.Fields {
			fmt.Fprintf(&b, "| %s | %d | %d | %d | %d | %d | %.1f%% | %d |\n",
				f.Column, f.Present, f.ExplicitNA, f.ExplicitNo, f.ExplicitUnk, f.Absent, f.MissingRate*100, f.DistinctCount)
		}
	}

	fmt.Fprintf(&b, "\nFingerprint: `%s`\n", res.Fingerprint)
	return b.String()
}

// HTML renders the markdown report as a standalone HTML fragment.
func HTML(res *app.RunResult) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(Markdown(res)))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}
