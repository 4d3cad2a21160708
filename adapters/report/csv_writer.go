package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"impactproof/domain/check"
	"impactproof/domain/scorecard"
)

// Output file names owned by this writer; the core only defines the shapes.
const (
	ScorecardFile = "quality_scorecard.csv"
	IssuesFile    = "issues_all.csv"
	FixListFile   = "fix_list.csv"
)

// CSVWriter serializes run outputs into the configured directory.
type CSVWriter struct {
	dir string
}

// NewCSVWriter creates a writer rooted at dir, creating it if needed
func NewCSVWriter(dir string) (*CSVWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	return &CSVWriter{dir: dir}, nil
}

// WriteScorecard writes quality_scorecard.csv
func (w *CSVWriter) WriteScorecard(sc scorecard.Scorecard) error {
	rows := [][]string{{"check", "verdict", "metric", "issues", "detail"}}
	for _, row := range sc.Rows {
		detail := row.Detail
		if row.ConfigFailure {
			detail = "configuration failure: " + detail
		}
		rows = append(rows, []string{
			row.Check,
			string(row.Verdict),
			formatMetric(row.Metric),
			strconv.Itoa(row.IssueCount),
			detail,
		})
	}
	rows = append(rows, []string{"overall", string(sc.Overall), "", "", "worst verdict across all checks"})
	return w.writeFile(ScorecardFile, rows)
}

// WriteIssues writes issues_all.csv with every record-level issue
func (w *CSVWriter) WriteIssues(results []check.Result) error {
	rows := [][]string{{"check", "record", "field", "severity", "message", "suggested_fix"}}
	for _, res := range results {
		for _, issue := range res.Issues {
			rows = append(rows, []string{
				issue.Check,
				issue.RecordKey.String(),
				issue.Field,
				string(issue.Severity),
				issue.Message,
				issue.SuggestedFix,
			})
		}
	}
	return w.writeFile(IssuesFile, rows)
}

// WriteFixList writes fix_list.csv
func (w *CSVWriter) WriteFixList(fl scorecard.FixList) error {
	rows := [][]string{{"check", "group", "count", "examples", "recommended_action"}}
	for _, g := range fl.Groups {
		examples := make([]string, 0, len(g.Examples))
		for _, ex := range g.Examples {
			examples = append(examples, ex.String())
		}
		rows = append(rows, []string{
			g.Check,
			g.GroupKey,
			strconv.Itoa(g.Count),
			strings.Join(examples, "; "),
			g.Action,
		})
	}
	return w.writeFile(FixListFile, rows)
}

func (w *CSVWriter) writeFile(name string, rows [][]string) error {
	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	cw.Flush()
	return cw.Error()
}

func formatMetric(m float64) string {
	return strconv.FormatFloat(m, 'f', 4, 64)
}
