package ports

import (
	"impactproof/domain/check"
	"impactproof/domain/scorecard"
)

// ReportWriter serializes the terminal outputs of a run. The core defines
// the shapes; the writer owns file formats and destinations.
type ReportWriter interface {
	WriteScorecard(sc scorecard.Scorecard) error
	WriteIssues(results []check.Result) error
	WriteFixList(fl scorecard.FixList) error
}
