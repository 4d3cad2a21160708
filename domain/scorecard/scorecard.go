package scorecard

import (
	"encoding/json"

	"impactproof/domain/check"
	"impactproof/domain/core"
)

// Row is one scorecard line derived from a single check result.
type Row struct {
	Check         string        `json:"check"`
	Kind          check.Kind    `json:"kind"`
	Verdict       check.Verdict `json:"verdict"`
	Metric        float64       `json:"metric"`
	IssueCount    int           `json:"issue_count"`
	Detail        string        `json:"detail,omitempty"`
	ConfigFailure bool          `json:"config_failure,omitempty"`
}

// Scorecard is the donor-facing summary of one run. Derived and read-only;
// a new run produces an entirely new scorecard.
type Scorecard struct {
	RunID       core.RunID     `json:"run_id"`
	GeneratedAt core.Timestamp `json:"generated_at"`
	Overall     check.Verdict  `json:"overall"`
	Rows        []Row          `json:"rows"`
}

// Aggregate reduces per-check results into a scorecard. The overall verdict
// is the worst check verdict: one failing dimension fails the whole card,
// with no weighting across checks.
func Aggregate(runID core.RunID, results []check.Result) Scorecard {
	rows := make([]Row, 0, len(results))
	verdicts := make([]check.Verdict, 0, len(results))
	for _, res := range results {
		rows = append(rows, Row{
			Check:         res.Check,
			Kind:          res.Kind,
			Verdict:       res.Verdict,
			Metric:        res.Metric,
			IssueCount:    len(res.Issues),
			Detail:        res.Detail,
			ConfigFailure: res.ConfigFailure,
		})
		verdicts = append(verdicts, res.Verdict)
	}
	return Scorecard{
		RunID:       runID,
		GeneratedAt: core.Now(),
		Overall:     check.Worst(verdicts...),
		Rows:        rows,
	}
}

// Fingerprint hashes the verdict-bearing content of the scorecard. RunID and
// generation time are excluded so identical input and config always produce
// identical fingerprints.
func (s Scorecard) Fingerprint() core.Hash {
	payload := struct {
		Overall check.Verdict `json:"overall"`
		Rows    []Row         `json:"rows"`
	}{s.Overall, s.Rows}
	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return core.NewHash(data)
}
