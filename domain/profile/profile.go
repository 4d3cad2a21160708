// Package profile computes per-field summaries of a standardized batch.
// Profiles are derived, read-only, and never affect verdicts; they power the
// profile command and the report appendix.
package profile

import (
	"sort"
	"strconv"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"impactproof/domain/record"
)

// NumericSummary describes the distribution of a numeric field.
type NumericSummary struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
}

// FieldSummary counts the five value states for one column and, when the
// column looks numeric, summarizes its distribution.
type FieldSummary struct {
	Column        string          `json:"column"`
	Present       int             `json:"present"`
	ExplicitNA    int             `json:"explicit_na"`
	ExplicitNo    int             `json:"explicit_no"`
	ExplicitUnk   int             `json:"explicit_unknown"`
	Absent        int             `json:"absent"`
	MissingRate   float64         `json:"missing_rate"`
	DistinctCount int             `json:"distinct_count"`
	Numeric       *NumericSummary `json:"numeric,omitempty"`
}

// Profile is the per-field view of one batch.
type Profile struct {
	Rows   int            `json:"rows"`
	Fields []FieldSummary `json:"fields"`
}

// numericShare is the fraction of present values that must parse as numbers
// before a column gets a numeric summary.
const numericShare = 0.8

// Compute profiles every column seen in the batch. Fields come back in
// sorted column order so output is deterministic.
func Compute(records []record.Record) Profile {
	columns := map[string]bool{}
	for _, rec := range records {
		for _, col := range rec.FieldNames() {
			columns[col] = true
		}
	}
	names := make([]string, 0, len(columns))
	for col := range columns {
		names = append(names, col)
	}
	sort.Strings(names)

	p := Profile{Rows: len(records)}
	for _, col := range names {
		p.Fields = append(p.Fields, summarizeColumn(col, records))
	}
	return p
}

func summarizeColumn(col string, records []record.Record) FieldSummary {
	fs := FieldSummary{Column: col}
	distinct := map[string]bool{}
	var numbers []float64

	for _, rec := range records {
		v := rec.Value(col)
		switch v.State {
		case record.StatePresent:
			fs.Present++
			distinct[v.Raw] = true
			if f, err := strconv.ParseFloat(v.Raw, 64); err == nil {
				numbers = append(numbers, f)
			}
		case record.StateNA:
			fs.ExplicitNA++
		case record.StateNo:
			fs.ExplicitNo++
		case record.StateUnknown:
			fs.ExplicitUnk++
		case record.StateAbsent:
			fs.Absent++
		}
	}

	fs.DistinctCount = len(distinct)
	if len(records) > 0 {
		fs.MissingRate = float64(fs.ExplicitNA+fs.ExplicitUnk+fs.Absent) / float64(len(records))
	}
	if fs.Present > 0 && float64(len(numbers))/float64(fs.Present) >= numericShare {
		fs.Numeric = summarizeNumbers(numbers)
	}
	return fs
}

func summarizeNumbers(numbers []float64) *NumericSummary {
	sorted := append([]float64(nil), numbers...)
	sort.Float64s(sorted)

	median, err := mstats.Median(sorted)
	if err != nil {
		return nil
	}
	return &NumericSummary{
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   stat.Mean(sorted, nil),
		StdDev: stdDev(sorted),
		Median: median,
	}
}

func stdDev(sorted []float64) float64 {
	if len(sorted) < 2 {
		return 0
	}
	return stat.StdDev(sorted, nil)
}
