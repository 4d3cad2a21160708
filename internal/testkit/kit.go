// Package testkit builds deterministic synthetic training-program datasets
// for tests and local runs. All generation is seeded, so fixtures are
// reproducible byte for byte.
package testkit

import (
	"fmt"
	"math/rand"

	"impactproof/domain/record"
)

// Options shape the generated dataset.
type Options struct {
	Seed           int64
	MonthlyVolumes []int   // records per consecutive month starting at StartMonth
	StartYear      int
	StartMonth     int
	MissingRate    float64 // chance a followup_date is blank
	Duplicates     int     // rows copied from earlier rows, appended at the end
}

// DefaultOptions returns a small healthy dataset
func DefaultOptions() Options {
	return Options{
		Seed:           42,
		MonthlyVolumes: []int{20, 20, 20},
		StartYear:      2025,
		StartMonth:     1,
		MissingRate:    0.0,
		Duplicates:     0,
	}
}

// TrainingRows generates raw rows shaped like a learner training export:
// learner_id, encounter_date, outcome, followup_date, attended.
func TrainingRows(opts Options) []record.RawRow {
	rng := rand.New(rand.NewSource(opts.Seed))
	outcomes := []string{"Completed", "Enrolled", "Dropped"}

	var rows []record.RawRow
	id := 0
	for m, volume := range opts.MonthlyVolumes {
		year := opts.StartYear
		month := opts.StartMonth + m
		for month > 12 {
			month -= 12
			year++
		}
		for i := 0; i < volume; i++ {
			id++
			day := 1 + rng.Intn(28)
			outcome := outcomes[rng.Intn(len(outcomes))]

			followup := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
			if outcome != "Completed" || rng.Float64() < opts.MissingRate {
				followup = ""
			}
			attended := "Yes"
			if rng.Float64() < 0.2 {
				attended = "No"
			}

			rows = append(rows, record.RawRow{
				"learner_id":     fmt.Sprintf("L%04d", id),
				"encounter_date": fmt.Sprintf("%04d-%02d-%02d", year, month, day),
				"outcome":        outcome,
				"followup_date":  followup,
				"attended":       attended,
			})
		}
	}

	for i := 0; i < opts.Duplicates && i < len(rows); i++ {
		copied := record.RawRow{}
		for k, v := range rows[i] {
			copied[k] = v
		}
		rows = append(rows, copied)
	}
	return rows
}

// Vocab returns the missing-value vocabulary the generated rows assume
func Vocab() record.MissingVocab {
	return record.MissingVocab{
		NAValues:      []string{"N/A", "na"},
		NoValues:      []string{"No", "NO"},
		UnknownValues: []string{"Unknown", "?"},
	}
}
