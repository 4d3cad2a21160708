package app

import (
	"context"
	"time"

	"impactproof/domain/check"
	"impactproof/domain/core"
	"impactproof/domain/profile"
	"impactproof/domain/record"
	"impactproof/domain/scorecard"
	"impactproof/internal"
	"impactproof/internal/config"
)

// RunService drives one evaluation: standardize the raw batch, validate the
// configured checks, execute them, and aggregate the outputs.
type RunService struct {
	log *internal.Logger
}

// NewRunService creates a run service
func NewRunService(log *internal.Logger) *RunService {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &RunService{log: log}
}

// RunResult is the complete output of one evaluation.
type RunResult struct {
	RunID       core.RunID          `json:"run_id"`
	Scorecard   scorecard.Scorecard `json:"scorecard"`
	FixList     scorecard.FixList   `json:"fix_list"`
	Results     []check.Result      `json:"results"`
	Profile     profile.Profile     `json:"profile"`
	Warnings    []string            `json:"warnings,omitempty"`
	Fingerprint core.Hash           `json:"fingerprint"`
	RuntimeMs   int64               `json:"runtime_ms"`
}

// Evaluate runs the full pipeline over an already-materialized batch. A
// configuration error aborts before any check executes and produces no
// outputs; per-check execution failures degrade to FAIL scorecard rows.
func (s *RunService) Evaluate(ctx context.Context, rows []record.RawRow, cfg *config.RunConfig) (*RunResult, error) {
	start := time.Now()
	runID := core.RunID(core.NewID())

	records, warnings, err := record.Standardize(rows, cfg.Fields, cfg.MissingLabels)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		s.log.Warn("standardize: %s", w)
	}

	runner := check.NewRunner(buildChecks(cfg)...)
	if cfg.Parallel {
		runner = runner.Parallel()
	}
	if err := runner.Validate(); err != nil {
		return nil, err
	}

	results := runner.Run(ctx, records)
	card := scorecard.Aggregate(runID, results)
	fixes := scorecard.GenerateFixList(results, cfg.Output.MaxExamples)

	s.log.Info("run %s: %d rows, %d checks, overall %s", runID, len(records), len(results), card.Overall)

	return &RunResult{
		RunID:       runID,
		Scorecard:   card,
		FixList:     fixes,
		Results:     results,
		Profile:     profile.Compute(records),
		Warnings:    warnings,
		Fingerprint: card.Fingerprint(),
		RuntimeMs:   time.Since(start).Milliseconds(),
	}, nil
}

// buildChecks assembles the enabled check variants in canonical declaration
// order: completeness, duplicates, consistency, drift.
func buildChecks(cfg *config.RunConfig) []check.Check {
	var checks []check.Check
	roles := cfg.Fields
	if c := cfg.Checks.Completeness; c != nil {
		checks = append(checks, check.NewCompleteness(*c, roles))
	}
	if c := cfg.Checks.Duplicates; c != nil {
		checks = append(checks, check.NewDuplicates(*c, roles))
	}
	if c := cfg.Checks.Consistency; c != nil {
		checks = append(checks, check.NewConsistency(*c, roles))
	}
	if c := cfg.Checks.Drift; c != nil {
		checks = append(checks, check.NewDrift(*c, roles))
	}
	return checks
}
