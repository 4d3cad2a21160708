package app

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impactproof/domain/check"
	"impactproof/domain/core"
	"impactproof/domain/record"
	"impactproof/internal/config"
	"impactproof/internal/testkit"
)

func runConfig() *config.RunConfig {
	return &config.RunConfig{
		Fields: record.Roles{
			record.RoleRecordID:  "learner_id",
			record.RoleEventDate: "encounter_date",
		},
		MissingLabels: testkit.Vocab(),
		Checks: config.ChecksConfig{
			Completeness: &check.CompletenessConfig{
				RequiredFields: []string{"outcome", "encounter_date"},
				RateThresholds: check.RateThresholds{Pass: 0.95, Warn: 0.85},
			},
			Duplicates: &check.DuplicatesConfig{
				Keys:           []string{"learner_id", "encounter_date"},
				RateThresholds: check.RateThresholds{Pass: 0.0, Warn: 0.1},
			},
			Consistency: &check.ConsistencyConfig{
				Rules: []check.Rule{{
					Name:         "CompletedRequiresFollowupDate",
					When:         check.Condition{Field: "outcome", Value: "Completed"},
					ThenRequired: []string{"followup_date"},
				}},
				RateThresholds: check.RateThresholds{Pass: 1.0, Warn: 0.8},
			},
			Drift: &check.DriftConfig{
				DateField:       "encounter_date",
				Period:          check.PeriodMonthly,
				BaselinePeriods: 2,
				WarnPctChange:   0.30,
				FailPctChange:   0.50,
			},
		},
		Output: config.OutputConfig{Path: "outputs", MaxExamples: 5},
	}
}

func TestEvaluateHealthyDataset(t *testing.T) {
	rows := testkit.TrainingRows(testkit.DefaultOptions())
	svc := NewRunService(nil)

	result, err := svc.Evaluate(context.Background(), rows, runConfig())
	require.NoError(t, err)

	assert.Len(t, result.Results, 4)
	assert.Equal(t, check.VerdictPass, result.Scorecard.Rows[0].Verdict, "completeness should pass on clean data")
	assert.NotEmpty(t, result.Fingerprint)
	assert.Equal(t, len(rows), result.Profile.Rows)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	rows := testkit.TrainingRows(testkit.DefaultOptions())
	svc := NewRunService(nil)

	first, err := svc.Evaluate(context.Background(), rows, runConfig())
	require.NoError(t, err)
	second, err := svc.Evaluate(context.Background(), rows, runConfig())
	require.NoError(t, err)

	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	if !reflect.DeepEqual(first.Results, second.Results) {
		t.Error("re-running on identical input and config must yield identical results")
	}
}

func TestEvaluateParallelMatchesSequential(t *testing.T) {
	rows := testkit.TrainingRows(testkit.DefaultOptions())
	svc := NewRunService(nil)

	cfg := runConfig()
	sequential, err := svc.Evaluate(context.Background(), rows, cfg)
	require.NoError(t, err)

	cfg.Parallel = true
	parallel, err := svc.Evaluate(context.Background(), rows, cfg)
	require.NoError(t, err)

	assert.Equal(t, sequential.Fingerprint, parallel.Fingerprint)
}

func TestEvaluateFlagsDuplicates(t *testing.T) {
	opts := testkit.DefaultOptions()
	opts.Duplicates = 3
	rows := testkit.TrainingRows(opts)

	svc := NewRunService(nil)
	result, err := svc.Evaluate(context.Background(), rows, runConfig())
	require.NoError(t, err)

	var dup check.Result
	for _, res := range result.Results {
		if res.Kind == check.KindDuplicates {
			dup = res
		}
	}
	assert.Len(t, dup.Issues, 3)
	assert.NotEqual(t, check.VerdictPass, dup.Verdict)
}

func TestEvaluateDriftSpike(t *testing.T) {
	opts := testkit.DefaultOptions()
	opts.MonthlyVolumes = []int{100, 100, 100, 200}
	rows := testkit.TrainingRows(opts)

	svc := NewRunService(nil)
	result, err := svc.Evaluate(context.Background(), rows, runConfig())
	require.NoError(t, err)

	var drift check.Result
	for _, res := range result.Results {
		if res.Kind == check.KindDrift {
			drift = res
		}
	}
	assert.Equal(t, check.VerdictFail, drift.Verdict)
	assert.Equal(t, check.VerdictFail, result.Scorecard.Overall, "one failing dimension fails the whole scorecard")
}

func TestEvaluateConfigErrorProducesNoOutputs(t *testing.T) {
	rows := testkit.TrainingRows(testkit.DefaultOptions())

	cfg := runConfig()
	cfg.Fields["record_id"] = "participant_id" // column that does not exist

	svc := NewRunService(nil)
	result, err := svc.Evaluate(context.Background(), rows, cfg)

	require.Error(t, err)
	assert.True(t, core.IsConfigError(err))
	assert.Nil(t, result, "a config error must abort before any result exists")
}

func TestEvaluateThresholdConfigErrorAbortsRun(t *testing.T) {
	rows := testkit.TrainingRows(testkit.DefaultOptions())

	cfg := runConfig()
	cfg.Checks.Completeness.Pass = 1.5

	svc := NewRunService(nil)
	result, err := svc.Evaluate(context.Background(), rows, cfg)

	require.Error(t, err)
	assert.True(t, core.IsConfigError(err))
	assert.Nil(t, result)
}
