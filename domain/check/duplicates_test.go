package check

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impactproof/domain/core"
	"impactproof/domain/record"
)

func TestDuplicatesSinglePair(t *testing.T) {
	rows := []record.RawRow{
		{"pid": "P1", "learner_id": "L1", "encounter_date": "2025-01-01"},
		{"pid": "P2", "learner_id": "L2", "encounter_date": "2025-01-02"},
		{"pid": "P3", "learner_id": "L1", "encounter_date": "2025-01-01"},
		{"pid": "P4", "learner_id": "L3", "encounter_date": "2025-01-03"},
	}
	records := standardize(t, rows, record.Roles{record.RoleRecordID: "pid"})

	d := NewDuplicates(DuplicatesConfig{
		Keys:           []string{"learner_id", "encounter_date"},
		RateThresholds: RateThresholds{Pass: 0.0, Warn: 0.02},
	}, record.Roles{})

	res, err := d.Evaluate(records)
	require.NoError(t, err)

	// one duplicate pair in four rows: metric 1/4, one issue
	assert.InDelta(t, 0.25, res.Metric, 1e-9)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, core.RecordKey("P3"), res.Issues[0].RecordKey)
	assert.True(t, strings.Contains(res.Issues[0].Message, "P1"), "issue must name the kept record")
}

func TestDuplicatesIncompleteKeyExcluded(t *testing.T) {
	rows := []record.RawRow{
		{"pid": "P1", "learner_id": "L1", "encounter_date": "2025-01-01"},
		{"pid": "P2", "learner_id": "", "encounter_date": "2025-01-01"},
		{"pid": "P3", "learner_id": "L1", "encounter_date": "2025-01-01"},
	}
	records := standardize(t, rows, record.Roles{record.RoleRecordID: "pid"})

	d := NewDuplicates(DuplicatesConfig{
		Keys:           []string{"learner_id", "encounter_date"},
		RateThresholds: RateThresholds{Pass: 0.0, Warn: 0.5},
	}, record.Roles{})

	res, err := d.Evaluate(records)
	require.NoError(t, err)

	require.Len(t, res.Issues, 2)
	var incomplete, duplicate int
	for _, issue := range res.Issues {
		switch issue.GroupKey {
		case "incomplete-key":
			incomplete++
			assert.Equal(t, core.RecordKey("P2"), issue.RecordKey)
		default:
			duplicate++
		}
	}
	assert.Equal(t, 1, incomplete)
	assert.Equal(t, 1, duplicate)
	assert.InDelta(t, 1.0/3.0, res.Metric, 1e-9)
}

func TestDuplicatesExplicitNoIsAKeyValue(t *testing.T) {
	// Explicit NO is data: rows sharing an explicit NO key value group together
	rows := []record.RawRow{
		{"pid": "P1", "consent": "No"},
		{"pid": "P2", "consent": "No"},
	}
	records := standardize(t, rows, record.Roles{record.RoleRecordID: "pid"})

	d := NewDuplicates(DuplicatesConfig{
		Keys:           []string{"consent"},
		RateThresholds: RateThresholds{Pass: 0.0, Warn: 0.1},
	}, record.Roles{})

	res, err := d.Evaluate(records)
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, VerdictFail, res.Verdict)
}

func TestDuplicatesInvertedThresholds(t *testing.T) {
	th := RateThresholds{Pass: 0.0, Warn: 0.02}
	assert.Equal(t, VerdictPass, th.gradeLowerBetter(0.0))
	assert.Equal(t, VerdictWarn, th.gradeLowerBetter(0.01))
	assert.Equal(t, VerdictWarn, th.gradeLowerBetter(0.02))
	assert.Equal(t, VerdictFail, th.gradeLowerBetter(0.03))
}

func TestDuplicatesValidate(t *testing.T) {
	d := NewDuplicates(DuplicatesConfig{RateThresholds: RateThresholds{Pass: 0, Warn: 0.02}}, record.Roles{})
	assert.Error(t, d.Validate(), "empty keys is a config error")

	d = NewDuplicates(DuplicatesConfig{
		Keys:           []string{"learner_id"},
		RateThresholds: RateThresholds{Pass: 0.5, Warn: 0.1},
	}, record.Roles{})
	assert.Error(t, d.Validate(), "pass above warn makes no sense for a lower-is-better rate")
}
