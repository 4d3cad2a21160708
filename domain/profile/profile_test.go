package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impactproof/domain/record"
)

func fixture(t *testing.T) []record.Record {
	t.Helper()
	vocab := record.MissingVocab{
		NAValues:      []string{"N/A"},
		NoValues:      []string{"No"},
		UnknownValues: []string{"Unknown"},
	}
	rows := []record.RawRow{
		{"pid": "P1", "score": "10", "consent": "Yes"},
		{"pid": "P2", "score": "20", "consent": "No"},
		{"pid": "P3", "score": "30", "consent": "Unknown"},
		{"pid": "P4", "score": "", "consent": "N/A"},
	}
	records, _, err := record.Standardize(rows, record.Roles{record.RoleRecordID: "pid"}, vocab)
	require.NoError(t, err)
	return records
}

func TestComputeCountsStates(t *testing.T) {
	p := Compute(fixture(t))

	assert.Equal(t, 4, p.Rows)
	require.Len(t, p.Fields, 3) // consent, pid, score in sorted order
	assert.Equal(t, "consent", p.Fields[0].Column)

	consent := p.Fields[0]
	assert.Equal(t, 1, consent.Present)
	assert.Equal(t, 1, consent.ExplicitNo)
	assert.Equal(t, 1, consent.ExplicitUnk)
	assert.Equal(t, 1, consent.ExplicitNA)
	// NO counts as data: only NA and Unknown are missing
	assert.InDelta(t, 0.5, consent.MissingRate, 1e-9)
}

func TestComputeNumericSummary(t *testing.T) {
	p := Compute(fixture(t))

	var score FieldSummary
	for _, f := range p.Fields {
		if f.Column == "score" {
			score = f
		}
	}
	require.NotNil(t, score.Numeric, "an all-numeric column gets a numeric summary")
	assert.InDelta(t, 10, score.Numeric.Min, 1e-9)
	assert.InDelta(t, 30, score.Numeric.Max, 1e-9)
	assert.InDelta(t, 20, score.Numeric.Mean, 1e-9)
	assert.InDelta(t, 20, score.Numeric.Median, 1e-9)
}

func TestComputeSkipsNumericForText(t *testing.T) {
	p := Compute(fixture(t))
	for _, f := range p.Fields {
		if f.Column == "pid" {
			assert.Nil(t, f.Numeric, "identifier columns are not numeric")
		}
	}
}
