package scorecard

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impactproof/domain/check"
	"impactproof/domain/core"
)

func issue(checkName, groupKey string, key core.RecordKey) check.Issue {
	return check.Issue{
		Check:        checkName,
		RecordKey:    key,
		GroupKey:     groupKey,
		Message:      "m",
		SuggestedFix: "fix " + groupKey,
	}
}

func fixtureResults() []check.Result {
	return []check.Result{
		{
			Check: "completeness",
			Issues: []check.Issue{
				issue("completeness", "missing:outcome", "P1"),
				issue("completeness", "missing:outcome", "P2"),
				issue("completeness", "missing:outcome", "P3"),
				issue("completeness", "missing:date", "P1"),
			},
		},
		{
			Check: "duplicates",
			Issues: []check.Issue{
				issue("duplicates", "duplicate:learner_id", "P4"),
			},
		},
		{
			Check: "consistency",
			Issues: []check.Issue{
				issue("consistency", "rule:A", "P5"),
			},
		},
	}
}

func TestFixListGroupsAndRanks(t *testing.T) {
	fl := GenerateFixList(fixtureResults(), 5)

	require.Len(t, fl.Groups, 4)

	// biggest group first
	assert.Equal(t, "missing:outcome", fl.Groups[0].GroupKey)
	assert.Equal(t, 3, fl.Groups[0].Count)
	assert.Equal(t, []core.RecordKey{"P1", "P2", "P3"}, fl.Groups[0].Examples)

	// single-issue ties resolve by check declaration order
	assert.Equal(t, "missing:date", fl.Groups[1].GroupKey)
	assert.Equal(t, "duplicate:learner_id", fl.Groups[2].GroupKey)
	assert.Equal(t, "rule:A", fl.Groups[3].GroupKey)
}

func TestFixListTieBreakWithinOneCheck(t *testing.T) {
	res := []check.Result{{
		Check: "completeness",
		Issues: []check.Issue{
			issue("completeness", "missing:zeta", "P1"),
			issue("completeness", "missing:alpha", "P2"),
		},
	}}
	fl := GenerateFixList(res, 5)

	require.Len(t, fl.Groups, 2)
	// equal counts, same check: group key lexical order decides
	assert.Equal(t, "missing:alpha", fl.Groups[0].GroupKey)
	assert.Equal(t, "missing:zeta", fl.Groups[1].GroupKey)
}

func TestFixListCapsExamples(t *testing.T) {
	issues := make([]check.Issue, 0, 10)
	for _, key := range []core.RecordKey{"P1", "P2", "P3", "P4", "P5", "P6", "P7"} {
		issues = append(issues, issue("completeness", "missing:outcome", key))
	}
	fl := GenerateFixList([]check.Result{{Check: "completeness", Issues: issues}}, 3)

	require.Len(t, fl.Groups, 1)
	assert.Equal(t, 7, fl.Groups[0].Count)
	assert.Equal(t, []core.RecordKey{"P1", "P2", "P3"}, fl.Groups[0].Examples)
}

func TestFixListDeterminism(t *testing.T) {
	first := GenerateFixList(fixtureResults(), 5)
	second := GenerateFixList(fixtureResults(), 5)

	if !reflect.DeepEqual(first, second) {
		t.Error("generating the fix list twice on the same results must be byte-identical")
	}
}

func TestFixListEmptyResults(t *testing.T) {
	fl := GenerateFixList([]check.Result{{Check: "completeness"}}, 5)
	assert.Empty(t, fl.Groups)
}
