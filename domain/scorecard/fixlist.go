package scorecard

import (
	"sort"

	"impactproof/domain/check"
	"impactproof/domain/core"
)

// DefaultMaxExamples caps the record identifiers carried per fix group so
// the output stays donor-readable.
const DefaultMaxExamples = 5

// FixGroup is a cluster of record-level issues sharing a cause, presented
// as one actionable line instead of one row per violation.
type FixGroup struct {
	Check    string           `json:"check"`
	GroupKey string           `json:"group_key"`
	Count    int              `json:"count"`
	Examples []core.RecordKey `json:"examples,omitempty"`
	Action   string           `json:"action"`
}

// FixList is the prioritized list of fix groups for one run.
type FixList struct {
	Groups []FixGroup `json:"groups"`
}

// GenerateFixList groups issues across all check results by (check, group
// key) and ranks the groups by issue count descending, ties broken by check
// declaration order then group key lexical order. Output is byte-identical
// for identical input.
func GenerateFixList(results []check.Result, maxExamples int) FixList {
	if maxExamples <= 0 {
		maxExamples = DefaultMaxExamples
	}

	type slot struct {
		group      FixGroup
		checkOrder int
	}
	slots := map[string]*slot{}
	order := []string{}

	for checkIdx, res := range results {
		for _, issue := range res.Issues {
			id := issue.Check + "\x1f" + issue.GroupKey
			s, ok := slots[id]
			if !ok {
				s = &slot{
					group: FixGroup{
						Check:    issue.Check,
						GroupKey: issue.GroupKey,
						Action:   issue.SuggestedFix,
					},
					checkOrder: checkIdx,
				}
				slots[id] = s
				order = append(order, id)
			}
			s.group.Count++
			if len(s.group.Examples) < maxExamples {
				s.group.Examples = append(s.group.Examples, issue.RecordKey)
			}
		}
	}

	groups := make([]*slot, 0, len(order))
	for _, id := range order {
		groups = append(groups, slots[id])
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].group.Count != groups[j].group.Count {
			return groups[i].group.Count > groups[j].group.Count
		}
		if groups[i].checkOrder != groups[j].checkOrder {
			return groups[i].checkOrder < groups[j].checkOrder
		}
		return groups[i].group.GroupKey < groups[j].group.GroupKey
	})

	out := FixList{Groups: make([]FixGroup, 0, len(groups))}
	for _, s := range groups {
		out.Groups = append(out.Groups, s.group)
	}
	return out
}
