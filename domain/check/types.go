package check

import (
	"impactproof/domain/core"
	"impactproof/domain/record"
)

// Kind identifies one of the closed set of check variants. Adding a fifth
// check means adding a variant and a branch, never changing the runner or
// aggregator contracts.
type Kind string

const (
	KindCompleteness Kind = "completeness"
	KindDuplicates   Kind = "duplicates"
	KindConsistency  Kind = "consistency"
	KindDrift        Kind = "drift"
)

// Verdict is the three-level outcome of a check or of the whole run.
// Verdicts and issues are first-class findings, never errors.
type Verdict string

const (
	VerdictPass Verdict = "PASS"
	VerdictWarn Verdict = "WARN"
	VerdictFail Verdict = "FAIL"
)

var verdictRank = map[Verdict]int{
	VerdictPass: 0,
	VerdictWarn: 1,
	VerdictFail: 2,
}

// WorseThan reports whether v is more severe than other
func (v Verdict) WorseThan(other Verdict) bool {
	return verdictRank[v] > verdictRank[other]
}

// Worst returns the most severe verdict, PASS when the list is empty
func Worst(verdicts ...Verdict) Verdict {
	worst := VerdictPass
	for _, v := range verdicts {
		if v.WorseThan(worst) {
			worst = v
		}
	}
	return worst
}

// Issue is one record-level finding. Issues are created by a check and never
// mutated afterwards; the fix list groups them by GroupKey.
type Issue struct {
	Check        string         `json:"check"`
	RecordKey    core.RecordKey `json:"record_key"`
	Field        string         `json:"field,omitempty"`
	Severity     Verdict        `json:"severity"`
	Message      string         `json:"message"`
	SuggestedFix string         `json:"suggested_fix,omitempty"`
	GroupKey     string         `json:"group_key"`
}

// Result is the structured outcome of one executed check.
type Result struct {
	Check   string  `json:"check"`
	Kind    Kind    `json:"kind"`
	Verdict Verdict `json:"verdict"`
	Metric  float64 `json:"metric"`
	Issues  []Issue `json:"issues,omitempty"`
	Detail  string  `json:"detail,omitempty"`

	// ConfigFailure marks a FAIL caused by a configuration error rather
	// than by the data itself; the scorecard renders these distinctly.
	ConfigFailure bool `json:"config_failure,omitempty"`
}

// Check is the uniform evaluation contract shared by every variant. A check
// is a pure function of the immutable record batch and its own config; it
// must not mutate records and must produce deterministic output.
type Check interface {
	Name() string
	Kind() Kind
	// Validate reports structural misconfiguration. Validation failures
	// are fatal and abort the run before any check executes.
	Validate() error
	Evaluate(records []record.Record) (Result, error)
}

// RateThresholds holds the PASS/WARN cut points for rate-based checks. Both
// values live in the closed interval [0,1].
type RateThresholds struct {
	Pass float64 `json:"pass_threshold" yaml:"pass_threshold"`
	Warn float64 `json:"warn_threshold" yaml:"warn_threshold"`
}

func (t RateThresholds) validate(check string) error {
	if t.Pass < 0 || t.Pass > 1 {
		return core.NewThresholdError(check, "pass_threshold", t.Pass)
	}
	if t.Warn < 0 || t.Warn > 1 {
		return core.NewThresholdError(check, "warn_threshold", t.Warn)
	}
	return nil
}

// gradeHigherBetter scores a metric where larger values are healthier
// (completeness, consistency pass rates).
func (t RateThresholds) gradeHigherBetter(metric float64) Verdict {
	switch {
	case metric >= t.Pass:
		return VerdictPass
	case metric >= t.Warn:
		return VerdictWarn
	default:
		return VerdictFail
	}
}

// gradeLowerBetter scores a metric where smaller values are healthier
// (duplicate rates).
func (t RateThresholds) gradeLowerBetter(metric float64) Verdict {
	switch {
	case metric <= t.Pass:
		return VerdictPass
	case metric <= t.Warn:
		return VerdictWarn
	default:
		return VerdictFail
	}
}
