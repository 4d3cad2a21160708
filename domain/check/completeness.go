package check

import (
	"fmt"

	"impactproof/domain/core"
	"impactproof/domain/record"
)

// CompletenessConfig parameterizes the completeness check.
type CompletenessConfig struct {
	RequiredFields []string `json:"required_fields" yaml:"required_fields"`
	RateThresholds `yaml:",inline"`
}

// Completeness verifies that every required field holds real data. A field
// is missing when its value is absent, explicit-NA, or explicit-UNKNOWN; an
// explicit NO is a recorded answer and counts as present.
type Completeness struct {
	cfg   CompletenessConfig
	roles record.Roles
}

// NewCompleteness creates a completeness check
func NewCompleteness(cfg CompletenessConfig, roles record.Roles) *Completeness {
	return &Completeness{cfg: cfg, roles: roles}
}

func (c *Completeness) Name() string { return string(KindCompleteness) }
func (c *Completeness) Kind() Kind   { return KindCompleteness }

// Validate reports structural misconfiguration
func (c *Completeness) Validate() error {
	if len(c.cfg.RequiredFields) == 0 {
		return fmt.Errorf("%w: completeness needs at least one required field", core.ErrConfig)
	}
	return c.cfg.RateThresholds.validate(c.Name())
}

// Evaluate scores the batch: metric is the share of rows with zero missing
// required fields, one issue per row per missing field.
func (c *Completeness) Evaluate(records []record.Record) (Result, error) {
	var issues []Issue
	completeRows := 0

	for _, rec := range records {
		missing := 0
		for _, field := range c.cfg.RequiredFields {
			col := c.roles.Column(field)
			if !rec.Value(col).MissingForRequired() {
				continue
			}
			missing++
			issues = append(issues, Issue{
				Check:        c.Name(),
				RecordKey:    rec.Key(),
				Field:        field,
				Severity:     VerdictWarn,
				Message:      fmt.Sprintf("missing required value for %q", field),
				SuggestedFix: fmt.Sprintf("populate %s for %s", field, rec.Key()),
				GroupKey:     "missing:" + field,
			})
		}
		if missing == 0 {
			completeRows++
		}
	}

	metric := float64(completeRows) / float64(len(records))
	verdict := c.cfg.gradeHigherBetter(metric)

	return Result{
		Check:   c.Name(),
		Kind:    c.Kind(),
		Verdict: verdict,
		Metric:  metric,
		Issues:  issues,
		Detail:  fmt.Sprintf("%d of %d rows have all %d required fields populated", completeRows, len(records), len(c.cfg.RequiredFields)),
	}, nil
}
