package check

import (
	"fmt"
	"strings"

	"impactproof/domain/core"
	"impactproof/domain/record"
)

// Operator names a when-clause comparison. Predicates are data, not code:
// the engine interprets them, so a new operator is a new interpreter case
// and never a change to the evaluation contract.
type Operator string

const (
	OpEquals    Operator = "equals"
	OpNotEquals Operator = "not_equals"
	OpIn        Operator = "in"
	OpPresent   Operator = "present"
)

// Condition is a structured when-clause: field, operator, comparison value.
// An empty operator means equality.
type Condition struct {
	Field    string   `json:"field" yaml:"field"`
	Operator Operator `json:"operator,omitempty" yaml:"operator,omitempty"`
	Value    string   `json:"equals,omitempty" yaml:"equals,omitempty"`
	Values   []string `json:"in,omitempty" yaml:"in,omitempty"`
}

func (c Condition) operator() Operator {
	if c.Operator == "" {
		return OpEquals
	}
	return c.Operator
}

func (c Condition) validate() error {
	if strings.TrimSpace(c.Field) == "" {
		return fmt.Errorf("%w: when clause needs a field", core.ErrConfig)
	}
	switch c.operator() {
	case OpEquals, OpNotEquals, OpIn, OpPresent:
		return nil
	default:
		return fmt.Errorf("%w: %q", core.ErrUnknownOperator, c.Operator)
	}
}

// Matches evaluates the predicate against one record. Pure and total for
// any operator that passed validation.
func (c Condition) Matches(rec record.Record, roles record.Roles) bool {
	v := rec.Value(roles.Column(c.Field))
	switch c.operator() {
	case OpNotEquals:
		return v.String() != strings.TrimSpace(c.Value)
	case OpIn:
		for _, want := range c.Values {
			if v.String() == strings.TrimSpace(want) {
				return true
			}
		}
		return false
	case OpPresent:
		return v.IsPresent()
	default: // equals
		return v.String() == strings.TrimSpace(c.Value)
	}
}

// FieldEquals is one then-clause requiring a field to hold a fixed value.
type FieldEquals struct {
	Field string `json:"field" yaml:"field"`
	Value string `json:"value" yaml:"value"`
}

// Rule is one conditional consistency rule: when the predicate holds, the
// then_required fields must be present and the then_equals fields must hold
// their expected values.
type Rule struct {
	Name         string        `json:"name" yaml:"name"`
	When         Condition     `json:"when" yaml:"when"`
	ThenRequired []string      `json:"then_required,omitempty" yaml:"then_required,omitempty"`
	ThenEquals   []FieldEquals `json:"then_equals,omitempty" yaml:"then_equals,omitempty"`
}

// ConsistencyConfig parameterizes the consistency check.
type ConsistencyConfig struct {
	Rules          []Rule `json:"rules" yaml:"rules"`
	RateThresholds `yaml:",inline"`
}

// Consistency evaluates conditional rules over the batch. Rules are
// independent: evaluation order never changes the outcome, only the issue
// ordering, which is rule declaration order then row order.
type Consistency struct {
	cfg   ConsistencyConfig
	roles record.Roles
}

// NewConsistency creates a consistency check
func NewConsistency(cfg ConsistencyConfig, roles record.Roles) *Consistency {
	return &Consistency{cfg: cfg, roles: roles}
}

func (c *Consistency) Name() string { return string(KindConsistency) }
func (c *Consistency) Kind() Kind   { return KindConsistency }

// Validate reports structural misconfiguration
func (c *Consistency) Validate() error {
	seen := map[string]bool{}
	for _, rule := range c.cfg.Rules {
		if strings.TrimSpace(rule.Name) == "" {
			return fmt.Errorf("%w: consistency rule without a name", core.ErrConfig)
		}
		if seen[rule.Name] {
			return fmt.Errorf("%w: duplicate consistency rule %q", core.ErrConfig, rule.Name)
		}
		seen[rule.Name] = true
		if err := rule.When.validate(); err != nil {
			return fmt.Errorf("rule %q: %w", rule.Name, err)
		}
		if len(rule.ThenRequired) == 0 && len(rule.ThenEquals) == 0 {
			return fmt.Errorf("%w: rule %q has no then clause", core.ErrConfig, rule.Name)
		}
	}
	return c.cfg.RateThresholds.validate(c.Name())
}

// Evaluate scores the batch. The metric denominator is the set of applicable
// rows (rows matched by at least one rule's when); a batch where no rule
// matches anything passes with a detail note instead of dividing by zero.
func (c *Consistency) Evaluate(records []record.Record) (Result, error) {
	if len(c.cfg.Rules) == 0 {
		return Result{
			Check:   c.Name(),
			Kind:    c.Kind(),
			Verdict: VerdictPass,
			Metric:  1.0,
			Detail:  "no rules configured",
		}, nil
	}

	for _, rule := range c.cfg.Rules {
		for _, field := range c.referencedFields(rule) {
			if !c.columnExists(records, field) {
				return Result{}, core.NewCheckError(c.Name(), fmt.Errorf("rule %q references field %q absent from every record", rule.Name, field))
			}
		}
	}

	applicable := map[int]bool{}
	violating := map[int]bool{}
	var issues []Issue

	for _, rule := range c.cfg.Rules {
		for _, rec := range records {
			if !rule.When.Matches(rec, c.roles) {
				continue
			}
			applicable[rec.Position()] = true

			for _, field := range rule.ThenRequired {
				v := rec.Value(c.roles.Column(field))
				// Explicit-NO does not satisfy a then_required field:
				// these represent genuinely required follow-up data.
				if v.IsPresent() {
					continue
				}
				violating[rec.Position()] = true
				issues = append(issues, Issue{
					Check:        c.Name(),
					RecordKey:    rec.Key(),
					Field:        field,
					Severity:     VerdictWarn,
					Message:      fmt.Sprintf("rule %s: %s is required when %s", rule.Name, field, describeWhen(rule.When)),
					SuggestedFix: fmt.Sprintf("populate %s for %s, or correct %s if misclassified", field, rec.Key(), rule.When.Field),
					GroupKey:     "rule:" + rule.Name,
				})
			}

			for _, fe := range rule.ThenEquals {
				actual := rec.Value(c.roles.Column(fe.Field)).String()
				expected := strings.TrimSpace(fe.Value)
				if actual == expected {
					continue
				}
				violating[rec.Position()] = true
				issues = append(issues, Issue{
					Check:        c.Name(),
					RecordKey:    rec.Key(),
					Field:        fe.Field,
					Severity:     VerdictWarn,
					Message:      fmt.Sprintf("rule %s: expected %s == %q when %s (got %q)", rule.Name, fe.Field, expected, describeWhen(rule.When), actual),
					SuggestedFix: fmt.Sprintf("set %s to %q or correct %s", fe.Field, expected, rule.When.Field),
					GroupKey:     "rule:" + rule.Name,
				})
			}
		}
	}

	if len(applicable) == 0 {
		return Result{
			Check:   c.Name(),
			Kind:    c.Kind(),
			Verdict: VerdictPass,
			Metric:  1.0,
			Detail:  "no applicable rows: no rule matched any record",
		}, nil
	}

	clean := 0
	for pos := range applicable {
		if !violating[pos] {
			clean++
		}
	}
	metric := float64(clean) / float64(len(applicable))
	verdict := c.cfg.gradeHigherBetter(metric)

	return Result{
		Check:   c.Name(),
		Kind:    c.Kind(),
		Verdict: verdict,
		Metric:  metric,
		Issues:  issues,
		Detail:  fmt.Sprintf("%d of %d applicable rows satisfy all %d rules", clean, len(applicable), len(c.cfg.Rules)),
	}, nil
}

func (c *Consistency) referencedFields(rule Rule) []string {
	fields := []string{rule.When.Field}
	fields = append(fields, rule.ThenRequired...)
	for _, fe := range rule.ThenEquals {
		fields = append(fields, fe.Field)
	}
	return fields
}

func (c *Consistency) columnExists(records []record.Record, field string) bool {
	col := c.roles.Column(field)
	for _, rec := range records {
		if rec.Has(col) {
			return true
		}
	}
	return false
}

func describeWhen(cond Condition) string {
	switch cond.operator() {
	case OpNotEquals:
		return fmt.Sprintf("%s != %q", cond.Field, cond.Value)
	case OpIn:
		return fmt.Sprintf("%s in (%s)", cond.Field, strings.Join(cond.Values, ", "))
	case OpPresent:
		return fmt.Sprintf("%s is present", cond.Field)
	default:
		return fmt.Sprintf("%s == %q", cond.Field, cond.Value)
	}
}
