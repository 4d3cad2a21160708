package check

import (
	"fmt"
	"strings"

	"impactproof/domain/core"
	"impactproof/domain/record"
)

// DuplicatesConfig parameterizes the duplicates check.
type DuplicatesConfig struct {
	Keys           []string `json:"keys" yaml:"keys"`
	RateThresholds `yaml:",inline"`
}

// Duplicates groups records on the configured key fields and flags every
// group of size greater than one. Lower duplicate rates are better, so the
// threshold sense is inverted relative to the rate checks.
type Duplicates struct {
	cfg   DuplicatesConfig
	roles record.Roles
}

// NewDuplicates creates a duplicates check
func NewDuplicates(cfg DuplicatesConfig, roles record.Roles) *Duplicates {
	return &Duplicates{cfg: cfg, roles: roles}
}

func (d *Duplicates) Name() string { return string(KindDuplicates) }
func (d *Duplicates) Kind() Kind   { return KindDuplicates }

// Validate reports structural misconfiguration
func (d *Duplicates) Validate() error {
	if len(d.cfg.Keys) == 0 {
		return fmt.Errorf("%w: duplicates needs at least one key field", core.ErrConfig)
	}
	if err := d.cfg.RateThresholds.validate(d.Name()); err != nil {
		return err
	}
	if d.cfg.Pass > d.cfg.Warn {
		return core.NewThresholdError(d.Name(), "pass_threshold", d.cfg.Pass)
	}
	return nil
}

// Evaluate scores the batch. Rows with any absent key field never enter
// grouping; each is flagged once as an incomplete-key issue instead. Within
// a duplicate group the first-seen row is the kept record and every later
// row is reported as a duplicate of it; the metric counts only those later
// rows, so one duplicate pair contributes a single row.
func (d *Duplicates) Evaluate(records []record.Record) (Result, error) {
	keyLabel := strings.Join(d.cfg.Keys, ",")

	type group struct {
		kept core.RecordKey
		rows []int // positions, in first-seen order
	}
	groups := map[string]*group{}
	order := []string{} // first-seen group key order, for deterministic issue output

	var keyIssues []Issue
	for _, rec := range records {
		parts := make([]string, 0, len(d.cfg.Keys))
		incomplete := false
		for _, key := range d.cfg.Keys {
			v := rec.Value(d.roles.Column(key))
			if v.State == record.StateAbsent {
				incomplete = true
				break
			}
			parts = append(parts, v.String())
		}
		if incomplete {
			keyIssues = append(keyIssues, Issue{
				Check:        d.Name(),
				RecordKey:    rec.Key(),
				Field:        keyLabel,
				Severity:     VerdictWarn,
				Message:      fmt.Sprintf("incomplete key: one or more of (%s) is absent", keyLabel),
				SuggestedFix: "populate the key fields so the record can be checked for duplication",
				GroupKey:     "incomplete-key",
			})
			continue
		}
		gk := strings.Join(parts, "\x1f")
		g, ok := groups[gk]
		if !ok {
			g = &group{kept: rec.Key()}
			groups[gk] = g
			order = append(order, gk)
		}
		g.rows = append(g.rows, rec.Position())
	}

	duplicateRows := 0
	var dupIssues []Issue
	for _, gk := range order {
		g := groups[gk]
		if len(g.rows) <= 1 {
			continue
		}
		duplicateRows += len(g.rows) - 1
		for _, pos := range g.rows[1:] {
			rec := records[pos]
			dupIssues = append(dupIssues, Issue{
				Check:        d.Name(),
				RecordKey:    rec.Key(),
				Field:        keyLabel,
				Severity:     VerdictWarn,
				Message:      fmt.Sprintf("duplicate of %s on keys (%s)", g.kept, keyLabel),
				SuggestedFix: "de-duplicate upstream, or adjust keys if the duplication is expected",
				GroupKey:     "duplicate:" + keyLabel,
			})
		}
	}

	metric := float64(duplicateRows) / float64(len(records))
	verdict := d.cfg.gradeLowerBetter(metric)

	issues := append(dupIssues, keyIssues...)
	return Result{
		Check:   d.Name(),
		Kind:    d.Kind(),
		Verdict: verdict,
		Metric:  metric,
		Issues:  issues,
		Detail:  fmt.Sprintf("%d of %d rows duplicate an earlier row on keys (%s); %d rows had incomplete keys", duplicateRows, len(records), keyLabel, len(keyIssues)),
	}, nil
}
