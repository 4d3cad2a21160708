package check

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"impactproof/domain/core"
	"impactproof/domain/record"
)

// Granularity names a drift bucketing period.
type Granularity string

const (
	PeriodMonthly Granularity = "monthly"
	PeriodWeekly  Granularity = "weekly"
)

// DriftConfig parameterizes the drift check. The pct-change thresholds are
// absolute fractions (0.30 means a 30% swing) and are not capped at 1.
type DriftConfig struct {
	DateField       string      `json:"date_field" yaml:"date_field"`
	Period          Granularity `json:"period" yaml:"period"`
	BaselinePeriods int         `json:"baseline_periods" yaml:"baseline_periods"`
	WarnPctChange   float64     `json:"warn_pct_change" yaml:"warn_pct_change"`
	FailPctChange   float64     `json:"fail_pct_change" yaml:"fail_pct_change"`
}

// Drift buckets records into time periods and compares each period's volume
// against the mean of the trailing baseline window. The baseline moves
// forward with each evaluated period.
type Drift struct {
	cfg   DriftConfig
	roles record.Roles
}

// NewDrift creates a drift check
func NewDrift(cfg DriftConfig, roles record.Roles) *Drift {
	return &Drift{cfg: cfg, roles: roles}
}

func (d *Drift) Name() string { return string(KindDrift) }
func (d *Drift) Kind() Kind   { return KindDrift }

// Validate reports structural misconfiguration
func (d *Drift) Validate() error {
	if strings.TrimSpace(d.cfg.DateField) == "" {
		return fmt.Errorf("%w: drift needs a date_field", core.ErrConfig)
	}
	switch d.cfg.Period {
	case PeriodMonthly, PeriodWeekly:
	default:
		return fmt.Errorf("%w: unknown drift period %q", core.ErrConfig, d.cfg.Period)
	}
	if d.cfg.BaselinePeriods < 1 {
		return fmt.Errorf("%w: drift baseline_periods must be at least 1", core.ErrConfig)
	}
	if d.cfg.WarnPctChange <= 0 || d.cfg.FailPctChange < d.cfg.WarnPctChange {
		return fmt.Errorf("%w: drift wants 0 < warn_pct_change <= fail_pct_change", core.ErrConfig)
	}
	return nil
}

// Accepted event-date layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// Evaluate buckets the batch and grades every period past the baseline
// window. The check verdict is the worst period verdict and the metric is
// the largest absolute percent change observed. Records without a parseable
// date are excluded and reported once as a count.
func (d *Drift) Evaluate(records []record.Record) (Result, error) {
	col := d.roles.Column(d.cfg.DateField)

	volumes := map[string]float64{}
	excluded := 0
	for _, rec := range records {
		v := rec.Value(col)
		if !v.IsPresent() {
			excluded++
			continue
		}
		t, ok := parseDate(v.Raw)
		if !ok {
			excluded++
			continue
		}
		volumes[d.periodLabel(t)]++
	}

	labels := make([]string, 0, len(volumes))
	for label := range volumes {
		labels = append(labels, label)
	}
	sort.Strings(labels) // period labels sort chronologically

	detailSuffix := ""
	if excluded > 0 {
		detailSuffix = fmt.Sprintf("; %d records excluded for absent or invalid %s", excluded, d.cfg.DateField)
	}

	if len(labels) < d.cfg.BaselinePeriods+1 {
		return Result{
			Check:   d.Name(),
			Kind:    d.Kind(),
			Verdict: VerdictPass,
			Metric:  0,
			Detail:  fmt.Sprintf("insufficient history: %d periods observed, need %d%s", len(labels), d.cfg.BaselinePeriods+1, detailSuffix),
		}, nil
	}

	var issues []Issue
	var absChanges []float64
	worst := VerdictPass

	for i := d.cfg.BaselinePeriods; i < len(labels); i++ {
		window := make([]float64, 0, d.cfg.BaselinePeriods)
		for _, prev := range labels[i-d.cfg.BaselinePeriods : i] {
			window = append(window, volumes[prev])
		}
		baseline, err := stats.Mean(window)
		if err != nil {
			return Result{}, core.NewCheckError(d.Name(), err)
		}

		pct := 1.0
		if baseline != 0 {
			pct = (volumes[labels[i]] - baseline) / baseline
		}
		abs := pct
		if abs < 0 {
			abs = -abs
		}
		absChanges = append(absChanges, abs)

		verdict := VerdictPass
		switch {
		case abs >= d.cfg.FailPctChange:
			verdict = VerdictFail
		case abs >= d.cfg.WarnPctChange:
			verdict = VerdictWarn
		}
		if verdict.WorseThan(worst) {
			worst = verdict
		}
		if verdict == VerdictPass {
			continue
		}
		issues = append(issues, Issue{
			Check:        d.Name(),
			RecordKey:    core.RecordKey("period:" + labels[i]),
			Field:        d.cfg.DateField,
			Severity:     verdict,
			Message:      fmt.Sprintf("volume drift in %s: %+.1f%% vs trailing baseline of %.1f", labels[i], pct*100, baseline),
			SuggestedFix: "verify reporting completeness, backlogs, or duplicate submissions for this period",
			GroupKey:     "volume-drift",
		})
	}

	metric := 0.0
	if len(absChanges) > 0 {
		if m, err := stats.Max(absChanges); err == nil {
			metric = m
		}
	}

	return Result{
		Check:   d.Name(),
		Kind:    d.Kind(),
		Verdict: worst,
		Metric:  metric,
		Issues:  issues,
		Detail:  fmt.Sprintf("%d periods evaluated against a trailing baseline of %d; max |change| %.1f%%%s", len(labels)-d.cfg.BaselinePeriods, d.cfg.BaselinePeriods, metric*100, detailSuffix),
	}, nil
}

func (d *Drift) periodLabel(t time.Time) string {
	if d.cfg.Period == PeriodWeekly {
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	}
	return t.Format("2006-01")
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
