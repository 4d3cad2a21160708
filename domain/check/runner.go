package check

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"impactproof/domain/record"
)

// Runner executes every configured check against the same immutable record
// batch. Checks share no mutable state, so execution may be sequential or
// parallel; results always come back in check declaration order.
type Runner struct {
	checks   []Check
	parallel bool
}

// NewRunner creates a sequential runner over the given checks
func NewRunner(checks ...Check) *Runner {
	return &Runner{checks: checks}
}

// Parallel switches the runner to one worker per check. Purely an
// optimization: output is identical either way.
func (r *Runner) Parallel() *Runner {
	r.parallel = true
	return r
}

// Checks returns the configured checks in declaration order
func (r *Runner) Checks() []Check {
	return r.checks
}

// Validate surfaces structural misconfiguration across all checks. Any
// failure here is fatal: the run must abort before a single check executes.
func (r *Runner) Validate() error {
	if len(r.checks) == 0 {
		return fmt.Errorf("no checks configured")
	}
	for _, c := range r.checks {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("%s: %w", c.Name(), err)
		}
	}
	return nil
}

// Run evaluates every check. A failure inside one check's evaluation never
// aborts the others: it becomes a FAIL result carrying the error as detail,
// marked as a configuration failure rather than a data failure.
func (r *Runner) Run(ctx context.Context, records []record.Record) []Result {
	results := make([]Result, len(r.checks))

	if !r.parallel {
		for i, c := range r.checks {
			results[i] = evaluate(c, records)
		}
		return results
	}

	g, _ := errgroup.WithContext(ctx)
	for i, c := range r.checks {
		i, c := i, c
		g.Go(func() error {
			results[i] = evaluate(c, records)
			return nil
		})
	}
	g.Wait() // workers never return errors; failures are captured as results
	return results
}

func evaluate(c Check, records []record.Record) Result {
	res, err := c.Evaluate(records)
	if err != nil {
		return Result{
			Check:         c.Name(),
			Kind:          c.Kind(),
			Verdict:       VerdictFail,
			Metric:        0,
			Detail:        fmt.Sprintf("check could not be evaluated: %v", err),
			ConfigFailure: true,
		}
	}
	return res
}
