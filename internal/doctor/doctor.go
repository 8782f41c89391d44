package doctor

import (
	"context"
	"time"
)

// Check is the interface that diagnostic checks must implement.
type Check interface {
	// Name returns the unique identifier for this check.
	Name() string

	// Category returns the grouping for this check (e.g., "tools", "install").
	Category() string

	// Run executes the diagnostic check and returns its result.
	Run(ctx context.Context) *CheckResult
}

// Runner executes diagnostic checks and aggregates their results.
type Runner struct {
	checks []Check
}

// NewRunner creates a new diagnostic runner with the given checks.
func NewRunner(checks ...Check) *Runner {
	r := &Runner{
		checks: make([]Check, 0, len(checks)),
	}
	for _, c := range checks {
		r.AddCheck(c)
	}
	return r
}

// AddCheck registers a diagnostic check with the runner.
func (r *Runner) AddCheck(c Check) {
	r.checks = append(r.checks, c)
}

// Checks returns the registered checks in the order they run.
func (r *Runner) Checks() []Check {
	return r.checks
}

// Run executes all registered checks in order and returns a report. Checks
// not yet started when ctx is cancelled are reported as errors.
func (r *Runner) Run(ctx context.Context) *DoctorReport {
	report := &DoctorReport{
		Timestamp: time.Now().UTC(),
		Results:   make([]*CheckResult, 0, len(r.checks)),
	}

	for _, check := range r.checks {
		var result *CheckResult
		if err := ctx.Err(); err != nil {
			result = &CheckResult{
				Name:     check.Name(),
				Category: check.Category(),
				Status:   SeverityError,
				Message:  "not run: " + err.Error(),
			}
		} else {
			result = check.Run(ctx)
		}
		report.Results = append(report.Results, result)
		report.Summary.Add(result.Status)
	}

	return report
}

// DoctorReport aggregates all check results with timing and summary.
type DoctorReport struct {
	// Timestamp is when the diagnostic run started.
	Timestamp time.Time `json:"timestamp"`

	// Target is the platform the checks were run for.
	Target string `json:"target,omitempty"`

	// Results contains the outcome of each check.
	Results []*CheckResult `json:"results"`

	// Summary contains counts by severity level.
	Summary Summary `json:"summary"`
}

// HasErrors returns true if any check has SeverityError.
func (r *DoctorReport) HasErrors() bool {
	return r.Summary.Errors > 0
}

// HasWarnings returns true if any check has SeverityWarning.
func (r *DoctorReport) HasWarnings() bool {
	return r.Summary.Warnings > 0
}
