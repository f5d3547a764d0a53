package reconcile

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/palmerbayless123/kmz-optimizer/pkg/location"
	"github.com/palmerbayless123/kmz-optimizer/pkg/matcher"
	"github.com/palmerbayless123/kmz-optimizer/pkg/merger"
	"github.com/palmerbayless123/kmz-optimizer/pkg/stats"
)

// Result is the outcome of a reconciliation run.
type Result struct {
	// Success is false when a stage failed outright. Per-region and
	// per-record failures collected in Errors leave Success true as long
	// as partial results were produced.
	Success bool

	// Merged is the canonical reconciled dataset.
	Merged []location.Reconciled

	// MatchStats summarizes matching quality.
	MatchStats matcher.Statistics

	// MergeStats carries merge counts and the match-detail audit list.
	MergeStats merger.Stats

	// Aggregate holds the per-state statistics and date-range label.
	Aggregate stats.Aggregate

	// Archives maps region code to rendered KMZ bytes.
	Archives map[string][]byte

	// Errors holds recoverable failures encountered along the way.
	Errors []error

	// Warnings holds non-fatal observations, such as records flagged
	// with invalid coordinates.
	Warnings []string

	// Metadata about the run.
	Metadata ResultMetadata
}

// ResultMetadata describes a run for logs and job records.
type ResultMetadata struct {
	RunID     string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Counts ResultCounts
}

// ResultCounts are the input and output sizes of a run.
type ResultCounts struct {
	Authoritative  int
	LegacyExisting int
	LegacyProposed int
	Matches        int
	Merged         int
	Regions        int
}

// IsSuccess reports whether the run completed without a fatal stage
// failure.
func (r *Result) IsSuccess() bool {
	return r.Success
}

// HasErrors reports whether any recoverable failures were collected.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Summary returns a one-line account of the run.
func (r *Result) Summary() string {
	if !r.Success {
		return fmt.Sprintf("Reconciliation failed with %d errors", len(r.Errors))
	}
	return fmt.Sprintf("Reconciled %d locations into %d region archives (%d matches, %d errors)",
		r.Metadata.Counts.Merged, r.Metadata.Counts.Regions,
		r.Metadata.Counts.Matches, len(r.Errors))
}

// Report renders a detailed multi-line account of the run.
func (r *Result) Report() string {
	report := fmt.Sprintf(`Reconciliation Report
=====================
Run: %s
Duration: %s

Inputs:
  Authoritative:   %d
  Legacy existing: %d
  Legacy proposed: %d

Outcome:
  Matches:         %d
  Merged:          %d
  Duplicates:      %d
  Regions:         %d
`,
		r.Metadata.RunID, r.Metadata.Duration,
		r.Metadata.Counts.Authoritative,
		r.Metadata.Counts.LegacyExisting,
		r.Metadata.Counts.LegacyProposed,
		r.Metadata.Counts.Matches,
		r.Metadata.Counts.Merged,
		r.MergeStats.DuplicatesDropped,
		r.Metadata.Counts.Regions)

	if r.Aggregate.DateRange != "" {
		report += fmt.Sprintf("Reporting window: %s\n", r.Aggregate.DateRange)
	}
	if r.HasErrors() {
		report += fmt.Sprintf("\nErrors (%d):\n", len(r.Errors))
		for i, err := range r.Errors {
			report += fmt.Sprintf("%d. %v\n", i+1, err)
		}
	}
	for _, w := range r.Warnings {
		report += fmt.Sprintf("Warning: %s\n", w)
	}
	return report
}

// resultBuilder accumulates a Result across pipeline stages.
type resultBuilder struct {
	result *Result
}

func newResultBuilder() *resultBuilder {
	return &resultBuilder{
		result: &Result{
			Success: true,
			Metadata: ResultMetadata{
				RunID:     uuid.NewString(),
				StartTime: time.Now(),
			},
		},
	}
}

func (b *resultBuilder) addError(err error) {
	if err != nil {
		b.result.Errors = append(b.result.Errors, err)
	}
}

func (b *resultBuilder) addWarning(format string, args ...any) {
	b.result.Warnings = append(b.result.Warnings, fmt.Sprintf(format, args...))
}

func (b *resultBuilder) fail(err error) *Result {
	b.result.Success = false
	b.addError(err)
	return b.build()
}

func (b *resultBuilder) build() *Result {
	b.result.Metadata.EndTime = time.Now()
	b.result.Metadata.Duration = b.result.Metadata.EndTime.Sub(b.result.Metadata.StartTime)
	return b.result
}
