// Package reconcile runs the full pipeline over already-loaded records:
// match authoritative locations against proposed placemarks, merge all
// three sources into the canonical dataset, enrich with county names,
// aggregate statistics, and render per-region archives. All file and
// network I/O belongs to the caller.
package reconcile

import (
	"context"

	"github.com/palmerbayless123/kmz-optimizer/pkg/errors"
	"github.com/palmerbayless123/kmz-optimizer/pkg/export"
	"github.com/palmerbayless123/kmz-optimizer/pkg/location"
	"github.com/palmerbayless123/kmz-optimizer/pkg/logging"
	"github.com/palmerbayless123/kmz-optimizer/pkg/matcher"
	"github.com/palmerbayless123/kmz-optimizer/pkg/merger"
	"github.com/palmerbayless123/kmz-optimizer/pkg/stats"
)

// Input is everything a run consumes.
type Input struct {
	Authoritative []location.CSVLocation
	Existing      []location.Placemark
	Proposed      []location.Placemark

	// SourceFilenames feed date-range inference for export labels.
	SourceFilenames []string
}

type options struct {
	matchOpts []matcher.Option
	mergeOpts []merger.Option
	counties  CountyResolver
	dateRange string
}

// Option configures a run.
type Option func(*options)

// WithMatchOptions forwards options to the matching stage.
func WithMatchOptions(opts ...matcher.Option) Option {
	return func(o *options) { o.matchOpts = append(o.matchOpts, opts...) }
}

// WithMergeOptions forwards options to the merge stage.
func WithMergeOptions(opts ...merger.Option) Option {
	return func(o *options) { o.mergeOpts = append(o.mergeOpts, opts...) }
}

// WithCountyResolver enables county enrichment before export.
func WithCountyResolver(r CountyResolver) Option {
	return func(o *options) { o.counties = r }
}

// WithDateRange overrides the inferred reporting window label.
func WithDateRange(label string) Option {
	return func(o *options) { o.dateRange = label }
}

// Run executes the pipeline. The returned Result carries partial output
// and collected errors when individual records or regions fail; only a
// stage-level failure marks the run unsuccessful.
func Run(ctx context.Context, input Input, opts ...Option) (*Result, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	b := newResultBuilder()
	ctx = logging.WithRunID(ctx, b.result.Metadata.RunID)
	log := logging.Ctx(ctx)
	log.Info().
		Int("authoritative", len(input.Authoritative)).
		Int("existing", len(input.Existing)).
		Int("proposed", len(input.Proposed)).
		Msg("starting reconciliation")

	b.result.Metadata.Counts = ResultCounts{
		Authoritative:  len(input.Authoritative),
		LegacyExisting: len(input.Existing),
		LegacyProposed: len(input.Proposed),
	}
	noteInvalidCoordinates(b, input)

	matches, err := matcher.Run(ctx, input.Authoritative, input.Proposed, o.matchOpts...)
	if err != nil {
		return b.fail(err), err
	}
	b.result.MatchStats = matches.Stats()
	b.result.Metadata.Counts.Matches = len(matches.Matches)

	merged, mergeStats := merger.Merge(input.Authoritative, input.Existing, input.Proposed, matches, o.mergeOpts...)
	report := merger.Validate(merged)
	for _, w := range report.Warnings {
		b.addWarning("merged data: %s", w)
	}
	for _, e := range report.Errors {
		b.addWarning("merged data: %s", e)
	}
	b.result.MergeStats = mergeStats
	b.result.Metadata.Counts.Merged = len(merged)

	if o.counties != nil {
		resolveCounties(ctx, o.counties, merged, b)
	}
	b.result.Merged = merged

	dateRange := o.dateRange
	if dateRange == "" {
		dateRange = stats.InferDateRange(input.SourceFilenames)
	}
	b.result.Aggregate = stats.Compute(merged, dateRange)

	exported, err := export.Run(ctx, merged, b.result.Aggregate)
	if err != nil {
		return b.fail(err), err
	}
	b.result.Archives = exported.Archives
	b.result.Errors = append(b.result.Errors, exported.Errors...)
	b.result.Metadata.Counts.Regions = len(exported.Archives)

	result := b.build()
	log.Info().
		Int("merged", result.Metadata.Counts.Merged).
		Int("regions", result.Metadata.Counts.Regions).
		Int("errors", len(result.Errors)).
		Dur("duration", result.Metadata.Duration).
		Msg("reconciliation complete")
	return result, nil
}

// noteInvalidCoordinates records how many inputs carry unusable
// coordinates; they flow through flagged rather than being dropped.
func noteInvalidCoordinates(b *resultBuilder, input Input) {
	invalid := 0
	for i := range input.Authoritative {
		if input.Authoritative[i].InvalidCoordinate {
			invalid++
		}
	}
	for i := range input.Existing {
		if input.Existing[i].InvalidCoordinate {
			invalid++
		}
	}
	for i := range input.Proposed {
		if input.Proposed[i].InvalidCoordinate {
			invalid++
		}
	}
	if invalid > 0 {
		b.addWarning("%d records have invalid coordinates and were excluded from matching", invalid)
	}
}

// resolveCounties fills in the county field on records that lack one.
// Lookup failures are collected; the record keeps an empty county.
func resolveCounties(ctx context.Context, resolver CountyResolver, merged []location.Reconciled, b *resultBuilder) {
	resolved := 0
	for i := range merged {
		rec := &merged[i]
		if rec.County != "" || rec.InvalidCoordinate {
			continue
		}
		county, err := resolver.County(ctx, rec.Latitude, rec.Longitude)
		if errors.IsNotFound(err) {
			continue
		}
		if err != nil {
			b.addError(err)
			continue
		}
		rec.County = county
		resolved++
	}
	logging.Debug().Int("resolved", resolved).Msg("county enrichment complete")
}
