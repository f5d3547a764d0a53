// Package matcher pairs authoritative locations with proposed legacy
// placemarks by geographic proximity. Matching is 1:1 and greedy:
// authoritative locations are processed in input order and each claims
// at most one placemark, which then cannot be claimed again.
package matcher

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/palmerbayless123/kmz-optimizer/pkg/geo"
	"github.com/palmerbayless123/kmz-optimizer/pkg/location"
	"github.com/palmerbayless123/kmz-optimizer/pkg/logging"
)

// Match pairs one authoritative location with one proposed placemark.
type Match struct {
	ActualIndex   int
	ProposedIndex int

	Actual   location.CSVLocation
	Proposed location.Placemark

	Confidence     float64
	DistanceMeters float64

	// NeedsReview marks matches found only inside the extended band
	// beyond the near threshold.
	NeedsReview bool
}

// Result is the outcome of a matching run.
type Result struct {
	Matches           []Match
	UnmatchedActual   []location.CSVLocation
	UnmatchedProposed []location.Placemark
}

// candidate is a scored pairing considered during resolution.
type candidate struct {
	proposedIndex  int
	confidence     float64
	distanceMeters float64
}

// Run matches authoritative locations against proposed placemarks.
//
// Candidate scoring is fanned out across goroutines; resolution walks
// authoritative locations in input order on a single goroutine, so the
// outcome is identical regardless of concurrency. Ties are broken by
// confidence, then distance, then placemark input order. Locations or
// placemarks with invalid coordinates simply never match.
func Run(ctx context.Context, actual []location.CSVLocation, proposed []location.Placemark, opts ...Option) (*Result, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	logging.Info().
		Int("actual", len(actual)).
		Int("proposed", len(proposed)).
		Float64("threshold_meters", o.thresholdMeters).
		Msg("starting location matching")

	candidates, err := scoreAll(ctx, actual, proposed, o)
	if err != nil {
		return nil, err
	}

	result := resolve(actual, proposed, candidates)

	logging.Info().
		Int("matches", len(result.Matches)).
		Int("unmatched_actual", len(result.UnmatchedActual)).
		Int("unmatched_proposed", len(result.UnmatchedProposed)).
		Msg("matching complete")
	return result, nil
}

// scoreAll computes, for every authoritative location, its viable
// placemark candidates ordered by preference. The pass is read-only.
func scoreAll(ctx context.Context, actual []location.CSVLocation, proposed []location.Placemark, o options) ([][]candidate, error) {
	candidates := make([][]candidate, len(actual))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for i := range actual {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			candidates[i] = scoreOne(actual[i], proposed, o.thresholdMeters)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return candidates, nil
}

func scoreOne(loc location.CSVLocation, proposed []location.Placemark, threshold float64) []candidate {
	key := loc.LocaleKey()
	if key == "" || !loc.HasValidCoordinate() {
		return nil
	}

	var scored []candidate
	for j, pm := range proposed {
		if pm.LocaleKey() != key || !pm.HasValidCoordinate() {
			continue
		}
		distance := geo.Distance(loc.Latitude, loc.Longitude, pm.Latitude, pm.Longitude)
		confidence := bandConfidence(distance, threshold)
		if confidence == 0 {
			continue
		}
		scored = append(scored, candidate{
			proposedIndex:  j,
			confidence:     confidence,
			distanceMeters: distance,
		})
	}

	sort.SliceStable(scored, func(a, b int) bool {
		if scored[a].confidence != scored[b].confidence {
			return scored[a].confidence > scored[b].confidence
		}
		if scored[a].distanceMeters != scored[b].distanceMeters {
			return scored[a].distanceMeters < scored[b].distanceMeters
		}
		return scored[a].proposedIndex < scored[b].proposedIndex
	})
	return scored
}

// bandConfidence maps a distance onto its confidence band, or 0 when the
// distance exceeds the threshold.
func bandConfidence(distance, threshold float64) float64 {
	switch {
	case distance <= ExactBandMeters:
		return ConfidenceExact
	case distance <= NearBandMeters:
		return ConfidenceNear
	case distance <= threshold:
		return ConfidenceReview
	default:
		return 0
	}
}

// resolve claims placemarks greedily in authoritative input order. Each
// location takes its best still-unclaimed candidate.
func resolve(actual []location.CSVLocation, proposed []location.Placemark, candidates [][]candidate) *Result {
	result := &Result{}
	claimed := make(map[int]struct{})

	for i, loc := range actual {
		var matched *candidate
		for k := range candidates[i] {
			c := candidates[i][k]
			if _, taken := claimed[c.proposedIndex]; taken {
				continue
			}
			matched = &c
			break
		}

		if matched == nil {
			result.UnmatchedActual = append(result.UnmatchedActual, loc)
			continue
		}

		claimed[matched.proposedIndex] = struct{}{}
		result.Matches = append(result.Matches, Match{
			ActualIndex:    i,
			ProposedIndex:  matched.proposedIndex,
			Actual:         loc,
			Proposed:       proposed[matched.proposedIndex],
			Confidence:     matched.confidence,
			DistanceMeters: matched.distanceMeters,
			NeedsReview:    matched.confidence == ConfidenceReview,
		})
		logging.Debug().
			Str("actual", loc.PropertyName).
			Str("proposed", proposed[matched.proposedIndex].Name).
			Float64("distance_meters", matched.distanceMeters).
			Float64("confidence", matched.confidence).
			Msg("match found")
	}

	for j, pm := range proposed {
		if _, taken := claimed[j]; !taken {
			result.UnmatchedProposed = append(result.UnmatchedProposed, pm)
		}
	}
	return result
}
