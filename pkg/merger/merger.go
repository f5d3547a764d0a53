// Package merger combines authoritative locations with legacy placemarks
// into a single reconciled dataset. Authoritative records always win;
// legacy placemarks for operating stores are preserved; proposed
// placemarks survive only when no authoritative record claimed them.
package merger

import (
	"github.com/palmerbayless123/kmz-optimizer/pkg/location"
	"github.com/palmerbayless123/kmz-optimizer/pkg/logging"
	"github.com/palmerbayless123/kmz-optimizer/pkg/matcher"
)

// DefaultDedupThresholdMeters is the proximity below which two records in
// the same city and state are treated as the same store.
const DefaultDedupThresholdMeters = 50.0

type options struct {
	dedup          bool
	dedupThreshold float64
	keepUnmatched  bool
}

// Option configures a merge.
type Option func(*options)

// WithoutDeduplication disables the proximity deduplication pass.
func WithoutDeduplication() Option {
	return func(o *options) { o.dedup = false }
}

// WithoutUnmatchedProposed drops proposed placemarks that no
// authoritative record claimed instead of carrying them through.
func WithoutUnmatchedProposed() Option {
	return func(o *options) { o.keepUnmatched = false }
}

// WithDedupThresholdMeters overrides the deduplication distance.
func WithDedupThresholdMeters(meters float64) Option {
	return func(o *options) { o.dedupThreshold = meters }
}

// Merge builds the reconciled dataset from the three source sets and the
// matching outcome. Records appear in priority order: authoritative
// first, then legacy existing, then surviving proposed.
func Merge(actual []location.CSVLocation, existing, proposed []location.Placemark, matches *matcher.Result, opts ...Option) ([]location.Reconciled, Stats) {
	o := options{dedup: true, dedupThreshold: DefaultDedupThresholdMeters, keepUnmatched: true}
	for _, opt := range opts {
		opt(&o)
	}
	if matches == nil {
		matches = &matcher.Result{}
	}

	logging.Info().
		Int("actual", len(actual)).
		Int("existing", len(existing)).
		Int("proposed", len(proposed)).
		Int("matches", len(matches.Matches)).
		Msg("starting merge")

	replacedBy := make(map[int]matcher.Match, len(matches.Matches))
	claimed := make(map[int]struct{}, len(matches.Matches))
	for _, m := range matches.Matches {
		replacedBy[m.ActualIndex] = m
		claimed[m.ProposedIndex] = struct{}{}
	}

	merged := make([]location.Reconciled, 0, len(actual)+len(existing)+len(proposed))
	stats := Stats{
		FromCSV:          len(actual),
		FromExisting:     len(existing),
		ProposedTotal:    len(proposed),
		ProposedReplaced: len(matches.Matches),
	}

	for i, loc := range actual {
		rec := fromAuthoritative(loc)
		if m, ok := replacedBy[i]; ok {
			rec.Confidence = m.Confidence
			rec.Replaced = &location.ReplacedProposed{
				Name:           m.Proposed.Name,
				Confidence:     m.Confidence,
				DistanceMeters: m.DistanceMeters,
			}
			stats.MatchDetails = append(stats.MatchDetails, MatchDetail{
				AuthoritativeName: loc.PropertyName,
				AuthoritativeCity: loc.City,
				ProposedName:      m.Proposed.Name,
				ProposedCity:      m.Proposed.City,
				Confidence:        m.Confidence,
				DistanceMeters:    m.DistanceMeters,
			})
		}
		merged = append(merged, rec)
	}

	for _, pm := range existing {
		merged = append(merged, fromLegacy(pm, location.SourceKMZExisting))
	}

	for j, pm := range proposed {
		if _, taken := claimed[j]; taken {
			continue
		}
		if !o.keepUnmatched {
			continue
		}
		merged = append(merged, fromLegacy(pm, location.SourceKMZProposed))
		stats.ProposedKept++
		stats.UnmatchedProposed = append(stats.UnmatchedProposed, UnmatchedProposed{
			Name:  pm.Name,
			City:  pm.City,
			State: pm.State,
		})
	}

	if o.dedup {
		merged, stats.DuplicatesDropped = deduplicate(merged, o.dedupThreshold)
	}
	stats.Total = len(merged)

	logging.Info().
		Int("total", stats.Total).
		Int("proposed_kept", stats.ProposedKept).
		Int("duplicates_dropped", stats.DuplicatesDropped).
		Msg("merge complete")
	return merged, stats
}

// fromAuthoritative maps a ranking export row onto the reconciled form.
func fromAuthoritative(loc location.CSVLocation) location.Reconciled {
	return location.Reconciled{
		Source:            location.SourceCSV,
		Name:              loc.PropertyName,
		Address:           loc.Address,
		City:              loc.City,
		State:             loc.StateCode,
		Zip:               loc.ZipCode,
		Latitude:          loc.Latitude,
		Longitude:         loc.Longitude,
		County:            loc.County,
		Rank:              loc.Rank,
		Visits:            loc.Visits,
		SquareFeet:        loc.SquareFeet,
		ExternalID:        loc.ExternalID,
		Confidence:        1.0,
		InvalidCoordinate: loc.InvalidCoordinate,
	}
}

// fromLegacy canonicalizes a placemark. Legacy records never carry
// metrics, and a year-opened of "0" means unknown.
func fromLegacy(pm location.Placemark, source location.Source) location.Reconciled {
	year := pm.YearOpened
	if year == "0" {
		year = ""
	}
	confidence := 1.0
	if source == location.SourceKMZProposed {
		confidence = 0.0
	}
	return location.Reconciled{
		Source:            source,
		Name:              pm.Name,
		Address:           pm.Address,
		City:              pm.City,
		State:             pm.State,
		Zip:               pm.Zip,
		Latitude:          pm.Latitude,
		Longitude:         pm.Longitude,
		YearOpened:        year,
		WebLink:           pm.WebLink,
		Extensions:        pm.Extensions,
		Confidence:        confidence,
		InvalidCoordinate: pm.InvalidCoordinate,
	}
}
