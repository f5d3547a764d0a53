package matcher

import (
	"fmt"
	"sort"
	"strings"
)

// Statistics summarizes the quality of a matching run.
type Statistics struct {
	Total             int     `json:"total"`
	AverageConfidence float64 `json:"average_confidence"`
	AverageDistance   float64 `json:"average_distance_meters"`
	MinDistance       float64 `json:"min_distance_meters"`
	MaxDistance       float64 `json:"max_distance_meters"`
	HighConfidence    int     `json:"high_confidence"`
	MediumConfidence  int     `json:"medium_confidence"`
	LowConfidence     int     `json:"low_confidence"`
	NeedsReview       int     `json:"needs_review"`
}

// Stats computes aggregate statistics over the run's matches.
func (r *Result) Stats() Statistics {
	s := Statistics{Total: len(r.Matches)}
	if s.Total == 0 {
		return s
	}

	var confidenceSum, distanceSum float64
	s.MinDistance = r.Matches[0].DistanceMeters
	for _, m := range r.Matches {
		confidenceSum += m.Confidence
		distanceSum += m.DistanceMeters
		if m.DistanceMeters < s.MinDistance {
			s.MinDistance = m.DistanceMeters
		}
		if m.DistanceMeters > s.MaxDistance {
			s.MaxDistance = m.DistanceMeters
		}
		switch {
		case m.Confidence >= 0.9:
			s.HighConfidence++
		case m.Confidence >= 0.7:
			s.MediumConfidence++
		default:
			s.LowConfidence++
		}
		if m.NeedsReview {
			s.NeedsReview++
		}
	}
	s.AverageConfidence = confidenceSum / float64(s.Total)
	s.AverageDistance = distanceSum / float64(s.Total)
	return s
}

// Report renders a human-readable summary of the run, with matches
// ordered by distance.
func (r *Result) Report() string {
	stats := r.Stats()

	var b strings.Builder
	b.WriteString("LOCATION MATCHING REPORT\n")
	fmt.Fprintf(&b, "Matches: %d\n", stats.Total)
	fmt.Fprintf(&b, "Unmatched authoritative: %d\n", len(r.UnmatchedActual))
	fmt.Fprintf(&b, "Unmatched proposed: %d\n", len(r.UnmatchedProposed))
	if stats.Total == 0 {
		return b.String()
	}

	fmt.Fprintf(&b, "Average confidence: %.0f%%\n", stats.AverageConfidence*100)
	fmt.Fprintf(&b, "Distance range: %.1fm - %.1fm\n", stats.MinDistance, stats.MaxDistance)
	fmt.Fprintf(&b, "Confidence bands: high %d, medium %d, low %d\n",
		stats.HighConfidence, stats.MediumConfidence, stats.LowConfidence)
	if stats.NeedsReview > 0 {
		fmt.Fprintf(&b, "Flagged for review: %d\n", stats.NeedsReview)
	}

	ordered := make([]Match, len(r.Matches))
	copy(ordered, r.Matches)
	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].DistanceMeters < ordered[b].DistanceMeters
	})

	b.WriteString("\nMATCHES\n")
	for i, m := range ordered {
		fmt.Fprintf(&b, "%d. %s -> %s (%.1fm, %.0f%%)\n",
			i+1, m.Actual.PropertyName, m.Proposed.Name, m.DistanceMeters, m.Confidence*100)
	}
	return b.String()
}
