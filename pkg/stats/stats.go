// Package stats aggregates per-state figures from the reconciled dataset
// for use in export field values.
package stats

import (
	"sort"

	"github.com/palmerbayless123/kmz-optimizer/pkg/location"
)

// StateStats holds the aggregate figures for one state.
type StateStats struct {
	Stores        int     `json:"stores"`
	RankedStores  int     `json:"ranked_stores"`
	VisitedStores int     `json:"visited_stores"`
	TotalVisits   float64 `json:"total_visits"`
	AverageVisits float64 `json:"average_visits"`
}

// Aggregate is the full statistics set computed over a merged dataset.
type Aggregate struct {
	// DateRange is the label embedded in metric field names, empty when
	// no source filename carried one.
	DateRange string `json:"date_range"`

	TotalStores       int     `json:"total_stores"`
	TotalRankedStores int     `json:"total_ranked_stores"`
	TotalVisits       float64 `json:"total_visits"`

	ByState map[string]StateStats `json:"by_state"`

	// States lists the state codes present, sorted.
	States []string `json:"states"`
}

// Compute aggregates the merged dataset. Records without a state are
// grouped under "Unknown". Average visits is taken over the records that
// actually carry visit data, not the whole state.
func Compute(merged []location.Reconciled, dateRange string) Aggregate {
	agg := Aggregate{
		DateRange: dateRange,
		ByState:   map[string]StateStats{},
	}

	for i := range merged {
		rec := &merged[i]
		state := rec.Region()
		s := agg.ByState[state]

		s.Stores++
		agg.TotalStores++
		if rec.Rank != nil {
			s.RankedStores++
			agg.TotalRankedStores++
		}
		if rec.Visits != nil {
			s.VisitedStores++
			s.TotalVisits += *rec.Visits
			agg.TotalVisits += *rec.Visits
		}
		agg.ByState[state] = s
	}

	for state, s := range agg.ByState {
		if s.VisitedStores > 0 {
			s.AverageVisits = s.TotalVisits / float64(s.VisitedStores)
			agg.ByState[state] = s
		}
		agg.States = append(agg.States, state)
	}
	sort.Strings(agg.States)

	return agg
}

// GroupByRegion partitions the merged dataset by state, preserving
// record order within each group.
func GroupByRegion(merged []location.Reconciled) map[string][]location.Reconciled {
	groups := map[string][]location.Reconciled{}
	for _, rec := range merged {
		region := rec.Region()
		groups[region] = append(groups[region], rec)
	}
	return groups
}
