package merger

import (
	"fmt"
	"strings"

	"github.com/palmerbayless123/kmz-optimizer/pkg/location"
)

// MatchDetail records one proposed placemark replaced by an
// authoritative record, for audit output.
type MatchDetail struct {
	AuthoritativeName string  `json:"authoritative_name"`
	AuthoritativeCity string  `json:"authoritative_city"`
	ProposedName      string  `json:"proposed_name"`
	ProposedCity      string  `json:"proposed_city"`
	Confidence        float64 `json:"confidence"`
	DistanceMeters    float64 `json:"distance_meters"`
}

// UnmatchedProposed records a proposed placemark kept because nothing
// claimed it.
type UnmatchedProposed struct {
	Name  string `json:"name"`
	City  string `json:"city"`
	State string `json:"state"`
}

// Stats describes a merge outcome.
type Stats struct {
	Total             int `json:"total"`
	FromCSV           int `json:"from_csv"`
	FromExisting      int `json:"from_kmz_existing"`
	ProposedTotal     int `json:"proposed_total"`
	ProposedKept      int `json:"proposed_kept"`
	ProposedReplaced  int `json:"proposed_replaced"`
	DuplicatesDropped int `json:"duplicates_dropped"`

	MatchDetails      []MatchDetail       `json:"match_details,omitempty"`
	UnmatchedProposed []UnmatchedProposed `json:"unmatched_proposed,omitempty"`
}

// Summary renders a short human-readable account of the merge.
func (s Stats) Summary() string {
	var b strings.Builder
	b.WriteString("MERGE SUMMARY\n")
	fmt.Fprintf(&b, "Authoritative locations: %d\n", s.FromCSV)
	fmt.Fprintf(&b, "Legacy existing:         %d\n", s.FromExisting)
	fmt.Fprintf(&b, "Proposed kept:           %d of %d (%d replaced)\n",
		s.ProposedKept, s.ProposedTotal, s.ProposedReplaced)
	if s.DuplicatesDropped > 0 {
		fmt.Fprintf(&b, "Duplicates dropped:      %d\n", s.DuplicatesDropped)
	}
	fmt.Fprintf(&b, "Total:                   %d\n", s.Total)
	return b.String()
}

// ValidationReport collects every issue found in a merged dataset.
// Missing names, unknown source tags, and unusable coordinates are
// errors; missing city or state are warnings. Validation never drops a
// record; callers decide what to do with the report.
type ValidationReport struct {
	Warnings []string `json:"warnings,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

// Valid reports whether the dataset has no errors. Warnings alone do
// not make a dataset invalid.
func (r ValidationReport) Valid() bool {
	return len(r.Errors) == 0
}

// Validate checks a merged dataset for missing required fields and
// unusable coordinates, walking the whole set and collecting every
// issue rather than stopping at the first.
func Validate(merged []location.Reconciled) ValidationReport {
	var report ValidationReport
	for i, rec := range merged {
		n := i + 1
		if rec.Name == "" {
			report.Errors = append(report.Errors, fmt.Sprintf("record %d: missing name", n))
		}
		if rec.Source.Priority() == 0 {
			report.Errors = append(report.Errors,
				fmt.Sprintf("record %d (%s): unknown source %q", n, rec.Name, rec.Source))
		}
		if rec.City == "" {
			report.Warnings = append(report.Warnings, fmt.Sprintf("record %d (%s): missing city", n, rec.Name))
		}
		if rec.State == "" {
			report.Warnings = append(report.Warnings, fmt.Sprintf("record %d (%s): missing state", n, rec.Name))
		}
		if rec.Latitude == 0 && rec.Longitude == 0 {
			report.Errors = append(report.Errors,
				fmt.Sprintf("record %d (%s): invalid coordinates (0,0)", n, rec.Name))
		}
		if rec.Latitude < -90 || rec.Latitude > 90 || rec.Longitude < -180 || rec.Longitude > 180 {
			report.Errors = append(report.Errors,
				fmt.Sprintf("record %d (%s): coordinates out of range (%v, %v)", n, rec.Name, rec.Latitude, rec.Longitude))
		}
	}
	return report
}
