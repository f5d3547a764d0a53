// Package location defines the core data model shared by the ingestion,
// matching, merging, and export layers: authoritative CSV records, legacy
// KMZ placemarks, and the reconciled canonical form they merge into.
//
// Records are built once at parse time and treated as read-only afterwards;
// every transformation produces new values instead of mutating inputs.
package location

import "strings"

// CSVLocation is a single row of an authoritative ranking-index CSV export.
// It represents a verified, currently operating location with visit metrics.
type CSVLocation struct {
	PropertyName string
	Address      string
	City         string
	State        string
	StateCode    string
	ZipCode      string
	Latitude     float64
	Longitude    float64

	// ExternalID is the upstream dataset's own identifier for the venue.
	ExternalID string
	StoreID    string
	ChainName  string

	// Metrics. Nil means the column was absent or blank for this row.
	Rank       *int
	Visits     *float64
	SquareFeet *float64

	// County is filled in by the external enrichment collaborator before
	// export. The core never computes it.
	County string

	// SourceFile is the basename of the CSV this row came from. Used for
	// date-range inference and error reporting.
	SourceFile string

	// InvalidCoordinate marks rows whose coordinates failed validation.
	// Such rows are kept for manual review but excluded from matching.
	InvalidCoordinate bool
}

// HasValidCoordinate reports whether the record may participate in
// distance calculations.
func (c *CSVLocation) HasValidCoordinate() bool {
	return !c.InvalidCoordinate
}

// LocaleKey returns the normalized city+state key used for locale
// pre-filtering. Empty components yield an empty key, which never matches.
func (c *CSVLocation) LocaleKey() string {
	return localeKey(c.City, c.StateCode)
}

func localeKey(city, state string) string {
	city = strings.ToUpper(strings.TrimSpace(city))
	state = strings.ToUpper(strings.TrimSpace(state))
	if city == "" || state == "" {
		return ""
	}
	return city + "|" + state
}
