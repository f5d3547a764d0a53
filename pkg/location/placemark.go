package location

import "strings"

// proposedIndicators are the case-insensitive name markers that identify a
// placemark as a planned or not-yet-open site.
var proposedIndicators = []string{
	"(proposed)",
	"(u/c)",
	"under construction",
	"(planned)",
	"(future)",
	"(coming soon)",
	"(opening soon)",
}

// IsProposedName reports whether a placemark name carries one of the
// proposed/planned indicators.
func IsProposedName(name string) bool {
	if name == "" {
		return false
	}
	lower := strings.ToLower(name)
	for _, indicator := range proposedIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// Placemark is a single legacy entry extracted from a KMZ document.
type Placemark struct {
	Name      string
	Address   string
	City      string
	State     string
	Zip       string
	Latitude  float64
	Longitude float64

	YearOpened string
	WebLink    string

	// Extensions holds every SimpleData key/value pair from the source
	// feature, beyond the well-known fields lifted into struct fields.
	Extensions map[string]string

	// Proposed is derived once at parse time from the name indicators.
	// A non-proposed placemark never participates in matching.
	Proposed bool

	// InvalidCoordinate marks features whose coordinate tag was missing
	// or malformed; the parser substitutes (0,0) and sets this flag.
	InvalidCoordinate bool
}

// HasValidCoordinate reports whether the placemark may participate in
// distance calculations.
func (p *Placemark) HasValidCoordinate() bool {
	return !p.InvalidCoordinate
}

// LocaleKey returns the normalized city+state key used for locale
// pre-filtering.
func (p *Placemark) LocaleKey() string {
	return localeKey(p.City, p.State)
}
