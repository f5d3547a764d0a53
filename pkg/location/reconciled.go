package location

// Source identifies where a reconciled location originated.
type Source string

// Record sources, from highest to lowest merge priority.
const (
	// SourceCSV marks records from the authoritative metrics dataset.
	SourceCSV Source = "csv"
	// SourceKMZExisting marks legacy placemarks for operating stores.
	SourceKMZExisting Source = "kmz_existing"
	// SourceKMZProposed marks legacy placemarks for planned stores that
	// no authoritative record matched.
	SourceKMZProposed Source = "kmz_proposed"
)

// Priority returns the merge precedence of a source. Higher wins.
func (s Source) Priority() int {
	switch s {
	case SourceCSV:
		return 3
	case SourceKMZExisting:
		return 2
	case SourceKMZProposed:
		return 1
	default:
		return 0
	}
}

// String returns the string form of the source tag.
func (s Source) String() string {
	return string(s)
}

// ReplacedProposed records which proposed placemark an authoritative
// record superseded during matching.
type ReplacedProposed struct {
	Name           string
	Confidence     float64
	DistanceMeters float64
}

// Reconciled is the canonical, provenance-tagged form every record takes in
// the merged dataset. It is terminal: only statistics and export read it.
type Reconciled struct {
	Source Source

	Name      string
	Address   string
	City      string
	State     string
	Zip       string
	Latitude  float64
	Longitude float64
	County    string

	// Metrics carried over from authoritative records; nil for legacy
	// origins by canonicalization rule.
	Rank       *int
	Visits     *float64
	SquareFeet *float64
	ExternalID string

	// YearOpened is a legacy-only field; a literal "0" in the source is
	// normalized to "" (unknown).
	YearOpened string
	WebLink    string

	// Extensions carries the legacy feature's extra key/value fields.
	// Nil for authoritative records.
	Extensions map[string]string

	// Confidence is 1.0 for authoritative and legacy-existing records,
	// the match confidence for records that replaced a proposed entry,
	// and 0.0 for unmatched proposed entries.
	Confidence float64

	// Replaced is set on authoritative records that consumed a proposed
	// placemark during matching.
	Replaced *ReplacedProposed

	InvalidCoordinate bool
}

// IsActual reports whether the location is an operating store rather than
// a still-planned one.
func (r *Reconciled) IsActual() bool {
	return r.Source != SourceKMZProposed
}

// HasMetrics reports whether the record carries visit metrics.
func (r *Reconciled) HasMetrics() bool {
	return r.Source == SourceCSV
}

// Region returns the state code used for grouping, or "Unknown" when the
// record carries none.
func (r *Reconciled) Region() string {
	if r.State == "" {
		return "Unknown"
	}
	return r.State
}

// LocaleKey returns the normalized city+state key used by the secondary
// deduplication pass.
func (r *Reconciled) LocaleKey() string {
	return localeKey(r.City, r.State)
}
