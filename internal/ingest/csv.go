// Package ingest loads authoritative ranking exports from CSV. It
// validates file structure, cleans row values, and maps rows onto the
// shared location model used by the matcher and merger.
package ingest

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/palmerbayless123/kmz-optimizer/pkg/errors"
	"github.com/palmerbayless123/kmz-optimizer/pkg/geo"
	"github.com/palmerbayless123/kmz-optimizer/pkg/location"
	"github.com/palmerbayless123/kmz-optimizer/pkg/logging"
)

// Column names of a ranking index export.
const (
	colRank         = "Rank"
	colID           = "Id"
	colPropertyName = "Property Name"
	colStoreID      = "Store Id"
	colChainName    = "Chain Name"
	colLatitude     = "Latitude"
	colLongitude    = "Longitude"
	colAddress      = "Address"
	colCity         = "City"
	colState        = "State"
	colStateCode    = "State Code"
	colZipCode      = "Zip Code"
	colVisits       = "Visits"
	colSquareFeet   = "sq ft"
)

// requiredColumns must all be present for a file to be accepted.
var requiredColumns = []string{
	colRank,
	colPropertyName,
	colLatitude,
	colLongitude,
	colCity,
	colState,
	colStateCode,
	colZipCode,
}

// ParseFile reads a ranking CSV from disk.
func ParseFile(path string) ([]location.CSVLocation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	return Parse(filepath.Base(path), f)
}

// Parse reads a ranking CSV stream. A UTF-8 byte order mark, common in
// spreadsheet exports, is stripped before decoding. Rows with an empty
// property name are skipped; rows that fail cleaning are logged and
// skipped rather than failing the file.
func Parse(name string, r io.Reader) ([]location.CSVLocation, error) {
	bom := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	reader := csv.NewReader(transform.NewReader(r, bom))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewParseError("csv", name, "file is empty", nil)
	}
	if err != nil {
		return nil, errors.NewParseError("csv", name, "cannot read header", err)
	}

	index, err := validateHeader(name, header)
	if err != nil {
		return nil, err
	}

	var locations []location.CSVLocation
	line := 1
	for {
		record, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			logging.Warn().
				Str("source", name).
				Int("line", line).
				Err(err).
				Msg("skipping malformed row")
			continue
		}

		loc, ok := buildLocation(name, index, record)
		if !ok {
			continue
		}
		locations = append(locations, loc)
	}

	logging.Info().
		Str("source", name).
		Int("locations", len(locations)).
		Msg("parsed ranking export")
	return locations, nil
}

// validateHeader checks for required columns and returns a name-to-index
// map for row access.
func validateHeader(name string, header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(col)] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewParseError("csv", name,
			"missing required columns: "+strings.Join(missing, ", "), errors.ErrInvalidInput)
	}
	return index, nil
}

func buildLocation(source string, index map[string]int, record []string) (location.CSVLocation, bool) {
	field := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	name := field(colPropertyName)
	if name == "" {
		return location.CSVLocation{}, false
	}

	loc := location.CSVLocation{
		PropertyName: name,
		Address:      field(colAddress),
		City:         field(colCity),
		State:        field(colState),
		StateCode:    strings.ToUpper(field(colStateCode)),
		ZipCode:      field(colZipCode),
		ExternalID:   field(colID),
		StoreID:      field(colStoreID),
		ChainName:    field(colChainName),
		SourceFile:   source,
	}

	loc.Latitude = parseFloat(field(colLatitude))
	loc.Longitude = parseFloat(field(colLongitude))
	if !geo.ValidCoordinate(loc.Latitude, loc.Longitude) {
		loc.Latitude = 0
		loc.Longitude = 0
		loc.InvalidCoordinate = true
	}

	if rank, err := strconv.Atoi(field(colRank)); err == nil {
		loc.Rank = &rank
	}
	if v := field(colVisits); v != "" {
		if visits, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64); err == nil {
			loc.Visits = &visits
		}
	}
	if v := field(colSquareFeet); v != "" {
		if sqft, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64); err == nil {
			loc.SquareFeet = &sqft
		}
	}

	return loc, true
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// FilterByStates keeps only locations whose state code is in the
// selection. An empty selection keeps everything. Codes are compared
// case-insensitively.
func FilterByStates(locations []location.CSVLocation, states []string) []location.CSVLocation {
	if len(states) == 0 {
		return locations
	}
	selected := make(map[string]struct{}, len(states))
	for _, s := range states {
		selected[strings.ToUpper(strings.TrimSpace(s))] = struct{}{}
	}

	filtered := make([]location.CSVLocation, 0, len(locations))
	for _, loc := range locations {
		if _, ok := selected[strings.ToUpper(loc.StateCode)]; ok {
			filtered = append(filtered, loc)
		}
	}
	return filtered
}

// AvailableStates returns the sorted set of state codes present.
func AvailableStates(locations []location.CSVLocation) []string {
	seen := map[string]struct{}{}
	for _, loc := range locations {
		if loc.StateCode != "" {
			seen[loc.StateCode] = struct{}{}
		}
	}
	states := make([]string, 0, len(seen))
	for s := range seen {
		states = append(states, s)
	}
	sort.Strings(states)
	return states
}
