package ingest

import (
	"path/filepath"

	"github.com/palmerbayless123/kmz-optimizer/pkg/location"
	"github.com/palmerbayless123/kmz-optimizer/pkg/logging"
)

// BatchResult is the outcome of parsing a set of ranking exports. Files
// that fail to parse are recorded in Errors; parsing continues with the
// remaining files.
type BatchResult struct {
	Locations []location.CSVLocation
	ByFile    map[string][]location.CSVLocation
	ByState   map[string][]location.CSVLocation

	FilesProcessed int
	FilesFailed    int
	Errors         []error
}

// ParseFiles parses multiple ranking exports. stateSelections optionally
// maps a file's base name to the state codes to keep from it; files
// without an entry keep all rows.
func ParseFiles(paths []string, stateSelections map[string][]string) BatchResult {
	result := BatchResult{
		ByFile:  map[string][]location.CSVLocation{},
		ByState: map[string][]location.CSVLocation{},
	}

	for _, path := range paths {
		name := filepath.Base(path)

		locations, err := ParseFile(path)
		if err != nil {
			result.FilesFailed++
			result.Errors = append(result.Errors, err)
			logging.Error().Str("source", name).Err(err).Msg("failed to parse ranking export")
			continue
		}

		if states, ok := stateSelections[name]; ok {
			locations = FilterByStates(locations, states)
		}

		result.ByFile[name] = locations
		for _, loc := range locations {
			state := loc.StateCode
			if state == "" {
				state = "Unknown"
			}
			result.ByState[state] = append(result.ByState[state], loc)
		}
		result.Locations = append(result.Locations, locations...)
		result.FilesProcessed++
	}

	return result
}
