package stats

import (
	"fmt"
	"regexp"
)

// Ranking export filenames embed their reporting window, for example
// "Ranking_Index_-_Acme_-_Oct_1__2024_-_Sep_30__2025.csv".
var dateRangePattern = regexp.MustCompile(`([A-Z][a-z]{2})_(\d{1,2})__(\d{4})_-_([A-Z][a-z]{2})_(\d{1,2})__(\d{4})`)

// DateRangeFromFilename extracts the reporting window from an export
// filename, formatted as "Oct 1, 2024 - Sep 30, 2025". Returns "" when
// the filename carries no recognizable window.
func DateRangeFromFilename(name string) string {
	m := dateRangePattern.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	return fmt.Sprintf("%s %s, %s - %s %s, %s", m[1], m[2], m[3], m[4], m[5], m[6])
}

// InferDateRange returns the window from the first filename that carries
// one.
func InferDateRange(filenames []string) string {
	for _, name := range filenames {
		if r := DateRangeFromFilename(name); r != "" {
			return r
		}
	}
	return ""
}
