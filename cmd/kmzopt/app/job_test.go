package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/palmerbayless123/kmz-optimizer/pkg/errors"
)

const sampleJob = `csv:
  - path: data/rankings_ga.csv
    states: [GA]
  - path: data/rankings_southeast.csv
kmz: data/legacy.kmz
output: exports
threshold_meters: 150
deduplicate: false
date_range: "Jan 1, 2024 - Jun 30, 2024"
`

func writeJobFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing job file: %v", err)
	}
	return path
}

// TestLoadJob verifies manifest parsing and derived views.
func TestLoadJob(t *testing.T) {
	job, err := LoadJob(writeJobFile(t, sampleJob))
	if err != nil {
		t.Fatalf("LoadJob() failed: %v", err)
	}

	paths := job.Paths()
	if len(paths) != 2 || paths[0] != "data/rankings_ga.csv" {
		t.Errorf("Paths() = %v", paths)
	}

	selections := job.StateSelections()
	if len(selections) != 1 {
		t.Fatalf("StateSelections() = %v, want one entry", selections)
	}
	if states := selections["rankings_ga.csv"]; len(states) != 1 || states[0] != "GA" {
		t.Errorf("selections[rankings_ga.csv] = %v, want [GA]", states)
	}

	if job.KMZ != "data/legacy.kmz" {
		t.Errorf("KMZ = %s", job.KMZ)
	}
	if job.ThresholdMeters != 150 {
		t.Errorf("ThresholdMeters = %v, want 150", job.ThresholdMeters)
	}
	if job.Deduplicate == nil || *job.Deduplicate {
		t.Error("Deduplicate should parse as explicit false")
	}
}

// TestLoadJob_Invalid covers validation and parse failures.
func TestLoadJob_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no csv entries", "kmz: data/legacy.kmz\n"},
		{"entry without path", "csv:\n  - states: [GA]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadJob(writeJobFile(t, tt.content))
			if !errors.IsValidationError(err) {
				t.Errorf("LoadJob() error = %v, want validation error", err)
			}
		})
	}

	if _, err := LoadJob(writeJobFile(t, "csv: {not: a list")); !errors.IsParseError(err) {
		t.Error("malformed YAML should return a parse error")
	}

	if _, err := LoadJob(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing manifest should return an error")
	}
}
