package app

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/palmerbayless123/kmz-optimizer/pkg/errors"
)

// Job is a run manifest: which inputs to reconcile and where the
// archives go. Values left unset fall back to the application config.
type Job struct {
	CSV    []JobCSV `yaml:"csv"`
	KMZ    string   `yaml:"kmz"`
	Output string   `yaml:"output"`

	ThresholdMeters float64 `yaml:"threshold_meters"`
	Deduplicate     *bool   `yaml:"deduplicate"`
	DateRange       string  `yaml:"date_range"`
	CountyCacheFile string  `yaml:"county_cache_file"`
}

// JobCSV names one ranking export and, optionally, the states to keep
// from it.
type JobCSV struct {
	Path   string   `yaml:"path"`
	States []string `yaml:"states"`
}

// LoadJob reads and validates a YAML run manifest.
func LoadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var job Job
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, errors.NewParseError("yaml", path, "invalid job manifest", err)
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}
	return &job, nil
}

// Validate checks the manifest for required fields.
func (j *Job) Validate() error {
	if len(j.CSV) == 0 {
		return errors.NewValidationError("csv", nil, "job needs at least one ranking export")
	}
	for i, c := range j.CSV {
		if c.Path == "" {
			return errors.NewValidationError("csv.path", i, "ranking export entry has no path")
		}
	}
	return nil
}

// StateSelections builds the per-file state filter map keyed by base
// filename, as the ingest layer expects.
func (j *Job) StateSelections() map[string][]string {
	selections := map[string][]string{}
	for _, c := range j.CSV {
		if len(c.States) > 0 {
			selections[filepath.Base(c.Path)] = c.States
		}
	}
	return selections
}

// Paths returns the manifest's CSV paths in order.
func (j *Job) Paths() []string {
	paths := make([]string, len(j.CSV))
	for i, c := range j.CSV {
		paths[i] = c.Path
	}
	return paths
}
