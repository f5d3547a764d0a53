package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/palmerbayless123/kmz-optimizer/pkg/kmz"
)

const rankingCSV = `Rank,Id,Property Name,Store Id,Chain Name,Latitude,Longitude,Address,City,State,State Code,Zip Code,Visits,sq ft
1,loc-001,Athens Market,481,Market Co,33.9390,-83.4536,10 Broad St,Athens,Georgia,GA,30601,"50,000",4500
2,loc-002,Augusta Market,482,Market Co,33.5125,-82.0485,5 Broad St,Augusta,Georgia,GA,30901,45000,
`

func testApp(t *testing.T) *App {
	t.Helper()
	config := &Config{
		OutputDir:       "output",
		ThresholdMeters: 200,
		Deduplicate:     true,
		LogLevel:        "error",
		LogFormat:       "json",
		LogOutput:       "stderr",
	}
	logger := NewLogger(config)
	return &App{version: "test", commit: "none", date: "unknown", config: config, logger: &logger}
}

func writeLegacyKMZ(t *testing.T, dir string) string {
	t.Helper()

	pin := func(name, city, state string, lat, lon float64) kmz.Placemark {
		return kmz.Placemark{
			Name: name,
			SchemaData: kmz.SchemaData{Values: []kmz.SimpleData{
				{Name: "City", Value: city},
				{Name: "State", Value: state},
			}},
			Coordinates: fmt.Sprintf("%v,%v,0", lon, lat),
		}
	}

	doc := kmz.NewKML("Legacy Markets")
	doc.Document.Placemarks = []kmz.Placemark{
		pin("Buford Market", "Buford", "GA", 34.0830, -84.0040),
		pin("Athens Market (Proposed)", "Athens", "GA", 33.9389, -83.4535),
		pin("Tampa Market (Coming Soon)", "Tampa", "FL", 27.9506, -82.4572),
	}

	body, err := doc.Bytes()
	if err != nil {
		t.Fatalf("rendering legacy document: %v", err)
	}
	archive, err := kmz.Archive(body)
	if err != nil {
		t.Fatalf("building legacy archive: %v", err)
	}

	path := filepath.Join(dir, "legacy.kmz")
	if err := kmz.WriteFile(path, archive); err != nil {
		t.Fatalf("writing legacy archive: %v", err)
	}
	return path
}

func writeRankingCSV(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "Ranking_Index_-_Markets_-_Oct_1__2024_-_Sep_30__2025.csv")
	if err := os.WriteFile(path, []byte(rankingCSV), 0o644); err != nil {
		t.Fatalf("writing ranking export: %v", err)
	}
	return path
}

// TestRunCommand exercises the full pipeline from flags to archives on
// disk.
func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeRankingCSV(t, dir)
	kmzPath := writeLegacyKMZ(t, dir)
	outDir := filepath.Join(dir, "out")

	a := testApp(t)
	cmd := a.NewRunCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--csv", csvPath, "--kmz", kmzPath, "--out", outDir})

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("run command failed: %v\n%s", err, out.String())
	}

	gaPath := filepath.Join(outDir, "GA.kmz")
	placemarks, err := kmz.ReadFile(gaPath)
	if err != nil {
		t.Fatalf("reading GA archive: %v", err)
	}
	// 2 authoritative + 1 existing; the Athens proposed pin was matched
	// and replaced.
	if len(placemarks) != 3 {
		t.Errorf("GA archive has %d placemarks, want 3", len(placemarks))
	}

	if _, err := os.Stat(filepath.Join(outDir, "FL.kmz")); err != nil {
		t.Errorf("FL archive missing: %v", err)
	}

	if !strings.Contains(out.String(), "Reconciled") {
		t.Errorf("run output missing summary: %q", out.String())
	}
	if !strings.Contains(out.String(), "GA") {
		t.Errorf("run output missing region lines: %q", out.String())
	}
}

// TestRunCommand_JobManifest drives the same pipeline from a YAML
// manifest.
func TestRunCommand_JobManifest(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeRankingCSV(t, dir)
	kmzPath := writeLegacyKMZ(t, dir)
	outDir := filepath.Join(dir, "exports")

	manifest := fmt.Sprintf("csv:\n  - path: %s\n    states: [GA]\nkmz: %s\noutput: %s\n", csvPath, kmzPath, outDir)
	jobPath := filepath.Join(dir, "job.yaml")
	if err := os.WriteFile(jobPath, []byte(manifest), 0o644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}

	a := testApp(t)
	cmd := a.NewRunCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--job", jobPath})

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("run command failed: %v\n%s", err, out.String())
	}

	if _, err := os.Stat(filepath.Join(outDir, "GA.kmz")); err != nil {
		t.Errorf("GA archive missing: %v", err)
	}
}

// TestRunCommand_MissingInputs verifies flag validation.
func TestRunCommand_MissingInputs(t *testing.T) {
	a := testApp(t)
	cmd := a.NewRunCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Error("run without inputs should fail")
	}
}

// TestInspectCommand summarizes a KMZ as JSON.
func TestInspectCommand(t *testing.T) {
	kmzPath := writeLegacyKMZ(t, t.TempDir())

	a := testApp(t)
	cmd := a.NewInspectCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{kmzPath})

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("inspect command failed: %v", err)
	}

	for _, want := range []string{`"total": 3`, `"proposed": 2`, `"existing": 1`} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("inspect output missing %s:\n%s", want, out.String())
		}
	}
}

// TestVersionCommand prints build information.
func TestVersionCommand(t *testing.T) {
	a := testApp(t)
	cmd := a.NewVersionCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !strings.Contains(out.String(), "kmzopt test") {
		t.Errorf("version output = %q", out.String())
	}
}
