package app

import (
	"os"
	"testing"
)

// TestLoadConfig verifies basic config loading and defaults.
func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config == nil {
		t.Fatal("LoadConfig() returned nil config")
	}

	if config.OutputDir == "" {
		t.Error("OutputDir not set to default")
	}
	if config.ThresholdMeters <= 0 {
		t.Errorf("ThresholdMeters = %v, want a positive default", config.ThresholdMeters)
	}
	if !config.Deduplicate {
		t.Error("Deduplicate should default to true")
	}
	if config.LogFormat == "" {
		t.Error("LogFormat not set to default")
	}
}

// TestConfig_EnvironmentVariables verifies environment variable loading.
func TestConfig_EnvironmentVariables(t *testing.T) {
	oldOutputDir := os.Getenv("OUTPUT_DIR")
	oldLevel := os.Getenv("LOG_LEVEL")
	defer func() {
		os.Setenv("OUTPUT_DIR", oldOutputDir)
		os.Setenv("LOG_LEVEL", oldLevel)
	}()

	os.Setenv("OUTPUT_DIR", "exports")
	os.Setenv("LOG_LEVEL", "debug")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.OutputDir != "exports" {
		t.Errorf("OutputDir = %s, want exports", config.OutputDir)
	}
	if config.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", config.LogLevel)
	}
}

// TestConfig_UpdateFromFlags verifies flag precedence.
func TestConfig_UpdateFromFlags(t *testing.T) {
	config := &Config{LogLevel: "info"}

	config.UpdateFromFlags(true, false, true, "error")

	if !config.Verbose {
		t.Error("Verbose flag not applied")
	}
	if !config.NoColor {
		t.Error("NoColor flag not applied")
	}
	if config.LogLevel != "error" {
		t.Errorf("LogLevel = %s, want error", config.LogLevel)
	}

	// Empty log-level flag keeps the existing value.
	config.UpdateFromFlags(false, true, false, "")
	if config.LogLevel != "error" {
		t.Errorf("LogLevel = %s, want error after empty flag", config.LogLevel)
	}
	if !config.Quiet {
		t.Error("Quiet flag not applied")
	}
}
