package app

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/palmerbayless123/kmz-optimizer/internal/ingest"
	"github.com/palmerbayless123/kmz-optimizer/pkg/errors"
	"github.com/palmerbayless123/kmz-optimizer/pkg/export"
	"github.com/palmerbayless123/kmz-optimizer/pkg/kmz"
	"github.com/palmerbayless123/kmz-optimizer/pkg/matcher"
	"github.com/palmerbayless123/kmz-optimizer/pkg/merger"
	"github.com/palmerbayless123/kmz-optimizer/pkg/reconcile"
)

// runFlags collects the run command's flag values before they are
// merged with the config and an optional job manifest.
type runFlags struct {
	jobFile      string
	csvPaths     []string
	states       []string
	kmzPath      string
	outputDir    string
	threshold    float64
	noDedup      bool
	dropProposed bool
	dateRange    string
	countyCache  string
	report       bool
}

// NewRunCommand creates the run command, the full reconciliation
// pipeline from ranking exports and a legacy KMZ to per-state archives.
func (a *App) NewRunCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile ranking exports with a legacy KMZ and export per-state archives",
		Long: `Run parses one or more ranking CSV exports and a legacy KMZ dataset,
matches proposed placemarks against authoritative locations, merges
everything into one canonical dataset, and writes one KMZ archive per
state to the output directory.

Inputs can be given as flags or as a YAML job manifest (--job); flags
set explicitly on the command line win over manifest values.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runReconcile(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.jobFile, "job", "", "YAML job manifest describing inputs and output")
	cmd.Flags().StringArrayVar(&flags.csvPaths, "csv", nil, "ranking export CSV (repeatable)")
	cmd.Flags().StringSliceVar(&flags.states, "states", nil, "state codes to keep from the CSV inputs (default all)")
	cmd.Flags().StringVar(&flags.kmzPath, "kmz", "", "legacy KMZ dataset")
	cmd.Flags().StringVarP(&flags.outputDir, "out", "o", "", "output directory for per-state archives")
	cmd.Flags().Float64Var(&flags.threshold, "threshold", 0, "matching distance threshold in meters")
	cmd.Flags().BoolVar(&flags.noDedup, "no-dedup", false, "skip secondary co-located deduplication")
	cmd.Flags().BoolVar(&flags.dropProposed, "drop-unmatched-proposed", false, "drop proposed placemarks no authoritative record claimed")
	cmd.Flags().StringVar(&flags.dateRange, "date-range", "", "date range label for exports (default inferred from CSV filenames)")
	cmd.Flags().StringVar(&flags.countyCache, "county-cache", "", "JSON county lookup cache, loaded before the run and saved after")
	cmd.Flags().BoolVar(&flags.report, "report", false, "print the full match report after the run")

	return cmd
}

// runSettings is the merged view of config, job manifest, and flags.
type runSettings struct {
	csvPaths        []string
	stateSelections map[string][]string
	kmzPath         string
	outputDir       string
	threshold       float64
	dedup           bool
	dateRange       string
	countyCache     string
}

func (a *App) resolveRunSettings(cmd *cobra.Command, flags runFlags) (runSettings, error) {
	settings := runSettings{
		csvPaths:        flags.csvPaths,
		stateSelections: map[string][]string{},
		kmzPath:         flags.kmzPath,
		outputDir:       a.config.OutputDir,
		threshold:       a.config.ThresholdMeters,
		dedup:           a.config.Deduplicate,
		dateRange:       flags.dateRange,
		countyCache:     a.config.CountyCacheFile,
	}

	if flags.jobFile != "" {
		job, err := LoadJob(flags.jobFile)
		if err != nil {
			return settings, err
		}
		if len(settings.csvPaths) == 0 {
			settings.csvPaths = job.Paths()
			settings.stateSelections = job.StateSelections()
		}
		if settings.kmzPath == "" {
			settings.kmzPath = job.KMZ
		}
		if job.Output != "" && !cmd.Flags().Changed("out") {
			settings.outputDir = job.Output
		}
		if job.ThresholdMeters > 0 {
			settings.threshold = job.ThresholdMeters
		}
		if job.Deduplicate != nil {
			settings.dedup = *job.Deduplicate
		}
		if settings.dateRange == "" {
			settings.dateRange = job.DateRange
		}
		if job.CountyCacheFile != "" {
			settings.countyCache = job.CountyCacheFile
		}
	}

	if cmd.Flags().Changed("out") {
		settings.outputDir = flags.outputDir
	}
	if cmd.Flags().Changed("threshold") {
		settings.threshold = flags.threshold
	}
	if flags.noDedup {
		settings.dedup = false
	}
	if cmd.Flags().Changed("county-cache") {
		settings.countyCache = flags.countyCache
	}

	if len(flags.states) > 0 {
		for _, path := range settings.csvPaths {
			settings.stateSelections[filepath.Base(path)] = flags.states
		}
	}

	if len(settings.csvPaths) == 0 {
		return settings, errors.NewValidationError("csv", nil, "no ranking exports given; use --csv or a --job manifest")
	}
	if settings.kmzPath == "" {
		return settings, errors.NewValidationError("kmz", nil, "no legacy KMZ given; use --kmz or a --job manifest")
	}
	return settings, nil
}

func (a *App) runReconcile(cmd *cobra.Command, flags runFlags) error {
	ctx := cmd.Context()

	settings, err := a.resolveRunSettings(cmd, flags)
	if err != nil {
		return err
	}

	batch := ingest.ParseFiles(settings.csvPaths, settings.stateSelections)
	if batch.FilesProcessed == 0 {
		return fmt.Errorf("no ranking exports could be parsed: %w", joinErrors(batch.Errors))
	}
	a.logger.Info().
		Int("files", batch.FilesProcessed).
		Int("failed", batch.FilesFailed).
		Int("locations", len(batch.Locations)).
		Msg("parsed ranking exports")

	placemarks, err := kmz.ReadFile(settings.kmzPath)
	if err != nil {
		return err
	}
	proposed, existing := kmz.Split(placemarks)
	a.logger.Info().
		Int("proposed", len(proposed)).
		Int("existing", len(existing)).
		Str("source", settings.kmzPath).
		Msg("parsed legacy dataset")

	opts := []reconcile.Option{
		reconcile.WithMatchOptions(matcher.WithThresholdMeters(settings.threshold)),
	}
	var mergeOpts []merger.Option
	if !settings.dedup {
		mergeOpts = append(mergeOpts, merger.WithoutDeduplication())
	}
	if flags.dropProposed {
		mergeOpts = append(mergeOpts, merger.WithoutUnmatchedProposed())
	}
	if len(mergeOpts) > 0 {
		opts = append(opts, reconcile.WithMergeOptions(mergeOpts...))
	}
	if settings.dateRange != "" {
		opts = append(opts, reconcile.WithDateRange(settings.dateRange))
	}

	var countyCache *reconcile.CachingCountyResolver
	if settings.countyCache != "" {
		countyCache = reconcile.NewCachingCountyResolver(reconcile.StaticCountyResolver{})
		if err := countyCache.Load(settings.countyCache); err != nil {
			return err
		}
		opts = append(opts, reconcile.WithCountyResolver(countyCache))
	}

	result, err := reconcile.Run(ctx, reconcile.Input{
		Authoritative:   batch.Locations,
		Existing:        existing,
		Proposed:        proposed,
		SourceFilenames: settings.csvPaths,
	}, opts...)
	if err != nil {
		return err
	}

	if countyCache != nil {
		if err := countyCache.Save(settings.countyCache); err != nil {
			a.logger.Warn().Err(err).Str("path", settings.countyCache).Msg("failed to save county cache")
		}
	}

	paths, writeErrs := export.WriteAll(settings.outputDir, result.Archives)
	result.Errors = append(result.Errors, writeErrs...)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, result.Summary())
	for _, region := range result.Aggregate.States {
		if path, ok := paths[region]; ok {
			fmt.Fprintf(out, "  %s: %d stores -> %s\n", region, result.Aggregate.ByState[region].Stores, path)
		}
	}
	if flags.report {
		fmt.Fprintln(out)
		fmt.Fprintln(out, result.Report())
	}
	for _, warning := range result.Warnings {
		fmt.Fprintln(out, "warning:", warning)
	}

	if !result.Success || len(writeErrs) > 0 {
		return fmt.Errorf("run finished with %d errors", len(result.Errors))
	}
	return nil
}

// NewInspectCommand creates the inspect command, a quick summary of a
// KMZ archive's contents.
func (a *App) NewInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.kmz>",
		Short: "Summarize the placemarks in a KMZ archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			placemarks, err := kmz.ReadFile(args[0])
			if err != nil {
				return err
			}
			summary := kmz.Summarize(placemarks)

			data, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "kmzopt %s\n", a.version)
			fmt.Fprintf(out, "  commit: %s\n", a.commit)
			fmt.Fprintf(out, "  built:  %s\n", a.date)
		},
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
