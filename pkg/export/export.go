// Package export renders the reconciled dataset into per-region KMZ
// archives. Regions are rendered independently; one region failing never
// disturbs the others.
package export

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/palmerbayless123/kmz-optimizer/pkg/errors"
	"github.com/palmerbayless123/kmz-optimizer/pkg/kmz"
	"github.com/palmerbayless123/kmz-optimizer/pkg/location"
	"github.com/palmerbayless123/kmz-optimizer/pkg/logging"
	"github.com/palmerbayless123/kmz-optimizer/pkg/stats"
)

const (
	schemaID   = "locations"
	styleID    = "storeIcon"
	iconHref   = "https://maps.google.com/mapfiles/kml/paddle/red-circle.png"
	schemaType = "string"
)

// Result maps a region code to its rendered archive bytes. Errors holds
// the per-region failures for regions absent from Archives.
type Result struct {
	Archives map[string][]byte
	Errors   []error
}

// Run renders one archive per region from the merged dataset. Rendering
// is fanned out across regions; output depends only on input, not on
// scheduling.
func Run(ctx context.Context, merged []location.Reconciled, agg stats.Aggregate) (*Result, error) {
	groups := stats.GroupByRegion(merged)

	regions := make([]string, 0, len(groups))
	for region := range groups {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	logging.Info().
		Int("locations", len(merged)).
		Int("regions", len(regions)).
		Msg("starting export")

	result := &Result{Archives: make(map[string][]byte, len(regions))}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, region := range regions {
		region := region
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			archive, err := RenderRegion(region, groups[region], agg)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, err)
				logging.Error().Str("region", region).Err(err).Msg("region export failed")
				return nil
			}
			result.Archives[region] = archive
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logging.Info().
		Int("archives", len(result.Archives)).
		Int("failed", len(result.Errors)).
		Msg("export complete")
	return result, nil
}

// RenderRegion renders a single region's archive. Output is
// bit-reproducible for identical input.
func RenderRegion(region string, records []location.Reconciled, agg stats.Aggregate) ([]byte, error) {
	if len(records) == 0 {
		return nil, errors.NewExportError(region, "", errors.ErrEmptyExport)
	}

	labels := labelsFor(region, agg.DateRange)
	regionStats := agg.ByState[region]

	title := fmt.Sprintf("%s Locations", region)
	if agg.DateRange != "" {
		title = fmt.Sprintf("%s Locations - %s", region, agg.DateRange)
	}

	doc := kmz.NewKML(title)
	doc.Document.Style = &kmz.Style{ID: styleID, IconHref: iconHref}
	doc.Document.Schema = &kmz.Schema{
		Name:   schemaID,
		ID:     schemaID,
		Fields: schemaFields(labels),
	}

	for i := range records {
		rec := &records[i]
		doc.Document.Placemarks = append(doc.Document.Placemarks, kmz.Placemark{
			Name:     rec.Name,
			StyleURL: "#" + styleID,
			SchemaData: kmz.SchemaData{
				SchemaURL: "#" + schemaID,
				Values:    featureFields(rec, regionStats, labels),
			},
			Coordinates: fmt.Sprintf("%s,%s,0",
				trimFloat(rec.Longitude), trimFloat(rec.Latitude)),
		})
	}

	rendered, err := doc.Bytes()
	if err != nil {
		return nil, errors.NewExportError(region, "", err)
	}
	archive, err := kmz.Archive(rendered)
	if err != nil {
		return nil, errors.NewExportError(region, "", err)
	}
	return archive, nil
}

func schemaFields(labels fieldLabels) []kmz.SchemaField {
	names := []string{
		"Name", "Address", "City", "State", "Zip", "County",
		labels.rank, labels.rankedCount, labels.totalVisits, labels.stateStores,
		"LAT", "LONG",
	}
	fields := make([]kmz.SchemaField, len(names))
	for i, n := range names {
		fields[i] = kmz.SchemaField{Name: n, Type: schemaType}
	}
	return fields
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteAll writes each region's archive to dir as <region>.kmz. Write
// failures are collected per region; archives already written stay in
// place.
func WriteAll(dir string, archives map[string][]byte) (map[string]string, []error) {
	paths := make(map[string]string, len(archives))
	var errs []error

	regions := make([]string, 0, len(archives))
	for region := range archives {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	for _, region := range regions {
		path := filepath.Join(dir, region+".kmz")
		if err := kmz.WriteFile(path, archives[region]); err != nil {
			errs = append(errs, errors.NewExportError(region, path, err))
			continue
		}
		paths[region] = path
		logging.Info().Str("region", region).Str("path", path).Msg("wrote region archive")
	}
	return paths, errs
}
