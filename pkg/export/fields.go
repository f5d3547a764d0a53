package export

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/palmerbayless123/kmz-optimizer/pkg/kmz"
	"github.com/palmerbayless123/kmz-optimizer/pkg/location"
	"github.com/palmerbayless123/kmz-optimizer/pkg/stats"
)

var thousands = message.NewPrinter(language.English)

// administrative suffixes stripped from county names.
var countySuffixes = []string{" COUNTY", " PARISH"}

// NormalizeCounty renders a county name upper-cased with its
// administrative suffix removed.
func NormalizeCounty(county string) string {
	c := strings.ToUpper(strings.TrimSpace(county))
	for _, suffix := range countySuffixes {
		c = strings.TrimSuffix(c, suffix)
	}
	return strings.TrimSpace(c)
}

// formatCount renders an integer with thousands separators.
func formatCount(v int) string {
	return thousands.Sprintf("%d", v)
}

// formatVisits renders a visit total with thousands separators and no
// decimal places. Fractions are truncated, matching historical exports.
func formatVisits(v float64) string {
	return thousands.Sprintf("%d", int64(v))
}

// fieldLabels are the labels of the fixed extended-data field set, in
// render order. The rank and visits labels embed the reporting window;
// the store-count label embeds the region code.
type fieldLabels struct {
	rank        string
	rankedCount string
	totalVisits string
	stateStores string
}

func labelsFor(region, dateRange string) fieldLabels {
	withRange := func(base string) string {
		if dateRange == "" {
			return base
		}
		return fmt.Sprintf("%s (%s)", base, dateRange)
	}
	return fieldLabels{
		rank:        withRange("Placer Rank"),
		rankedCount: "Ranked stores",
		totalVisits: withRange("Total Visits"),
		stateStores: fmt.Sprintf("Total %s Stores", region),
	}
}

// featureFields renders one record's complete field set. Every feature
// carries every field; missing values are rendered as explicit empties.
func featureFields(rec *location.Reconciled, regionStats stats.StateStats, labels fieldLabels) []kmz.SimpleData {
	rank := ""
	if rec.Rank != nil {
		rank = strconv.Itoa(*rec.Rank)
	}
	return []kmz.SimpleData{
		{Name: "Name", Value: rec.Name},
		{Name: "Address", Value: rec.Address},
		{Name: "City", Value: rec.City},
		{Name: "State", Value: rec.State},
		{Name: "Zip", Value: rec.Zip},
		{Name: "County", Value: NormalizeCounty(rec.County)},
		{Name: labels.rank, Value: rank},
		{Name: labels.rankedCount, Value: formatCount(regionStats.RankedStores)},
		{Name: labels.totalVisits, Value: formatVisits(regionStats.TotalVisits)},
		{Name: labels.stateStores, Value: formatCount(regionStats.Stores)},
		{Name: "LAT", Value: strconv.FormatFloat(rec.Latitude, 'f', -1, 64)},
		{Name: "LONG", Value: strconv.FormatFloat(rec.Longitude, 'f', -1, 64)},
	}
}
