package merger

import (
	"github.com/palmerbayless123/kmz-optimizer/pkg/geo"
	"github.com/palmerbayless123/kmz-optimizer/pkg/location"
	"github.com/palmerbayless123/kmz-optimizer/pkg/logging"
)

// deduplicate drops records that sit within the threshold of an earlier,
// higher-priority record in the same city and state. The input is
// already ordered by source priority, so the first record seen at a spot
// is the one kept. Records with invalid coordinates are never treated as
// duplicates.
func deduplicate(merged []location.Reconciled, threshold float64) ([]location.Reconciled, int) {
	kept := make([]location.Reconciled, 0, len(merged))
	byLocale := map[string][]int{}
	dropped := 0

	for _, rec := range merged {
		key := rec.LocaleKey()
		duplicate := false

		if key != "" && !rec.InvalidCoordinate {
			for _, i := range byLocale[key] {
				other := kept[i]
				if other.InvalidCoordinate {
					continue
				}
				d := geo.Distance(rec.Latitude, rec.Longitude, other.Latitude, other.Longitude)
				if d <= threshold {
					duplicate = true
					dropped++
					logging.Debug().
						Str("dropped", rec.Name).
						Str("kept", other.Name).
						Float64("distance_meters", d).
						Msg("duplicate location dropped")
					break
				}
			}
		}

		if !duplicate {
			if key != "" {
				byLocale[key] = append(byLocale[key], len(kept))
			}
			kept = append(kept, rec)
		}
	}
	return kept, dropped
}
