package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palmerbayless123/kmz-optimizer/pkg/kmz"
	"github.com/palmerbayless123/kmz-optimizer/pkg/location"
	"github.com/palmerbayless123/kmz-optimizer/pkg/logging"
	"github.com/palmerbayless123/kmz-optimizer/pkg/matcher"
	"github.com/palmerbayless123/kmz-optimizer/pkg/merger"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func sampleInput() Input {
	return Input{
		Authoritative: []location.CSVLocation{
			{
				PropertyName: "Athens Market",
				City:         "Athens",
				StateCode:    "GA",
				Latitude:     33.9390,
				Longitude:    -83.4536,
				Rank:         intPtr(1),
				Visits:       floatPtr(50000),
			},
			{
				PropertyName: "Augusta Market",
				City:         "Augusta",
				StateCode:    "GA",
				Latitude:     33.5125,
				Longitude:    -82.0485,
				Rank:         intPtr(2),
				Visits:       floatPtr(45000),
			},
		},
		Existing: []location.Placemark{
			{Name: "Buford Market", City: "Buford", State: "GA", Latitude: 34.0830, Longitude: -84.0040},
		},
		Proposed: []location.Placemark{
			{Name: "Athens Market (Proposed)", City: "Athens", State: "GA", Latitude: 33.9389, Longitude: -83.4535, Proposed: true},
			{Name: "Tampa Market (Coming Soon)", City: "Tampa", State: "FL", Latitude: 27.9506, Longitude: -82.4572, Proposed: true},
		},
		SourceFilenames: []string{"Ranking_Index_-_Markets_-_Oct_1__2024_-_Sep_30__2025.csv"},
	}
}

func TestRunPipeline(t *testing.T) {
	logging.DisableLoggingForTest(t)

	result, err := Run(context.Background(), sampleInput())
	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	assert.NotEmpty(t, result.Metadata.RunID)

	counts := result.Metadata.Counts
	assert.Equal(t, 2, counts.Authoritative)
	assert.Equal(t, 1, counts.LegacyExisting)
	assert.Equal(t, 2, counts.LegacyProposed)
	assert.Equal(t, 1, counts.Matches, "the Athens proposed pin sits ~14m from the Athens record")
	assert.Equal(t, 4, counts.Merged, "2 authoritative + 1 existing + 1 surviving proposed")
	assert.Equal(t, 2, counts.Regions)

	assert.Equal(t, "Oct 1, 2024 - Sep 30, 2025", result.Aggregate.DateRange)
	assert.Equal(t, 2, result.Aggregate.TotalRankedStores)

	require.Contains(t, result.Archives, "GA")
	require.Contains(t, result.Archives, "FL")

	placemarks, err := kmz.ReadArchive("GA.kmz", result.Archives["GA"])
	require.NoError(t, err)
	assert.Len(t, placemarks, 3)

	assert.Contains(t, result.Summary(), "4 locations")
	assert.Contains(t, result.Report(), "Oct 1, 2024 - Sep 30, 2025")
}

func TestRunPipelineMatchDetail(t *testing.T) {
	logging.DisableLoggingForTest(t)

	result, err := Run(context.Background(), sampleInput())
	require.NoError(t, err)

	require.Len(t, result.MergeStats.MatchDetails, 1)
	detail := result.MergeStats.MatchDetails[0]
	assert.Equal(t, "Athens Market", detail.AuthoritativeName)
	assert.Equal(t, "Athens Market (Proposed)", detail.ProposedName)
	assert.Equal(t, matcher.ConfidenceExact, detail.Confidence)
	assert.InDelta(t, 14.0, detail.DistanceMeters, 2.0)

	for _, rec := range result.Merged {
		if rec.Name == "Athens Market" {
			require.NotNil(t, rec.Replaced)
			assert.Equal(t, "Athens Market (Proposed)", rec.Replaced.Name)
		}
	}
}

func TestRunPipelineCountyEnrichment(t *testing.T) {
	logging.DisableLoggingForTest(t)

	counties := StaticCountyResolver{
		CountyKey(33.9390, -83.4536): "Clarke County",
		CountyKey(33.5125, -82.0485): "Richmond County",
	}

	result, err := Run(context.Background(), sampleInput(), WithCountyResolver(counties))
	require.NoError(t, err)

	byName := map[string]string{}
	for _, rec := range result.Merged {
		byName[rec.Name] = rec.County
	}
	assert.Equal(t, "Clarke County", byName["Athens Market"])
	assert.Equal(t, "Richmond County", byName["Augusta Market"])
	assert.Empty(t, byName["Buford Market"], "unresolvable records keep an empty county")
}

func TestRunPipelineInvalidCoordinateWarning(t *testing.T) {
	logging.DisableLoggingForTest(t)

	input := sampleInput()
	input.Authoritative = append(input.Authoritative, location.CSVLocation{
		PropertyName:      "Null Island Market",
		City:              "Athens",
		StateCode:         "GA",
		InvalidCoordinate: true,
	})

	result, err := Run(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, result.Warnings, 2)
	assert.Contains(t, result.Warnings[0], "invalid coordinates")
	assert.Contains(t, result.Warnings[1], "Null Island Market")
	assert.Contains(t, result.Warnings[1], "(0,0)")

	found := false
	for _, rec := range result.Merged {
		if rec.Name == "Null Island Market" {
			found = true
			assert.True(t, rec.InvalidCoordinate)
		}
	}
	assert.True(t, found, "flagged records stay in the dataset")
}

func TestRunPipelineOptionsForwarding(t *testing.T) {
	logging.DisableLoggingForTest(t)

	result, err := Run(context.Background(), sampleInput(),
		WithMatchOptions(matcher.WithThresholdMeters(400)),
		WithMergeOptions(merger.WithoutDeduplication()),
		WithDateRange("Apr 1, 2023 - Jun 2, 2023"),
	)
	require.NoError(t, err)
	assert.Equal(t, "Apr 1, 2023 - Jun 2, 2023", result.Aggregate.DateRange,
		"explicit window overrides filename inference")
}

func TestRunPipelineInvalidOption(t *testing.T) {
	logging.DisableLoggingForTest(t)

	result, err := Run(context.Background(), sampleInput(),
		WithMatchOptions(matcher.WithThresholdMeters(-1)))
	require.Error(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsSuccess())
	assert.Contains(t, result.Summary(), "failed")
}
