package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palmerbayless123/kmz-optimizer/pkg/location"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func rec(state string, rank *int, visits *float64) location.Reconciled {
	return location.Reconciled{
		Source: location.SourceCSV,
		Name:   "Store",
		State:  state,
		Rank:   rank,
		Visits: visits,
	}
}

func TestCompute(t *testing.T) {
	merged := []location.Reconciled{
		rec("GA", intPtr(1), floatPtr(10000)),
		rec("GA", intPtr(2), floatPtr(6000)),
		rec("GA", nil, nil),
		rec("FL", intPtr(1), floatPtr(4000)),
		rec("", nil, nil),
	}

	agg := Compute(merged, "Oct 1, 2024 - Sep 30, 2025")

	assert.Equal(t, 5, agg.TotalStores)
	assert.Equal(t, 3, agg.TotalRankedStores)
	assert.Equal(t, 20000.0, agg.TotalVisits)
	assert.Equal(t, "Oct 1, 2024 - Sep 30, 2025", agg.DateRange)
	assert.Equal(t, []string{"FL", "GA", "Unknown"}, agg.States)

	ga := agg.ByState["GA"]
	assert.Equal(t, 3, ga.Stores)
	assert.Equal(t, 2, ga.RankedStores)
	assert.Equal(t, 2, ga.VisitedStores)
	assert.Equal(t, 16000.0, ga.TotalVisits)
	assert.Equal(t, 8000.0, ga.AverageVisits, "average is over stores with data")

	fl := agg.ByState["FL"]
	assert.Equal(t, 1, fl.Stores)
	assert.Equal(t, 4000.0, fl.AverageVisits)

	unknown := agg.ByState["Unknown"]
	assert.Equal(t, 1, unknown.Stores)
	assert.Zero(t, unknown.AverageVisits)
}

func TestComputeEmpty(t *testing.T) {
	agg := Compute(nil, "")
	assert.Zero(t, agg.TotalStores)
	assert.Empty(t, agg.States)
	assert.Empty(t, agg.ByState)
}

func TestGroupByRegion(t *testing.T) {
	merged := []location.Reconciled{
		rec("GA", nil, nil),
		rec("FL", nil, nil),
		rec("GA", nil, nil),
		rec("", nil, nil),
	}

	groups := GroupByRegion(merged)
	require.Len(t, groups, 3)
	assert.Len(t, groups["GA"], 2)
	assert.Len(t, groups["FL"], 1)
	assert.Len(t, groups["Unknown"], 1)
}

func TestDateRangeFromFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{
			name:     "standard export name",
			filename: "Ranking_Index_-_Acme_Coffee_-_Oct_1__2024_-_Sep_30__2025.csv",
			want:     "Oct 1, 2024 - Sep 30, 2025",
		},
		{
			name:     "single digit days",
			filename: "export_Apr_1__2023_-_Jun_2__2023.csv",
			want:     "Apr 1, 2023 - Jun 2, 2023",
		},
		{name: "no window", filename: "rankings.csv", want: ""},
		{name: "empty", filename: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DateRangeFromFilename(tt.filename))
		})
	}
}

func TestInferDateRange(t *testing.T) {
	names := []string{
		"notes.txt",
		"Ranking_Index_-_Acme_-_Oct_1__2024_-_Sep_30__2025.csv",
		"export_Apr_1__2023_-_Jun_2__2023.csv",
	}
	assert.Equal(t, "Oct 1, 2024 - Sep 30, 2025", InferDateRange(names))
	assert.Empty(t, InferDateRange([]string{"a.csv", "b.csv"}))
	assert.Empty(t, InferDateRange(nil))
}
