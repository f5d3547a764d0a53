package geo_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palmerbayless123/kmz-optimizer/pkg/geo"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tolerance              float64
	}{
		{
			name: "identical points",
			lat1: 33.9389, lon1: -83.4535,
			lat2: 33.9389, lon2: -83.4535,
			want: 0, tolerance: 0.001,
		},
		{
			name: "adjacent retail sites in Athens GA",
			lat1: 33.9390, lon1: -83.4536,
			lat2: 33.9389, lon2: -83.4535,
			want: 14.5, tolerance: 2,
		},
		{
			name: "Athens to Atlanta",
			lat1: 33.9389, lon1: -83.4535,
			lat2: 33.7490, lon2: -84.3880,
			want: 88500, tolerance: 2000,
		},
		{
			name: "across the equator",
			lat1: 1, lon1: 0,
			lat2: -1, lon2: 0,
			want: 222390, tolerance: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := geo.Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.want, got, tt.tolerance)
		})
	}
}

func TestDistanceSymmetry(t *testing.T) {
	pairs := [][4]float64{
		{33.9389, -83.4535, 33.7490, -84.3880},
		{43.020958, -88.106323, 34.083, -83.9887},
		{-12.5, 130.8, 51.5, -0.12},
	}
	for _, p := range pairs {
		forward := geo.Distance(p[0], p[1], p[2], p[3])
		backward := geo.Distance(p[2], p[3], p[0], p[1])
		assert.InDelta(t, forward, backward, 1e-9)
	}
}

func TestValidCoordinate(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     bool
	}{
		{"normal US point", 33.9389, -83.4535, true},
		{"zero pair rejected", 0, 0, false},
		{"zero latitude alone ok", 0, -83.45, true},
		{"latitude over range", 90.01, 0, false},
		{"latitude under range", -90.01, 0, false},
		{"longitude over range", 45, 180.5, false},
		{"longitude under range", 45, -180.5, false},
		{"boundary values", 90, 180, true},
		{"NaN latitude", math.NaN(), 10, false},
		{"NaN longitude", 10, math.NaN(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, geo.ValidCoordinate(tt.lat, tt.lon))
		})
	}
}
