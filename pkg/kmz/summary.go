package kmz

import "github.com/palmerbayless123/kmz-optimizer/pkg/location"

// Summary describes the contents of a parsed KMZ archive.
type Summary struct {
	Total              int            `json:"total"`
	Proposed           int            `json:"proposed"`
	Existing           int            `json:"existing"`
	InvalidCoordinates int            `json:"invalid_coordinates"`
	ByState            map[string]int `json:"by_state"`
}

// Summarize tallies a placemark set for inspection output.
func Summarize(placemarks []location.Placemark) Summary {
	s := Summary{ByState: map[string]int{}}
	for _, pm := range placemarks {
		s.Total++
		if pm.Proposed {
			s.Proposed++
		} else {
			s.Existing++
		}
		if pm.InvalidCoordinate {
			s.InvalidCoordinates++
		}
		state := pm.State
		if state == "" {
			state = "Unknown"
		}
		s.ByState[state]++
	}
	return s
}
