// Package amenity attributes externally supplied point features (charging
// stations, fueling sites) to a containing region. External feeds are messy:
// the decode path tolerates missing or malformed geometry and never mutates
// feature properties.
package amenity

import "encoding/json"

// Feature is a tolerant GeoJSON feature. Coordinates stay raw until
// validated so one malformed record cannot fail a whole collection.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   *Geometry      `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry holds the raw geometry of a Feature.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Collection is a tolerant GeoJSON feature collection.
type Collection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// representativePoint extracts a single lon/lat for the feature's geometry.
// Point geometries use the point itself; multi-vertex geometries use the
// vertex centroid, a documented approximation that can misclassify concave
// shapes. Returns false when the geometry is missing, has no coordinate
// array, has fewer than two components, or has non-numeric components.
func (f Feature) representativePoint() (lon, lat float64, ok bool) {
	if f.Geometry == nil || len(f.Geometry.Coordinates) == 0 {
		return 0, 0, false
	}

	var raw any
	if err := json.Unmarshal(f.Geometry.Coordinates, &raw); err != nil {
		return 0, 0, false
	}

	var sumLon, sumLat float64
	var n int
	collectPositions(raw, func(x, y float64) {
		sumLon += x
		sumLat += y
		n++
	})
	if n == 0 {
		return 0, 0, false
	}
	return sumLon / float64(n), sumLat / float64(n), true
}

// collectPositions walks an arbitrarily nested coordinate array and emits
// every [lon, lat, ...] position whose first two components are numeric.
func collectPositions(raw any, emit func(x, y float64)) {
	arr, ok := raw.([]any)
	if !ok || len(arr) == 0 {
		return
	}

	// A position is a flat array whose first element is a number.
	if x, isNum := arr[0].(float64); isNum {
		if len(arr) < 2 {
			return
		}
		y, isNum := arr[1].(float64)
		if !isNum {
			return
		}
		emit(x, y)
		return
	}

	for _, child := range arr {
		collectPositions(child, emit)
	}
}
