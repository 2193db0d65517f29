package region

// BBox is a geographic bounding box in lon/lat order.
type BBox struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

// Area returns the box area in square degrees. Zero or negative means the
// box is degenerate.
func (b BBox) Area() float64 {
	return (b.MaxLon - b.MinLon) * (b.MaxLat - b.MinLat)
}

// Clamp forces the point into the box, each axis independently. Near box
// edges this distorts the effective bearing of a projected point; that is
// accepted behavior, not something callers should correct for.
func (b BBox) Clamp(lon, lat float64) (float64, float64) {
	if lon < b.MinLon {
		lon = b.MinLon
	} else if lon > b.MaxLon {
		lon = b.MaxLon
	}
	if lat < b.MinLat {
		lat = b.MinLat
	} else if lat > b.MaxLat {
		lat = b.MaxLat
	}
	return lon, lat
}

// Contains reports whether the point lies within the box, boundary included.
func (b BBox) Contains(lon, lat float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon && lat >= b.MinLat && lat <= b.MaxLat
}
