package planner

import (
	"strconv"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/vr00n/st-esb-planner/internal/region"
	"github.com/vr00n/st-esb-planner/internal/site"
)

// SitesFeatureCollection converts sites to a GeoJSON feature collection for
// the presentation layer.
func SitesFeatureCollection(sites []site.Site) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{}
	for i, s := range sites {
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry: geom.NewPointFlat(geom.XY, []float64{s.Lon, s.Lat}),
			Properties: map[string]any{
				"name":              siteName(i),
				"region":            s.Region,
				"existing_capacity": s.ExistingCapacity,
				"needed_capacity":   s.NeededCapacity,
				"gap":               s.Gap,
				"build_speed":       s.BuildSpeed,
			},
		})
	}
	return fc
}

// RoutesFeatureCollection converts planned routes to GeoJSON line features
// with duration and distance diagnostics in the properties.
func RoutesFeatureCollection(routes []PlannedRoute) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{}
	for _, r := range routes {
		flat := make([]float64, 0, len(r.Route.Coordinates)*2)
		for _, c := range r.Route.Coordinates {
			if len(c) < 2 {
				continue
			}
			flat = append(flat, c[0], c[1])
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       r.ID,
			Geometry: geom.NewLineStringFlat(geom.XY, flat),
			Properties: map[string]any{
				"duration_min": r.Route.DurationS / 60,
				"distance_km":  r.Route.DistanceM / 1000,
				"attempts":     r.Route.Attempts,
				"status":       r.Route.Status,
			},
		})
	}
	return fc
}

// RegionsFeatureCollection converts index regions to GeoJSON polygon
// features.
func RegionsFeatureCollection(ix *region.Index) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{}
	if ix == nil {
		return fc
	}
	for _, r := range ix.Regions() {
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   r.Geometry,
			Properties: map[string]any{"label": r.Label},
		})
	}
	return fc
}

func siteName(i int) string {
	return "Depot Site " + strconv.Itoa(i+1)
}
