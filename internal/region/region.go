// Package region provides an in-memory spatial membership index over labeled
// administrative boundaries (boroughs, NTAs). The index answers two questions:
// is a point inside the city at all (union membership), and which named region
// contains it.
package region

import (
	"sync"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"
)

// ErrNoValidRegions is returned by NewIndex when every candidate polygon was
// rejected at ingestion. Callers must treat this as "no index available" and
// degrade, not crash.
var ErrNoValidRegions = eris.New("region: no valid polygons")

// Region is an immutable labeled boundary. The geometry is either a Polygon
// or a MultiPolygon in lon/lat (EPSG:4326) order.
type Region struct {
	Label    string
	Geometry geom.T
}

// Index owns a set of Regions and a lazily derived union of their geometry.
// Once built it is immutable and safe for concurrent readers.
type Index struct {
	regions []Region

	unionOnce sync.Once
	union     *geom.MultiPolygon
}

// NewIndex builds an Index from candidate regions. Invalid geometries are
// logged and excluded rather than failing the build; the build fails only
// when nothing valid remains.
func NewIndex(candidates []Region) (*Index, error) {
	log := zap.L().With(zap.String("component", "region.index"))

	var kept []Region
	for _, c := range candidates {
		if err := validateGeometry(c.Geometry); err != nil {
			log.Warn("rejecting invalid region geometry",
				zap.String("label", c.Label),
				zap.Error(err),
			)
			continue
		}
		kept = append(kept, c)
	}

	if len(kept) == 0 {
		return nil, ErrNoValidRegions
	}

	return &Index{regions: kept}, nil
}

// Regions returns the member regions in ingestion order.
func (ix *Index) Regions() []Region {
	return ix.regions
}

// Len returns the number of member regions.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.regions)
}

// Contains reports whether the point lies inside the union of all member
// polygons. The union is derived once on first use.
func (ix *Index) Contains(lon, lat float64) bool {
	if ix == nil || len(ix.regions) == 0 {
		return false
	}
	ix.unionOnce.Do(ix.buildUnion)
	return multiPolygonContains(ix.union, lon, lat)
}

// Label returns the label of the first member region (in ingestion order)
// whose polygon contains the point. Overlapping regions resolve to whichever
// was ingested first. The second return is false when no single region
// matches, which can happen near shared edges even when Contains reported
// true.
func (ix *Index) Label(lon, lat float64) (string, bool) {
	if ix == nil {
		return "", false
	}
	for _, r := range ix.regions {
		if geometryContains(r.Geometry, lon, lat) {
			return r.Label, true
		}
	}
	return "", false
}

// buildUnion aggregates all member polygons into a single MultiPolygon used
// for fast union-membership checks.
func (ix *Index) buildUnion() {
	mp := geom.NewMultiPolygon(geom.XY)
	for _, r := range ix.regions {
		switch g := r.Geometry.(type) {
		case *geom.Polygon:
			_ = mp.Push(g)
		case *geom.MultiPolygon:
			for i := 0; i < g.NumPolygons(); i++ {
				_ = mp.Push(g.Polygon(i))
			}
		}
	}
	ix.union = mp
}

// validateGeometry checks that a candidate geometry is a usable simple or
// multi polygon: at least one ring, outer ring with at least four vertices.
func validateGeometry(g geom.T) error {
	switch t := g.(type) {
	case *geom.Polygon:
		return validatePolygon(t)
	case *geom.MultiPolygon:
		if t.NumPolygons() == 0 {
			return eris.New("region: empty multipolygon")
		}
		for i := 0; i < t.NumPolygons(); i++ {
			if err := validatePolygon(t.Polygon(i)); err != nil {
				return err
			}
		}
		return nil
	case nil:
		return eris.New("region: nil geometry")
	default:
		return eris.Errorf("region: unsupported geometry type %T", g)
	}
}

func validatePolygon(p *geom.Polygon) error {
	if p == nil || p.NumLinearRings() == 0 {
		return eris.New("region: polygon has no rings")
	}
	outer := p.LinearRing(0)
	if outer.NumCoords() < 4 {
		return eris.Errorf("region: degenerate outer ring (%d vertices)", outer.NumCoords())
	}
	return nil
}

// geometryContains tests point membership for a Polygon or MultiPolygon.
func geometryContains(g geom.T, lon, lat float64) bool {
	switch t := g.(type) {
	case *geom.Polygon:
		return polygonContains(t, lon, lat)
	case *geom.MultiPolygon:
		return multiPolygonContains(t, lon, lat)
	default:
		return false
	}
}

func multiPolygonContains(mp *geom.MultiPolygon, lon, lat float64) bool {
	if mp == nil {
		return false
	}
	for i := 0; i < mp.NumPolygons(); i++ {
		if polygonContains(mp.Polygon(i), lon, lat) {
			return true
		}
	}
	return false
}

// polygonContains is true when the point is inside the outer ring and outside
// every hole. Points on a ring boundary count as inside.
func polygonContains(p *geom.Polygon, lon, lat float64) bool {
	if p == nil || p.NumLinearRings() == 0 {
		return false
	}
	pt := geom.Coord{lon, lat}
	if !xy.IsPointInRing(p.Layout(), pt, p.LinearRing(0).FlatCoords()) {
		return false
	}
	for i := 1; i < p.NumLinearRings(); i++ {
		if xy.IsPointInRing(p.Layout(), pt, p.LinearRing(i).FlatCoords()) {
			return false
		}
	}
	return true
}
