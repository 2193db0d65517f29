package boundary

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/vr00n/st-esb-planner/internal/region"
)

// LoadShapefile reads boundary polygons from a local shapefile, taking the
// region label from the named attribute field. Falls back to the built-in
// set when the file is unreadable or carries no usable polygons.
func (l *Loader) LoadShapefile(path, labelField string) Result {
	regions, err := l.readShapefile(path, labelField)
	if err != nil || len(regions) == 0 {
		l.log.Warn("shapefile unusable, using fallback",
			zap.String("path", path),
			zap.Error(err),
		)
		return l.fallback()
	}
	return Result{Regions: regions, Source: SourceShapefile}
}

func (l *Loader) readShapefile(path, labelField string) ([]region.Region, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	labelIdx := fieldIndex(reader, labelField)
	if labelIdx < 0 {
		return nil, eris.Errorf("boundary: shapefile field %q not found", labelField)
	}

	var regions []region.Region
	for reader.Next() {
		n, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			continue
		}

		// DBF attribute values can carry NUL padding, same as field names.
		label := strings.TrimSpace(strings.TrimRight(reader.Attribute(labelIdx), "\x00"))
		if label == "" {
			l.log.Warn("skipping shapefile record without label", zap.Int("record", n))
			continue
		}

		g := polygonToMultiPolygon(poly)
		if g == nil {
			l.log.Warn("skipping malformed shapefile polygon",
				zap.Int("record", n),
				zap.String("label", label),
			)
			continue
		}

		regions = append(regions, region.Region{Label: label, Geometry: g})
	}
	return regions, nil
}

// fieldIndex returns the index of a named attribute field, or -1.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon,
// one polygon per part. Malformed parts are dropped.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			continue
		}
		if err := mp.Push(poly); err != nil {
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
