package site

import (
	"math/rand/v2"

	"github.com/vr00n/st-esb-planner/internal/region"
)

// LabelUnknown tags a site that sits inside the boundary union but could not
// be attributed to any single region. This is an indexing edge case, distinct
// from a point being outside the city entirely.
const LabelUnknown = "Unknown"

// jitterFraction is the maximum lattice perturbation per axis, as a fraction
// of the cell pitch.
const jitterFraction = 0.2

// Capacity sampling bounds.
const (
	existingMin = 50
	existingMax = 500
	neededMax   = 1000
)

// Site is a synthetic depot candidate. Immutable once returned.
type Site struct {
	Lon              float64 `json:"lon"`
	Lat              float64 `json:"lat"`
	Region           string  `json:"region"`
	ExistingCapacity int     `json:"existing_capacity"`
	NeededCapacity   int     `json:"needed_capacity"`
	Gap              int     `json:"gap"`
	BuildSpeed       string  `json:"build_speed"`
}

// Sample lays a cols x rows lattice over bbox, jitters each cell center by up
// to 20% of the pitch per axis, and keeps only points inside the index union.
// Fewer than cols*rows sites is expected; discarded points are not replaced.
// Output is fully reproducible for a fixed rng seed, bbox, grid shape, and
// region set.
func Sample(ix *region.Index, bbox region.BBox, cols, rows int, rng *rand.Rand) []Site {
	if cols < 2 || rows < 2 {
		return nil
	}

	dx := (bbox.MaxLon - bbox.MinLon) / float64(cols-1)
	dy := (bbox.MaxLat - bbox.MinLat) / float64(rows-1)

	sites := make([]Site, 0, cols*rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			jx := randBetween(rng, -dx*jitterFraction, dx*jitterFraction)
			jy := randBetween(rng, -dy*jitterFraction, dy*jitterFraction)
			lon := bbox.MinLon + float64(c)*dx + jx
			lat := bbox.MinLat + float64(r)*dy + jy

			if !ix.Contains(lon, lat) {
				continue
			}

			label, ok := ix.Label(lon, lat)
			if !ok {
				label = LabelUnknown
			}

			existing := existingMin + rng.IntN(existingMax-existingMin+1)
			needed := existing + rng.IntN(neededMax-existing+1)
			gap := needed - existing

			sites = append(sites, Site{
				Lon:              lon,
				Lat:              lat,
				Region:           label,
				ExistingCapacity: existing,
				NeededCapacity:   needed,
				Gap:              gap,
				BuildSpeed:       ClassifySpeed(gap),
			})
		}
	}
	return sites
}

func randBetween(rng *rand.Rand, a, b float64) float64 {
	return rng.Float64()*(b-a) + a
}
