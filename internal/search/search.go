// Package search finds a destination whose route duration approximates a
// caller-specified target, treating the routing backend as a black-box
// oracle. Road-network durations are non-monotonic in straight-line
// distance, so the search is a radius/bearing random walk with adaptive
// radius expansion rather than anything gradient-based.
package search

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/vr00n/st-esb-planner/internal/region"
)

// ErrDegenerateInput marks a caller contract violation: a zero-area bounding
// box or a non-positive attempt budget. Unlike oracle failures, these fail
// loudly at the entry point.
var ErrDegenerateInput = eris.New("search: degenerate input")

// Point is a lon/lat coordinate pair.
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// RouteResult is an immutable record of one successful oracle route.
// Attempts records which search attempt produced it.
type RouteResult struct {
	Coordinates [][]float64 `json:"coordinates"`
	DurationS   float64     `json:"duration_s"`
	DistanceM   float64     `json:"distance_m"`
	Status      string      `json:"status"`
	Attempts    int         `json:"attempts"`
}

// Oracle answers a single origin-to-destination route query. Any failure
// (no route, malformed response, timeout) is an error; the search treats
// every error as a skipped attempt.
type Oracle interface {
	Route(ctx context.Context, origin, dest Point) (*RouteResult, error)
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(ctx context.Context, origin, dest Point) (*RouteResult, error)

// Route calls f.
func (f OracleFunc) Route(ctx context.Context, origin, dest Point) (*RouteResult, error) {
	return f(ctx, origin, dest)
}

// Defaults for Config zero values.
const (
	DefaultTargetS      = 90 * 60
	DefaultTolerance    = 0.1
	DefaultGrowthFactor = 1.4
	DefaultMaxAttempts  = 7
)

// Config parameterizes one search. The zero value of any field selects the
// default above; BaseRadiusDeg additionally defaults by target regime.
type Config struct {
	// TargetS is the desired route duration in seconds.
	TargetS float64

	// BaseRadiusDeg is the initial search radius in degrees. Zero selects
	// a default scaled to the target duration regime.
	BaseRadiusDeg float64

	// Tolerance is the early-stop fraction: a duration within
	// Tolerance*TargetS of the target ends the search.
	Tolerance float64

	// GrowthFactor scales the base radius whenever a returned duration is
	// under half the target. The expansion persists for the rest of the
	// search.
	GrowthFactor float64

	// MaxAttempts bounds the number of oracle calls.
	MaxAttempts int
}

func (c Config) withDefaults() Config {
	if c.TargetS <= 0 {
		c.TargetS = DefaultTargetS
	}
	if c.BaseRadiusDeg <= 0 {
		c.BaseRadiusDeg = defaultBaseRadius(c.TargetS)
	}
	if c.Tolerance <= 0 {
		c.Tolerance = DefaultTolerance
	}
	if c.GrowthFactor <= 1 {
		c.GrowthFactor = DefaultGrowthFactor
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	return c
}

// defaultBaseRadius picks an initial radius for the target duration regime.
// Shorter targets start closer in; 0.18 degrees is roughly 20km at NYC
// latitude, tuned for 90-minute routes.
func defaultBaseRadius(targetS float64) float64 {
	switch {
	case targetS <= 30*60:
		return 0.06
	case targetS <= 60*60:
		return 0.12
	default:
		return 0.18
	}
}

// Search proposes destinations at a random bearing and a growing radius from
// origin, asking the oracle for each, and keeps the result whose duration is
// closest to the target. Per attempt:
//
//   - the candidate radius is base * attempt index, never reduced
//   - the destination is clamped per-axis into bbox (which understates the
//     effective radius near corners; accepted behavior)
//   - an oracle failure skips the attempt without touching search state
//   - a duration within Tolerance*TargetS stops the search early
//   - a duration under half the target multiplies the base radius by
//     GrowthFactor for all subsequent attempts
//
// Returns nil with a nil error when every attempt failed at the oracle.
// Cancellation between attempts returns ctx.Err; the in-flight oracle call
// is bounded by the oracle's own timeout.
func Search(ctx context.Context, cfg Config, origin Point, bbox region.BBox, oracle Oracle, rng *rand.Rand) (*RouteResult, error) {
	cfg = cfg.withDefaults()
	if bbox.Area() <= 0 {
		return nil, eris.Wrapf(ErrDegenerateInput, "bounding box %+v has no area", bbox)
	}
	if cfg.MaxAttempts < 1 {
		return nil, eris.Wrapf(ErrDegenerateInput, "max attempts %d", cfg.MaxAttempts)
	}

	log := zap.L().With(
		zap.String("component", "search"),
		zap.Float64("target_s", cfg.TargetS),
	)

	var best *RouteResult
	base := cfg.BaseRadiusDeg

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		angle := rng.Float64() * 2 * math.Pi
		radius := base * float64(attempt)
		destLon, destLat := bbox.Clamp(
			origin.Lon+math.Cos(angle)*radius,
			origin.Lat+math.Sin(angle)*radius,
		)

		res, err := oracle.Route(ctx, origin, Point{Lon: destLon, Lat: destLat})
		if err != nil {
			log.Debug("oracle attempt failed",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			continue
		}

		res.Attempts = attempt
		if best == nil || math.Abs(res.DurationS-cfg.TargetS) < math.Abs(best.DurationS-cfg.TargetS) {
			best = res
		}
		if math.Abs(res.DurationS-cfg.TargetS) <= cfg.TargetS*cfg.Tolerance {
			break
		}
		if res.DurationS < cfg.TargetS*0.5 {
			base *= cfg.GrowthFactor
		}
	}

	if best == nil {
		log.Debug("search exhausted with no viable route", zap.Int("attempts", cfg.MaxAttempts))
	}
	return best, nil
}
