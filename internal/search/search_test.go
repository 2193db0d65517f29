package search

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vr00n/st-esb-planner/internal/region"
)

var testBBox = region.BBox{MinLon: 0, MinLat: 0, MaxLon: 10, MaxLat: 10}

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(42, 42))
}

// distanceOracle returns a duration proportional to the straight-line
// distance from origin to destination, in degrees.
func distanceOracle(secondsPerDegree float64) Oracle {
	return OracleFunc(func(_ context.Context, origin, dest Point) (*RouteResult, error) {
		d := math.Hypot(dest.Lon-origin.Lon, dest.Lat-origin.Lat)
		return &RouteResult{
			Coordinates: [][]float64{{origin.Lon, origin.Lat}, {dest.Lon, dest.Lat}},
			DurationS:   d * secondsPerDegree,
			DistanceM:   d * 111_000,
			Status:      "ok",
		}, nil
	})
}

func TestSearch_AllOracleFailures(t *testing.T) {
	calls := 0
	oracle := OracleFunc(func(context.Context, Point, Point) (*RouteResult, error) {
		calls++
		return nil, eris.New("no route")
	})

	res, err := Search(context.Background(), Config{MaxAttempts: 7}, Point{Lon: 5, Lat: 5}, testBBox, oracle, testRNG())
	require.NoError(t, err, "oracle failures are skipped attempts, never search errors")
	assert.Nil(t, res)
	assert.Equal(t, 7, calls, "every attempt is consumed")
}

func TestSearch_ExactTargetStopsImmediately(t *testing.T) {
	calls := 0
	oracle := OracleFunc(func(_ context.Context, origin, dest Point) (*RouteResult, error) {
		calls++
		return &RouteResult{DurationS: 2700, Status: "ok"}, nil
	})

	cfg := Config{TargetS: 2700, MaxAttempts: 7}
	res, err := Search(context.Background(), cfg, Point{Lon: 5, Lat: 5}, testBBox, oracle, testRNG())
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, 1, calls)
}

func TestSearch_ConvergesWithinTolerance(t *testing.T) {
	// 100 s/degree: a 300s target needs a destination 3 degrees out, well
	// inside the box from the center. With a generous attempt budget the
	// expanding radius walk must land within 10%.
	cfg := Config{
		TargetS:       300,
		BaseRadiusDeg: 0.5,
		MaxAttempts:   200,
	}

	res, err := Search(context.Background(), cfg, Point{Lon: 5, Lat: 5}, testBBox, distanceOracle(100), testRNG())
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.InDelta(t, cfg.TargetS, res.DurationS, cfg.TargetS*0.1)
	assert.LessOrEqual(t, res.Attempts, cfg.MaxAttempts)
}

func TestSearch_TargetBeyondBoxKeepsBestEffort(t *testing.T) {
	// Target 2700s at 100 s/degree needs 27 degrees of separation; the box
	// caps separation near 7. The search still reports its best attempt
	// rather than the last clamped one.
	cfg := Config{TargetS: 2700, MaxAttempts: 7}

	res, err := Search(context.Background(), cfg, Point{Lon: 5, Lat: 5}, testBBox, distanceOracle(100), testRNG())
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.LessOrEqual(t, res.Attempts, 7)
	assert.Less(t, res.DurationS, cfg.TargetS, "box caps achievable duration")
}

func TestSearch_BestSoFarIsClosest(t *testing.T) {
	// Scripted durations: the second attempt is closest to the target even
	// though later attempts keep arriving.
	durations := []float64{1000, 1900, 400, 3500}
	call := 0
	oracle := OracleFunc(func(context.Context, Point, Point) (*RouteResult, error) {
		d := durations[call]
		call++
		return &RouteResult{DurationS: d, Status: "ok"}, nil
	})

	cfg := Config{TargetS: 2000, MaxAttempts: 4, Tolerance: 0.01}
	res, err := Search(context.Background(), cfg, Point{Lon: 5, Lat: 5}, testBBox, oracle, testRNG())
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 1900.0, res.DurationS)
	assert.Equal(t, 2, res.Attempts)
}

func TestSearch_SkipsFailuresWithoutLosingBest(t *testing.T) {
	call := 0
	oracle := OracleFunc(func(context.Context, Point, Point) (*RouteResult, error) {
		call++
		if call%2 == 0 {
			return nil, eris.New("timeout")
		}
		return &RouteResult{DurationS: 1500, Status: "ok"}, nil
	})

	cfg := Config{TargetS: 1500, MaxAttempts: 5}
	res, err := Search(context.Background(), cfg, Point{Lon: 5, Lat: 5}, testBBox, oracle, testRNG())
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 1500.0, res.DurationS)
}

func TestSearch_DegenerateInput(t *testing.T) {
	oracle := distanceOracle(100)

	_, err := Search(context.Background(), Config{}, Point{}, region.BBox{MinLon: 1, MinLat: 1, MaxLon: 1, MaxLat: 5}, oracle, testRNG())
	assert.ErrorIs(t, err, ErrDegenerateInput)

	_, err = Search(context.Background(), Config{MaxAttempts: -1}, Point{Lon: 5, Lat: 5}, testBBox, oracle, testRNG())
	assert.ErrorIs(t, err, ErrDegenerateInput)
}

func TestSearch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	oracle := OracleFunc(func(context.Context, Point, Point) (*RouteResult, error) {
		calls++
		return &RouteResult{DurationS: 1, Status: "ok"}, nil
	})

	res, err := Search(ctx, Config{MaxAttempts: 7}, Point{Lon: 5, Lat: 5}, testBBox, oracle, testRNG())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
	assert.Zero(t, calls, "cancellation is honored between attempts")
}

func TestSearch_DestinationsStayInBox(t *testing.T) {
	oracle := OracleFunc(func(_ context.Context, _ Point, dest Point) (*RouteResult, error) {
		assert.True(t, testBBox.Contains(dest.Lon, dest.Lat), "destination (%f, %f) escaped the box", dest.Lon, dest.Lat)
		return nil, eris.New("force all attempts")
	})

	_, err := Search(context.Background(), Config{TargetS: 5400, MaxAttempts: 20}, Point{Lon: 9.9, Lat: 0.1}, testBBox, oracle, testRNG())
	require.NoError(t, err)
}
