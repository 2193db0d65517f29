package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/vr00n/st-esb-planner/internal/boundary"
	"github.com/vr00n/st-esb-planner/internal/config"
	"github.com/vr00n/st-esb-planner/internal/planner"
	"github.com/vr00n/st-esb-planner/internal/region"
	"github.com/vr00n/st-esb-planner/internal/search"
	"github.com/vr00n/st-esb-planner/pkg/osrm"
)

// loadRegionIndex loads boundaries per config precedence (shapefile, file,
// remote with fallback) and builds the region index.
func loadRegionIndex(ctx context.Context, cfg *config.Config) (*region.Index, string, error) {
	var opts []boundary.Option
	if cfg.Boundary.URL != "" {
		opts = append(opts, boundary.WithURL(cfg.Boundary.URL))
	}
	loader := boundary.NewLoader(opts...)

	var res boundary.Result
	switch {
	case cfg.Boundary.Shapefile != "":
		res = loader.LoadShapefile(cfg.Boundary.Shapefile, cfg.Boundary.LabelField)
	case cfg.Boundary.File != "":
		res = loader.LoadFile(cfg.Boundary.File)
	default:
		res = loader.Load(ctx)
	}

	ix, err := region.NewIndex(res.Regions)
	if err != nil {
		return nil, "", eris.Wrap(err, "build region index")
	}
	return ix, res.Source, nil
}

// newOracle wires the OSRM client as the search oracle.
func newOracle(cfg *config.Config) search.Oracle {
	client := osrm.NewClient(
		osrm.WithBaseURL(cfg.OSRM.BaseURL),
		osrm.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.OSRM.TimeoutSecs) * time.Second}),
		osrm.WithRateLimit(cfg.OSRM.RateLimitRPS),
	)
	return search.OracleFunc(func(ctx context.Context, origin, dest search.Point) (*search.RouteResult, error) {
		r, err := client.Route(ctx, origin.Lon, origin.Lat, dest.Lon, dest.Lat)
		if err != nil {
			return nil, err
		}
		return &search.RouteResult{
			Coordinates: r.Coordinates,
			DurationS:   r.DurationS,
			DistanceM:   r.DistanceM,
			Status:      "ok",
		}, nil
	})
}

func plannerConfig(cfg *config.Config) planner.Config {
	return planner.Config{
		BBox:          bboxFromConfig(cfg),
		Cols:          cfg.Grid.Cols,
		Rows:          cfg.Grid.Rows,
		Seed:          cfg.Grid.Seed,
		RouteCount:    cfg.Routes.Count,
		MaxConcurrent: cfg.Routes.MaxConcurrent,
		Search: search.Config{
			TargetS:       cfg.Routes.TargetMinutes * 60,
			BaseRadiusDeg: cfg.Routes.BaseRadiusDeg,
			Tolerance:     cfg.Routes.Tolerance,
			GrowthFactor:  cfg.Routes.GrowthFactor,
			MaxAttempts:   cfg.Routes.MaxAttempts,
		},
	}
}

func bboxFromConfig(cfg *config.Config) region.BBox {
	return region.BBox{
		MinLon: cfg.BBox.MinLon,
		MinLat: cfg.BBox.MinLat,
		MaxLon: cfg.BBox.MaxLon,
		MaxLat: cfg.BBox.MaxLat,
	}
}
