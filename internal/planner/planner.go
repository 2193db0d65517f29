// Package planner assembles the planning artifacts the presentation layer
// consumes: constrained depot sites, near-target-duration routes, and a
// status summary. It owns no rendering; everything it returns is plain data.
package planner

import (
	"context"
	"math/rand/v2"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vr00n/st-esb-planner/internal/region"
	"github.com/vr00n/st-esb-planner/internal/search"
	"github.com/vr00n/st-esb-planner/internal/site"
)

// Config parameterizes one planning run.
type Config struct {
	BBox       region.BBox
	Cols, Rows int
	Seed       uint64

	// RouteCount is how many origins get a duration search.
	RouteCount int
	// MaxConcurrent bounds simultaneous searches. Each search owns its own
	// state and rng; only the region index is shared, read-only.
	MaxConcurrent int

	Search search.Config
}

// PlannedRoute is a found route tagged for presentation.
type PlannedRoute struct {
	ID     string             `json:"id"`
	Origin search.Point       `json:"origin"`
	Route  search.RouteResult `json:"route"`
}

// Status summarizes a run, mirroring what a dashboard's debug panel shows.
type Status struct {
	BoundarySource string `json:"boundary_source"`
	SiteCount      int    `json:"site_count"`
	RouteCount     int    `json:"route_count"`
	RouteTarget    int    `json:"route_target"`
}

// Plan is the full output of one run.
type Plan struct {
	Sites  []site.Site    `json:"sites"`
	Routes []PlannedRoute `json:"routes"`
	Status Status         `json:"status"`
}

// Planner runs sampling and route searches against a fixed region index and
// routing oracle.
type Planner struct {
	index          *region.Index
	oracle         search.Oracle
	cfg            Config
	boundarySource string
	log            *zap.Logger
}

// New creates a Planner. boundarySource is reported verbatim in the status
// block so callers can tell a fallback boundary set from the real one.
func New(ix *region.Index, oracle search.Oracle, boundarySource string, cfg Config) *Planner {
	if cfg.Cols == 0 {
		cfg.Cols = 18
	}
	if cfg.Rows == 0 {
		cfg.Rows = 12
	}
	if cfg.RouteCount == 0 {
		cfg.RouteCount = 5
	}
	if cfg.MaxConcurrent == 0 {
		cfg.MaxConcurrent = 2
	}
	return &Planner{
		index:          ix,
		oracle:         oracle,
		cfg:            cfg,
		boundarySource: boundarySource,
		log:            zap.L().With(zap.String("component", "planner")),
	}
}

// Plan samples sites, picks RouteCount origins from a shuffle of the sites,
// and searches each for a route near the target duration. Searches run
// concurrently; a search that finds nothing simply contributes no route.
func (p *Planner) Plan(ctx context.Context) (*Plan, error) {
	rng := rand.New(rand.NewPCG(p.cfg.Seed, p.cfg.Seed))
	sites := site.Sample(p.index, p.cfg.BBox, p.cfg.Cols, p.cfg.Rows, rng)

	origins := pickOrigins(sites, p.cfg.RouteCount, rng)

	routes := make([]*PlannedRoute, len(origins))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.MaxConcurrent)

	for i, origin := range origins {
		g.Go(func() error {
			searchRNG := rand.New(rand.NewPCG(p.cfg.Seed, uint64(i)+1))
			res, err := search.Search(gctx, p.cfg.Search, origin, p.cfg.BBox, p.oracle, searchRNG)
			if err != nil {
				return err
			}
			if res == nil {
				p.log.Debug("no route found for origin",
					zap.Float64("lon", origin.Lon),
					zap.Float64("lat", origin.Lat),
				)
				return nil
			}
			routes[i] = &PlannedRoute{
				ID:     uuid.NewString(),
				Origin: origin,
				Route:  *res,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	plan := &Plan{Sites: sites}
	for _, r := range routes {
		if r != nil {
			plan.Routes = append(plan.Routes, *r)
		}
	}
	plan.Status = Status{
		BoundarySource: p.boundarySource,
		SiteCount:      len(sites),
		RouteCount:     len(plan.Routes),
		RouteTarget:    p.cfg.RouteCount,
	}

	p.log.Info("plan complete",
		zap.Int("sites", plan.Status.SiteCount),
		zap.Int("routes", plan.Status.RouteCount),
		zap.Int("route_target", plan.Status.RouteTarget),
	)
	return plan, nil
}

// pickOrigins shuffles the sites and takes the first n as search origins.
func pickOrigins(sites []site.Site, n int, rng *rand.Rand) []search.Point {
	idx := rng.Perm(len(sites))
	if n > len(idx) {
		n = len(idx)
	}
	origins := make([]search.Point, 0, n)
	for _, i := range idx[:n] {
		origins = append(origins, search.Point{Lon: sites[i].Lon, Lat: sites[i].Lat})
	}
	return origins
}
