// Package osrm provides a minimal client for the OSRM route service. It is
// the routing oracle for duration searches: one origin-destination query in,
// duration, distance, and path geometry out. Transport and semantic failures
// come back as errors, never panics.
package osrm

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public OSRM demo server. It is rate-limited; run a
// private backend for anything beyond demos.
const DefaultBaseURL = "https://router.project-osrm.org/route/v1/driving"

// Client issues single route queries against an OSRM backend.
type Client interface {
	// Route returns the best route from origin to destination, or an error
	// when the backend fails or finds no route.
	Route(ctx context.Context, originLon, originLat, destLon, destLat float64) (*Route, error)
}

// Route holds the routing output for one origin-destination pair.
type Route struct {
	// Coordinates is the ordered path geometry as [lon, lat] pairs.
	Coordinates [][]float64
	// DurationS is the travel time in seconds, never negative.
	DurationS float64
	// DistanceM is the route length in meters, never negative.
	DistanceM float64
}

// Option configures the client.
type Option func(*client)

// WithBaseURL overrides the OSRM endpoint.
func WithBaseURL(base string) Option {
	return func(c *client) {
		c.baseURL = base
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second courtesy limit for the shared
// backend. Tests raise it to avoid sleeping.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *client) {
		c.httpClient.Timeout = d
	}
}

type client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates an OSRM Client with the given options. The default is
// the public demo server, a 12 second timeout, and a polite 5 req/s limit.
func NewClient(opts ...Option) Client {
	c := &client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 12 * time.Second},
		limiter:    rate.NewLimiter(5, 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
