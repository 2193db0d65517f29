package osrm

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) Client {
	return NewClient(
		WithBaseURL(baseURL),
		WithRateLimit(10_000), // no politeness pauses in tests
	)
}

func TestRoute_Success(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, "full", r.URL.Query().Get("overview"))
		assert.Equal(t, "geojson", r.URL.Query().Get("geometries"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"code": "Ok",
			"routes": [{
				"duration": 5212.6,
				"distance": 48213.2,
				"geometry": {"coordinates": [[-73.95, 40.72], [-73.90, 40.75], [-73.85, 40.80]]}
			}]
		}`)
	}))
	defer srv.Close()

	route, err := newTestClient(srv.URL).Route(context.Background(), -73.95, 40.72, -73.85, 40.80)
	require.NoError(t, err)
	assert.InDelta(t, 5212.6, route.DurationS, 1e-9)
	assert.InDelta(t, 48213.2, route.DistanceM, 1e-9)
	assert.Len(t, route.Coordinates, 3)
	assert.Equal(t, []float64{-73.95, 40.72}, route.Coordinates[0])
	assert.Contains(t, gotPath, ";")
}

func TestRoute_FullPrecisionCoordinates(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"code": "Ok", "routes": [{"duration": 1, "distance": 1, "geometry": {"coordinates": [[0, 0]]}}]}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Route(context.Background(),
		-74.255591234, 40.496129876, -73.700010009, 40.91553)
	require.NoError(t, err)
	// Sub-micro-degree digits must survive into the request; rounding them
	// would move the queried position.
	assert.Contains(t, gotPath, "-74.255591234,40.496129876")
	assert.Contains(t, gotPath, "-73.700010009,40.91553")
}

func TestRoute_Non200Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	route, err := newTestClient(srv.URL).Route(context.Background(), 0, 0, 1, 1)
	assert.Error(t, err)
	assert.Nil(t, route)
}

func TestRoute_BackendCodeNotOk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"code": "NoRoute", "routes": []}`)
	}))
	defer srv.Close()

	route, err := newTestClient(srv.URL).Route(context.Background(), 0, 0, 1, 1)
	assert.Error(t, err)
	assert.Nil(t, route)
}

func TestRoute_EmptyRoutes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"code": "Ok", "routes": []}`)
	}))
	defer srv.Close()

	route, err := newTestClient(srv.URL).Route(context.Background(), 0, 0, 1, 1)
	assert.Error(t, err)
	assert.Nil(t, route)
}

func TestRoute_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"code": "Ok", "routes"`)
	}))
	defer srv.Close()

	route, err := newTestClient(srv.URL).Route(context.Background(), 0, 0, 1, 1)
	assert.Error(t, err)
	assert.Nil(t, route)
}

func TestRoute_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	route, err := newTestClient(srv.URL).Route(context.Background(), 0, 0, 1, 1)
	assert.Error(t, err)
	assert.Nil(t, route)
}

func TestRoute_NegativeValuesClamped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"code": "Ok", "routes": [{"duration": -5, "distance": -9, "geometry": {"coordinates": []}}]}`)
	}))
	defer srv.Close()

	route, err := newTestClient(srv.URL).Route(context.Background(), 0, 0, 1, 1)
	require.NoError(t, err)
	assert.Zero(t, route.DurationS)
	assert.Zero(t, route.DistanceM)
}

func TestRoute_ContextTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-block
	}))
	defer func() {
		close(block)
		srv.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	route, err := newTestClient(srv.URL).Route(ctx, 0, 0, 1, 1)
	assert.Error(t, err)
	assert.Nil(t, route)
}
