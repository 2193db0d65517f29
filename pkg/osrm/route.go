package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/rotisserie/eris"
)

// routeResponse is the JSON envelope returned by the OSRM route service.
type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Duration float64 `json:"duration"`
		Distance float64 `json:"distance"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// coord formats a coordinate at full precision; fixed-decimal formatting
// would round the request away from the caller's position.
func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Route queries OSRM for a single driving route. Coordinates are lon/lat.
func (c *client) Route(ctx context.Context, originLon, originLat, destLon, destLat float64) (*Route, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "osrm: rate limit")
	}

	reqURL := fmt.Sprintf("%s/%s,%s;%s,%s?overview=full&annotations=false&geometries=geojson",
		c.baseURL, coord(originLon), coord(originLat), coord(destLon), coord(destLat))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "osrm: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "osrm: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("osrm: returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "osrm: read body")
	}

	var rr routeResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return nil, eris.Wrap(err, "osrm: parse response")
	}

	if rr.Code != "Ok" {
		return nil, eris.Errorf("osrm: backend code %q", rr.Code)
	}
	if len(rr.Routes) == 0 {
		return nil, eris.New("osrm: no routes in response")
	}

	best := rr.Routes[0]
	return &Route{
		Coordinates: best.Geometry.Coordinates,
		DurationS:   max(best.Duration, 0),
		DistanceM:   max(best.Distance, 0),
	}, nil
}
