// Package boundary loads labeled boundary polygons for the region index:
// a remote feature service first, then a small built-in fallback set so the
// index is never empty by construction. Local GeoJSON files and shapefiles
// are supported as explicit alternatives.
package boundary

import (
	"context"
	_ "embed"
	"encoding/json"
	"io"
	"net/http"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/vr00n/st-esb-planner/internal/region"
)

// DefaultURL is the NYC 2020 NTA feature service (GeoJSON out).
const DefaultURL = "https://services5.arcgis.com/GfwWNkhEL9T7a17V/arcgis/rest/services/NYC_NTA_2020/FeatureServer/0/query?where=1%3D1&outFields=*&f=geojson"

// Source values reported on a Result.
const (
	SourceRemote    = "remote"
	SourceFile      = "file"
	SourceShapefile = "shapefile"
	SourceFallback  = "fallback"
)

// defaultLabelKeys are the property spellings tried, in order, when
// extracting a region label from a boundary feature.
var defaultLabelKeys = []string{"boro_name", "BoroName", "borough"}

//go:embed fallback.geojson
var fallbackGeoJSON []byte

// Result is the outcome of a boundary load: the regions plus which source
// actually supplied them.
type Result struct {
	Regions []region.Region
	Source  string
}

// Option configures a Loader.
type Option func(*Loader)

// WithURL overrides the remote feature service URL.
func WithURL(url string) Option {
	return func(l *Loader) {
		l.url = url
	}
}

// WithHTTPClient sets a custom HTTP client for remote fetches.
func WithHTTPClient(hc *http.Client) Option {
	return func(l *Loader) {
		l.httpClient = hc
	}
}

// WithLabelKeys overrides the property keys used to extract region labels.
func WithLabelKeys(keys ...string) Option {
	return func(l *Loader) {
		l.labelKeys = keys
	}
}

// Loader fetches and parses boundary polygon collections.
type Loader struct {
	url        string
	httpClient *http.Client
	labelKeys  []string
	log        *zap.Logger
}

// NewLoader creates a Loader with the given options.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		url:        DefaultURL,
		httpClient: http.DefaultClient,
		labelKeys:  defaultLabelKeys,
		log:        zap.L().With(zap.String("component", "boundary.loader")),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches the remote boundary collection, substituting the built-in
// fallback set on any fetch or parse failure. The returned Source reports
// which one won. Load never returns an empty region set.
func (l *Loader) Load(ctx context.Context) Result {
	regions, err := l.fetchRemote(ctx)
	if err == nil && len(regions) > 0 {
		l.log.Info("boundaries loaded from remote source",
			zap.String("url", l.url),
			zap.Int("regions", len(regions)),
		)
		return Result{Regions: regions, Source: SourceRemote}
	}
	if err != nil {
		l.log.Warn("remote boundary fetch failed, using fallback", zap.Error(err))
	} else {
		l.log.Warn("remote boundary source yielded no regions, using fallback")
	}
	return l.fallback()
}

// LoadFile parses a local GeoJSON file, substituting the fallback set on
// failure.
func (l *Loader) LoadFile(path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		l.log.Warn("boundary file unreadable, using fallback",
			zap.String("path", path),
			zap.Error(err),
		)
		return l.fallback()
	}
	regions, err := l.parseCollection(data)
	if err != nil || len(regions) == 0 {
		l.log.Warn("boundary file unparsable, using fallback",
			zap.String("path", path),
			zap.Error(err),
		)
		return l.fallback()
	}
	return Result{Regions: regions, Source: SourceFile}
}

func (l *Loader) fetchRemote(ctx context.Context) ([]region.Region, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "boundary: build request")
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "boundary: fetch")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("boundary: fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "boundary: read body")
	}

	return l.parseCollection(body)
}

// fallback parses the embedded per-borough polygon set. The embedded data is
// fixed at build time, so a parse failure here is a programming error.
func (l *Loader) fallback() Result {
	regions, err := l.parseCollection(fallbackGeoJSON)
	if err != nil {
		panic(eris.Wrap(err, "boundary: embedded fallback is invalid"))
	}
	return Result{Regions: regions, Source: SourceFallback}
}

// rawCollection defers feature decoding so one malformed feature skips that
// feature instead of failing the whole collection.
type rawCollection struct {
	Features []json.RawMessage `json:"features"`
}

// parseCollection decodes a GeoJSON feature collection into labeled regions.
// Features with undecodable geometry or no recognizable label are skipped
// with a warning.
func (l *Loader) parseCollection(data []byte) ([]region.Region, error) {
	var rc rawCollection
	if err := json.Unmarshal(data, &rc); err != nil {
		return nil, eris.Wrap(err, "boundary: parse collection")
	}

	var regions []region.Region
	for i, raw := range rc.Features {
		var f geojson.Feature
		if err := json.Unmarshal(raw, &f); err != nil {
			l.log.Warn("skipping undecodable boundary feature",
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}

		label := l.extractLabel(f.Properties)
		if label == "" {
			l.log.Warn("skipping boundary feature without region label", zap.Int("index", i))
			continue
		}

		regions = append(regions, region.Region{Label: label, Geometry: f.Geometry})
	}
	return regions, nil
}

func (l *Loader) extractLabel(props map[string]any) string {
	for _, key := range l.labelKeys {
		if v, ok := props[key]; ok {
			if s, isStr := v.(string); isStr && s != "" {
				return s
			}
		}
	}
	return ""
}
