package amenity

import (
	"go.uber.org/zap"

	"github.com/vr00n/st-esb-planner/internal/region"
)

// regionPropertyKeys are the recognized property spellings for a region
// label, checked in order when spatial resolution is unavailable. The mixed
// casings come from the upstream boundary feeds.
var regionPropertyKeys = []string{"boro_name", "BoroName", "borough", "ntaname"}

// JoinOption configures region resolution.
type JoinOption func(*joiner)

// Verbose enables per-feature debug logging for unresolvable features. The
// default is silent: external feeds routinely carry junk rows and logging
// each one is noise.
func Verbose() JoinOption {
	return func(j *joiner) {
		j.verbose = true
	}
}

type joiner struct {
	verbose bool
	log     *zap.Logger
}

func newJoiner(opts []JoinOption) *joiner {
	j := &joiner{log: zap.L().With(zap.String("component", "amenity.join"))}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// ResolveRegion returns the region label for a feature. Resolution order:
//  1. spatial: the feature's representative point against the index
//  2. property fallback: the first recognized label key on the feature,
//     used when the index is empty or was never built
//
// ok is false when the feature is unresolvable (malformed geometry and no
// recognized property). Unresolvable is an expected data condition, never an
// error.
func ResolveRegion(f Feature, ix *region.Index, opts ...JoinOption) (string, bool) {
	j := newJoiner(opts)

	if ix.Len() == 0 {
		return j.propertyFallback(f)
	}

	lon, lat, ok := f.representativePoint()
	if !ok {
		if j.verbose {
			j.log.Debug("feature geometry unresolvable", zap.Any("properties", f.Properties))
		}
		return "", false
	}

	if label, found := ix.Label(lon, lat); found {
		return label, true
	}
	if j.verbose {
		j.log.Debug("feature outside all regions",
			zap.Float64("lon", lon),
			zap.Float64("lat", lat),
		)
	}
	return "", false
}

// propertyFallback looks the label up on the feature's own metadata.
func (j *joiner) propertyFallback(f Feature) (string, bool) {
	for _, key := range regionPropertyKeys {
		if v, ok := f.Properties[key]; ok {
			if s, isStr := v.(string); isStr && s != "" {
				return s, true
			}
		}
	}
	if j.verbose {
		j.log.Debug("feature has no recognized region property", zap.Any("properties", f.Properties))
	}
	return "", false
}

// FilterByRegion returns the features whose resolved region is in labels.
// Unresolvable features are excluded. An empty labels set keeps every
// resolvable feature.
func FilterByRegion(features []Feature, ix *region.Index, labels []string, opts ...JoinOption) []Feature {
	want := make(map[string]bool, len(labels))
	for _, l := range labels {
		want[l] = true
	}

	var kept []Feature
	for _, f := range features {
		label, ok := ResolveRegion(f, ix, opts...)
		if !ok {
			continue
		}
		if len(want) > 0 && !want[label] {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}
