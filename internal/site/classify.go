// Package site generates synthetic depot sites over a bounding box,
// constrained to the region index and tagged with synthetic charger
// capacity attributes.
package site

// Build-speed classification constants.
const (
	SpeedFast   = "Fast"
	SpeedMedium = "Medium"
	SpeedSlow   = "Slow"
)

// Capacity-gap thresholds for classification.
const (
	fastGapThreshold   = 250
	mediumGapThreshold = 500
)

// ClassifySpeed returns the build-speed category for a capacity gap.
// Rules:
//   - Fast: gap < 250
//   - Medium: gap < 500
//   - Slow: otherwise
func ClassifySpeed(gap int) string {
	if gap < fastGapThreshold {
		return SpeedFast
	}
	if gap < mediumGapThreshold {
		return SpeedMedium
	}
	return SpeedSlow
}
