package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySpeed(t *testing.T) {
	tests := []struct {
		name     string
		gap      int
		expected string
	}{
		{name: "zero gap", gap: 0, expected: SpeedFast},
		{name: "fast: below threshold", gap: 249, expected: SpeedFast},
		{name: "medium: at fast threshold", gap: 250, expected: SpeedMedium},
		{name: "medium: below slow threshold", gap: 499, expected: SpeedMedium},
		{name: "slow: at medium threshold", gap: 500, expected: SpeedSlow},
		{name: "slow: large gap", gap: 950, expected: SpeedSlow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifySpeed(tt.gap))
		})
	}
}
