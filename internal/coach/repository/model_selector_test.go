package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-trading-coach/internal/coach/config"
)

func newTestSelector() *ModelSelector {
	return NewModelSelector(&config.Config{
		Gemini: config.Gemini{
			TextModel:    "text-model",
			VisionModel:  "vision-model",
			PremiumModel: "premium-model",
		},
	})
}

func TestModelSelector_Select(t *testing.T) {
	selector := newTestSelector()

	tests := []struct {
		name            string
		hasImage        bool
		costSensitivity string
		want            string
	}{
		{"high sensitivity picks the cheapest capable model", false, "high", "text-model"},
		{"balanced text trades up to the mid model", false, "balanced", "vision-model"},
		{"low sensitivity buys quality", false, "low", "premium-model"},
		{"image forces a vision-capable model", true, "high", "vision-model"},
		{"image with low sensitivity picks premium", true, "low", "premium-model"},
		{"unknown sensitivity behaves as balanced", false, "", "vision-model"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selector.Select(tt.hasImage, tt.costSensitivity)
			assert.Equal(t, tt.want, got.ID)
			if tt.hasImage {
				assert.True(t, got.SupportsVision)
			}
		})
	}
}

func TestModelSelector_CostEstimate(t *testing.T) {
	selector := newTestSelector()

	assert.InDelta(t, 0.000125, selector.CostEstimate("text-model", 1000), 1e-12)
	assert.InDelta(t, 0.0003, selector.CostEstimate("vision-model", 1200), 1e-12)
	assert.Zero(t, selector.CostEstimate("unknown-model", 1000))
}
