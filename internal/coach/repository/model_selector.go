package repository

import "go-trading-coach/internal/coach/config"

// ModelProfile describes one selectable model.
type ModelProfile struct {
	ID              string
	SupportsVision  bool
	Quality         int     // relative answer quality, higher is better
	CostPer1KTokens float64 // USD
}

// ModelSelector picks a model id per message via a small scoring heuristic
// over cost sensitivity and content type.
type ModelSelector struct {
	profiles []ModelProfile
}

// NewModelSelector builds a selector from the configured model ids.
func NewModelSelector(cfg *config.Config) *ModelSelector {
	return &ModelSelector{
		profiles: []ModelProfile{
			{ID: cfg.Gemini.TextModel, SupportsVision: false, Quality: 2, CostPer1KTokens: 0.000125},
			{ID: cfg.Gemini.VisionModel, SupportsVision: true, Quality: 3, CostPer1KTokens: 0.000250},
			{ID: cfg.Gemini.PremiumModel, SupportsVision: true, Quality: 5, CostPer1KTokens: 0.001250},
		},
	}
}

// Select returns the model to use. A message with an image always gets a
// vision-capable model; cost sensitivity then trades quality against price.
func (s *ModelSelector) Select(hasImage bool, costSensitivity string) ModelProfile {
	best := s.profiles[0]
	bestScore := -1.0
	for _, p := range s.profiles {
		if hasImage && !p.SupportsVision {
			continue
		}
		score := s.score(p, costSensitivity)
		if score > bestScore {
			best = p
			bestScore = score
		}
	}
	return best
}

// CostEstimate converts a token count to USD for the given model.
func (s *ModelSelector) CostEstimate(modelID string, tokens int) float64 {
	for _, p := range s.profiles {
		if p.ID == modelID {
			return float64(tokens) / 1000 * p.CostPer1KTokens
		}
	}
	return 0
}

func (s *ModelSelector) score(p ModelProfile, costSensitivity string) float64 {
	// Normalize cost into a 0..5 penalty comparable with quality.
	costPenalty := p.CostPer1KTokens * 4000

	switch costSensitivity {
	case "high":
		return float64(p.Quality) - 2*costPenalty
	case "low":
		return float64(p.Quality) - 0.25*costPenalty
	default: // balanced
		return float64(p.Quality) - costPenalty
	}
}
