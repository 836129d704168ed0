package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-trading-coach/internal/coach/analyzer"
	"go-trading-coach/internal/coach/dto"
)

func TestFormatAnalysisResult_FullAnalysis(t *testing.T) {
	result := &dto.AnalysisResult{
		Type:    dto.ResponseTypeAnalysis,
		Content: "Looks like a clean continuation setup.",
		Verdict: &analyzer.VerdictResult{
			Verdict:         analyzer.VerdictDiamond,
			Confidence:      87,
			ConfidenceLevel: "High",
			Reasoning: &analyzer.Reasoning{
				TechnicalFactors: map[analyzer.Factor]analyzer.FactorContribution{
					analyzer.FactorTrendAlignment: {Score: 70, Weight: 0.25, Contribution: 18},
				},
				PositiveFactors: []string{"highVolume"},
				Summary:         "Strong setup with multiple confirmations.",
			},
		},
		Psychology: &analyzer.PsychologyResult{
			EmotionalState: analyzer.EmotionConfident,
			CoachingType:   analyzer.CoachingDiscipline,
			PatternTags:    []string{"good_discipline"},
			Insights:       []string{"Sticking to the plan is the edge."},
		},
	}

	out := FormatAnalysisResult(result)

	assert.Contains(t, out, "Looks like a clean continuation setup.")
	assert.Contains(t, out, "💎 **Verdict: DIAMOND** (87% — High)")
	assert.Contains(t, out, "✅ Positive factors: highVolume")
	assert.Contains(t, out, "• Emotional state: confident")
	assert.Contains(t, out, "• Coaching focus: discipline")
	assert.Contains(t, out, "💡 Sticking to the plan is the edge.")
	assert.NotContains(t, out, "fallback response")
}

func TestFormatAnalysisResult_Fallback(t *testing.T) {
	result := &dto.AnalysisResult{
		Type:    dto.ResponseTypeFallback,
		Content: fallbackTextOnly,
	}

	out := FormatAnalysisResult(result)

	assert.Contains(t, out, fallbackTextOnly)
	assert.Contains(t, out, "fallback response")
	assert.NotContains(t, out, "Verdict:")
	assert.NotContains(t, out, "Mindset check")
}
