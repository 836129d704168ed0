package service

import (
	"fmt"
	"strings"

	"go-trading-coach/internal/coach/analyzer"
	"go-trading-coach/internal/coach/dto"
)

var verdictEmojis = map[analyzer.Verdict]string{
	analyzer.VerdictDiamond: "💎",
	analyzer.VerdictFire:    "🔥",
	analyzer.VerdictSkull:   "💀",
}

// FormatAnalysisResult renders an analysis into display-ready Markdown for
// the chat surface.
func FormatAnalysisResult(result *dto.AnalysisResult) string {
	var sb strings.Builder

	sb.WriteString(result.Content)
	sb.WriteString("\n")

	if result.Verdict != nil {
		v := result.Verdict
		sb.WriteString(fmt.Sprintf("\n%s **Verdict: %s** (%d%% — %s)\n",
			verdictEmojis[v.Verdict], strings.ToUpper(string(v.Verdict)), v.Confidence, v.ConfidenceLevel))

		if v.Reasoning != nil {
			sb.WriteString("\n📊 **Factor breakdown:**\n")
			for _, f := range analyzer.AllFactors {
				c := v.Reasoning.TechnicalFactors[f]
				sb.WriteString(fmt.Sprintf("• %s: %d (weight %.0f%%)\n", f, c.Score, c.Weight*100))
			}
			if len(v.Reasoning.RiskFactors) > 0 {
				sb.WriteString(fmt.Sprintf("⚠️ Risk factors: %s\n", strings.Join(v.Reasoning.RiskFactors, ", ")))
			}
			if len(v.Reasoning.PositiveFactors) > 0 {
				sb.WriteString(fmt.Sprintf("✅ Positive factors: %s\n", strings.Join(v.Reasoning.PositiveFactors, ", ")))
			}
			sb.WriteString(fmt.Sprintf("\n🧠 %s\n", v.Reasoning.Summary))
		}
	}

	if result.Psychology != nil {
		p := result.Psychology
		sb.WriteString("\n🧘 **Mindset check:**\n")
		if p.EmotionalState != "" {
			sb.WriteString(fmt.Sprintf("• Emotional state: %s\n", p.EmotionalState))
		}
		sb.WriteString(fmt.Sprintf("• Coaching focus: %s\n", p.CoachingType))
		if len(p.PatternTags) > 0 {
			sb.WriteString(fmt.Sprintf("• Patterns: %s\n", strings.Join(p.PatternTags, ", ")))
		}
		for _, insight := range p.Insights {
			sb.WriteString(fmt.Sprintf("💡 %s\n", insight))
		}
	}

	if result.Type == dto.ResponseTypeFallback {
		sb.WriteString("\n_This is a fallback response — full analysis was unavailable._\n")
	}

	return sb.String()
}
