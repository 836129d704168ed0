package analyzer

import (
	"math"
	"strings"

	"go-trading-coach/pkg/utils"
)

// FactorScores maps every technical factor to a score in [0, 100].
type FactorScores map[Factor]int

// ChartData carries the structured fields a caller can supply instead of, or
// alongside, a free-text description. All fields are optional.
type ChartData struct {
	// Trends holds the per-timeframe trend direction, e.g. ["bullish",
	// "bullish", "bearish"] for 1D/4H/1H.
	Trends []string `json:"trends,omitempty"`
	// Levels are the marked support/resistance price levels.
	Levels []float64 `json:"levels,omitempty"`
	// Volume is the relative volume versus the recent average (1.0 = average).
	Volume *float64 `json:"volume,omitempty"`
	Entry  *float64 `json:"entry,omitempty"`
	Target *float64 `json:"target,omitempty"`
	Stop   *float64 `json:"stop,omitempty"`
}

// SetupInput is the heterogeneous input to the Technical Factor Analyzer.
type SetupInput struct {
	Description string     `json:"description,omitempty"`
	ChartData   *ChartData `json:"chartData,omitempty"`
}

const neutralScore = 50

// AnalyzeTechnicalFactors converts a setup into the seven-factor score set.
// Every factor is always present; factors not derivable from the input stay at
// the neutral 50. The function is pure and never fails: malformed input just
// yields neutral scores.
func AnalyzeTechnicalFactors(input SetupInput) FactorScores {
	scores := make(FactorScores, len(AllFactors))
	for _, f := range AllFactors {
		scores[f] = neutralScore
	}

	if input.ChartData != nil {
		applyChartData(scores, input.ChartData)
	}

	if input.Description != "" {
		applyTextKeywords(scores, input.Description)
	}

	return scores
}

func applyChartData(scores FactorScores, data *ChartData) {
	if len(data.Trends) > 0 {
		scores[FactorTrendAlignment] = trendAlignmentScore(data.Trends)
	}
	if len(data.Levels) > 0 {
		scores[FactorSupportResistance] = supportResistanceScore(data.Levels, data.Entry)
	}
	if data.Volume != nil {
		scores[FactorVolumeConfirmation] = volumeScore(*data.Volume)
	}
	if data.Entry != nil && data.Target != nil && data.Stop != nil {
		scores[FactorRiskReward] = riskRewardScore(*data.Entry, *data.Target, *data.Stop)
	}
}

// trendAlignmentScore rewards agreement across the supplied timeframes.
func trendAlignmentScore(trends []string) int {
	counts := make(map[string]int)
	for _, t := range trends {
		counts[strings.ToLower(strings.TrimSpace(t))]++
	}
	max := 0
	for _, n := range counts {
		if n > max {
			max = n
		}
	}
	ratio := float64(max) / float64(len(trends))
	switch {
	case ratio == 1:
		return 90
	case ratio >= 0.66:
		return 70
	default:
		return 40
	}
}

// supportResistanceScore rewards entries placed close to a marked level.
// Without an entry the mere presence of mapped levels scores mildly positive.
func supportResistanceScore(levels []float64, entry *float64) int {
	if entry == nil || *entry == 0 {
		return 60
	}
	nearest := math.MaxFloat64
	for _, level := range levels {
		if d := math.Abs(*entry-level) / *entry; d < nearest {
			nearest = d
		}
	}
	switch {
	case nearest <= 0.005:
		return 90
	case nearest <= 0.01:
		return 75
	case nearest <= 0.02:
		return 60
	default:
		return 40
	}
}

// volumeScore maps relative volume to a score staircase.
func volumeScore(relative float64) int {
	switch {
	case relative >= 2:
		return 90
	case relative >= 1.5:
		return 75
	case relative >= 1.2:
		return 60
	case relative >= 0.8:
		return 50
	default:
		return 30
	}
}

// riskRewardScore maps the reward-to-risk ratio to the fixed staircase:
// >=3 -> 90, >=2 -> 75, >=1.5 -> 60, >=1 -> 40, else 20.
func riskRewardScore(entry, target, stop float64) int {
	risk := math.Abs(entry - stop)
	if risk == 0 {
		return 20
	}
	ratio := math.Abs(target-entry) / risk
	switch {
	case ratio >= 3:
		return 90
	case ratio >= 2:
		return 75
	case ratio >= 1.5:
		return 60
	case ratio >= 1:
		return 40
	default:
		return 20
	}
}

// applyTextKeywords adjusts each factor by +10 per positive keyword and -15
// per negative keyword found in the text. Accumulation is uncapped; the score
// is clamped to [0, 100] only once per factor at the end.
func applyTextKeywords(scores FactorScores, text string) {
	lower := strings.ToLower(text)
	for _, f := range AllFactors {
		kw := technicalKeywords[f]
		score := scores[f]
		for _, word := range kw.Positive {
			if strings.Contains(lower, word) {
				score += 10
			}
		}
		for _, word := range kw.Negative {
			if strings.Contains(lower, word) {
				score -= 15
			}
		}
		scores[f] = utils.Clamp(score, 0, 100)
	}
}
