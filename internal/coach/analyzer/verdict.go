package analyzer

import (
	"fmt"
	"math"

	"go-trading-coach/pkg/utils"
)

// Verdict is the three-way rating of a trade setup.
type Verdict string

const (
	VerdictDiamond Verdict = "diamond"
	VerdictFire    Verdict = "fire"
	VerdictSkull   Verdict = "skull"
)

// Factor is one of the seven technical-analysis dimensions scored
// independently before weighting.
type Factor string

const (
	FactorTrendAlignment     Factor = "trendAlignment"
	FactorSupportResistance  Factor = "supportResistance"
	FactorVolumeConfirmation Factor = "volumeConfirmation"
	FactorRiskReward         Factor = "riskReward"
	FactorMarketStructure    Factor = "marketStructure"
	FactorMomentum           Factor = "momentum"
	FactorFundamentals       Factor = "fundamentals"
)

// AllFactors lists the factors in their canonical order.
var AllFactors = []Factor{
	FactorTrendAlignment,
	FactorSupportResistance,
	FactorVolumeConfirmation,
	FactorRiskReward,
	FactorMarketStructure,
	FactorMomentum,
	FactorFundamentals,
}

// FactorWeights are the fixed relative weights. They sum to exactly 1.0.
var FactorWeights = map[Factor]float64{
	FactorTrendAlignment:     0.25,
	FactorSupportResistance:  0.20,
	FactorVolumeConfirmation: 0.15,
	FactorRiskReward:         0.15,
	FactorMarketStructure:    0.10,
	FactorMomentum:           0.10,
	FactorFundamentals:       0.05,
}

// RiskFactorPenalties maps a named risk tag to the points it removes from the
// base score. Each tag is applied at most once.
var RiskFactorPenalties = map[string]int{
	"majorNews":       15,
	"lowVolume":       10,
	"againstTrend":    20,
	"poorRiskReward":  15,
	"choppyMarket":    10,
	"newsUncertainty": 5,
	"overextended":    10,
}

// PositiveFactorBonuses maps a named positive tag to the points it adds.
var PositiveFactorBonuses = map[string]int{
	"perfectAlignment":         15,
	"highVolume":               10,
	"institutionalSupport":     12,
	"strongMomentum":           10,
	"multiTimeframeConfluence": 12,
	"keyLevelBounce":           8,
}

// ClassifyOptions configures a single classification call.
type ClassifyOptions struct {
	IncludeReasoning bool
	RiskFactors      []string
	PositiveFactors  []string
}

// FactorContribution is the per-factor breakdown attached to the reasoning.
type FactorContribution struct {
	Score        int     `json:"score"`
	Weight       float64 `json:"weight"`
	Contribution int     `json:"contribution"`
}

// Reasoning explains how a verdict was produced. It is built once alongside
// the verdict and never mutated.
type Reasoning struct {
	TechnicalFactors map[Factor]FactorContribution `json:"technicalFactors"`
	RiskFactors      []string                      `json:"riskFactors"`
	PositiveFactors  []string                      `json:"positiveFactors"`
	Summary          string                        `json:"summary"`
}

// VerdictResult is the output of the Verdict Scorer.
type VerdictResult struct {
	Verdict         Verdict    `json:"verdict"`
	Confidence      int        `json:"confidence"`
	ConfidenceLevel string     `json:"confidenceLevel"`
	Reasoning       *Reasoning `json:"reasoning,omitempty"`
}

var verdictSummaries = map[Verdict]string{
	VerdictDiamond: "Strong setup with multiple confirmations. The technical picture supports taking this trade with proper position sizing.",
	VerdictFire:    "Decent setup but with caveats. Consider waiting for additional confirmation or reducing size.",
	VerdictSkull:   "Poor setup. The technical factors do not support this trade right now, skip it.",
}

// VerdictClassifier reduces a trade setup description to one verdict with a
// confidence score. It is stateless; one instance is safe for concurrent use.
type VerdictClassifier struct{}

// NewVerdictClassifier creates a new VerdictClassifier.
func NewVerdictClassifier() *VerdictClassifier {
	return &VerdictClassifier{}
}

// Classify scores the given setup. Either a free-text description or chart
// data must be present, otherwise a ValidationError is returned.
func (c *VerdictClassifier) Classify(input SetupInput, opts ClassifyOptions) (*VerdictResult, error) {
	if input.Description == "" && input.ChartData == nil {
		return nil, &ValidationError{Field: "input", Message: "either a description or chart data is required"}
	}

	factors := AnalyzeTechnicalFactors(input)

	base := 0.0
	for _, f := range AllFactors {
		base += float64(factors[f]) * FactorWeights[f]
	}
	score := int(math.Round(base))

	appliedRisk := make([]string, 0, len(opts.RiskFactors))
	for _, tag := range opts.RiskFactors {
		penalty, ok := RiskFactorPenalties[tag]
		if !ok {
			continue
		}
		score -= penalty
		appliedRisk = append(appliedRisk, tag)
	}

	appliedPositive := make([]string, 0, len(opts.PositiveFactors))
	for _, tag := range opts.PositiveFactors {
		bonus, ok := PositiveFactorBonuses[tag]
		if !ok {
			continue
		}
		score += bonus
		appliedPositive = append(appliedPositive, tag)
	}

	// Clamp only after every adjustment has been summed.
	score = utils.Clamp(score, 0, 100)

	result := &VerdictResult{
		Verdict:         verdictForScore(score),
		Confidence:      score,
		ConfidenceLevel: ConfidenceLevel(score),
	}

	if opts.IncludeReasoning {
		result.Reasoning = buildReasoning(factors, appliedRisk, appliedPositive, result.Verdict)
	}

	return result, nil
}

func verdictForScore(score int) Verdict {
	switch {
	case score >= 80:
		return VerdictDiamond
	case score >= 50:
		return VerdictFire
	default:
		return VerdictSkull
	}
}

// ConfidenceLevel maps a confidence score to its human-readable label. The
// label is informational only and never drives control flow.
func ConfidenceLevel(score int) string {
	switch {
	case score >= 90:
		return "Very High"
	case score >= 75:
		return "High"
	case score >= 50:
		return "Medium"
	case score >= 25:
		return "Low"
	default:
		return "Very Low"
	}
}

func buildReasoning(factors FactorScores, riskTags, positiveTags []string, verdict Verdict) *Reasoning {
	contributions := make(map[Factor]FactorContribution, len(AllFactors))
	for _, f := range AllFactors {
		weight := FactorWeights[f]
		contributions[f] = FactorContribution{
			Score:        factors[f],
			Weight:       weight,
			Contribution: int(math.Round(float64(factors[f]) * weight)),
		}
	}

	summary, ok := verdictSummaries[verdict]
	if !ok {
		summary = fmt.Sprintf("Verdict: %s", verdict)
	}

	return &Reasoning{
		TechnicalFactors: contributions,
		RiskFactors:      riskTags,
		PositiveFactors:  positiveTags,
		Summary:          summary,
	}
}
