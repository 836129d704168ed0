package analyzer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactorWeights_SumToOne(t *testing.T) {
	sum := 0.0
	for _, f := range AllFactors {
		sum += FactorWeights[f]
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestClassify_RequiresInput(t *testing.T) {
	classifier := NewVerdictClassifier()

	_, err := classifier.Classify(SetupInput{}, ClassifyOptions{})
	require.Error(t, err)

	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestClassify_VerdictBoundaries(t *testing.T) {
	classifier := NewVerdictClassifier()

	// "hello there" hits no technical keyword, so every factor stays at 50
	// and the base score is exactly 50. The tag combinations then position
	// the final score on each boundary edge.
	tests := []struct {
		name       string
		risk       []string
		positive   []string
		confidence int
		verdict    Verdict
	}{
		{"exactly 80 is diamond", nil, []string{"institutionalSupport", "highVolume", "keyLevelBounce"}, 80, VerdictDiamond},
		{"79 is fire", []string{"lowVolume"}, []string{"perfectAlignment", "institutionalSupport", "multiTimeframeConfluence"}, 79, VerdictFire},
		{"exactly 50 is fire", nil, nil, 50, VerdictFire},
		{"49 is skull", []string{"lowVolume", "poorRiskReward"}, []string{"institutionalSupport", "multiTimeframeConfluence"}, 49, VerdictSkull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := classifier.Classify(
				SetupInput{Description: "hello there"},
				ClassifyOptions{RiskFactors: tt.risk, PositiveFactors: tt.positive},
			)
			require.NoError(t, err)
			assert.Equal(t, tt.confidence, result.Confidence)
			assert.Equal(t, tt.verdict, result.Verdict)
		})
	}
}

func TestClassify_ConfidenceAlwaysClamped(t *testing.T) {
	classifier := NewVerdictClassifier()

	allPositive := make([]string, 0, len(PositiveFactorBonuses))
	for tag := range PositiveFactorBonuses {
		allPositive = append(allPositive, tag)
	}
	allRisk := make([]string, 0, len(RiskFactorPenalties))
	for tag := range RiskFactorPenalties {
		allRisk = append(allRisk, tag)
	}

	high, err := classifier.Classify(SetupInput{Description: "hello there"}, ClassifyOptions{PositiveFactors: allPositive})
	require.NoError(t, err)
	assert.Equal(t, 100, high.Confidence)
	assert.Equal(t, VerdictDiamond, high.Verdict)

	low, err := classifier.Classify(SetupInput{Description: "hello there"}, ClassifyOptions{RiskFactors: allRisk})
	require.NoError(t, err)
	assert.Equal(t, 0, low.Confidence)
	assert.Equal(t, VerdictSkull, low.Verdict)
}

func TestClassify_UnknownTagsIgnored(t *testing.T) {
	classifier := NewVerdictClassifier()

	result, err := classifier.Classify(
		SetupInput{Description: "hello there"},
		ClassifyOptions{IncludeReasoning: true, RiskFactors: []string{"bogus"}, PositiveFactors: []string{"alsoBogus"}},
	)
	require.NoError(t, err)
	assert.Equal(t, 50, result.Confidence)
	assert.Empty(t, result.Reasoning.RiskFactors)
	assert.Empty(t, result.Reasoning.PositiveFactors)
}

func TestClassify_StrongSetupScenario(t *testing.T) {
	classifier := NewVerdictClassifier()

	result, err := classifier.Classify(
		SetupInput{Description: "EURUSD 1H strong support bounce, high volume, 1:3 risk reward"},
		ClassifyOptions{
			IncludeReasoning: true,
			PositiveFactors:  []string{"institutionalSupport", "highVolume"},
		},
	)
	require.NoError(t, err)

	assert.Equal(t, VerdictDiamond, result.Verdict)
	assert.GreaterOrEqual(t, result.Confidence, 80)
	assert.Equal(t, 82, result.Confidence)

	require.NotNil(t, result.Reasoning)
	assert.ElementsMatch(t, []string{"institutionalSupport", "highVolume"}, result.Reasoning.PositiveFactors)
	assert.NotEmpty(t, result.Reasoning.Summary)
}

func TestClassify_NoSignalScenario(t *testing.T) {
	classifier := NewVerdictClassifier()

	result, err := classifier.Classify(SetupInput{Description: "hello there"}, ClassifyOptions{IncludeReasoning: true})
	require.NoError(t, err)

	assert.Equal(t, VerdictFire, result.Verdict)
	assert.Equal(t, 50, result.Confidence)
	assert.Equal(t, "Medium", result.ConfidenceLevel)

	require.NotNil(t, result.Reasoning)
	for _, f := range AllFactors {
		assert.Equal(t, 50, result.Reasoning.TechnicalFactors[f].Score)
		assert.Equal(t, FactorWeights[f], result.Reasoning.TechnicalFactors[f].Weight)
	}
}

func TestClassify_Idempotent(t *testing.T) {
	classifier := NewVerdictClassifier()

	input := SetupInput{Description: "strong uptrend, high volume, retest of support"}
	opts := ClassifyOptions{IncludeReasoning: true, PositiveFactors: []string{"strongMomentum"}}

	first, err := classifier.Classify(input, opts)
	require.NoError(t, err)
	second, err := classifier.Classify(input, opts)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestClassify_ReasoningOnlyWhenRequested(t *testing.T) {
	classifier := NewVerdictClassifier()

	without, err := classifier.Classify(SetupInput{Description: "hello there"}, ClassifyOptions{})
	require.NoError(t, err)
	assert.Nil(t, without.Reasoning)

	with, err := classifier.Classify(SetupInput{Description: "hello there"}, ClassifyOptions{IncludeReasoning: true})
	require.NoError(t, err)
	assert.NotNil(t, with.Reasoning)
}

func TestConfidenceLevel_Labels(t *testing.T) {
	assert.Equal(t, "Very High", ConfidenceLevel(95))
	assert.Equal(t, "Very High", ConfidenceLevel(90))
	assert.Equal(t, "High", ConfidenceLevel(75))
	assert.Equal(t, "Medium", ConfidenceLevel(50))
	assert.Equal(t, "Low", ConfidenceLevel(25))
	assert.Equal(t, "Very Low", ConfidenceLevel(10))
}
