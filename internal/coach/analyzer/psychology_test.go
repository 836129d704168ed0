package analyzer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_RejectsEmptyContent(t *testing.T) {
	analyzer := NewPsychologyAnalyzer()

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := analyzer.Analyze(content, PsychologyOptions{})
		require.Error(t, err)

		var validationErr *ValidationError
		assert.True(t, errors.As(err, &validationErr))
	}
}

func TestAnalyze_RevengeTradingMessage(t *testing.T) {
	analyzer := NewPsychologyAnalyzer()

	result, err := analyzer.Analyze(
		"They took my money, I have to make it back right now",
		PsychologyOptions{IncludeInsights: true},
	)
	require.NoError(t, err)

	assert.Equal(t, EmotionRevenge, result.EmotionalState)
	assert.Equal(t, CoachingEmotionalControl, result.CoachingType)
	assert.Equal(t, []string{"revenge_trading"}, result.PatternTags)
	// Two revenge keywords (10 each, capped at 30) plus one pattern (5).
	assert.Equal(t, 75, result.Confidence)
	assert.Contains(t, result.Insights, insightTemplates[PatternRevengeTrading])
}

func TestAnalyze_RevengeAfterLoss(t *testing.T) {
	analyzer := NewPsychologyAnalyzer()

	result, err := analyzer.Analyze("I'm revenge trading after that loss, doubling my position", PsychologyOptions{})
	require.NoError(t, err)

	assert.Contains(t, result.PatternTags, "revenge_trading")
	assert.Equal(t, CoachingEmotionalControl, result.CoachingType)
	assert.Equal(t, 65, result.Confidence)
}

func TestAnalyze_ContextualModifiers(t *testing.T) {
	analyzer := NewPsychologyAnalyzer()

	result, err := analyzer.Analyze("I'm very worried, what if it drops? Should I sell?", PsychologyOptions{})
	require.NoError(t, err)

	// "worried" scores 1, the intensifier adds 0.5 and the question markers
	// add 0.4, each category at most once.
	assert.InDelta(t, 1.9, result.EmotionScores[EmotionAnxious], 1e-9)
	assert.InDelta(t, 0.5, result.EmotionScores[EmotionConfident], 1e-9)
	assert.InDelta(t, 0.3, result.EmotionScores[EmotionOverwhelmed], 1e-9)

	assert.Equal(t, EmotionAnxious, result.EmotionalState)
	assert.Equal(t, CoachingFearManagement, result.CoachingType)
	assert.Equal(t, 69, result.Confidence)
}

func TestAnalyze_TieBreakIsDeclarationOrder(t *testing.T) {
	analyzer := NewPsychologyAnalyzer()

	result, err := analyzer.Analyze("I am confident and calm", PsychologyOptions{})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, result.EmotionScores[EmotionConfident], 1e-9)
	assert.InDelta(t, 1.0, result.EmotionScores[EmotionCalm], 1e-9)
	assert.Equal(t, EmotionConfident, result.EmotionalState)
	assert.Equal(t, CoachingDiscipline, result.CoachingType)
}

func TestAnalyze_ConjunctiveFOMOPattern(t *testing.T) {
	analyzer := NewPsychologyAnalyzer()

	result, err := analyzer.Analyze("I missed the move but I have to get in now", PsychologyOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"fomo"}, result.PatternTags)
	assert.Equal(t, EmotionalState(""), result.EmotionalState)
	assert.Equal(t, CoachingDiscipline, result.CoachingType)
	assert.Equal(t, 55, result.Confidence)

	// One side of the conjunction alone is not enough.
	solo, err := analyzer.Analyze("I missed the move earlier today", PsychologyOptions{})
	require.NoError(t, err)
	assert.Empty(t, solo.PatternTags)
}

func TestAnalyze_ConjunctivePanicExitPattern(t *testing.T) {
	analyzer := NewPsychologyAnalyzer()

	result, err := analyzer.Analyze("everything is crashing and I sold everything", PsychologyOptions{})
	require.NoError(t, err)
	assert.Contains(t, result.PatternTags, "panic_exit")
}

func TestAnalyze_PatternOrderIsStable(t *testing.T) {
	analyzer := NewPsychologyAnalyzer()

	content := "overtrading again, broke my rules, this is guaranteed free money, can't decide on revenge"
	result, err := analyzer.Analyze(content, PsychologyOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"overtrading",
		"revenge_trading",
		"discipline_issue",
		"overconfidence",
		"analysis_paralysis",
	}, result.PatternTags)
	assert.Equal(t, CoachingDiscipline, result.CoachingType)
	assert.LessOrEqual(t, result.Confidence, 100)

	again, err := analyzer.Analyze(content, PsychologyOptions{})
	require.NoError(t, err)
	assert.Equal(t, result, again)
}

func TestAnalyze_HistoricalTrends(t *testing.T) {
	analyzer := NewPsychologyAnalyzer()

	result, err := analyzer.Analyze("checking in on my mindset", PsychologyOptions{
		IncludeHistoricalTrends: true,
		HistoricalMessages: []string{
			"I'm worried about this trade",
			"worried again about the open",
			"feeling calm today",
		},
	})
	require.NoError(t, err)

	require.NotNil(t, result.HistoricalTrends)
	assert.Equal(t, 3, result.HistoricalTrends.MessageCount)
	assert.Equal(t, 2, result.HistoricalTrends.EmotionCounts[EmotionAnxious])
	assert.Equal(t, 1, result.HistoricalTrends.EmotionCounts[EmotionCalm])
	assert.Equal(t, EmotionAnxious, result.HistoricalTrends.DominantEmotion)
}

func TestAnalyze_TrendsOmittedWithoutHistory(t *testing.T) {
	analyzer := NewPsychologyAnalyzer()

	result, err := analyzer.Analyze("feeling anxious today", PsychologyOptions{IncludeHistoricalTrends: true})
	require.NoError(t, err)
	assert.Nil(t, result.HistoricalTrends)
}

func TestAnalyze_FallbackInsightFromEmotion(t *testing.T) {
	analyzer := NewPsychologyAnalyzer()

	result, err := analyzer.Analyze("feeling anxious today", PsychologyOptions{IncludeInsights: true})
	require.NoError(t, err)

	require.Len(t, result.Insights, 1)
	assert.Contains(t, result.Insights[0], "anxious")
}

func TestHasEmotionalContent(t *testing.T) {
	assert.True(t, HasEmotionalContent("I'm so NERVOUS about this entry"))
	assert.False(t, HasEmotionalContent("chart shows a retest of the weekly open"))
}
