package analyzer

import (
	"math"
	"strings"

	"go-trading-coach/pkg/utils"
)

// EmotionalState is the single dominant psychological classification of a
// message.
type EmotionalState string

const (
	EmotionConfident   EmotionalState = "confident"
	EmotionAnxious     EmotionalState = "anxious"
	EmotionRevenge     EmotionalState = "revenge"
	EmotionDisciplined EmotionalState = "disciplined"
	EmotionFearful     EmotionalState = "fearful"
	EmotionGreedy      EmotionalState = "greedy"
	EmotionImpatient   EmotionalState = "impatient"
	EmotionFocused     EmotionalState = "focused"
	EmotionOverwhelmed EmotionalState = "overwhelmed"
	EmotionCalm        EmotionalState = "calm"
)

// EmotionalStates lists all states in declaration order. The order doubles as
// the tie-break for primary-state selection: on an exact score tie the
// first-declared state wins.
var EmotionalStates = []EmotionalState{
	EmotionConfident,
	EmotionAnxious,
	EmotionRevenge,
	EmotionDisciplined,
	EmotionFearful,
	EmotionGreedy,
	EmotionImpatient,
	EmotionFocused,
	EmotionOverwhelmed,
	EmotionCalm,
}

// PatternTag is a named recurring behavioral signal. A single message can
// surface any number of tags.
type PatternTag string

const (
	PatternOvertrading       PatternTag = "overtrading"
	PatternRevengeTrading    PatternTag = "revenge_trading"
	PatternFOMO              PatternTag = "fomo"
	PatternGoodDiscipline    PatternTag = "good_discipline"
	PatternDisciplineIssue   PatternTag = "discipline_issue"
	PatternOverconfidence    PatternTag = "overconfidence"
	PatternRiskAversion      PatternTag = "risk_aversion"
	PatternAnalysisParalysis PatternTag = "analysis_paralysis"
	PatternPanicExit         PatternTag = "panic_exit"
)

// patternOrder fixes the output order of detected tags so identical input
// always yields an identical tag list.
var patternOrder = []PatternTag{
	PatternOvertrading,
	PatternRevengeTrading,
	PatternGoodDiscipline,
	PatternDisciplineIssue,
	PatternOverconfidence,
	PatternRiskAversion,
	PatternAnalysisParalysis,
	PatternFOMO,
	PatternPanicExit,
}

// CoachingType is the recommended focus area for the coaching response.
type CoachingType string

const (
	CoachingDiscipline         CoachingType = "discipline"
	CoachingRiskManagement     CoachingType = "risk_management"
	CoachingEmotionalControl   CoachingType = "emotional_control"
	CoachingPatience           CoachingType = "patience"
	CoachingConfidenceBuilding CoachingType = "confidence_building"
	CoachingFearManagement     CoachingType = "fear_management"
)

// PsychologyOptions configures a single psychology analysis.
type PsychologyOptions struct {
	IncludeHistoricalTrends bool
	HistoricalMessages      []string
	IncludeInsights         bool
}

// HistoricalTrends aggregates emotional states over prior messages by plain
// frequency counting. No state is kept between calls.
type HistoricalTrends struct {
	MessageCount    int                    `json:"messageCount"`
	EmotionCounts   map[EmotionalState]int `json:"emotionCounts"`
	DominantEmotion EmotionalState         `json:"dominantEmotion,omitempty"`
}

// PsychologyResult is the output of a psychology analysis.
type PsychologyResult struct {
	EmotionalState   EmotionalState             `json:"emotionalState,omitempty"`
	CoachingType     CoachingType               `json:"coachingType"`
	PatternTags      []string                   `json:"patternTags"`
	Confidence       int                        `json:"confidence"`
	EmotionScores    map[EmotionalState]float64 `json:"emotionScores,omitempty"`
	Insights         []string                   `json:"insights,omitempty"`
	HistoricalTrends *HistoricalTrends          `json:"historicalTrends,omitempty"`
}

// PsychologyAnalyzer classifies free text into an emotional state, behavioral
// pattern tags and a coaching focus. Stateless and safe for concurrent use.
type PsychologyAnalyzer struct{}

// NewPsychologyAnalyzer creates a new PsychologyAnalyzer.
func NewPsychologyAnalyzer() *PsychologyAnalyzer {
	return &PsychologyAnalyzer{}
}

// Analyze scores the message content. Empty (or whitespace-only) content is a
// ValidationError, never a silent zero result.
func (a *PsychologyAnalyzer) Analyze(content string, opts PsychologyOptions) (*PsychologyResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, &ValidationError{Field: "content", Message: "message content is required"}
	}

	lower := strings.ToLower(content)

	scores := a.scoreEmotions(lower)
	primary, maxScore := a.primaryEmotion(scores)
	patterns := a.detectPatterns(lower)

	confidence := 50.0
	confidence += math.Min(30, 10*maxScore)
	confidence += math.Min(20, 5*float64(len(patterns)))

	result := &PsychologyResult{
		EmotionalState: primary,
		CoachingType:   a.selectCoachingType(patterns, primary),
		PatternTags:    patternStrings(patterns),
		Confidence:     utils.Clamp(int(math.Round(confidence)), 0, 100),
		EmotionScores:  scores,
	}

	if opts.IncludeInsights {
		result.Insights = buildInsights(primary, patterns)
	}
	if opts.IncludeHistoricalTrends && len(opts.HistoricalMessages) > 0 {
		result.HistoricalTrends = a.aggregateTrends(opts.HistoricalMessages)
	}

	return result, nil
}

// scoreEmotions counts keyword hits per state, then layers the contextual
// modifiers on top. Each modifier category fires at most once per text.
func (a *PsychologyAnalyzer) scoreEmotions(lower string) map[EmotionalState]float64 {
	scores := make(map[EmotionalState]float64, len(EmotionalStates))
	for _, state := range EmotionalStates {
		score := 0.0
		for _, word := range emotionKeywords[state] {
			if strings.Contains(lower, word) {
				score++
			}
		}
		scores[state] = score
	}

	if containsAny(lower, intensifierWords) {
		scores[EmotionAnxious] += 0.5
		scores[EmotionConfident] += 0.5
	}
	if containsAny(lower, negationWords) {
		scores[EmotionFearful] += 0.3
	}
	if containsAny(lower, questionMarkerWords) {
		scores[EmotionAnxious] += 0.4
		scores[EmotionOverwhelmed] += 0.3
	}

	return scores
}

// primaryEmotion picks the highest-scoring state above zero. Ties go to the
// first-declared state.
func (a *PsychologyAnalyzer) primaryEmotion(scores map[EmotionalState]float64) (EmotionalState, float64) {
	var primary EmotionalState
	best := 0.0
	for _, state := range EmotionalStates {
		if scores[state] > best {
			best = scores[state]
			primary = state
		}
	}
	return primary, best
}

// detectPatterns runs the simple keyword table and the conjunctive patterns.
// The result is deduplicated by construction: each tag is checked once.
func (a *PsychologyAnalyzer) detectPatterns(lower string) []PatternTag {
	var tags []PatternTag
	for _, tag := range patternOrder {
		if words, ok := patternKeywords[tag]; ok {
			if containsAny(lower, words) {
				tags = append(tags, tag)
			}
			continue
		}
		if groups, ok := conjunctivePatterns[tag]; ok {
			if containsAny(lower, groups[0]) && containsAny(lower, groups[1]) {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

// selectCoachingType walks the fixed priority table: behavioral patterns
// first, then the primary emotional state, then a default.
func (a *PsychologyAnalyzer) selectCoachingType(patterns []PatternTag, primary EmotionalState) CoachingType {
	has := func(tag PatternTag) bool {
		for _, t := range patterns {
			if t == tag {
				return true
			}
		}
		return false
	}

	switch {
	case has(PatternOvertrading), has(PatternDisciplineIssue):
		return CoachingDiscipline
	case has(PatternRevengeTrading):
		return CoachingEmotionalControl
	case has(PatternOverconfidence), has(PatternRiskAversion):
		return CoachingRiskManagement
	}

	switch primary {
	case EmotionFearful, EmotionAnxious:
		return CoachingFearManagement
	case EmotionImpatient, EmotionOverwhelmed:
		return CoachingPatience
	case EmotionRevenge, EmotionGreedy:
		return CoachingEmotionalControl
	}

	if has(PatternAnalysisParalysis) {
		return CoachingConfidenceBuilding
	}
	return CoachingDiscipline
}

// aggregateTrends frequency-counts the primary emotion of each prior message.
func (a *PsychologyAnalyzer) aggregateTrends(messages []string) *HistoricalTrends {
	trends := &HistoricalTrends{
		MessageCount:  len(messages),
		EmotionCounts: make(map[EmotionalState]int),
	}
	for _, msg := range messages {
		scores := a.scoreEmotions(strings.ToLower(msg))
		if primary, score := a.primaryEmotion(scores); score > 0 {
			trends.EmotionCounts[primary]++
		}
	}
	best := 0
	for _, state := range EmotionalStates {
		if trends.EmotionCounts[state] > best {
			best = trends.EmotionCounts[state]
			trends.DominantEmotion = state
		}
	}
	return trends
}

var insightTemplates = map[PatternTag]string{
	PatternOvertrading:       "Trade count is climbing. Step away from the screen between setups.",
	PatternRevengeTrading:    "Trying to win a loss back quickly is how small losses become big ones.",
	PatternFOMO:              "If the move already happened, the trade is gone. There will be another one.",
	PatternGoodDiscipline:    "Sticking to the plan is the edge. Keep doing exactly this.",
	PatternDisciplineIssue:   "Rules only work when they are followed on the hard days.",
	PatternOverconfidence:    "No trade is guaranteed. Size as if this one loses.",
	PatternRiskAversion:      "Cutting winners early caps the upside that pays for the losers.",
	PatternAnalysisParalysis: "More indicators will not make the decision for you. Pick a trigger and honor it.",
	PatternPanicExit:         "Exits decided mid-panic are rarely the exits planned in calm.",
}

func buildInsights(primary EmotionalState, patterns []PatternTag) []string {
	var insights []string
	for _, tag := range patterns {
		if text, ok := insightTemplates[tag]; ok {
			insights = append(insights, text)
		}
	}
	if primary != "" && len(insights) == 0 {
		insights = append(insights, "Dominant emotion detected: "+string(primary)+". Name it before the next entry.")
	}
	return insights
}

func patternStrings(tags []PatternTag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, string(t))
	}
	return out
}

// HasEmotionalContent reports whether the text hits any emotional-state
// keyword. The orchestrator uses it to pick the coaching prompt mode.
func HasEmotionalContent(text string) bool {
	lower := strings.ToLower(text)
	for _, state := range EmotionalStates {
		if containsAny(lower, emotionKeywords[state]) {
			return true
		}
	}
	return false
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
