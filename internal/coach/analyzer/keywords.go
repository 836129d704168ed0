package analyzer

// Keyword tables for the text-based scoring paths. They are plain package data,
// kept apart from the scoring logic so tests can reason about them and so new
// languages can be added without touching the algorithms.

// factorKeywords holds the positive and negative keyword lists per technical
// factor. A positive hit adds 10 points, a negative hit subtracts 15; the
// per-factor score starts neutral at 50 and is clamped to [0, 100] at the end.
type factorKeywords struct {
	Positive []string
	Negative []string
}

var technicalKeywords = map[Factor]factorKeywords{
	FactorTrendAlignment: {
		Positive: []string{"uptrend", "higher highs", "higher lows", "trend continuation", "with the trend", "all timeframes aligned", "bullish structure"},
		Negative: []string{"against the trend", "counter trend", "downtrend", "lower lows", "choppy", "sideways"},
	},
	FactorSupportResistance: {
		Positive: []string{"support", "bounce", "key level", "demand zone", "retest", "holding the level"},
		Negative: []string{"broke support", "no clear level", "middle of nowhere", "below resistance", "rejected"},
	},
	FactorVolumeConfirmation: {
		Positive: []string{"high volume", "volume spike", "strong volume", "volume confirmation", "institutional buying"},
		Negative: []string{"low volume", "thin volume", "no volume", "volume drying up"},
	},
	FactorRiskReward: {
		Positive: []string{"risk reward", "1:3", "1:2", "tight stop", "good rr", "defined risk"},
		Negative: []string{"wide stop", "no stop", "bad rr", "chasing"},
	},
	FactorMarketStructure: {
		Positive: []string{"break of structure", "market structure", "accumulation", "clean structure", "range breakout"},
		Negative: []string{"broken structure", "messy", "no structure", "distribution"},
	},
	FactorMomentum: {
		Positive: []string{"strong", "momentum", "breakout", "impulsive", "accelerating"},
		Negative: []string{"weak", "stalling", "fading", "exhausted", "divergence"},
	},
	FactorFundamentals: {
		Positive: []string{"earnings beat", "strong fundamentals", "rate cut", "dovish", "good news"},
		Negative: []string{"earnings miss", "bad news", "hawkish", "downgrade"},
	},
}

// riskTagKeywords maps a named risk factor to the phrases that imply it. The
// orchestrator uses this table to derive adjustment tags from raw chat text;
// callers can also pass tags explicitly.
var riskTagKeywords = map[string][]string{
	"majorNews":       {"fomc", "nfp", "cpi", "news in an hour", "earnings today", "rate decision"},
	"lowVolume":       {"low volume", "thin market", "holiday session", "pre-market"},
	"againstTrend":    {"against the trend", "counter trend", "fighting the trend"},
	"poorRiskReward":  {"wide stop", "no stop", "bad rr", "chasing"},
	"choppyMarket":    {"choppy", "ranging", "whipsaw", "sideways"},
	"newsUncertainty": {"waiting for news", "uncertain", "mixed signals"},
	"overextended":    {"overextended", "parabolic", "already moved a lot", "overbought"},
}

// positiveTagKeywords is the mirror table for confidence bonuses.
var positiveTagKeywords = map[string][]string{
	"perfectAlignment":         {"all timeframes aligned", "perfect setup", "textbook setup", "a+ setup"},
	"highVolume":               {"high volume", "volume spike", "strong volume"},
	"institutionalSupport":     {"institutional", "smart money", "strong support", "accumulation"},
	"strongMomentum":           {"strong momentum", "impulsive move", "breakout"},
	"multiTimeframeConfluence": {"confluence", "multiple timeframes", "htf and ltf agree"},
	"keyLevelBounce":           {"key level", "bounce", "retest hold"},
}

// emotionKeywords holds the keyword set per emotional state. Each keyword found
// in the text contributes one point to that state. Declaration order of
// EmotionalStates decides score ties.
var emotionKeywords = map[EmotionalState][]string{
	EmotionConfident:   {"confident", "sure", "conviction", "i know", "easy", "nailed it"},
	EmotionAnxious:     {"anxious", "nervous", "worried", "stressed", "on edge", "uneasy"},
	EmotionRevenge:     {"revenge", "get back", "make it back", "they took my money", "win it back"},
	EmotionDisciplined: {"my plan", "my rules", "checklist", "waited for", "as planned", "journal"},
	EmotionFearful:     {"afraid", "scared", "fear", "terrified", "can't pull the trigger"},
	EmotionGreedy:      {"greedy", "more size", "double my account", "all in", "moon", "lambo"},
	EmotionImpatient:   {"impatient", "hurry", "right now", "can't wait", "need a trade"},
	EmotionFocused:     {"focused", "locked in", "clear head", "process", "one setup"},
	EmotionOverwhelmed: {"overwhelmed", "too much", "can't keep up", "confused", "lost"},
	EmotionCalm:        {"calm", "relaxed", "patient", "no rush", "at peace"},
}

// Contextual modifier word lists. Each category is applied at most once per
// text regardless of how many of its words occur.
var (
	intensifierWords    = []string{"very", "extremely", "really", "totally"}
	negationWords       = []string{"not", "can't", "don't", "won't", "never"}
	questionMarkerWords = []string{"?", "what if", "should i"}
)

// patternKeywords defines the single-group behavioral patterns; any one phrase
// fires the tag.
var patternKeywords = map[PatternTag][]string{
	PatternOvertrading:       {"overtrading", "too many trades", "another trade already", "can't stop trading", "tenth trade", "trading all day"},
	PatternRevengeTrading:    {"revenge", "get back at the market", "make it back", "win it back", "doubling my position", "doubling down after"},
	PatternGoodDiscipline:    {"stuck to my plan", "followed my rules", "waited for confirmation", "took profit as planned", "respected my stop"},
	PatternDisciplineIssue:   {"broke my rules", "ignored my plan", "moved my stop", "removed my stop", "no stop loss"},
	PatternOverconfidence:    {"can't lose", "guaranteed", "100% sure", "free money", "easy money"},
	PatternRiskAversion:      {"too scared to enter", "closed too early", "cut my winner", "afraid to pull the trigger"},
	PatternAnalysisParalysis: {"can't decide", "overthinking", "too many indicators", "second guessing", "keep hesitating"},
}

// conjunctivePatterns are patterns that only fire when one phrase from each
// group is present in the same message.
var conjunctivePatterns = map[PatternTag][2][]string{
	PatternFOMO: {
		{"missed", "too late", "already moved", "everyone is in", "everyone else"},
		{"can't miss", "have to get in", "need to buy now", "last chance", "jumping in"},
	},
	PatternPanicExit: {
		{"dropping", "crashing", "falling", "tanking"},
		{"sold everything", "got out", "dumped", "closed it all"},
	},
}
