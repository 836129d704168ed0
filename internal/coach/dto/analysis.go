package dto

import (
	"time"

	"go-trading-coach/internal/coach/analyzer"
)

// ChatMessage is one inbound trader message entering the pipeline.
type ChatMessage struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Content    string    `json:"content"`
	ImageURL   string    `json:"image_url,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// AnalyzeOptions tunes a single pipeline run. The zero value is a sensible
// default: cost-balanced model, reasoning included, no insights.
type AnalyzeOptions struct {
	// CostSensitivity is "low", "balanced" or "high". High prefers the
	// cheapest capable model.
	CostSensitivity  string `json:"cost_sensitivity,omitempty"`
	IncludeReasoning bool   `json:"include_reasoning,omitempty"`
	IncludeInsights  bool   `json:"include_insights,omitempty"`
	// SkipCache forces a fresh LLM call even for recently seen content.
	SkipCache bool `json:"skip_cache,omitempty"`
}

// Response types on an AnalysisResult.
const (
	ResponseTypeAnalysis = "analysis"
	ResponseTypeFallback = "fallback"
)

// AnalysisResult merges every pipeline output for one message. Created once
// per run and never mutated afterwards.
type AnalysisResult struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id,omitempty"`
	Type    string `json:"type"`
	Content string `json:"content"`

	Verdict    *analyzer.VerdictResult    `json:"verdict,omitempty"`
	Psychology *analyzer.PsychologyResult `json:"psychology,omitempty"`

	// SubErrors records which sub-analyses failed without aborting the run,
	// keyed by sub-analysis name.
	SubErrors map[string]string `json:"sub_errors,omitempty"`

	AIModel          string    `json:"ai_model"`
	TokensUsed       int       `json:"tokens_used"`
	EstimatedCost    float64   `json:"estimated_cost"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
	AnalyzedAt       time.Time `json:"analyzed_at"`
}

// ChatReplyRequest is the input contract of the external LLM boundary.
type ChatReplyRequest struct {
	Model    string
	Prompt   string
	ImageURL string
}

// ChatReplyResponse carries the raw model reply plus usage metadata.
type ChatReplyResponse struct {
	Text         string
	TokensUsed   int
	PromptTokens int
}

// StreamDataChatMessage is the payload published on the analyze stream.
type StreamDataChatMessage struct {
	MessageID string `json:"message_id"`
	UserID    string `json:"user_id"`
	Content   string `json:"content"`
	ImageURL  string `json:"image_url,omitempty"`
}

// UsageSnapshot is a point-in-time copy of the process-wide usage totals.
type UsageSnapshot struct {
	Requests       int64   `json:"requests"`
	Failures       int64   `json:"failures"`
	Fallbacks      int64   `json:"fallbacks"`
	TokensUsed     int64   `json:"tokens_used"`
	EstimatedCost  float64 `json:"estimated_cost"`
	TotalLatencyMs int64   `json:"total_latency_ms"`
}
