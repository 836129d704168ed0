package service

import (
	"sync"
	"time"

	"go-trading-coach/internal/coach/dto"

	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline outcome labels recorded by the UsageTracker.
const (
	UsageStatusSuccess  = "success"
	UsageStatusFallback = "fallback"
	UsageStatusFailed   = "failed"
)

// UsageTracker accumulates process-wide usage totals for the analysis
// pipeline. It is injected into the orchestrator rather than living as module
// globals so concurrent pipeline runs never race on the counters.
type UsageTracker struct {
	mu       sync.Mutex
	snapshot dto.UsageSnapshot

	requests *prometheus.CounterVec
	tokens   prometheus.Counter
	cost     prometheus.Counter
}

// NewUsageTracker creates a tracker and registers its collectors on reg.
func NewUsageTracker(reg prometheus.Registerer) *UsageTracker {
	t := &UsageTracker{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coach_analysis_requests_total",
			Help: "Analysis pipeline runs by outcome.",
		}, []string{"status"}),
		tokens: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coach_llm_tokens_total",
			Help: "Total LLM tokens consumed.",
		}),
		cost: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coach_llm_cost_usd_total",
			Help: "Estimated LLM spend in USD.",
		}),
	}
	if reg != nil {
		reg.MustRegister(t.requests, t.tokens, t.cost)
	}
	return t
}

// Record accumulates one completed (or failed) pipeline run.
func (t *UsageTracker) Record(status string, tokensUsed int, costUSD float64, latency time.Duration) {
	t.requests.WithLabelValues(status).Inc()
	t.tokens.Add(float64(tokensUsed))
	t.cost.Add(costUSD)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.snapshot.Requests++
	switch status {
	case UsageStatusFallback:
		t.snapshot.Fallbacks++
	case UsageStatusFailed:
		t.snapshot.Failures++
	}
	t.snapshot.TokensUsed += int64(tokensUsed)
	t.snapshot.EstimatedCost += costUSD
	t.snapshot.TotalLatencyMs += latency.Milliseconds()
}

// Snapshot returns a copy of the current totals.
func (t *UsageTracker) Snapshot() dto.UsageSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot
}
