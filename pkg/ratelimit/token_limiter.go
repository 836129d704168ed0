package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenLimiter enforces a per-minute token budget. Consumers report how many
// tokens a request will spend before issuing it; Wait blocks until the budget
// allows the spend or the context is done.
type TokenLimiter struct {
	mu        sync.Mutex
	maxTokens int
	remaining int
	resetAt   time.Time
}

// NewTokenLimiter creates a limiter with the given tokens-per-minute budget.
func NewTokenLimiter(maxTokensPerMinute int) *TokenLimiter {
	return &TokenLimiter{
		maxTokens: maxTokensPerMinute,
		remaining: maxTokensPerMinute,
		resetAt:   time.Now().Add(time.Minute),
	}
}

// Wait blocks until tokens can be reserved from the current minute window.
// A request larger than the whole budget is allowed through once the window
// is fresh, otherwise it could never proceed.
func (l *TokenLimiter) Wait(ctx context.Context, tokens int) error {
	for {
		l.mu.Lock()
		l.refreshLocked()

		if l.remaining >= tokens || (tokens > l.maxTokens && l.remaining == l.maxTokens) {
			l.remaining -= tokens
			l.mu.Unlock()
			return nil
		}

		wait := time.Until(l.resetAt)
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// GetRemaining returns the tokens left in the current window.
func (l *TokenLimiter) GetRemaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refreshLocked()
	return l.remaining
}

func (l *TokenLimiter) refreshLocked() {
	if time.Now().After(l.resetAt) {
		l.remaining = l.maxTokens
		l.resetAt = time.Now().Add(time.Minute)
	}
}
