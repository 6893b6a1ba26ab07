package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrBudgetExhausted is returned once the per-window request budget is spent.
var ErrBudgetExhausted = errors.New("request budget exhausted")

// Limiter throttles outbound source requests: a token bucket smooths bursts
// and a per-window budget caps the total, similar to an API quota.
type Limiter struct {
	mu        sync.Mutex
	bucket    *rate.Limiter
	used      int
	denied    int
	maxPerWin int
	window    time.Duration
	resetTime time.Time
	now       func() time.Time
	logger    *slog.Logger
}

// New creates a limiter allowing perSecond requests (burst burst) and at
// most maxPerWindow requests per window. Zero perSecond means no smoothing;
// zero maxPerWindow means no budget.
func New(perSecond float64, burst, maxPerWindow int, window time.Duration, logger *slog.Logger) *Limiter {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst < 1 {
		burst = 1
	}
	if window <= 0 {
		window = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Limiter{
		bucket:    rate.NewLimiter(limit, burst),
		maxPerWin: maxPerWindow,
		window:    window,
		resetTime: time.Now().Add(window),
		now:       time.Now,
		logger:    logger,
	}
}

// Wait reserves one request from the budget and then blocks until the token
// bucket allows it or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.take(); err != nil {
		return err
	}
	if err := l.bucket.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

func (l *Limiter) take() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checkReset()

	if l.maxPerWin > 0 && l.used >= l.maxPerWin {
		l.denied++
		if l.denied == 1 {
			l.logger.Warn("Request budget reached", "used", l.used, "limit", l.maxPerWin, "reset_time", l.resetTime)
		}
		return ErrBudgetExhausted
	}

	l.used++
	return nil
}

// GetStats returns current limiter statistics.
func (l *Limiter) GetStats() map[string]interface{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	return map[string]interface{}{
		"used":       l.used,
		"limit":      l.maxPerWin,
		"denied":     l.denied,
		"reset_time": l.resetTime,
	}
}

// checkReset starts a new window once the current one has passed.
// Callers hold l.mu.
func (l *Limiter) checkReset() {
	now := l.now()
	if now.Before(l.resetTime) {
		return
	}
	if l.used > 0 || l.denied > 0 {
		l.logger.Debug("Resetting request budget", "used", l.used, "denied", l.denied)
	}
	l.used = 0
	l.denied = 0
	l.resetTime = now.Add(l.window)
}
