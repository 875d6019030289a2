package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimited wraps a client with a token bucket shared by all callers.
type RateLimited struct {
	next    Client
	limiter *rate.Limiter
}

// NewRateLimited allows perMinute requests per minute with a burst of burst.
// A non-positive perMinute returns next unchanged.
func NewRateLimited(next Client, perMinute, burst int) Client {
	if perMinute <= 0 {
		return next
	}
	if burst <= 0 {
		burst = 1
	}
	every := time.Minute / time.Duration(perMinute)
	return &RateLimited{next: next, limiter: rate.NewLimiter(rate.Every(every), burst)}
}

// Complete waits for a token, then delegates.
func (r *RateLimited) Complete(ctx context.Context, req Request) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("llm rate limit: %w", err)
	}
	return r.next.Complete(ctx, req)
}
