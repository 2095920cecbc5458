package generate

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/bookforge/internal/llm"
)

// Policy bounds retries for backend calls: how many attempts to make and
// how long to back off between them. Both the structure call and content
// calls consume the same policy shape.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// NewPolicy returns a policy allowing the initial attempt plus retries
// extra attempts.
func NewPolicy(retries int) Policy {
	return Policy{
		MaxAttempts: 1 + retries,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
	}
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func (p Policy) Backoff(attempt int) time.Duration {
	base := p.BaseDelay * time.Duration(1<<uint(attempt))
	if base > p.MaxDelay {
		base = p.MaxDelay
	}
	if base < 2 {
		return base
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// Do runs fn up to MaxAttempts times, backing off between attempts as long
// as the error stays transient. Fatal and non-transient errors return
// immediately.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := range attempts {
		lastErr = fn()
		if lastErr == nil || !llm.IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == attempts-1 {
			break
		}
		select {
		case <-time.After(p.Backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
