// Package retry implements bounded exponential backoff for operations
// that hit transient storage contention.
package retry

import (
	"context"
	"time"
)

// Policy describes how many times to attempt an operation and how long
// to wait between attempts. The delay doubles after every failure up to
// MaxDelay (unlimited when zero).
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
}

// DefaultPolicy matches the contention profile of short row-level lock
// waits: three attempts, 100ms first delay, doubling.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		Multiplier:   2,
	}
}

// Do runs fn until it succeeds, the attempts are exhausted, or the
// context is cancelled. retryable decides whether an error is worth
// another attempt; a nil retryable retries everything. The last error
// is returned when all attempts fail.
func (p Policy) Do(ctx context.Context, fn func() error, retryable func(error) bool) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.InitialDelay

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		if p.Multiplier > 0 {
			delay = time.Duration(float64(delay) * p.Multiplier)
		}
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
	return err
}
