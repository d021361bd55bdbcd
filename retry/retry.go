// Copyright (c) 2026 FractalDB Authors. All rights reserved.

/*
Package retry wraps a fallible operation with an exponential backoff and
full-jitter policy, as described in §5. It is built atop
[github.com/cloudflare/backoff], the same package the wider example
corpus reaches for when retrying transient backend failures.
*/
package retry

import (
	"context"
	"time"

	"github.com/cloudflare/backoff"
)

// Policy configures retry behaviour for a single operation, a collection,
// or a database. A zero-value Policy performs no retries: MaxAttempts
// defaults to 1 via [Policy.attempts].
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	// Zero or negative means "no retries" (a single attempt).
	MaxAttempts int
	// MinTimeout is the initial backoff duration.
	MinTimeout time.Duration
	// MaxTimeout caps the backoff duration.
	MaxTimeout time.Duration
	// MaxTotalTime bounds the wall-clock time spent across all attempts,
	// including sleeps. Zero means unbounded.
	MaxTotalTime time.Duration
	// Retryable decides whether err warrants another attempt. A nil
	// Retryable treats every non-nil error as retryable.
	Retryable func(err error) bool
}

// None is the zero policy: a single attempt, no retries.
var None = Policy{}

func (p Policy) attempts() int {
	if p.MaxAttempts <= 0 {
		return 1
	}
	return p.MaxAttempts
}

func (p Policy) retryable(err error) bool {
	if p.Retryable == nil {
		return true
	}
	return p.Retryable(err)
}

// Resolve applies the operation > collection > database precedence rule
// from §5: the first non-nil override in (operation, collection, database)
// wins in its entirety; policies are not merged field-by-field.
func Resolve(operation, collection, database *Policy) Policy {
	for _, p := range []*Policy{operation, collection, database} {
		if p != nil {
			return *p
		}
	}
	return None
}

// Do runs fn up to p's configured attempts, sleeping between attempts with
// exponential backoff and full jitter. It stops early if ctx is cancelled
// or fn returns a non-retryable error, and returns fn's last error (or
// ctx.Err()) if every attempt is exhausted.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	min := p.MinTimeout
	if min <= 0 {
		min = 50 * time.Millisecond
	}
	max := p.MaxTimeout
	if max <= 0 {
		max = 2 * time.Second
	}

	b := backoff.New(max, min)

	var deadline time.Time
	if p.MaxTotalTime > 0 {
		deadline = timeNow().Add(p.MaxTotalTime)
	}

	var lastErr error
	for attempt := 1; attempt <= p.attempts(); attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !p.retryable(lastErr) {
			return lastErr
		}
		if attempt == p.attempts() {
			break
		}
		if !deadline.IsZero() && timeNow().After(deadline) {
			break
		}

		if err := sleep(ctx, b.Duration()); err != nil {
			return err
		}
	}
	return lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// timeNow is indirected so tests can observe deterministic deadlines
// without depending on wall-clock timing.
var timeNow = time.Now
