// Package retry provides bounded retries with exponential backoff and jitter.
//
// Retrying is a cross-cutting concern: callers wrap individual external call
// sites with Do and supply a classifier deciding which errors are worth
// another attempt. A Policy with MaxAttempts <= 1 disables retries entirely,
// so the same call sites serve both retrying and isolation-only setups.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Policy configures retry behavior for a call site.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Values <= 1 mean the operation runs exactly once.
	MaxAttempts int
	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration
	// MaxDelay caps the delay between attempts.
	MaxDelay time.Duration
	// Factor is the exponential growth factor applied after each retry.
	Factor float64
	// Jitter is the fraction of the delay randomized in both directions,
	// in the range 0.0-1.0.
	Jitter float64
}

// DefaultPolicy returns the policy used for catalog API calls.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  4,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Factor:       2.0,
		Jitter:       0.2,
	}
}

// None returns a policy that runs the operation exactly once.
func None() Policy {
	return Policy{MaxAttempts: 1}
}

// Classifier reports whether an error is worth retrying.
type Classifier func(error) bool

// Any is the fallback classifier: everything except context errors is
// considered transient.
func Any(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// ExhaustedError wraps the final error after all attempts failed.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry: giving up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Do runs op until it succeeds, a permanent error occurs, the context is
// canceled, or the policy's attempts are exhausted. A nil classifier falls
// back to Any.
func Do(ctx context.Context, p Policy, retryable Classifier, op func(context.Context) error) error {
	if retryable == nil {
		retryable = Any
	}
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := p.InitialDelay
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		sleep := delay + jitter(delay, p.Jitter)
		if p.MaxDelay > 0 && sleep > p.MaxDelay {
			sleep = p.MaxDelay
		}
		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return ctx.Err()
		}

		delay = time.Duration(float64(delay) * p.Factor)
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}

	if attempts == 1 {
		return lastErr
	}
	return &ExhaustedError{Attempts: attempts, Err: lastErr}
}

func jitter(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 {
		return 0
	}
	spread := float64(d) * fraction
	return time.Duration((rand.Float64() - 0.5) * 2 * spread)
}
