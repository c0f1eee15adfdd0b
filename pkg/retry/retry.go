// Package retry re-runs operations against Redis with exponential backoff.
// Two policies exist: Startup, used while the server waits for Redis to come
// up, and Cache, used for report invalidations that must not be lost to a
// single dropped connection.
package retry

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MARKERS
// ══════════════════════════════════════════════════════════════════════════════

type retryableError struct{ err error }

func (e retryableError) Error() string { return e.err.Error() }
func (e retryableError) Unwrap() error { return e.err }

// Retryable marks err as worth another attempt under a policy whose ShouldRetry
// is nil. Do strips the mark from the error it finally returns.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return retryableError{err: err}
}

// IsRetryable reports whether err carries the Retryable mark.
func IsRetryable(err error) bool {
	var r retryableError
	return errors.As(err, &r)
}

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent stops retrying regardless of the policy.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// IsPermanent reports whether err carries the Permanent mark.
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

// ══════════════════════════════════════════════════════════════════════════════
// POLICY
// ══════════════════════════════════════════════════════════════════════════════

// Policy describes how often and how long to retry.
type Policy struct {
	// Attempts counts the first call. Values below 1 mean 1.
	Attempts int

	// BaseDelay is the pause after the first failure; it doubles each time up
	// to MaxDelay.
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// Jitter spreads each pause by ±Jitter of its length (0 to 1).
	Jitter float64

	// ShouldRetry decides whether a failure is transient. Nil retries only
	// errors marked with Retryable.
	ShouldRetry func(error) bool

	// OnRetry is called before each pause.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Startup retries any failure for roughly ten seconds.
func Startup(onRetry func(attempt int, err error, delay time.Duration)) Policy {
	return Policy{
		Attempts:    5,
		BaseDelay:   200 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		Jitter:      0.2,
		ShouldRetry: func(error) bool { return true },
		OnRetry:     onRetry,
	}
}

// Cache makes three quick attempts, retrying only Retryable errors.
func Cache() Policy {
	return Policy{
		Attempts:  3,
		BaseDelay: 20 * time.Millisecond,
		MaxDelay:  200 * time.Millisecond,
		Jitter:    0.1,
	}
}

// Do runs op until it succeeds, fails permanently, runs out of attempts, or
// ctx ends. The returned error is op's last error without retry marks; if ctx
// ended before op ever ran, it is ctx's error.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := max(p.Attempts, 1)

	var lastErr error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return unmark(lastErr)
			}
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if IsPermanent(err) || !p.retriable(err) || attempt >= attempts {
			return unmark(err)
		}

		delay := p.Backoff(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, unmark(err), delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return unmark(lastErr)
		case <-timer.C:
		}
	}
}

func (p Policy) retriable(err error) bool {
	if p.ShouldRetry != nil {
		return p.ShouldRetry(err)
	}
	return IsRetryable(err)
}

// Backoff returns the pause after the given failed attempt (1-based).
func (p Policy) Backoff(attempt int) time.Duration {
	delay := p.BaseDelay
	for i := 1; i < attempt && (p.MaxDelay <= 0 || delay < p.MaxDelay); i++ {
		delay *= 2
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}

	if p.Jitter > 0 {
		spread := float64(delay) * min(p.Jitter, 1)
		delay += time.Duration(spread * (rand.Float64()*2 - 1))
	}
	return max(delay, 0)
}

func unmark(err error) error {
	for {
		switch e := err.(type) {
		case retryableError:
			err = e.err
		case permanentError:
			err = e.err
		default:
			return err
		}
	}
}
