package retry

import (
	"context"
	"errors"
	"net"
	"net/url"
	"time"
)

// Backoff selects how the delay grows between attempts.
type Backoff string

const (
	BackoffLinear      Backoff = "linear"
	BackoffExponential Backoff = "exponential"
)

const defaultBaseDelay = time.Second

// Policy describes how many times a failing call is retried and how long to wait
// in between. A zero Policy performs exactly one attempt.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	Backoff    Backoff
	// Retryable decides whether an error warrants another attempt. Nil means
	// IsNetworkError.
	Retryable func(error) bool
}

// Normalize fills defaults and clamps invalid values.
func (p Policy) Normalize() Policy {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = defaultBaseDelay
	}
	if p.Backoff != BackoffExponential {
		p.Backoff = BackoffLinear
	}
	if p.Retryable == nil {
		p.Retryable = IsNetworkError
	}
	return p
}

// Delay returns the wait before retry number attempt (1-based).
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	if p.Backoff == BackoffExponential {
		return p.BaseDelay * time.Duration(1<<(attempt-1))
	}
	return p.BaseDelay * time.Duration(attempt)
}

// Do calls fn until it succeeds, returns a non-retryable error, or the policy is
// exhausted. onRetry, when set, is called before each wait.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error, onRetry func(attempt int, err error)) error {
	p = p.Normalize()

	attempt := 0
	for {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= p.MaxRetries || !p.Retryable(err) {
			return err
		}
		attempt++

		if onRetry != nil {
			onRetry(attempt, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Delay(attempt)):
		}
	}
}

// IsNetworkError reports whether err is a transport-level failure: a dial, read or
// timeout error, including per-attempt deadline expiry. Caller cancellation and
// HTTP status errors are not network errors.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
