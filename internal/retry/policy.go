// Package retry applies backoff policies to transient failures.
package retry

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/mdxsite/internal/config"
)

// Policy encapsulates retry/backoff settings for transient failures.
// It is immutable after construction.
type Policy struct {
	Mode       config.RetryBackoffMode // fixed|linear|exponential
	Initial    time.Duration           // base delay
	Max        time.Duration           // cap for growth
	MaxRetries int                     // retry attempts after the first failure
}

// DefaultPolicy returns exponential backoff from 500ms, capped at 10s, with
// three retries.
func DefaultPolicy() Policy {
	return Policy{Mode: config.RetryBackoffExponential, Initial: 500 * time.Millisecond, Max: 10 * time.Second, MaxRetries: 3}
}

// FromConfig builds a policy from configuration; zero values fall back to
// the defaults.
func FromConfig(rc config.RetryConfig) Policy {
	p := DefaultPolicy()
	if rc.MaxRetries > 0 {
		p.MaxRetries = rc.MaxRetries
	}
	if rc.Initial > 0 {
		p.Initial = rc.Initial
	}
	if rc.Max > 0 {
		p.Max = rc.Max
	}
	switch rc.Backoff {
	case config.RetryBackoffFixed, config.RetryBackoffLinear, config.RetryBackoffExponential:
		p.Mode = rc.Backoff
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// Delay returns the wait before retry n (1-based).
func (p Policy) Delay(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	var d time.Duration
	switch p.Mode {
	case config.RetryBackoffFixed:
		d = p.Initial
	case config.RetryBackoffLinear:
		d = time.Duration(n) * p.Initial
	default:
		d = p.Initial
		for i := 1; i < n && d < p.Max; i++ {
			d *= 2
		}
	}
	return min(d, p.Max)
}

// Validate ensures invariants; returns error if policy impossible to apply.
func (p Policy) Validate() error {
	if p.Initial <= 0 {
		return fmt.Errorf("initial must be >0")
	}
	if p.Max <= 0 {
		return fmt.Errorf("max must be >0")
	}
	if p.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	return nil
}

// Do calls fn until it succeeds, the retries are used up or ctx is done.
// onRetry, when set, sees every failure that is followed by another attempt.
// The last error is returned.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error, onRetry func(attempt int, wait time.Duration, err error)) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt >= p.MaxRetries {
			return err
		}
		wait := p.Delay(attempt + 1)
		if onRetry != nil {
			onRetry(attempt+1, wait, err)
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("%w (gave up: %w)", err, ctx.Err())
		case <-t.C:
		}
	}
}
