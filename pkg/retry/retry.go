// Package retry wraps an operation in bounded exponential backoff. It is the
// single retrying-call abstraction used at every network boundary; call sites
// parameterize attempt count, backoff base and which failures are retryable.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultMaxRetries = 2
	defaultBaseDelay  = 600 * time.Millisecond
)

type config struct {
	maxRetries uint64
	baseDelay  time.Duration
	retryIf    func(error) bool
}

// Option configures a retry run.
type Option func(*config)

// WithMaxRetries sets how many extra attempts follow the first one.
func WithMaxRetries(n uint64) Option {
	return func(c *config) { c.maxRetries = n }
}

// WithBaseDelay sets the initial backoff interval; subsequent waits grow
// exponentially.
func WithBaseDelay(d time.Duration) Option {
	return func(c *config) { c.baseDelay = d }
}

// WithRetryIf sets the predicate deciding whether a failure is retryable.
// Non-retryable failures abort immediately and are returned as-is.
func WithRetryIf(pred func(error) bool) Option {
	return func(c *config) { c.retryIf = pred }
}

// Do runs op, retrying retryable failures with exponential backoff until the
// attempt budget is exhausted or ctx is canceled. The last error is returned.
func Do(ctx context.Context, op func(ctx context.Context) error, opts ...Option) error {
	cfg := config{
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		retryIf:    func(error) bool { return true },
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = cfg.baseDelay
	eb.RandomizationFactor = 0
	eb.Multiplier = 2
	eb.MaxInterval = cfg.baseDelay * 8

	b := backoff.WithContext(backoff.WithMaxRetries(eb, cfg.maxRetries), ctx)

	err := backoff.Retry(func() error {
		if err := op(ctx); err != nil {
			if !cfg.retryIf(err) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		return nil
	}, b)

	// Unwrap the permanent marker so callers match their own sentinels.
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Err
	}
	return err
}

// DoValue runs op and returns its value, retrying with the same semantics as Do.
func DoValue[T any](ctx context.Context, op func(ctx context.Context) (T, error), opts ...Option) (T, error) {
	var result T
	err := Do(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	}, opts...)
	return result, err
}
