package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TSC-DEV-2026/ZionDocs-Frontend/pkg/retry"
)

var errTransient = errors.New("transient")

func TestDo(t *testing.T) {
	t.Parallel()

	t.Run("succeeds first try without waiting", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := retry.Do(context.Background(), func(ctx context.Context) error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries transient failure then succeeds", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := retry.Do(context.Background(), func(ctx context.Context) error {
			calls++
			if calls == 1 {
				return errTransient
			}
			return nil
		}, retry.WithBaseDelay(time.Millisecond))
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("exhausts attempt budget", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := retry.Do(context.Background(), func(ctx context.Context) error {
			calls++
			return errTransient
		}, retry.WithMaxRetries(2), retry.WithBaseDelay(time.Millisecond))
		require.ErrorIs(t, err, errTransient)
		assert.Equal(t, 3, calls, "first attempt plus two retries")
	})

	t.Run("non-retryable failure aborts immediately", func(t *testing.T) {
		t.Parallel()

		permanent := errors.New("bad request")
		calls := 0
		err := retry.Do(context.Background(), func(ctx context.Context) error {
			calls++
			return permanent
		}, retry.WithRetryIf(func(err error) bool { return errors.Is(err, errTransient) }),
			retry.WithBaseDelay(time.Millisecond))
		require.ErrorIs(t, err, permanent)
		assert.Equal(t, 1, calls)
	})

	t.Run("canceled context stops retrying", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := retry.Do(ctx, func(ctx context.Context) error {
			calls++
			cancel()
			return errTransient
		}, retry.WithBaseDelay(time.Millisecond))
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestDoValue(t *testing.T) {
	t.Parallel()

	calls := 0
	v, err := retry.DoValue(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		if calls < 2 {
			return "", errTransient
		}
		return "payload", nil
	}, retry.WithBaseDelay(time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, "payload", v)
}
