package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"openfeed/pkg/retry"
)

func TestDo(t *testing.T) {
	t.Parallel()

	t.Run("succeeds after transient failures", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := retry.Do(t.Context(), 3, time.Millisecond, func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})

		require.NoError(t, err)
		require.Equal(t, 3, calls)
	})

	t.Run("returns the last error when the budget runs out", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("still broken")
		calls := 0
		err := retry.Do(t.Context(), 3, time.Millisecond, func() error {
			calls++
			return wantErr
		})

		require.ErrorIs(t, err, wantErr)
		require.Equal(t, 3, calls)
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		err := retry.Do(ctx, 5, time.Minute, func() error {
			return errors.New("nope")
		})

		require.ErrorIs(t, err, context.Canceled)
	})
}
