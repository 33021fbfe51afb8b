// Package retry is a minimal fixed-delay retry helper.
package retry

import (
	"context"
	"time"
)

// Do calls f until it succeeds or the attempt budget runs out, sleeping
// delay between attempts. The context cancels the wait, not a running f.
func Do(ctx context.Context, attempts int, delay time.Duration, f func() error) error {
	var err error

	for attempt := 0; attempt < attempts; attempt++ {
		if err = f(); err == nil {
			return nil
		}

		if attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return err
}
