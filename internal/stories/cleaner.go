package stories

import (
	"context"
	"log/slog"
	"time"

	"openfeed/internal/core"
	"openfeed/internal/nats"
)

const (
	sweepInterval = time.Hour
	lastRunKey    = "stories-cleanup-last-run"
)

// Cleaner hard-deletes stories past their expiry. Deletion is purely a
// storage reclaim: reads already exclude expired rows, so timing does not
// affect visibility.
type Cleaner struct {
	Logger  *slog.Logger
	Stories core.StoryRepository
	NATS    *nats.NATS
}

func (c *Cleaner) Init(_ context.Context) error {
	c.Logger = c.Logger.With("component", "stories.Cleaner")
	return nil
}

// CleanupOnce deletes every expired story and records the run timestamp in
// the KV bucket. The timestamp is informational, a failed put does not fail
// the run.
func (c *Cleaner) CleanupOnce(ctx context.Context) error {
	deleted, err := c.Stories.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return err
	}

	c.Logger.Info("expired stories deleted", "count", deleted)

	_, err = c.NATS.KV.Put(ctx, lastRunKey, []byte(time.Now().UTC().Format(time.RFC3339)))
	if err != nil {
		c.Logger.Warn("failed to record cleanup run", "error", err)
	}

	return nil
}

// Sweeper runs the cleaner on a fixed interval inside the server process.
type Sweeper struct {
	Logger  *slog.Logger
	Cleaner *Cleaner
}

func (s *Sweeper) Init(_ context.Context) error {
	s.Logger = s.Logger.With("component", "stories.Sweeper")
	return nil
}

func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Cleaner.CleanupOnce(ctx); err != nil {
				s.Logger.Error("story cleanup failed", "error", err)
			}
		}
	}
}

// CleanupRunner is the one-shot variant behind the cleanup subcommand.
type CleanupRunner struct {
	Cleaner *Cleaner
}

func (r *CleanupRunner) Run(ctx context.Context) error {
	return r.Cleaner.CleanupOnce(ctx)
}
