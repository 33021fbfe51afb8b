package cmd

import (
	"context"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"openfeed/internal/cmd/flags"
	"openfeed/internal/nats"
	"openfeed/internal/persistence"
	"openfeed/internal/stories"
)

// cleanupStoriesCmd hard-deletes stories past their expiry. It is idempotent
// and safe to run on a schedule, concurrently with reads: the read paths
// already exclude expired rows.
var cleanupStoriesCmd = &cli.Command{
	Name:  "cleanup-stories",
	Usage: "Delete all stories past their expiry",
	Flags: []cli.Flag{
		flags.NATSUrl,
		flags.InitNATS,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c,
			persistence.Provide(),
			nats.Provide(),
			pal.Provide(&stories.Cleaner{}),
			pal.Provide(&stories.CleanupRunner{}),
		)
	},
}
