package cmd

import (
	"context"

	"github.com/urfave/cli/v3"

	"openfeed/internal/api"
	"openfeed/internal/changefeed"
	"openfeed/internal/cmd/flags"
	"openfeed/internal/comments"
	"openfeed/internal/feed"
	"openfeed/internal/identity"
	"openfeed/internal/metrics"
	"openfeed/internal/moderation"
	"openfeed/internal/nats"
	"openfeed/internal/persistence"
	"openfeed/internal/posts"
	"openfeed/internal/profiles"
	"openfeed/internal/reactions"
	"openfeed/internal/stories"
)

var serverCmd = &cli.Command{
	Name:  "server",
	Usage: "Run the API server, the change feed and the metrics endpoint",
	Flags: []cli.Flag{
		flags.Listen,
		flags.MetricsListen,
		flags.NATSUrl,
		flags.InitNATS,
		flags.ClassifierTimeout,
		flags.StoryTTL,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c,
			persistence.Provide(),
			nats.Provide(),
			identity.Provide(),
			moderation.Provide(),
			posts.Provide(),
			profiles.Provide(),
			comments.Provide(),
			reactions.Provide(),
			feed.Provide(),
			stories.Provide(),
			changefeed.Provide(),
			metrics.Provide(),
			api.Provide(),
		)
	},
}
