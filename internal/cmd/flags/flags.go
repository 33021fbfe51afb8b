package flags

import (
	"fmt"
	"slices"
	"time"

	libnats "github.com/nats-io/nats.go"
	"github.com/urfave/cli/v3"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

var LogLevel = &cli.StringFlag{
	Name:    "log-level",
	Aliases: []string{"l"},
	Usage:   "The level of the logs",
	Value:   "info",
	Validator: func(value string) error {
		if !slices.Contains(validLogLevels, value) {
			return fmt.Errorf("invalid log level: %s, allowed values are: %s", value, validLogLevels)
		}
		return nil
	},
	Sources: cli.EnvVars("LOG_LEVEL"),
}

var Listen = &cli.StringFlag{
	Name:    "listen",
	Usage:   "The address the API server listens on",
	Value:   ":8080",
	Sources: cli.EnvVars("LISTEN_ADDR"),
}

var MetricsListen = &cli.StringFlag{
	Name:    "metrics-listen",
	Usage:   "The address the metrics server listens on",
	Value:   ":9090",
	Sources: cli.EnvVars("METRICS_LISTEN_ADDR"),
}

var NATSUrl = &cli.StringFlag{
	Name:    "nats-url",
	Aliases: []string{"n"},
	Usage:   "The URL of the NATS server",
	Value:   libnats.DefaultURL,
	Sources: cli.EnvVars("NATS_URL"),
}

var InitNATS = &cli.BoolFlag{
	Name:        "nats-init",
	Aliases:     []string{"i"},
	Usage:       "Initialize the NATS server: create streams, buckets, etc.",
	DefaultText: "false",
	Value:       false,
	Sources:     cli.EnvVars("NATS_INIT"),
}

var ClassifierTimeout = &cli.DurationFlag{
	Name:    "classifier-timeout",
	Usage:   "Upper bound on a single moderation call",
	Value:   8 * time.Second,
	Sources: cli.EnvVars("CLASSIFIER_TIMEOUT"),
}

var StoryTTL = &cli.DurationFlag{
	Name:    "story-ttl",
	Usage:   "How long a story stays visible after creation",
	Value:   24 * time.Hour,
	Sources: cli.EnvVars("STORY_TTL"),
}
