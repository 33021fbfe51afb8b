package config

import "time"

type Config struct {
	LogLevel string `flag:"log-level"`

	ListenAddr  string `flag:"listen"`
	MetricsAddr string `flag:"metrics-listen"`

	NATSURL  string `flag:"nats-url"`
	NATSInit bool   `flag:"nats-init"`

	ClassifierTimeout time.Duration `flag:"classifier-timeout"`

	StoryTTL time.Duration `flag:"story-ttl"`
}
