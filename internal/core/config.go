package core

import (
	"context"

	"github.com/kelseyhightower/envconfig"
)

// Config holds secrets that never travel through CLI flags.
type Config struct {
	// Postgresql
	DATABASE_URL string `envconfig:"DATABASE_URL"`

	// Gemini classifier
	GEMINI_API_KEY string `envconfig:"GEMINI_API_KEY"`
	GEMINI_API_URL string `envconfig:"GEMINI_API_URL" default:"https://generativelanguage.googleapis.com"`

	// External identity provider
	AUTH_URL      string `envconfig:"AUTH_URL"`
	AUTH_ANON_KEY string `envconfig:"AUTH_ANON_KEY"`
}

func (c *Config) Init(_ context.Context) error {
	err := envconfig.Process("openfeed", c)
	return err
}
