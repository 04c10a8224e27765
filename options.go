package srx

import (
	"log/slog"
	"time"
)

// Option configures how a Ruleset is parsed and evaluated.
type Option func(*config)

type config struct {
	matchTimeout time.Duration
	logger       *slog.Logger
}

func defaultConfig() config {
	return config{
		logger: slog.Default(),
	}
}

// WithMatchTimeout bounds a single regex evaluation (default: no limit).
// A match that times out is treated as no match.
func WithMatchTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.matchTimeout = d
		}
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
