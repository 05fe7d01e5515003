package bootstrap

import (
	"time"
)

// Option configures the App during creation.
type Option func(*appOptions)

type appOptions struct {
	gracefulTimeout *time.Duration
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithGracefulTimeout sets the maximum duration of the stop hooks.
// Non-positive values keep the default.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		if d > 0 {
			o.gracefulTimeout = &d
		}
	}
}
