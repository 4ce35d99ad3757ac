package repository

import "github.com/okian/jokenpo/pkg/logger"

// Option applies a configuration option to a Store implementation.
type Option func(*options)

type options struct {
	logger logger.Logger
}

// WithLogger sets the logger used to report skipped or failed rows.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
