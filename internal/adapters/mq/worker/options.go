package worker

import (
	"github.com/okian/merit/pkg/logger"
)

// Option configures a worker, or every worker of a Pool.
type Option func(*settings)

type settings struct {
	name     string
	logger   logger.Logger
	counters *Counters
}

func newSettings(opts []Option) settings {
	s := settings{name: "worker", logger: logger.Nop()}
	for _, opt := range opts {
		opt(&s)
	}
	if s.counters == nil {
		s.counters = &Counters{}
	}
	return s
}

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

func withCounters(c *Counters) Option {
	return func(s *settings) { s.counters = c }
}
