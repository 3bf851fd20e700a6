package signal

import (
	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
)

type options struct {
	name    string
	logger  zerolog.Logger
	clock   clock.Clock
	metrics *Metrics
}

func defaultOptions() options {
	return options{
		name:   "default",
		logger: zerolog.Nop(),
		clock:  clock.New(),
	}
}

func (o *options) apply(opts ...Option) {
	for _, opt := range opts {
		opt(o)
	}
}

// Option configures a Signal or every signal created by a Hub.
type Option func(*options)

// WithName sets the name used in log fields and metric labels.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger sets the logger used for lifecycle events. The default
// logger discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock sets the clock used to measure elapsed wait time. The
// default is the wall clock; tests substitute a mock.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithMetrics instruments the signal with the given metrics, labelled
// by the signal's name.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}
