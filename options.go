package mrengine

import "log/slog"

type options struct {
	logger     *Logger
	numWorkers int
}

// Option configures New.
type Option func(*options)

// WithLogger sets the structured logger used for fan-out/reduce/cancel
// diagnostics. Pass nil to disable logging entirely.
func WithLogger(logger *Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithLogLevel is a convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) { o.logger = NewTextLogger(level) }
}

// WithWorkers sets the number of goroutines in the local fork/join
// pool. If unset or <= 0, runtime.GOMAXPROCS(0) is used (fjpool.New's
// own default).
func WithWorkers(n int) Option {
	return func(o *options) { o.numWorkers = n }
}

func applyOptions(optFns []Option) options {
	o := options{logger: NoopLogger()}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
