package taskd

import "github.com/lacewing-labs/taskd/pkg/log"

// Option configures optional behavior of a Taskd instance.
type Option func(*options)

type options struct {
	logger  log.Logger
	plugins []Plugin
}

func defaultOptions() options {
	return options{logger: log.NewNoopLogger()}
}

// WithLogger sets a custom logger. If not provided, a no-op logger is
// used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithPlugin registers a plugin to be initialized when the manager
// enters Running and shut down when it leaves. Plugins are initialized
// in registration order and shut down in reverse order.
func WithPlugin(p Plugin) Option {
	return func(o *options) { o.plugins = append(o.plugins, p) }
}
