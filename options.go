package inflate

import (
	"context"

	"go.uber.org/zap"
)

// DefaultMarker is the attribute naming the definition to inflate into an
// element.
const DefaultMarker = "inflate"

// Option configures an Inflater.
type Option func(*Inflater)

// WithFetcher sets how resources are retrieved.
func WithFetcher(f Fetcher) Option {
	return func(inf *Inflater) {
		inf.fetcher = f
	}
}

// WithBehaviorSink sets where behavior code goes. Defaults to a ScriptSink on
// the inflater's document.
func WithBehaviorSink(s BehaviorSink) Option {
	return func(inf *Inflater) {
		inf.behavior = s
	}
}

// WithLogger sets the logger. Defaults to the package Logger().
func WithLogger(l *zap.Logger) Option {
	return func(inf *Inflater) {
		inf.logger = l
	}
}

// WithLogging turns trace logging on or off from the start.
func WithLogging(enabled bool) Option {
	return func(inf *Inflater) {
		inf.tracing.Store(enabled)
	}
}

// WithMarker changes the placeholder attribute (default "inflate"). An
// empty attr keeps the default.
func WithMarker(attr string) Option {
	return func(inf *Inflater) {
		if attr != "" {
			inf.marker = attr
		}
	}
}

// WithRegistry shares a definition registry between inflaters.
func WithRegistry(reg *Registry) Option {
	return func(inf *Inflater) {
		inf.registry = reg
	}
}

// WithOnError sets a hook called for every reported problem: fetch
// failures, lookup misses, behavior errors and callback faults.
func WithOnError(fn func(error)) Option {
	return func(inf *Inflater) {
		inf.onError = fn
	}
}

// WithContext sets the context passed to every fetch.
func WithContext(ctx context.Context) Option {
	return func(inf *Inflater) {
		inf.ctx = ctx
	}
}
