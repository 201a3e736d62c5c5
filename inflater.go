package inflate

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"
)

// Inflater loads bundles into a document and expands its placeholders.
//
// An Inflater is not safe for concurrent use. Call Include and Ready before
// Wait, or from ready callbacks and behavior sinks, which always run on the
// goroutine driving Wait or RunPending. Fetchers may complete on any
// goroutine; their results are queued on the inflater's Loop.
type Inflater struct {
	doc      *Document
	registry *Registry
	loop     *Loop
	fetcher  Fetcher
	behavior BehaviorSink
	logger   *zap.Logger
	marker   string
	onError  func(error)
	ctx      context.Context
	tracing  atomic.Bool

	resources map[string]*Resource
	order     []string
	inflight  map[string]struct{}

	// Stage queues, drained in this order once nothing is in flight.
	chain        []func()
	includeReady []func() error
	globalReady  []func() error

	draining bool
	rearm    bool
	fault    error
}

// New creates an inflater working on doc. A nil doc gets an empty document.
func New(doc *Document, opts ...Option) *Inflater {
	if doc == nil {
		doc = NewDocument()
	}
	inf := &Inflater{
		doc:       doc,
		loop:      NewLoop(),
		marker:    DefaultMarker,
		ctx:       context.Background(),
		resources: make(map[string]*Resource),
		inflight:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(inf)
	}
	if inf.registry == nil {
		inf.registry = NewRegistry()
	}
	if inf.logger == nil {
		inf.logger = Logger()
	}
	if inf.behavior == nil {
		inf.behavior = ScriptSink{Doc: doc}
	}
	if inf.fetcher == nil {
		inf.fetcher = FetchFunc(func(context.Context, string) (string, error) {
			return "", errors.New("no fetcher configured")
		})
	}
	return inf
}

// Document returns the document being inflated.
func (inf *Inflater) Document() *Document {
	return inf.doc
}

// Registry returns the definition registry.
func (inf *Inflater) Registry() *Registry {
	return inf.registry
}

// Loop returns the loop fetch completions are queued on.
func (inf *Inflater) Loop() *Loop {
	return inf.loop
}

// Logging turns trace logging of includes, definitions, inflation and ready
// stages on or off. Errors are logged regardless.
func (inf *Inflater) Logging(enabled bool) {
	inf.tracing.Store(enabled)
}

func (inf *Inflater) trace(msg string, fields ...zap.Field) {
	if inf.tracing.Load() {
		inf.logger.Debug(msg, fields...)
	}
}

// report logs err and hands it to the error hook.
func (inf *Inflater) report(err error, msg string, fields ...zap.Field) {
	inf.logger.Error(msg, append(fields, zap.Error(err))...)
	if inf.onError != nil {
		inf.onError(err)
	}
}
