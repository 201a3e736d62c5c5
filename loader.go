package inflate

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/pthm/inflate/lib/bundle"
)

// Include requests a resource once. The kind is chosen by Classify.
//
// Bundles and stylesheets are fetched immediately and in parallel. Behavior
// resources are fetched one at a time in the order they were included,
// because later behavior may depend on earlier: while anything else is in
// flight, a behavior include is queued and issued from the ready pipeline.
//
// onReady, when non-nil, runs after every requested resource has settled and
// the document has been expanded, not merely after this one resource. It is
// attached even when id was included before.
func (inf *Inflater) Include(id string, onReady func() error) {
	kind := Classify(id)
	if kind == KindBehavior && (len(inf.inflight) > 0 || len(inf.chain) > 0) {
		inf.trace("include deferred", zap.String("id", id))
		inf.chain = append(inf.chain, func() {
			inf.request(id, kind, onReady)
		})
		return
	}
	inf.request(id, kind, onReady)
}

func (inf *Inflater) request(id string, kind Kind, onReady func() error) {
	if onReady != nil {
		inf.includeReady = append(inf.includeReady, onReady)
	}

	if _, seen := inf.resources[id]; seen {
		inf.trace("include: already included", zap.String("id", id))
		if onReady != nil {
			// Nothing new will settle to trigger the callback; queue a recheck.
			inf.loop.Post(inf.settle)
		}
		return
	}
	inf.trace("include", zap.String("id", id), zap.Stringer("kind", kind))

	res := &Resource{ID: id, Kind: kind, State: StatePending}
	inf.resources[id] = res
	inf.order = append(inf.order, id)
	inf.inflight[id] = struct{}{}

	var once sync.Once
	inf.fetcher.Fetch(inf.ctx, id, func(text string, err error) {
		once.Do(func() {
			inf.loop.Post(func() {
				inf.complete(res, text, err)
			})
		})
	})
}

// complete applies a finished fetch. Failed resources stay in flight, so
// readiness stalls until the caller gives up on Wait.
func (inf *Inflater) complete(res *Resource, text string, err error) {
	if err != nil {
		if !IsFetchFailure(err) {
			err = fmt.Errorf("%w: %s: %w", ErrFetchFailed, res.ID, err)
		}
		res.State = StateFailed
		res.Err = err
		inf.report(err, "include: request failed", zap.String("id", res.ID))
		return
	}

	switch res.Kind {
	case KindBundle:
		inf.applyBundle(res.ID, text)
	case KindStylesheet:
		inf.doc.InsertStyle(text)
	case KindBehavior:
		inf.runBehavior(res.ID, text)
	}

	res.State = StateFulfilled
	delete(inf.inflight, res.ID)
	inf.settle()
}

// applyBundle parses a bundle and applies its side effects before
// returning: style first, then definitions, then behavior.
func (inf *Inflater) applyBundle(id, text string) {
	b := bundle.Parse(text)

	if b.Style != "" {
		inf.doc.InsertStyle(b.Style)
	}

	for _, d := range b.Definitions {
		inf.trace("define", zap.String("name", d.Name), zap.String("source", id))
	}
	inf.registry.Add(id, b.Definitions...)

	for _, m := range b.Malformed {
		inf.logger.Warn("define: attribute parsing stopped",
			zap.String("source", id),
			zap.Error(fmt.Errorf("%w: %w", ErrMalformedAttributes, m)))
	}

	if strings.TrimSpace(b.Behavior) != "" {
		inf.runBehavior(id, b.Behavior)
	}
}

func (inf *Inflater) runBehavior(id, code string) {
	if err := inf.behavior.RunBehavior(id, code); err != nil {
		inf.report(fmt.Errorf("inflate: behavior %s: %w", id, err), "behavior failed", zap.String("id", id))
	}
}

// settle rechecks readiness from a loop task and keeps callback faults for
// Wait, joined in the order they were raised.
func (inf *Inflater) settle() {
	if err := inf.Recheck(); err != nil {
		if inf.fault == nil {
			inf.fault = err
		} else {
			inf.fault = errors.Join(inf.fault, err)
		}
	}
}

// Resource returns the record for id.
func (inf *Inflater) Resource(id string) (Resource, bool) {
	res, ok := inf.resources[id]
	if !ok {
		return Resource{}, false
	}
	return *res, true
}

// Resources returns every requested resource in request order.
func (inf *Inflater) Resources() []Resource {
	out := make([]Resource, 0, len(inf.order))
	for _, id := range inf.order {
		out = append(out, *inf.resources[id])
	}
	return out
}

// Pending returns the identifiers still in flight, in request order. Failed
// resources are included: they never leave the in-flight set.
func (inf *Inflater) Pending() []string {
	var out []string
	for _, id := range inf.order {
		if _, ok := inf.inflight[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Failed returns resources whose fetch failed.
func (inf *Inflater) Failed() []Resource {
	var out []Resource
	for _, id := range inf.order {
		if res := inf.resources[id]; res.State == StateFailed {
			out = append(out, *res)
		}
	}
	return out
}
