// Package inflate loads component bundles into an HTML document and expands
// placeholder elements into full component markup.
//
// A bundle is a text file holding an optional style region, any number of
// named body regions and an optional behavior region (see lib/bundle).
// Including a bundle fetches it, inserts its style at the front of the
// document head, registers its bodies as definitions and hands its behavior
// to a BehaviorSink. Elements carrying an inflate attribute are then
// replaced in place by the named definition:
//
//	<div id="card1" inflate="Card" class="wide"></div>
//
// becomes the Card body, with the definition's attributes merged onto the
// div (class tokens are added, other attributes overwritten) and the
// inflate attribute removed.
//
// # Loading
//
// Include is idempotent per identifier and classifies resources by suffix:
// ".css" resources are inserted as stylesheets, ".js" resources go to the
// behavior sink, anything else is parsed as a bundle. Bundles and
// stylesheets load in parallel; behavior resources load one at a time in
// the order they were included.
//
//	inf := inflate.New(doc, inflate.WithFetcher(fetcher))
//	inf.Include("components/card.html", nil)
//	inf.Include("lib/app.js", nil)
//	inf.Ready(func() error {
//	    card, err := inf.NewElement("Card")
//	    ...
//	})
//	err := inf.Wait(ctx)
//
// # Readiness
//
// Once nothing is in flight the inflater drains, in order: deferred behavior
// includes, a full expansion of the document, callbacks passed to Include,
// and callbacks passed to Ready. A callback that includes more resources
// pauses the drain until they settle, and the next pass starts again with
// expansion so freshly loaded definitions are in place before the remaining
// callbacks run.
//
// A failed fetch never settles. Readiness stalls until the caller's context
// ends, at which point Wait reports what is pending and why.
//
// # Concurrency
//
// The engine is single threaded. Fetchers may complete on any goroutine, but
// completions are queued on a Loop and applied by Wait or RunPending, so
// callbacks and behavior sinks always run on the goroutine driving the
// inflater.
package inflate
