package inflate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Ready registers fn to run once every included resource has settled and
// the document has been expanded. With nothing in flight it runs before
// Ready returns, along with anything else due; a fault raised in that drain
// is returned.
func (inf *Inflater) Ready(fn func() error) error {
	inf.globalReady = append(inf.globalReady, fn)
	return inf.Recheck()
}

// Recheck drains the ready stages if nothing is in flight:
//
//  1. deferred behavior includes, one at a time;
//  2. expansion of the whole document;
//  3. callbacks passed to Include;
//  4. callbacks passed to Ready.
//
// Any step that starts a new fetch stops the drain; the next completion
// resumes it from step 1. A callback that fails or panics is removed from
// its queue, stops the drain, and its fault is returned.
func (inf *Inflater) Recheck() error {
	if inf.busy() {
		return nil
	}
	if inf.draining {
		inf.rearm = true
		return nil
	}

	inf.draining = true
	defer func() { inf.draining = false }()
	for {
		inf.rearm = false
		if err := inf.drain(); err != nil {
			return err
		}
		if !inf.rearm || inf.busy() {
			return nil
		}
	}
}

func (inf *Inflater) busy() bool {
	return len(inf.inflight) > 0
}

func (inf *Inflater) drain() error {
	for len(inf.chain) > 0 {
		inf.chain[0]()
		inf.chain = inf.chain[1:]
		if inf.busy() {
			return nil
		}
	}

	inf.ExpandDocument()

	inf.trace("ready: includes")
	if err := inf.drainStage(&inf.includeReady); err != nil || inf.busy() {
		return err
	}

	inf.trace("ready: global")
	if err := inf.drainStage(&inf.globalReady); err != nil || inf.busy() {
		return err
	}

	inf.trace("ready: all")
	return nil
}

func (inf *Inflater) drainStage(queue *[]func() error) error {
	for len(*queue) > 0 {
		err := call((*queue)[0])
		*queue = (*queue)[1:]
		if err != nil {
			inf.report(err, "ready: exception in callback")
			return err
		}
		if inf.busy() {
			return nil
		}
	}
	return nil
}

// call runs fn, turning a returned error or a panic into a callback fault.
func call(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrCallbackFault, r)
		}
	}()
	if err := fn(); err != nil {
		return fmt.Errorf("%w: %w", ErrCallbackFault, err)
	}
	return nil
}

// Idle reports whether nothing is in flight or queued.
func (inf *Inflater) Idle() bool {
	return !inf.busy() &&
		len(inf.chain) == 0 &&
		len(inf.includeReady) == 0 &&
		len(inf.globalReady) == 0 &&
		inf.loop.Pending() == 0
}

// RunPending applies queued fetch completions on the calling goroutine and
// returns the callback faults they raised, joined.
func (inf *Inflater) RunPending() error {
	inf.loop.RunPending()
	return inf.takeFault()
}

// Wait drives the loop until the inflater is idle, a ready callback faults,
// or ctx ends. It rechecks first, so a drain stopped by an earlier fault
// resumes and the document is expanded at least once.
//
// Failed fetches never settle, so Wait on an inflater with a failed include
// blocks until ctx ends; the returned error then lists what is still
// pending and joins the fetch failures.
func (inf *Inflater) Wait(ctx context.Context) error {
	if err := inf.Recheck(); err != nil {
		return err
	}

	err := inf.loop.Run(ctx, func() bool {
		return inf.fault != nil || inf.Idle()
	})
	if fault := inf.takeFault(); fault != nil {
		return fault
	}
	if err != nil {
		return inf.stalled(err)
	}
	inf.trace("wait: ready")
	return nil
}

func (inf *Inflater) takeFault() error {
	err := inf.fault
	inf.fault = nil
	return err
}

func (inf *Inflater) stalled(cause error) error {
	errs := []error{fmt.Errorf("%w: waiting for [%s]: %w",
		ErrNotReady, strings.Join(inf.Pending(), ", "), cause)}
	for _, res := range inf.Failed() {
		errs = append(errs, res.Err)
	}
	err := errors.Join(errs...)
	inf.logger.Warn("wait: gave up", zap.Strings("pending", inf.Pending()), zap.Error(cause))
	return err
}
