package inflate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestReady_NothingIncludedRunsImmediately(t *testing.T) {
	doc := parsePage(t, `<div inflate="A"></div>`)
	inf := New(doc)
	define(inf, "static", `<body name="A">a</body>`)

	called := false
	err := inf.Ready(func() error {
		called = true
		if got := bodyHTML(t, doc); got != `<div>a</div>` {
			t.Errorf("document not expanded before ready: %s", got)
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Ready() error = %v", err)
	}
	if !called {
		t.Error("Ready() should run the callback before returning")
	}
}

func TestReady_StageOrder(t *testing.T) {
	var events []string
	doc := parsePage(t, `<div inflate="A"></div>`)
	f := NewTestFetcher()
	inf := New(doc, WithFetcher(f), WithBehaviorSink(BehaviorFunc(func(source, code string) error {
		events = append(events, "behavior "+source)
		return nil
	})))

	inf.Include("a.html", func() error {
		events = append(events, "include callback: "+bodyHTML(t, doc))
		return nil
	})
	inf.Include("x.js", nil)
	if err := inf.Ready(func() error {
		events = append(events, "global callback")
		return nil
	}); err != nil {
		t.Fatalf("Ready() error = %v", err)
	}

	f.Respond("a.html", `<body name="A">a</body>`)
	if err := inf.RunPending(); err != nil {
		t.Fatalf("RunPending() error = %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("callbacks ran while x.js was still deferred: %v", events)
	}

	f.Respond("x.js", "x()")
	if err := inf.RunPending(); err != nil {
		t.Fatalf("RunPending() error = %v", err)
	}

	want := []string{
		"behavior x.js",
		"include callback: <div>a</div>",
		"global callback",
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("event order mismatch (-want +got):\n%s", diff)
	}
}

func TestReady_NestedIncludeDefersLaterCallbacks(t *testing.T) {
	var events []string
	doc := parsePage(t, `<div inflate="B"></div>`)
	f := NewTestFetcher()
	inf := New(doc, WithFetcher(f))

	inf.Include("a.html", func() error {
		events = append(events, "cb1")
		inf.Include("b.html", nil)
		return nil
	})
	if err := inf.Ready(func() error {
		events = append(events, "cb2: "+bodyHTML(t, doc))
		return nil
	}); err != nil {
		t.Fatalf("Ready() error = %v", err)
	}

	f.Respond("a.html", `<body name="A">a</body>`)
	if err := inf.RunPending(); err != nil {
		t.Fatalf("RunPending() error = %v", err)
	}
	if diff := cmp.Diff([]string{"cb1"}, events); diff != "" {
		t.Fatalf("cb2 should wait for b.html (-want +got):\n%s", diff)
	}

	f.Respond("b.html", `<body name="B">b</body>`)
	if err := inf.RunPending(); err != nil {
		t.Fatalf("RunPending() error = %v", err)
	}

	want := []string{"cb1", "cb2: <div>b</div>"}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("event order mismatch (-want +got):\n%s", diff)
	}
}

func TestReady_CallbackRunsOnce(t *testing.T) {
	f := NewTestFetcher()
	inf := New(nil, WithFetcher(f))

	calls := 0
	inf.Include("a.html", func() error {
		calls++
		return nil
	})
	f.Respond("a.html", "")
	if err := inf.RunPending(); err != nil {
		t.Fatalf("RunPending() error = %v", err)
	}

	inf.Include("b.css", nil)
	f.Respond("b.css", "")
	if err := inf.RunPending(); err != nil {
		t.Fatalf("RunPending() error = %v", err)
	}
	if err := inf.Recheck(); err != nil {
		t.Fatalf("Recheck() error = %v", err)
	}

	if calls != 1 {
		t.Errorf("callback ran %d times, want 1", calls)
	}
}

func TestReady_FaultStopsDrain(t *testing.T) {
	tests := []struct {
		name    string
		fail    func() error
		message string
	}{
		{"returned error", func() error { return errors.New("boom") }, "boom"},
		{"panic", func() error { panic("kaboom") }, "panic: kaboom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reported []error
			f := NewTestFetcher()
			inf := New(nil, WithFetcher(f), WithOnError(func(err error) { reported = append(reported, err) }))

			later := false
			inf.Include("a.html", nil)
			_ = inf.Ready(tt.fail)
			_ = inf.Ready(func() error {
				later = true
				return nil
			})

			f.Respond("a.html", "")
			err := inf.RunPending()

			if !IsCallbackFault(err) || !strings.Contains(err.Error(), tt.message) {
				t.Fatalf("RunPending() error = %v, want callback fault with %q", err, tt.message)
			}
			if later {
				t.Error("callbacks after a fault should wait for the next recheck")
			}
			if len(reported) != 1 {
				t.Errorf("reported %d errors, want 1", len(reported))
			}

			if err := inf.Recheck(); err != nil {
				t.Fatalf("Recheck() error = %v", err)
			}
			if !later {
				t.Error("Recheck() should resume the remaining callbacks")
			}
		})
	}
}

func TestReady_FaultReturnedDirectly(t *testing.T) {
	inf := New(nil)

	err := inf.Ready(func() error { return errors.New("boom") })

	if !IsCallbackFault(err) {
		t.Errorf("Ready() error = %v, want callback fault", err)
	}
	if !inf.Idle() {
		t.Error("the faulting callback should be removed from the queue")
	}
}

func TestReady_ReentrantRegistration(t *testing.T) {
	var events []string
	inf := New(nil)

	err := inf.Ready(func() error {
		events = append(events, "outer start")
		if err := inf.Ready(func() error {
			events = append(events, "inner")
			return nil
		}); err != nil {
			return err
		}
		events = append(events, "outer end")
		return nil
	})

	if err != nil {
		t.Fatalf("Ready() error = %v", err)
	}
	want := []string{"outer start", "outer end", "inner"}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("event order mismatch (-want +got):\n%s", diff)
	}
}

func TestWait_AsyncFetcher(t *testing.T) {
	doc := parsePage(t, `<div inflate="A"></div>`)
	fetch := FetchFunc(func(ctx context.Context, id string) (string, error) {
		time.Sleep(5 * time.Millisecond)
		return `<body name="A" class="a">` + id + `</body>`, nil
	})
	inf := New(doc, WithFetcher(fetch))

	inf.Include("a.html", nil)
	ready := false
	if err := inf.Ready(func() error {
		ready = true
		return nil
	}); err != nil {
		t.Fatalf("Ready() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := inf.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	if !ready {
		t.Error("ready callback did not run")
	}
	if diff := cmp.Diff(`<div class="a">a.html</div>`, bodyHTML(t, doc)); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestWait_FaultThenResume(t *testing.T) {
	f := NewTestFetcher()
	inf := New(nil, WithFetcher(f))

	inf.Include("a.html", func() error { return errors.New("boom") })
	later := false
	_ = inf.Ready(func() error {
		later = true
		return nil
	})
	f.Respond("a.html", "")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := inf.Wait(ctx); !IsCallbackFault(err) {
		t.Fatalf("Wait() error = %v, want callback fault", err)
	}
	if err := inf.Wait(ctx); err != nil {
		t.Fatalf("second Wait() error = %v", err)
	}
	if !later {
		t.Error("second Wait() should run the remaining callbacks")
	}
}

func TestLogging_Toggle(t *testing.T) {
	inf := New(nil)
	if inf.tracing.Load() {
		t.Fatal("tracing should be off by default")
	}
	inf.Logging(true)
	if !inf.tracing.Load() {
		t.Error("Logging(true) should enable tracing")
	}
	if !New(nil, WithLogging(true)).tracing.Load() {
		t.Error("WithLogging(true) should enable tracing")
	}
}

func TestRunPending_JoinsFaults(t *testing.T) {
	f := NewTestFetcher()
	inf := New(nil, WithFetcher(f))

	inf.Include("a.html", func() error { return errors.New("first") })
	_ = inf.Ready(func() error { return errors.New("second") })
	f.Respond("a.html", "")
	// A repeat include with a callback queues another settle behind the
	// completion, which resumes the drain after the first fault.
	inf.Include("a.html", func() error { return nil })

	err := inf.RunPending()

	if !IsCallbackFault(err) {
		t.Fatalf("RunPending() error = %v, want callback fault", err)
	}
	for _, msg := range []string{"first", "second"} {
		if !strings.Contains(err.Error(), msg) {
			t.Errorf("RunPending() error = %v, missing %q", err, msg)
		}
	}
	if !inf.Idle() {
		t.Error("every callback should have been consumed")
	}
	if err := inf.RunPending(); err != nil {
		t.Errorf("faults should be returned once, got %v", err)
	}
}
