package inflate

import (
	"context"
	"strings"
	"sync"
	"testing/fstest"
	"time"
)

// TestFetcher is a Fetcher whose responses are released by the test, so
// completion order can be scripted independently of request order.
//
//	f := inflate.NewTestFetcher()
//	inf := inflate.New(nil, inflate.WithFetcher(f))
//	inf.Include("a.js", nil)
//	f.Respond("a.js", "...")
//	err := inf.RunPending()
type TestFetcher struct {
	mu       sync.Mutex
	requests []string
	waiting  map[string][]func(string, error)
}

// NewTestFetcher creates an empty TestFetcher.
func NewTestFetcher() *TestFetcher {
	return &TestFetcher{waiting: make(map[string][]func(string, error))}
}

// Fetch records the request and holds it until Respond or Fail.
func (f *TestFetcher) Fetch(_ context.Context, id string, done func(string, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, id)
	f.waiting[id] = append(f.waiting[id], done)
}

// Requests returns every requested identifier in request order.
func (f *TestFetcher) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.requests))
	copy(out, f.requests)
	return out
}

// Count returns how many times id was requested.
func (f *TestFetcher) Count(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r == id {
			n++
		}
	}
	return n
}

// Respond completes the oldest outstanding request for id with text.
// It reports false when no request for id is outstanding.
func (f *TestFetcher) Respond(id, text string) bool {
	return f.release(id, text, nil)
}

// Fail completes the oldest outstanding request for id with err.
func (f *TestFetcher) Fail(id string, err error) bool {
	return f.release(id, "", err)
}

func (f *TestFetcher) release(id, text string, err error) bool {
	f.mu.Lock()
	queue := f.waiting[id]
	if len(queue) == 0 {
		f.mu.Unlock()
		return false
	}
	done := queue[0]
	f.waiting[id] = queue[1:]
	f.mu.Unlock()

	done(text, err)
	return true
}

// TestResult holds the outcome of TestInflate.
type TestResult struct {
	HTML      string
	Document  *Document
	Inflater  *Inflater
	Resources []Resource
}

// HTMLContains reports whether the rendered document contains s.
func (r *TestResult) HTMLContains(s string) bool {
	return strings.Contains(r.HTML, s)
}

// TestInflate parses page, includes each identifier from files (an
// in-memory file system keyed by path), waits up to five seconds for
// readiness and returns the rendered document.
//
//	result, err := inflate.TestInflate(page, map[string]string{
//	    "card.html": cardBundle,
//	}, "card.html")
func TestInflate(page string, files map[string]string, includes ...string) (*TestResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return TestInflateContext(ctx, page, files, includes...)
}

// TestInflateContext is TestInflate waiting until ctx ends instead of a
// fixed five seconds, so a test expecting a stall can give up quickly.
func TestInflateContext(ctx context.Context, page string, files map[string]string, includes ...string) (*TestResult, error) {
	doc, err := ParseDocument(strings.NewReader(page))
	if err != nil {
		return nil, err
	}

	fsys := fstest.MapFS{}
	for name, text := range files {
		fsys[strings.TrimPrefix(name, "/")] = &fstest.MapFile{Data: []byte(text)}
	}

	inf := New(doc, WithFetcher(FSFetcher{FS: fsys}), WithContext(ctx))
	for _, id := range includes {
		inf.Include(id, nil)
	}

	if err := inf.Wait(ctx); err != nil {
		return nil, err
	}

	return &TestResult{
		HTML:      doc.String(),
		Document:  doc,
		Inflater:  inf,
		Resources: inf.Resources(),
	}, nil
}
