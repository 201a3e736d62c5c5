package inflate

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// Fetcher retrieves the text of a resource.
//
// Fetch must call done exactly once, from any goroutine. An empty text with
// a nil error is a successful (empty) resource; a non-nil error is a
// transport failure.
type Fetcher interface {
	Fetch(ctx context.Context, id string, done func(text string, err error))
}

// FetchFunc adapts a synchronous function to Fetcher. The function runs on
// its own goroutine.
type FetchFunc func(ctx context.Context, id string) (string, error)

// Fetch runs f asynchronously.
func (f FetchFunc) Fetch(ctx context.Context, id string, done func(string, error)) {
	go func() {
		done(f(ctx, id))
	}()
}

// noCacheSince asks servers for a full response every time.
const noCacheSince = "Thu, 01 Jan 1970 00:00:00 GMT"

// HTTPFetcher fetches resources with GET requests. Relative identifiers are
// resolved against Base.
type HTTPFetcher struct {
	Client *http.Client
	Base   *url.URL
	Header http.Header
}

// NewHTTPFetcher creates a fetcher resolving identifiers against base. An
// empty base only accepts absolute URLs.
func NewHTTPFetcher(base string, client *http.Client) (*HTTPFetcher, error) {
	f := &HTTPFetcher{Client: client}
	if f.Client == nil {
		f.Client = http.DefaultClient
	}
	if base != "" {
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("inflate: parsing base url: %w", err)
		}
		f.Base = u
	}
	return f, nil
}

// Fetch issues the request on a new goroutine.
func (f *HTTPFetcher) Fetch(ctx context.Context, id string, done func(string, error)) {
	go func() {
		done(f.get(ctx, id))
	}()
}

func (f *HTTPFetcher) resolve(id string) (string, error) {
	ref, err := url.Parse(id)
	if err != nil {
		return "", err
	}
	if f.Base != nil {
		ref = f.Base.ResolveReference(ref)
	}
	if !ref.IsAbs() {
		return "", fmt.Errorf("relative identifier %q without a base url", id)
	}
	return ref.String(), nil
}

func (f *HTTPFetcher) get(ctx context.Context, id string) (string, error) {
	target, err := f.resolve(id)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFetchFailed, id, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFetchFailed, id, err)
	}
	for k, vs := range f.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("If-Modified-Since", noCacheSince)

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFetchFailed, id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s: status %d", ErrFetchFailed, id, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %s: reading body: %v", ErrFetchFailed, id, err)
	}
	return string(body), nil
}

// FSFetcher reads resources from a file system. Identifiers are slash
// separated paths; a leading slash and any query string are ignored.
type FSFetcher struct {
	FS fs.FS
}

// Fetch reads the file on a new goroutine.
func (f FSFetcher) Fetch(ctx context.Context, id string, done func(string, error)) {
	go func() {
		done(f.read(ctx, id))
	}()
}

func (f FSFetcher) read(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFetchFailed, id, err)
	}
	name := id
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimPrefix(path.Clean("/"+name), "/")

	data, err := fs.ReadFile(f.FS, name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFetchFailed, id, err)
	}
	return string(data), nil
}
