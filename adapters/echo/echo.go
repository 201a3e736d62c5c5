// Package inflateecho provides Echo framework integration for inflate.
//
// Serve a directory of bundles to browsers and inflate pages on the server
// from the same files:
//
//	e := echo.New()
//	srv := inflateecho.Mount(e, os.DirFS("web"))
//
//	e.GET("/", func(c echo.Context) error {
//	    inf := srv.NewInflater(page())
//	    inf.Include("components/card.html", nil)
//	    return inflateecho.Render(c, inf)
//	})
//
// Or mount on a group with middleware:
//
//	g := e.Group("/app", authMiddleware)
//	srv := inflateecho.MountGroup(g, os.DirFS("web"))
package inflateecho

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/pthm/inflate"
)

// Option configures Mount and MountGroup.
type Option func(*options)

type options struct {
	path string
	ttl  time.Duration
}

// WithPath sets the URL path prefix bundles are served under.
// Defaults to "/_inflate/".
func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// WithCacheTTL sets how long server-side inflaters reuse a fetched file.
// Defaults to one minute; zero disables expiry.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.ttl = ttl
	}
}

// Server serves bundle files and builds inflaters reading the same files.
type Server struct {
	Path    string
	FS      fs.FS
	fetcher *inflate.CachingFetcher
}

// Mount serves fsys on an Echo instance.
func Mount(e *echo.Echo, fsys fs.FS, opts ...Option) *Server {
	srv := newServer(fsys, opts)
	e.GET(srv.Path+"*", srv.serve)
	return srv
}

// MountGroup serves fsys on an Echo group, sharing the group's middleware.
func MountGroup(g *echo.Group, fsys fs.FS, opts ...Option) *Server {
	srv := newServer(fsys, opts)
	g.GET(srv.Path+"*", srv.serve)
	return srv
}

func newServer(fsys fs.FS, opts []Option) *Server {
	o := &options{path: "/_inflate/", ttl: time.Minute}
	for _, opt := range opts {
		opt(o)
	}
	if !strings.HasSuffix(o.path, "/") {
		o.path += "/"
	}

	return &Server{
		Path:    o.path,
		FS:      fsys,
		fetcher: inflate.NewCachingFetcher(inflate.FSFetcher{FS: fsys}, o.ttl, nil),
	}
}

// Fetcher returns the cached fetcher reading the served files.
func (s *Server) Fetcher() inflate.Fetcher {
	return s.fetcher
}

// NewInflater creates an inflater for doc fetching from the served files.
// opts are applied after the fetcher, so they may replace it.
func (s *Server) NewInflater(doc *inflate.Document, opts ...inflate.Option) *inflate.Inflater {
	return inflate.New(doc, append([]inflate.Option{inflate.WithFetcher(s.fetcher)}, opts...)...)
}

// URL returns the browser-facing URL of a served identifier.
func (s *Server) URL(id string) string {
	return s.Path + strings.TrimPrefix(id, "/")
}

func (s *Server) serve(c echo.Context) error {
	name := strings.TrimPrefix(path.Clean("/"+c.Param("*")), "/")
	data, err := fs.ReadFile(s.FS, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return err
	}

	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.Blob(http.StatusOK, contentType(name), data)
}

func contentType(name string) string {
	switch inflate.Classify(name) {
	case inflate.KindBehavior:
		return "text/javascript; charset=utf-8"
	case inflate.KindStylesheet:
		return "text/css; charset=utf-8"
	default:
		return echo.MIMETextHTMLCharsetUTF8
	}
}

// Render waits for inf within the request's context and writes the inflated
// document. A page still waiting on resources when the request ends gives
// 504.
//
//	func handler(c echo.Context) error {
//	    inf := srv.NewInflater(page())
//	    inf.Include("components/card.html", nil)
//	    return inflateecho.Render(c, inf)
//	}
func Render(c echo.Context, inf *inflate.Inflater) error {
	if err := inf.Wait(c.Request().Context()); err != nil {
		if inflate.IsNotReadyError(err) {
			return echo.NewHTTPError(http.StatusGatewayTimeout).SetInternal(err)
		}
		return err
	}
	return RenderComponent(c, inf.Document().Component())
}

// RenderComponent writes a templ component to the Echo response.
//
//	func handler(c echo.Context) error {
//	    return inflateecho.RenderComponent(c, inf.Component("Card"))
//	}
func RenderComponent(c echo.Context, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	return component.Render(c.Request().Context(), c.Response())
}
