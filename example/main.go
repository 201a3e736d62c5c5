package main

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pthm/inflate"
	"github.com/pthm/inflate/example/components"
)

//go:embed web
var webFiles embed.FS

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	inflate.SetLogger(logger)

	web, err := fs.Sub(webFiles, "web")
	if err != nil {
		log.Fatal(err)
	}

	app := &App{
		Store:   NewStore(),
		Web:     web,
		Fetcher: inflate.NewCachingFetcher(inflate.FSFetcher{FS: web}, time.Minute, nil),
	}

	addr := ":8080"
	fmt.Printf("Starting server at http://localhost%s\n", addr)
	if err := http.ListenAndServe(addr, app.Routes()); err != nil {
		log.Fatal(err)
	}
}

// App serves the todo page, inflated on the server, plus the raw bundle
// files for clients that inflate in the browser.
type App struct {
	Store   *Store
	Web     fs.FS
	Fetcher inflate.Fetcher
}

// Routes returns the demo's handler.
func (a *App) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /{$}", inflate.Handler(a.index))
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(a.Web))))
	return mux
}

func (a *App) index(r *http.Request) (*inflate.Inflater, error) {
	f, err := a.Web.Open("index.html")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := inflate.ParseDocument(f)
	if err != nil {
		return nil, err
	}

	inf := inflate.New(doc,
		inflate.WithFetcher(a.Fetcher),
		inflate.WithContext(r.Context()),
	)
	inf.Include("components/todo.html", nil)
	inf.Include("js/app.js", nil)

	err = inf.Ready(func() error {
		list := inflate.ElementByID(doc.Root(), "todos")
		if list == nil {
			return errors.New("layout has no #todos list")
		}
		for _, todo := range a.Store.List() {
			item, err := components.NewTodoItem(inf, todo)
			if err != nil {
				return err
			}
			list.AppendChild(item.Node)
		}
		return nil
	})
	return inf, err
}
