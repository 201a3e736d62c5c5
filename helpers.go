package inflate

import (
	"net/http"

	"github.com/a-h/templ"
	"go.uber.org/zap"
)

// Render waits for inf within the request's context and writes the inflated
// document.
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    inf := inflate.New(page(), inflate.WithFetcher(fetcher))
//	    inf.Include("card.html", nil)
//	    if err := inflate.Render(w, r, inf); err != nil {
//	        log.Print(err)
//	    }
//	}
//
// Nothing is written if readiness fails, so the caller can still send an
// error response.
func Render(w http.ResponseWriter, r *http.Request, inf *Inflater) error {
	if err := inf.Wait(r.Context()); err != nil {
		return err
	}
	return RenderComponent(w, r, inf.Document().Component())
}

// RenderComponent writes a templ component as an HTML response.
func RenderComponent(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(r.Context(), w)
}

// Handler serves a freshly built and inflated page per request. build
// returns the inflater with its includes already issued. Failures produce a
// 500 response when nothing has been written yet; a stalled page gives 504.
func Handler(build func(r *http.Request) (*Inflater, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inf, err := build(r)
		if err != nil {
			Logger().Error("handler: building page failed",
				zap.String("path", r.URL.Path), zap.Error(err))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		if err := inf.Wait(r.Context()); err != nil {
			status := http.StatusInternalServerError
			if IsNotReadyError(err) {
				status = http.StatusGatewayTimeout
			}
			Logger().Error("handler: page not ready",
				zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
			http.Error(w, http.StatusText(status), status)
			return
		}
		if err := RenderComponent(w, r, inf.Document().Component()); err != nil {
			Logger().Error("handler: render failed",
				zap.String("path", r.URL.Path), zap.Error(err))
		}
	})
}
