package reqlog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes registers handlers on a chi router with the request log hook
// attached to each of them.
type Routes struct {
	router chi.Router
	logger *Logger
}

// Routes returns a registrar over r that wraps each handler with l.
func (l *Logger) Routes(r chi.Router) *Routes {
	return &Routes{router: r, logger: l}
}

// Handle maps every method on pattern to fn.
func (rt *Routes) Handle(pattern string, h Handler, fn http.HandlerFunc) {
	rt.router.Handle(pattern, rt.logger.Wrap(h, fn))
}

// Get maps GET and HEAD on pattern to fn.
func (rt *Routes) Get(pattern string, h Handler, fn http.HandlerFunc) {
	wrapped := rt.logger.Wrap(h, fn)
	rt.router.Method(http.MethodGet, pattern, wrapped)
	rt.router.Method(http.MethodHead, pattern, wrapped)
}

func (rt *Routes) Post(pattern string, h Handler, fn http.HandlerFunc) {
	rt.router.Method(http.MethodPost, pattern, rt.logger.Wrap(h, fn))
}

func (rt *Routes) Put(pattern string, h Handler, fn http.HandlerFunc) {
	rt.router.Method(http.MethodPut, pattern, rt.logger.Wrap(h, fn))
}

func (rt *Routes) Delete(pattern string, h Handler, fn http.HandlerFunc) {
	rt.router.Method(http.MethodDelete, pattern, rt.logger.Wrap(h, fn))
}

func (rt *Routes) Patch(pattern string, h Handler, fn http.HandlerFunc) {
	rt.router.Method(http.MethodPatch, pattern, rt.logger.Wrap(h, fn))
}
