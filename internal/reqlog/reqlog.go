// Package reqlog logs which handler serves each HTTP request.
//
// Routes registered through Routes carry explicit Handler metadata. Right
// before the handler runs, Logger.Before emits one line of the form
//
//	===== GET /api/systemInfo handled by GetSystemInfo in api.SystemInfoHandler
//
// unless the declaring type is on the stoplist or there is no request in
// the context.
package reqlog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// Handler identifies the function serving a route.
type Handler struct {
	// Type is the declaring type identifier, e.g. "api.SystemInfoHandler".
	Type string
	// Func is the handler function name, e.g. "GetSystemInfo".
	Func string
}

// Stoplist is an immutable set of declaring types excluded from logging.
type Stoplist struct {
	set map[string]struct{}
}

// NewStoplist builds a Stoplist from types, ignoring blank entries.
func NewStoplist(types ...string) Stoplist {
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		if t = strings.TrimSpace(t); t != "" {
			set[t] = struct{}{}
		}
	}

	return Stoplist{set: set}
}

// Contains reports whether typ is stoplisted.
func (s Stoplist) Contains(typ string) bool {
	_, ok := s.set[typ]
	return ok
}

// Len returns the number of stoplisted types.
func (s Stoplist) Len() int {
	return len(s.set)
}

// Format renders the request log line.
func Format(method, uri, fn, typ string) string {
	return fmt.Sprintf("===== %s %s handled by %s in %s", method, uri, fn, typ)
}

// Logger emits the request log line for handlers that are not stoplisted.
type Logger struct {
	logger   *slog.Logger
	stoplist Stoplist
}

// New returns a Logger writing to logger, or to slog.Default when nil.
func New(logger *slog.Logger, stoplist Stoplist) *Logger {
	return &Logger{
		logger:   logger,
		stoplist: stoplist,
	}
}

// Before logs the handler about to serve the request in ctx. It is a no-op
// when ctx carries no request or h.Type is stoplisted.
func (l *Logger) Before(ctx context.Context, h Handler) {
	req, ok := RequestFromContext(ctx)
	if !ok {
		return
	}

	if l.stoplist.Contains(h.Type) {
		return
	}

	logger := l.logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.LogAttrs(ctx, slog.LevelInfo, Format(req.Method, req.URI, h.Func, h.Type),
		slog.String("event", "http.handler.enter"),
	)
}

// Wrap runs Before on the request's goroutine, then next.
func (l *Logger) Wrap(h Handler, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(WithRequest(r.Context(), r))

		l.Before(r.Context(), h)

		next.ServeHTTP(w, r)
	})
}
