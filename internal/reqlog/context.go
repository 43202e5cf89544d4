package reqlog

import (
	"context"
	"net/http"
)

type contextKey string

const requestKey contextKey = "reqlog.request"

// Request is the ambient HTTP request seen by the hook.
type Request struct {
	Method string
	URI    string
}

// WithRequest stores r's method and path (without query) in ctx.
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	if r == nil {
		return ctx
	}

	uri := ""
	if r.URL != nil {
		uri = r.URL.EscapedPath()
	}

	return context.WithValue(ctx, requestKey, Request{
		Method: r.Method,
		URI:    uri,
	})
}

func RequestFromContext(ctx context.Context) (Request, bool) {
	if ctx == nil {
		return Request{}, false
	}

	v, ok := ctx.Value(requestKey).(Request)
	return v, ok
}
