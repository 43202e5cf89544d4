package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/KasumiMercury/gauchoride-api/internal/observability/logging"
	"github.com/KasumiMercury/gauchoride-api/internal/observability/metrics"
	"github.com/KasumiMercury/gauchoride-api/internal/observability/tracing"
)

type HTTPConfig struct {
	// SkipPaths are paths that skip observability
	SkipPaths []string
	Module    logging.Module
	// ModuleResolver picks the module per request; an empty result keeps Module
	ModuleResolver func(*http.Request) logging.Module
	TracerName     string
	Metrics        *metrics.HTTPMetrics
}

type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}

	rw.status = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}

	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// HTTP returns chi-compatible middleware that assigns a request id, starts
// a span, records request metrics and logs the finished request.
func HTTP(cfg HTTPConfig) func(http.Handler) http.Handler {
	skipSet := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skipSet[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, skip := skipSet[r.URL.Path]; skip {
				next.ServeHTTP(w, r)

				return
			}

			if isConnectRequest(r) {
				next.ServeHTTP(w, r)

				return
			}

			start := time.Now()

			requestID := logging.ValidateAndExtractRequestID(r.Header.Get("x-request-id"))
			ctx := logging.WithRequestID(r.Context(), requestID)
			module := cfg.Module
			if cfg.ModuleResolver != nil {
				if resolved := cfg.ModuleResolver(r); resolved != "" {
					module = resolved
				}
			}
			if module != "" {
				ctx = logging.WithModule(ctx, module)
			}

			ctx = tracing.ExtractFromHTTPRequest(ctx, r)

			tracer := otel.Tracer(cfg.TracerName)
			ctx, span := tracer.Start(ctx, fmt.Sprintf("%s %s", r.Method, r.URL.Path))
			defer span.End()

			w.Header().Set("x-request-id", requestID)
			r.Header.Set("x-request-id", requestID)

			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r.WithContext(ctx))

			duration := time.Since(start)
			route := routePattern(r)

			span.SetName(fmt.Sprintf("%s %s", r.Method, route))
			span.SetAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("http.route", route),
				attribute.Int("http.response.status_code", wrapped.status),
			)
			if wrapped.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(wrapped.status))
			}

			cfg.Metrics.Record(ctx, r.Method, route, wrapped.status, duration)

			slog.LogAttrs(ctx, slog.LevelInfo, "request completed",
				slog.String("event", "http.request.finish"),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("route", route),
				slog.String("remote_addr", r.RemoteAddr),
				slog.Int("status", wrapped.status),
				slog.Duration("duration", duration),
			)
		})
	}
}

// routePattern prefers the matched chi pattern so metrics stay low-cardinality.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}

	if r.Pattern != "" {
		return r.Pattern
	}

	return r.URL.Path
}

func isConnectRequest(r *http.Request) bool {
	if r.Header.Get("Connect-Protocol-Version") != "" {
		return true
	}
	contentType := r.Header.Get("Content-Type")
	return strings.HasPrefix(contentType, "application/connect") ||
		strings.HasPrefix(contentType, "application/grpc")
}
