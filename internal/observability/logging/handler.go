package logging

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Handler decorates JSON records with service, request and trace fields.
type Handler struct {
	inner         slog.Handler
	serviceInfo   ServiceInfo
	env           Environment
	defaultModule Module
}

type HandlerConfig struct {
	ServiceInfo   ServiceInfo
	Environment   Environment
	DefaultModule Module
}

func NewHandler(w io.Writer, opts *slog.HandlerOptions, cfg HandlerConfig) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{Level: slog.LevelDebug}
	}

	originalReplaceAttr := opts.ReplaceAttr
	opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) == 0 {
			switch a.Key {
			case slog.TimeKey:
				a.Key = "timestamp"
			case slog.LevelKey:
				a.Key = "severity"
			case slog.MessageKey:
				a.Key = "message"
			}
		}

		if originalReplaceAttr != nil {
			return originalReplaceAttr(groups, a)
		}

		return a
	}

	return &Handler{
		inner:         slog.NewJSONHandler(w, opts),
		serviceInfo:   cfg.ServiceInfo,
		env:           cfg.Environment,
		defaultModule: cfg.DefaultModule,
	}
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	hasEvent := false
	hasModule := false
	hasRequestID := false

	r.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case "event":
			hasEvent = true
		case "module":
			hasModule = true
		case "x-request-id":
			hasRequestID = true
		}

		return true
	})

	if !hasEvent {
		r.AddAttrs(slog.String("event", "log.emit"))
	}

	r.AddAttrs(
		slog.String("service.name", h.serviceInfo.Name),
		slog.String("service.version", h.serviceInfo.Version),
		slog.String("service.revision", h.serviceInfo.Revision),
		slog.String("env", string(h.env)),
	)

	// Records outside a request carry no request id rather than a fresh one.
	if !hasRequestID {
		if requestID := RequestIDFromContext(ctx); requestID != "" {
			r.AddAttrs(slog.String("x-request-id", requestID))
		}
	}

	if !hasModule {
		module := ModuleFromContext(ctx)
		if module == "" {
			module = h.defaultModule
		}

		if module != "" {
			r.AddAttrs(slog.String("module", string(module)))
		}
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
			slog.Bool("trace_sampled", sc.IsSampled()),
		)
	}

	return h.inner.Handle(ctx, r)
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.with(h.inner.WithAttrs(attrs))
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return h.with(h.inner.WithGroup(name))
}

func (h *Handler) with(inner slog.Handler) *Handler {
	return &Handler{
		inner:         inner,
		serviceInfo:   h.serviceInfo,
		env:           h.env,
		defaultModule: h.defaultModule,
	}
}
