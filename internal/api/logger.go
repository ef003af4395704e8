package api

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

// traceHandler decorates every record with the trace and span ids of the
// request it was logged under, so booking log lines join up with their
// traces.
type traceHandler struct {
	next slog.Handler
}

func (h traceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}

	return h.next.Handle(ctx, r)
}

func (h traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return traceHandler{next: h.next.WithAttrs(attrs)}
}

func (h traceHandler) WithGroup(name string) slog.Handler {
	return traceHandler{next: h.next.WithGroup(name)}
}

// SetupGlobalHandler installs the process-wide JSON logger. Both the API
// server and the notifier call this first thing in main.
func SetupGlobalHandler(serviceName string) {
	handler := traceHandler{next: slog.NewJSONHandler(os.Stdout, nil)}
	slog.SetDefault(slog.New(handler).With(slog.String("service", serviceName)))

	slog.Info("Logger initialized", slog.String("service", serviceName))
}
