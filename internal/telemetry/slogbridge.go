package telemetry

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// SlogBridge decorates an slog.Handler so log lines emitted during a run
// phase or a per-emoji span carry that span's trace_id and span_id. Records
// logged outside any span pass through untouched.
type SlogBridge struct {
	inner slog.Handler
}

func NewSlogBridge(inner slog.Handler) *SlogBridge {
	return &SlogBridge{inner: inner}
}

func (h *SlogBridge) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle stamps the record with the active span context, if any, before
// handing it to the wrapped handler.
func (h *SlogBridge) Handle(ctx context.Context, record slog.Record) error {
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		record.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return h.inner.Handle(ctx, record)
}

func (h *SlogBridge) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SlogBridge{inner: h.inner.WithAttrs(attrs)}
}

func (h *SlogBridge) WithGroup(name string) slog.Handler {
	return &SlogBridge{inner: h.inner.WithGroup(name)}
}
