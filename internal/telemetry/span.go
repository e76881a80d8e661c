package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "slackmoji.uploader"

// StartSpan starts a new span for a run phase or a single emoji. The caller
// must call the returned end function when the operation completes.
//
//	ctx, end := telemetry.StartSpan(ctx, "uploader.Submit", attribute.String("emoji.name", name))
//	defer end()
func StartSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func()) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, operation,
		trace.WithAttributes(attrs...),
	)
	return ctx, func() { span.End() }
}
