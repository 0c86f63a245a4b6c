package server

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/provekit/widget/pkg/protocol"
)

// tracerName is the name of the server's tracer. The tracer resolves
// from the global OpenTelemetry provider; configure the provider in
// main() before starting the server.
const tracerName = "widget-server"

// startFrameSpan opens a span for one inbound frame dispatch.
func startFrameSpan(ctx context.Context, sessionID string, f *protocol.Frame) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	attrs := []attribute.KeyValue{
		attribute.String("widget.frame_type", string(f.Type)),
		attribute.String("widget.session_id", sessionID),
		attribute.Int("widget.route_depth", len(f.Route)),
	}
	if f.Type == protocol.FrameEvent {
		attrs = append(attrs, attribute.Int("widget.handler_id", int(f.Handler)))
	}
	return tracer.Start(ctx,
		fmt.Sprintf("widget.%s", f.Type),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...),
	)
}

// endFrameSpan records the dispatch result and closes the span.
func endFrameSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
