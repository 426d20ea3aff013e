package observability

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTelObserver records events as span events on the span carried by the
// event context. Events emitted outside a recording span are dropped.
// Error-level events also mark the span status as Error.
type OTelObserver struct{}

// NewOTelObserver creates an OTelObserver.
func NewOTelObserver() *OTelObserver {
	return &OTelObserver{}
}

func (o *OTelObserver) OnEvent(ctx context.Context, event Event) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	attrs := make([]attribute.KeyValue, 0, len(event.Data)+2)
	attrs = append(attrs,
		attribute.String("source", event.Source),
		attribute.String("severity", event.Level.String()),
	)
	for _, k := range slices.Sorted(maps.Keys(event.Data)) {
		attrs = append(attrs, toAttribute(k, event.Data[k]))
	}

	span.AddEvent(
		string(event.Type),
		trace.WithTimestamp(event.Timestamp),
		trace.WithAttributes(attrs...),
	)

	if event.Level >= LevelError {
		span.SetStatus(codes.Error, string(event.Type))
	}
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	case error:
		return attribute.String(key, v.Error())
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}
