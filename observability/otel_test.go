package observability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/tailored-agentic-units/flux/observability"
)

type recordingSpan struct {
	noop.Span
	events []string
	config []trace.EventConfig
	status codes.Code
}

func (s *recordingSpan) IsRecording() bool { return true }

func (s *recordingSpan) AddEvent(name string, options ...trace.EventOption) {
	s.events = append(s.events, name)
	s.config = append(s.config, trace.NewEventConfig(options...))
}

func (s *recordingSpan) SetStatus(code codes.Code, description string) {
	s.status = code
}

func TestOTelObserver_RecordsSpanEvents(t *testing.T) {
	span := &recordingSpan{}
	ctx := trace.ContextWithSpan(context.Background(), span)

	obs := observability.NewOTelObserver()
	obs.OnEvent(ctx, observability.Event{
		Type:      "dispatch.start",
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "dispatcher.Dispatch",
		Data: map[string]any{
			"callbacks": 2,
			"payload":   "increment",
			"err":       errors.New("boom"),
		},
	})

	if len(span.events) != 1 {
		t.Fatalf("span received %d events, want 1", len(span.events))
	}
	if span.events[0] != "dispatch.start" {
		t.Errorf("span event name = %q, want %q", span.events[0], "dispatch.start")
	}

	attrs := span.config[0].Attributes()
	// source + severity + three data keys
	if len(attrs) != 5 {
		t.Fatalf("span event has %d attributes, want 5", len(attrs))
	}
	if attrs[0].Key != "source" || attrs[0].Value.AsString() != "dispatcher.Dispatch" {
		t.Errorf("first attribute = %v, want source=dispatcher.Dispatch", attrs[0])
	}
	if attrs[1].Key != "severity" || attrs[1].Value.AsString() != "INFO" {
		t.Errorf("second attribute = %v, want severity=INFO", attrs[1])
	}
	if attrs[2].Key != "callbacks" || attrs[2].Value.AsInt64() != 2 {
		t.Errorf("third attribute = %v, want callbacks=2", attrs[2])
	}
	if attrs[3].Key != "err" || attrs[3].Value.AsString() != "boom" {
		t.Errorf("fourth attribute = %v, want err=boom", attrs[3])
	}
	if span.status != codes.Unset {
		t.Errorf("span status = %v, want Unset for info event", span.status)
	}
}

func TestOTelObserver_ErrorLevelSetsStatus(t *testing.T) {
	span := &recordingSpan{}
	ctx := trace.ContextWithSpan(context.Background(), span)

	observability.NewOTelObserver().OnEvent(ctx, observability.Event{
		Type:   "root.dispatch.error",
		Level:  observability.LevelError,
		Source: "store.Root",
	})

	if span.status != codes.Error {
		t.Errorf("span status = %v, want Error", span.status)
	}
}

func TestOTelObserver_NoSpan(t *testing.T) {
	obs := observability.NewOTelObserver()

	// Background context carries a non-recording span; must not panic.
	obs.OnEvent(context.Background(), observability.Event{
		Type:  "dispatch.start",
		Level: observability.LevelInfo,
	})
}
