// Package telemetry defines the logging, metrics, and tracing ports used
// throughout the orchestrator. Components depend on these small interfaces
// rather than on goa.design/clue or OpenTelemetry directly, so tests can
// supply no-op or recording fakes without pulling in exporters.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type (
	// Logger emits structured log lines keyed by alternating key/value pairs.
	Logger interface {
		Debug(ctx context.Context, msg string, keyvals ...any)
		Info(ctx context.Context, msg string, keyvals ...any)
		Warn(ctx context.Context, msg string, keyvals ...any)
		Error(ctx context.Context, msg string, keyvals ...any)
	}

	// Metrics records counters, timers, and gauges tagged by key/value pairs.
	Metrics interface {
		IncCounter(name string, value float64, tags ...string)
		RecordTimer(name string, duration time.Duration, tags ...string)
		RecordGauge(name string, value float64, tags ...string)
	}

	// Tracer starts and retrieves spans bound to a context.
	Tracer interface {
		Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, Span)
		Span(ctx context.Context) Span
	}

	// Span is the subset of an OTEL span used by the orchestrator.
	Span interface {
		End(opts ...trace.SpanEndOption)
		AddEvent(name string, attrs ...any)
		SetStatus(code codes.Code, description string)
		RecordError(err error, opts ...trace.EventOption)
	}
)

// noop is a Logger/Metrics that discards everything; used as the default
// when a caller does not wire in a ClueLogger/ClueMetrics.
type noop struct{}

// NewNoopLogger returns a Logger that discards all messages.
func NewNoopLogger() Logger { return noop{} }

func (noop) Debug(context.Context, string, ...any) {}
func (noop) Info(context.Context, string, ...any)  {}
func (noop) Warn(context.Context, string, ...any)  {}
func (noop) Error(context.Context, string, ...any) {}

// NewNoopMetrics returns a Metrics that discards all measurements.
func NewNoopMetrics() Metrics { return noop{} }

func (noop) IncCounter(string, float64, ...string)          {}
func (noop) RecordTimer(string, time.Duration, ...string)   {}
func (noop) RecordGauge(string, float64, ...string)         {}
