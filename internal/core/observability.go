package core

import (
	"context"
	"log/slog"
	"time"
)

// Logger is the minimal structured logging surface the service emits to.
// Keyvals follow the slog convention of alternating keys and values.
type Logger interface {
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// SlogLogger adapts a *slog.Logger to the service Logger interface.
type SlogLogger struct {
	L *slog.Logger
}

// NewSlogLogger wraps l, defaulting to slog.Default when nil.
func NewSlogLogger(l *slog.Logger) SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return SlogLogger{L: l}
}

// Info logs at info level.
func (s SlogLogger) Info(msg string, keyvals ...any) { s.L.Info(msg, keyvals...) }

// Warn logs at warn level.
func (s SlogLogger) Warn(msg string, keyvals ...any) { s.L.Warn(msg, keyvals...) }

// Error logs at error level.
func (s SlogLogger) Error(msg string, keyvals ...any) { s.L.Error(msg, keyvals...) }

// MetricsRecorder observes service operation outcomes.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

// TraceSpan terminates one traced operation.
type TraceSpan interface {
	End(err error)
}

// Tracer starts spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

type noopTracer struct{}

type noopSpan struct{}

func (noopSpan) End(error) {}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}
