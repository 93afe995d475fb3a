package backend

import (
	"context"
	"log/slog"
	"time"
)

// CallEvent records metadata about a single backend call.
type CallEvent struct {
	Op        string
	Method    string
	Path      string
	RequestID string
	Status    int
	Attempts  int
	Latency   time.Duration
	Success   bool
	ErrorCode string
}

// Observer receives one event per backend call.
type Observer interface {
	OnCallComplete(ctx context.Context, event CallEvent)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(context.Context, CallEvent) {}

type logObserver struct {
	logger *slog.Logger
}

// NewLogObserver logs backend_call events to logger.
func NewLogObserver(logger *slog.Logger) Observer {
	if logger == nil {
		return NoopObserver{}
	}
	return &logObserver{logger: logger}
}

func (o *logObserver) OnCallComplete(ctx context.Context, e CallEvent) {
	attrs := []any{
		"op", e.Op,
		"method", e.Method,
		"path", e.Path,
		"request_id", e.RequestID,
		"status", e.Status,
		"attempts", e.Attempts,
		"latency_ms", e.Latency.Milliseconds(),
		"success", e.Success,
	}
	if !e.Success {
		attrs = append(attrs, "error_code", e.ErrorCode)
		o.logger.WarnContext(ctx, "backend_call", attrs...)
		return
	}
	o.logger.DebugContext(ctx, "backend_call", attrs...)
}
