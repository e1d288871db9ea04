// Package audit records every domain event to the structured log.
package audit

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/frahmantamala/worklog/internal/core/events"
)

// Subscriber is the bus surface audit needs; *events.EventBus satisfies it.
type Subscriber interface {
	Subscribe(eventType string, handler events.Handler)
}

type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger.With("component", "audit")}
}

// Register subscribes the audit log to every published event type.
func (l *Logger) Register(bus Subscriber) {
	for _, t := range events.All() {
		bus.Subscribe(t, l.Handle)
	}
}

func (l *Logger) Handle(ctx context.Context, e events.Event) error {
	attrs := []any{
		"event_id", e.EventID(),
		"event_type", e.EventType(),
		"occurred_at", e.OccurredAt(),
	}
	if data, ok := e.Payload().(map[string]interface{}); ok {
		for _, k := range slices.Sorted(maps.Keys(data)) {
			attrs = append(attrs, k, data[k])
		}
	}
	l.logger.InfoContext(ctx, "audit", attrs...)
	return nil
}
