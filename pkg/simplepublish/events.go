package simplepublish

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// NoopEventSink discards all events. Used when no notifier is configured.
type NoopEventSink struct{}

// NewNoopEventSink creates an event sink that does nothing.
func NewNoopEventSink() *NoopEventSink { return &NoopEventSink{} }

func (NoopEventSink) EntityPublished(ctx context.Context, entity *Entity) error { return nil }

func (NoopEventSink) EntityDeleted(ctx context.Context, kind EntityKind, id uuid.UUID) error {
	return nil
}

func (NoopEventSink) OrderReceived(ctx context.Context, order *Order) error { return nil }

// LogEventSink writes events to a structured logger. The production email /
// WhatsApp notifier implements EventSink the same way; this sink stands in
// for it in development and tests.
type LogEventSink struct {
	logger *slog.Logger
}

// NewLogEventSink creates an event sink backed by logger.
func NewLogEventSink(logger *slog.Logger) *LogEventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEventSink{logger: logger}
}

func (s *LogEventSink) EntityPublished(ctx context.Context, entity *Entity) error {
	s.logger.Info("entity published",
		"kind", entity.Kind,
		"id", entity.ID,
		"slug", entity.Slug,
		"published_at", entity.PublishedAt)
	return nil
}

func (s *LogEventSink) EntityDeleted(ctx context.Context, kind EntityKind, id uuid.UUID) error {
	s.logger.Info("entity deleted", "kind", kind, "id", id)
	return nil
}

func (s *LogEventSink) OrderReceived(ctx context.Context, order *Order) error {
	s.logger.Info("order received", "order_id", order.ID, "email", order.Email, "service", order.Service)
	return nil
}
