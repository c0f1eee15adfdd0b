// Package command contains write operations (CQRS - Commands) against the
// record store.
package command

import (
	"log/slog"

	"github.com/alem-hub/gradebook/internal/domain/shared"
)

// publish sends an event if a publisher is configured. A failed publish is
// logged and never fails the command: the store change already happened.
func publish(publisher shared.EventPublisher, logger *slog.Logger, event shared.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(event); err != nil {
		logger.Warn("failed to publish event",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"error", err,
		)
	}
}

func withLogger(logger *slog.Logger, handler string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("handler", handler)
}
