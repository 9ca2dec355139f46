package services

import (
	"context"

	"inventorycart/internal/events"
	"inventorycart/internal/logging"
	"inventorycart/internal/metrics"
)

// publish hands an event to the publisher after a committed mutation.
// Failures are logged and counted; they never fail the caller.
func publish(ctx context.Context, publisher events.Publisher, event events.Event) {
	if publisher == nil {
		return
	}
	logger := logging.FromContext(ctx)
	if err := publisher.Publish(ctx, event); err != nil {
		metrics.EventsPublished.WithLabelValues(event.Type, "error").Inc()
		logger.Warn().Err(err).Str("event_type", event.Type).Str("key", event.Key).Msg("failed to publish event")
		return
	}
	metrics.EventsPublished.WithLabelValues(event.Type, "ok").Inc()
	logger.Debug().Str("event_type", event.Type).Str("key", event.Key).Msg("published event")
}
