package events

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/vicinity/internal/interfaces"
)

// RegisterAuditLog subscribes a structured-log consumer for the search
// lifecycle events, so every orchestration decision leaves an audit trail
// even when no other component listens.
func RegisterAuditLog(bus interfaces.EventService, logger arbor.ILogger) error {
	if err := bus.Subscribe(interfaces.EventSearchStarted, func(ctx context.Context, event interfaces.Event) error {
		logger.Debug().
			Str("event_type", string(event.Type)).
			Str("payload", fmt.Sprintf("%+v", event.Payload)).
			Msg("Search started")
		return nil
	}); err != nil {
		return err
	}

	if err := bus.Subscribe(interfaces.EventSearchCompleted, func(ctx context.Context, event interfaces.Event) error {
		logger.Info().
			Str("event_type", string(event.Type)).
			Str("payload", fmt.Sprintf("%+v", event.Payload)).
			Msg("Search completed")
		return nil
	}); err != nil {
		return err
	}

	return bus.Subscribe(interfaces.EventProviderSkipped, func(ctx context.Context, event interfaces.Event) error {
		logger.Warn().
			Str("event_type", string(event.Type)).
			Str("payload", fmt.Sprintf("%+v", event.Payload)).
			Msg("Provider skipped by cost guard")
		return nil
	})
}
