// events/notify.go
package events

import (
	"context"

	"github.com/rs/zerolog/log"

	"grc/metrics"
	"grc/models"
)

// Recipient is one notification target resolved from an event's owner,
// reviewer, or creator.
type Recipient struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// NotificationSink delivers one event-created notification. Delivery is
// fire and forget: errors are logged per recipient, never retried, and
// never fail the event.
type NotificationSink interface {
	Send(ctx context.Context, recipient Recipient, ev *models.Event, template []string) error
}

// templateData builds the consumer-defined payload: recipient display
// name, event title, description, creator name, category — in that
// order.
func templateData(recipient Recipient, ev *models.Event, creatorName string) []string {
	return []string{recipient.Name, ev.Title, ev.Description, creatorName, ev.Category}
}

// LogSink records notifications in the process log. It doubles as the
// default sink when no delivery channel is configured.
type LogSink struct{}

func (LogSink) Send(ctx context.Context, recipient Recipient, ev *models.Event, template []string) error {
	log.Info().
		Str("tenant", ev.OrganizationID.Hex()).
		Str("eventId", ev.EventID).
		Str("recipient", recipient.Email).
		Str("role", recipient.Role).
		Msg("event notification")
	return nil
}

// MultiSink fans one notification out to several sinks; each failure is
// isolated.
type MultiSink []NotificationSink

func (s MultiSink) Send(ctx context.Context, recipient Recipient, ev *models.Event, template []string) error {
	for _, sink := range s {
		if err := sink.Send(ctx, recipient, ev, template); err != nil {
			log.Warn().Err(err).Str("recipient", recipient.Email).Msg("notification sink failed")
			metrics.NotificationsSent.WithLabelValues("error").Inc()
			continue
		}
		metrics.NotificationsSent.WithLabelValues("ok").Inc()
	}
	return nil
}
