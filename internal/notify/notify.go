// Package notify delivers registration confirmations to attendees. The
// transport is chosen by configuration; registration logic only sees the
// Notifier interface.
package notify

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/event-manager/internal/config"
	"github.com/Shivanand-hulikatti/event-manager/internal/model"
	"github.com/rs/zerolog"
)

// Confirmation is everything a transport needs to tell an attendee about a
// completed registration.
type Confirmation struct {
	AttendeeName  string
	AttendeeEmail string
	EventName     string
	Tickets       string // human readable, e.g. "2x VIP, 1x General"
	Total         model.Money
}

// Notifier sends registration confirmations.
type Notifier interface {
	RegistrationConfirmed(ctx context.Context, c Confirmation) error
}

// New builds the Notifier selected by cfg.Provider.
func New(cfg config.NotifyConfig, logger zerolog.Logger) (Notifier, error) {
	logger = logger.With().Str("component", "notify").Str("provider", cfg.Provider).Logger()
	switch cfg.Provider {
	case "", "log":
		return NewLogNotifier(logger), nil
	case "resend":
		return NewResendNotifier(cfg, logger)
	case "ses":
		return NewSESNotifier(cfg, logger), nil
	case "amqp":
		return NewAMQPNotifier(cfg.AMQPURL, cfg.AMQPQueue, logger), nil
	default:
		return nil, fmt.Errorf("unknown notify provider %q", cfg.Provider)
	}
}

// LogNotifier writes the confirmation to the log instead of sending it.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier constructs a LogNotifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) RegistrationConfirmed(ctx context.Context, c Confirmation) error {
	n.logger.Info().
		Str("to", c.AttendeeEmail).
		Str("event", c.EventName).
		Str("tickets", c.Tickets).
		Str("total", c.Total.String()).
		Msg("confirmation email sent")
	return nil
}
