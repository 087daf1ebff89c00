package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/event-manager/internal/config"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// ResendNotifier emails confirmations through the Resend API.
type ResendNotifier struct {
	client *resend.Client
	from   string
	logger zerolog.Logger
}

// NewResendNotifier constructs a ResendNotifier.
func NewResendNotifier(cfg config.NotifyConfig, logger zerolog.Logger) (*ResendNotifier, error) {
	if cfg.ResendAPIKey == "" {
		return nil, fmt.Errorf("resend: api key is required")
	}
	return &ResendNotifier{
		client: resend.NewClient(cfg.ResendAPIKey),
		from:   formatFrom(cfg.FromName, cfg.From),
		logger: logger,
	}, nil
}

func (n *ResendNotifier) RegistrationConfirmed(ctx context.Context, c Confirmation) error {
	subject, text, html, err := render(c)
	if err != nil {
		return err
	}

	sent, err := n.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{c.AttendeeEmail},
		Subject: subject,
		Html:    html,
		Text:    text,
	})
	if err != nil {
		var rateLimitErr *resend.RateLimitError
		if errors.As(err, &rateLimitErr) {
			n.logger.Warn().
				Str("limit", rateLimitErr.Limit).
				Str("reset", rateLimitErr.Reset).
				Msg("resend rate limit exceeded")
		}
		return fmt.Errorf("resend: %w", err)
	}

	n.logger.Info().Str("email_id", sent.Id).Str("to", c.AttendeeEmail).Msg("confirmation sent via resend")
	return nil
}

func formatFrom(name, address string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}
