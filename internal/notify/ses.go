package notify

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/event-manager/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/rs/zerolog"
)

// SESNotifier emails confirmations through AWS SES.
type SESNotifier struct {
	client *ses.Client
	from   string
	logger zerolog.Logger
}

// NewSESNotifier constructs an SESNotifier using static credentials.
func NewSESNotifier(cfg config.NotifyConfig, logger zerolog.Logger) *SESNotifier {
	awsCfg := aws.Config{
		Region: cfg.SES.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.SES.AccessKeyID, cfg.SES.SecretAccessKey, ""),
		),
	}
	return &SESNotifier{
		client: ses.NewFromConfig(awsCfg),
		from:   formatFrom(cfg.FromName, cfg.From),
		logger: logger,
	}
}

func (n *SESNotifier) RegistrationConfirmed(ctx context.Context, c Confirmation) error {
	subject, text, html, err := render(c)
	if err != nil {
		return err
	}

	out, err := n.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(n.from),
		Destination: &types.Destination{ToAddresses: []string{c.AttendeeEmail}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(html), Charset: aws.String("UTF-8")},
				Text: &types.Content{Data: aws.String(text), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses: send email: %w", err)
	}

	n.logger.Info().
		Str("message_id", aws.ToString(out.MessageId)).
		Str("to", c.AttendeeEmail).
		Msg("confirmation sent via ses")
	return nil
}
