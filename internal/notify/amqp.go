package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// RegistrationConfirmedMessage is the payload published for each successful
// registration. Downstream consumers deliver the actual email.
type RegistrationConfirmedMessage struct {
	MessageID     string `json:"message_id"`
	AttendeeName  string `json:"attendee_name"`
	AttendeeEmail string `json:"attendee_email"`
	EventName     string `json:"event_name"`
	Tickets       string `json:"tickets"`
	Total         string `json:"total"`
	ConfirmedAt   string `json:"confirmed_at"`
}

const (
	amqpDialTimeout = 30 * time.Second
	amqpHeartbeat   = 10 * time.Second
)

// AMQPNotifier publishes confirmations to a durable RabbitMQ queue.
type AMQPNotifier struct {
	url    string
	queue  string
	logger zerolog.Logger
	now    func() time.Time
}

// NewAMQPNotifier constructs an AMQPNotifier. No connection is made until
// the first publish.
func NewAMQPNotifier(url, queue string, logger zerolog.Logger) *AMQPNotifier {
	return &AMQPNotifier{url: url, queue: queue, logger: logger, now: time.Now}
}

func (n *AMQPNotifier) message(c Confirmation) RegistrationConfirmedMessage {
	return RegistrationConfirmedMessage{
		MessageID:     uuid.NewString(),
		AttendeeName:  c.AttendeeName,
		AttendeeEmail: c.AttendeeEmail,
		EventName:     c.EventName,
		Tickets:       c.Tickets,
		Total:         c.Total.String(),
		ConfirmedAt:   n.now().UTC().Format(time.RFC3339),
	}
}

func (n *AMQPNotifier) RegistrationConfirmed(ctx context.Context, c Confirmation) error {
	msg := n.message(c)
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("amqp: marshal message: %w", err)
	}

	timeout := amqpDialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if timeout <= 0 {
		return fmt.Errorf("amqp: dial: %w", context.DeadlineExceeded)
	}

	// DefaultDial bounds both the TCP connect and the AMQP handshake.
	conn, err := amqp.DialConfig(n.url, amqp.Config{
		Heartbeat: amqpHeartbeat,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
	if err != nil {
		return fmt.Errorf("amqp: dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp: open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(n.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("amqp: declare queue: %w", err)
	}

	err = ch.PublishWithContext(ctx, "", n.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.MessageID,
		Timestamp:    n.now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("amqp: publish: %w", err)
	}

	n.logger.Info().Str("message_id", msg.MessageID).Str("queue", n.queue).Msg("confirmation published")
	return nil
}
