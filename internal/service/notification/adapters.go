package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/notification"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/messaging"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/queue"
)

// MessagingSender sends through the messaging API client.
type MessagingSender struct {
	client *messaging.Client
}

func NewMessagingSender(client *messaging.Client) *MessagingSender {
	return &MessagingSender{client: client}
}

// Send implements notification.Sender. Every failure, timeouts included, is
// an *AdapterError so callers can count it against the recipient.
func (s *MessagingSender) Send(ctx context.Context, msg notification.Message) error {
	_, err := s.client.SendTemplate(ctx, messaging.TemplateMessage{
		To:         msg.Recipient,
		TemplateID: msg.TemplateID,
		Variables:  msg.Variables,
		MediaURL:   msg.MediaURL,
	})
	if err == nil {
		return nil
	}

	var se *messaging.StatusError
	if errors.As(err, &se) {
		return &notification.AdapterError{Recipient: msg.Recipient, Status: se.Status, Body: se.Body}
	}
	return &notification.AdapterError{Recipient: msg.Recipient, Body: err.Error()}
}

// QueuePublisher puts intents on the notification queue.
type QueuePublisher struct {
	publisher *queue.Publisher
}

func NewQueuePublisher(p *queue.Publisher) *QueuePublisher {
	return &QueuePublisher{publisher: p}
}

func (q *QueuePublisher) Publish(ctx context.Context, intent notification.DispatchIntent) error {
	return q.publisher.Publish(ctx, string(intent.Variant), intent)
}

// DecodeIntent parses a queued intent.
func DecodeIntent(body []byte) (notification.DispatchIntent, error) {
	var intent notification.DispatchIntent
	if err := json.Unmarshal(body, &intent); err != nil {
		return notification.DispatchIntent{}, fmt.Errorf("%w: %v", notification.ErrInvalidIntent, err)
	}
	if err := validateIntent(intent); err != nil {
		return notification.DispatchIntent{}, err
	}
	return intent, nil
}

func validateIntent(intent notification.DispatchIntent) error {
	switch {
	case intent.Recipient == "":
		return fmt.Errorf("%w: recipient is empty", notification.ErrInvalidIntent)
	case intent.TemplateID == "":
		return fmt.Errorf("%w: template id is empty", notification.ErrInvalidIntent)
	case !intent.Variant.IsValid():
		return fmt.Errorf("%w: unknown variant %q", notification.ErrInvalidIntent, intent.Variant)
	}
	return nil
}
