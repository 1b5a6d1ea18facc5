// Package queue publishes and consumes JSON messages on an Azure Service Bus queue.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

const contentTypeJSON = "application/json"

// Publisher sends JSON bodies to one queue.
type Publisher struct {
	client *azservicebus.Client
	sender *azservicebus.Sender
	queue  string
}

func NewPublisher(connectionString, queueName string) (*Publisher, error) {
	client, err := azservicebus.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create service bus client: %w", err)
	}
	sender, err := client.NewSender(queueName, nil)
	if err != nil {
		_ = client.Close(context.Background())
		return nil, fmt.Errorf("failed to create sender for %s: %w", queueName, err)
	}
	return &Publisher{client: client, sender: sender, queue: queueName}, nil
}

// Publish marshals v and sends it. subject is stored on the message for
// filtering in the portal and may be empty.
func (p *Publisher) Publish(ctx context.Context, subject string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	contentType := contentTypeJSON
	msg := &azservicebus.Message{Body: body, ContentType: &contentType}
	if subject != "" {
		msg.Subject = &subject
	}

	if err := p.sender.SendMessage(ctx, msg, nil); err != nil {
		return fmt.Errorf("failed to send to %s: %w", p.queue, err)
	}
	return nil
}

func (p *Publisher) Close(ctx context.Context) error {
	return errors.Join(p.sender.Close(ctx), p.client.Close(ctx))
}

// Handler processes one message body. A returned error dead-letters the
// message; nil completes it.
type Handler func(ctx context.Context, body []byte) error

// receiver is the part of *azservicebus.Receiver the consumer needs.
type receiver interface {
	ReceiveMessages(ctx context.Context, maxMessages int, options *azservicebus.ReceiveMessagesOptions) ([]*azservicebus.ReceivedMessage, error)
	CompleteMessage(ctx context.Context, message *azservicebus.ReceivedMessage, options *azservicebus.CompleteMessageOptions) error
	DeadLetterMessage(ctx context.Context, message *azservicebus.ReceivedMessage, options *azservicebus.DeadLetterOptions) error
	Close(ctx context.Context) error
}

type ConsumerOptions struct {
	BatchSize int           // default 10
	IdleWait  time.Duration // default 2s
}

// Consumer receives from one queue until its context is cancelled.
type Consumer struct {
	client   *azservicebus.Client
	receiver receiver
	queue    string
	opts     ConsumerOptions
}

func NewConsumer(connectionString, queueName string, opts ConsumerOptions) (*Consumer, error) {
	client, err := azservicebus.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create service bus client: %w", err)
	}
	r, err := client.NewReceiverForQueue(queueName, nil)
	if err != nil {
		_ = client.Close(context.Background())
		return nil, fmt.Errorf("failed to create receiver for %s: %w", queueName, err)
	}
	return newConsumer(client, r, queueName, opts), nil
}

func newConsumer(client *azservicebus.Client, r receiver, queueName string, opts ConsumerOptions) *Consumer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}
	if opts.IdleWait <= 0 {
		opts.IdleWait = 2 * time.Second
	}
	return &Consumer{client: client, receiver: r, queue: queueName, opts: opts}
}

// Run blocks until ctx is done or receiving fails.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	slog.Info("queue consumer started", "queue", c.queue, "batch_size", c.opts.BatchSize)

	for {
		msgs, err := c.receiver.ReceiveMessages(ctx, c.opts.BatchSize, nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to receive from %s: %w", c.queue, err)
		}

		if len(msgs) == 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.opts.IdleWait):
			}
			continue
		}

		for _, msg := range msgs {
			c.process(ctx, msg, handle)
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg *azservicebus.ReceivedMessage, handle Handler) {
	if err := handle(ctx, msg.Body); err != nil {
		reason := "PROCESSING_FAILED"
		desc := err.Error()
		slog.Warn("queue message dead-lettered", "queue", c.queue, "message_id", msg.MessageID, "error", err)
		if dlErr := c.receiver.DeadLetterMessage(ctx, msg, &azservicebus.DeadLetterOptions{
			Reason:           &reason,
			ErrorDescription: &desc,
		}); dlErr != nil {
			slog.Error("failed to dead-letter message", "queue", c.queue, "message_id", msg.MessageID, "error", dlErr)
		}
		return
	}

	if err := c.receiver.CompleteMessage(ctx, msg, nil); err != nil {
		slog.Error("failed to complete message", "queue", c.queue, "message_id", msg.MessageID, "error", err)
	}
}

func (c *Consumer) Close(ctx context.Context) error {
	err := c.receiver.Close(ctx)
	if c.client != nil {
		err = errors.Join(err, c.client.Close(ctx))
	}
	return err
}
