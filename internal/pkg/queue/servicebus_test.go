package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReceiver struct {
	mu         sync.Mutex
	batches    [][]*azservicebus.ReceivedMessage
	completed  []string
	deadLetter map[string]string
	closed     bool
}

func (f *fakeReceiver) ReceiveMessages(ctx context.Context, max int, _ *azservicebus.ReceiveMessagesOptions) ([]*azservicebus.ReceivedMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.batches) == 0 {
		return nil, nil
	}
	b := f.batches[0]
	f.batches = f.batches[1:]
	return b, nil
}

func (f *fakeReceiver) CompleteMessage(ctx context.Context, m *azservicebus.ReceivedMessage, _ *azservicebus.CompleteMessageOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, m.MessageID)
	return nil
}

func (f *fakeReceiver) DeadLetterMessage(ctx context.Context, m *azservicebus.ReceivedMessage, o *azservicebus.DeadLetterOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deadLetter[m.MessageID] = *o.ErrorDescription
	return nil
}

func (f *fakeReceiver) Close(ctx context.Context) error {
	f.closed = true
	return nil
}

func TestConsumer_Run(t *testing.T) {
	t.Parallel()

	// Arrange
	r := &fakeReceiver{
		deadLetter: map[string]string{},
		batches: [][]*azservicebus.ReceivedMessage{{
			{MessageID: "ok-1", Body: []byte(`{"n":1}`)},
			{MessageID: "bad", Body: []byte(`{"n":2}`)},
		}, {
			{MessageID: "ok-2", Body: []byte(`{"n":3}`)},
		}},
	}
	c := newConsumer(nil, r, "notifications", ConsumerOptions{IdleWait: 5 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())

	var seen []string
	handle := func(ctx context.Context, body []byte) error {
		seen = append(seen, string(body))
		if len(seen) == 3 {
			defer cancel()
		}
		if string(body) == `{"n":2}` {
			return errors.New("adapter rejected")
		}
		return nil
	}

	// Act
	err := c.Run(ctx, handle)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{`{"n":1}`, `{"n":2}`, `{"n":3}`}, seen)
	assert.Equal(t, []string{"ok-1", "ok-2"}, r.completed)
	assert.Equal(t, map[string]string{"bad": "adapter rejected"}, r.deadLetter)

	require.NoError(t, c.Close(context.Background()))
	assert.True(t, r.closed)
}

func TestNewConsumer_Defaults(t *testing.T) {
	t.Parallel()
	c := newConsumer(nil, &fakeReceiver{}, "q", ConsumerOptions{})
	assert.Equal(t, 10, c.opts.BatchSize)
	assert.Equal(t, 2*time.Second, c.opts.IdleWait)
}
