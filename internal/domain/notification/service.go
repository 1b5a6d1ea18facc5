package notification

import (
	"context"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/report"
)

// Sender delivers one message through the external messaging adapter.
// Rejections are returned as *AdapterError.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Publisher queues intents for cmd/notifier.
type Publisher interface {
	Publish(ctx context.Context, intent DispatchIntent) error
}

type NotificationService interface {
	// Dispatch renders, stores and sends one salary notice. Adapter failures
	// come back as a Result with OK false; a missing record or asset is an error.
	Dispatch(ctx context.Context, salaryID string, variant report.NoticeVariant) (Result, error)

	// DispatchBatch sends to every record matching req. Per-record failures
	// are counted in the outcome and never abort the batch.
	DispatchBatch(ctx context.Context, req BatchDispatchRequest) (BatchOutcome, error)

	// Deliver sends a queued intent.
	Deliver(ctx context.Context, intent DispatchIntent) error
}
