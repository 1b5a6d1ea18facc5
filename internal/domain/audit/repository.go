package audit

import "context"

// AuditRepository is the audit sink.
type AuditRepository interface {
	Append(ctx context.Context, entry Entry) error
	List(ctx context.Context, filter Filter) ([]Entry, error)
}
