package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/audit"
	"github.com/google/uuid"
)

type RecorderImpl struct {
	auditRepo audit.AuditRepository
}

func NewRecorder(auditRepo audit.AuditRepository) audit.Recorder {
	return &RecorderImpl{auditRepo: auditRepo}
}

// Record implements audit.Recorder. Failures are logged and dropped.
func (r *RecorderImpl) Record(ctx context.Context, action, entityType, entityID string, details any) {
	var raw json.RawMessage
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			slog.WarnContext(ctx, "failed to encode audit details", "action", action, "error", err)
		} else {
			raw = b
		}
	}

	entry := audit.Entry{
		ID:         uuid.NewString(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    raw,
		UserID:     audit.UserIDFromContext(ctx),
		CreatedAt:  time.Now().UTC(),
	}

	// a cancelled request must not lose the entry for work already committed
	if err := r.auditRepo.Append(context.WithoutCancel(ctx), entry); err != nil {
		slog.WarnContext(ctx, "failed to write audit entry",
			"action", action,
			"entity_type", entityType,
			"entity_id", entityID,
			"error", err,
		)
	}
}

func (r *RecorderImpl) List(ctx context.Context, filter audit.Filter) ([]audit.EntryResponse, error) {
	if filter.Limit <= 0 {
		filter.Limit = audit.DefaultListLimit
	}
	entries, err := r.auditRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]audit.EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, audit.ToEntryResponse(e))
	}
	return out, nil
}
