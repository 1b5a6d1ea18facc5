package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
)

type auditRepository struct {
	db *database.DB
}

func NewAuditRepository(db *database.DB) audit.AuditRepository {
	return &auditRepository{db: db}
}

// Append implements audit.AuditRepository.
func (r *auditRepository) Append(ctx context.Context, entry audit.Entry) error {
	query := `
		INSERT INTO audit_log (id, action, entity_type, entity_id, details, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var details any
	if len(entry.Details) > 0 {
		details = string(entry.Details)
	}

	_, err := r.db.Exec(ctx, query,
		entry.ID, entry.Action, entry.EntityType, entry.EntityID, details, entry.UserID, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// List implements audit.AuditRepository. Newest first.
func (r *auditRepository) List(ctx context.Context, filter audit.Filter) ([]audit.Entry, error) {
	var (
		where  []string
		args   []any
		argIdx = 1
	)

	if filter.EntityType != nil {
		where = append(where, fmt.Sprintf("entity_type = $%d", argIdx))
		args = append(args, *filter.EntityType)
		argIdx++
	}
	if filter.Action != nil {
		where = append(where, fmt.Sprintf("action = $%d", argIdx))
		args = append(args, *filter.Action)
		argIdx++
	}

	query := `SELECT id, action, entity_type, entity_id, details::text, user_id, created_at FROM audit_log`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d", argIdx)
	args = append(args, filter.Limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var (
			e       audit.Entry
			details *string
		)
		if err := rows.Scan(&e.ID, &e.Action, &e.EntityType, &e.EntityID, &details, &e.UserID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if details != nil {
			e.Details = []byte(*details)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
