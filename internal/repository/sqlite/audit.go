package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/audit"
)

type auditRepository struct {
	db *DB
}

func NewAuditRepository(db *DB) audit.AuditRepository {
	return &auditRepository{db: db}
}

// Append implements audit.AuditRepository.
func (r *auditRepository) Append(ctx context.Context, entry audit.Entry) error {
	var details sql.NullString
	if len(entry.Details) > 0 {
		details = sql.NullString{String: string(entry.Details), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, action, entity_type, entity_id, details, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Action, entry.EntityType, entry.EntityID, details, entry.UserID, entry.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// List implements audit.AuditRepository. Newest first.
func (r *auditRepository) List(ctx context.Context, filter audit.Filter) ([]audit.Entry, error) {
	var (
		where []string
		args  []any
	)
	if filter.EntityType != nil {
		where = append(where, "entity_type = ?")
		args = append(args, *filter.EntityType)
	}
	if filter.Action != nil {
		where = append(where, "action = ?")
		args = append(args, *filter.Action)
	}

	query := `SELECT id, action, entity_type, entity_id, details, user_id, created_at FROM audit_log`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id LIMIT ?"
	args = append(args, filter.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var (
			e       audit.Entry
			details sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Action, &e.EntityType, &e.EntityID, &details, &e.UserID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if details.Valid {
			e.Details = []byte(details.String)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
