package attendance

import (
	"context"
	"time"
)

// AttendanceRepository is the read-only view of attendance facts.
type AttendanceRepository interface {
	// ListByEmployee returns records with from <= date <= to, ordered by date.
	ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]Record, error)
}
