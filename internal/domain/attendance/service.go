package attendance

import (
	"context"
)

// AttendanceService aggregates attendance facts for payroll.
type AttendanceService interface {
	// Summarize returns nil and an error only when the query fails. An
	// employee without records gets zero counts and Unrecorded = DaysInMonth.
	Summarize(ctx context.Context, employeeID string, month, year int) (*Summary, error)

	GetSummary(ctx context.Context, req SummaryRequest) (SummaryResponse, error)
}
