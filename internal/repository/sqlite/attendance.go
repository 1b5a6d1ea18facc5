package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/google/uuid"
)

type attendanceRepository struct {
	db *DB
}

func NewAttendanceRepository(db *DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

// ListByEmployee implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, employee_id, date, status
		FROM attendance_records
		WHERE employee_id = ? AND date BETWEEN ? AND ?
		ORDER BY date
	`, employeeID, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for employee %s: %w", employeeID, err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var rec attendance.Record
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.Date, &rec.Status); err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance records: %w", err)
	}
	return records, nil
}

// RecordAttendance writes one fact, replacing an existing one for the same
// day. The attendance subsystem owns these rows; single-node installs and
// tests use this to load them.
func (db *DB) RecordAttendance(ctx context.Context, employeeID string, date time.Time, status attendance.Status) error {
	if !status.IsValid() {
		return attendance.ErrInvalidStatus
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO attendance_records (id, employee_id, date, status) VALUES (?, ?, ?, ?)
		ON CONFLICT (employee_id, date) DO UPDATE SET status = excluded.status
	`, uuid.NewString(), employeeID, date.Format(dateLayout), string(status))
	if err != nil {
		return fmt.Errorf("failed to record attendance: %w", err)
	}
	return nil
}
