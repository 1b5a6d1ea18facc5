package attendance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/period"
)

type AttendanceServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
}

func NewAttendanceService(attendanceRepo attendance.AttendanceRepository) attendance.AttendanceService {
	return &AttendanceServiceImpl{attendanceRepo: attendanceRepo}
}

// Summarize implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Summarize(ctx context.Context, employeeID string, month, year int) (*attendance.Summary, error) {
	p := period.New(month, year)
	from, to := p.FirstDay(), p.LastDay()

	records, err := s.attendanceRepo.ListByEmployee(ctx, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", attendance.ErrAttendanceQueryFailed, err)
	}

	summary := attendance.Summary{
		EmployeeID:  employeeID,
		Month:       month,
		Year:        year,
		DaysInMonth: p.Days(),
	}

	// one status per calendar day; a later duplicate replaces an earlier one
	byDay := make(map[string]attendance.Status, len(records))
	for _, r := range records {
		day := r.Date.UTC()
		if day.Before(from) || day.After(to.AddDate(0, 0, 1).Add(-1)) {
			continue
		}
		if !r.Status.IsValid() {
			slog.WarnContext(ctx, "ignoring attendance record with unknown status",
				"employee_id", employeeID, "date", day.Format("2006-01-02"), "status", string(r.Status))
			continue
		}
		byDay[day.Format("2006-01-02")] = r.Status
	}

	for _, status := range byDay {
		switch status {
		case attendance.StatusPresent:
			summary.PresentDays++
		case attendance.StatusAbsent:
			summary.AbsentDays++
		case attendance.StatusLeave:
			summary.LeaveDays++
		case attendance.StatusSick:
			summary.SickDays++
		}
	}
	summary.Recorded = len(byDay)
	summary.Unrecorded = summary.DaysInMonth - summary.Recorded

	return &summary, nil
}

// GetSummary implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetSummary(ctx context.Context, req attendance.SummaryRequest) (attendance.SummaryResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.SummaryResponse{}, err
	}

	summary, err := s.Summarize(ctx, req.EmployeeID, req.Month, req.Year)
	if err != nil {
		return attendance.SummaryResponse{}, err
	}

	return attendance.ToSummaryResponse(*summary), nil
}
