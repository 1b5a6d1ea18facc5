package attendance

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

type SummaryRequest struct {
	EmployeeID string `json:"employee_id"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
}

func (r SummaryRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("employee_id", "must be a valid UUID")
	}
	if !validator.IsValidMonth(r.Month) {
		errs.Add("month", "must be between 1 and 12")
	}
	if !validator.IsValidPayrollYear(r.Year, time.Now()) {
		errs.Add("year", "is out of range")
	}

	return errs.OrNil()
}

type SummaryResponse struct {
	EmployeeID  string `json:"employee_id"`
	Month       int    `json:"month"`
	Year        int    `json:"year"`
	DaysInMonth int    `json:"days_in_month"`
	PresentDays int    `json:"present_days"`
	AbsentDays  int    `json:"absent_days"`
	LeaveDays   int    `json:"leave_days"`
	SickDays    int    `json:"sick_days"`
	Unrecorded  int    `json:"unrecorded_days"`
	TotalAbsent int    `json:"total_absent"`
}

func ToSummaryResponse(s Summary) SummaryResponse {
	return SummaryResponse{
		EmployeeID:  s.EmployeeID,
		Month:       s.Month,
		Year:        s.Year,
		DaysInMonth: s.DaysInMonth,
		PresentDays: s.PresentDays,
		AbsentDays:  s.AbsentDays,
		LeaveDays:   s.LeaveDays,
		SickDays:    s.SickDays,
		Unrecorded:  s.Unrecorded,
		TotalAbsent: s.TotalAbsent(),
	}
}
