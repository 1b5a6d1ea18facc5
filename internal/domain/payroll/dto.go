package payroll

import (
	"strconv"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/period"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== BATCH DTOs ==========

type BatchRequest struct {
	Month                int     `json:"month"`
	Year                 int     `json:"year"`
	DepartmentID         *string `json:"department_id,omitempty"`
	RequiredDaysForBonus int     `json:"required_days_for_bonus"`
}

func (r *BatchRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidMonth(r.Month) {
		errs.Add("month", "must be between 1 and 12")
	}
	if !validator.IsValidPayrollYear(r.Year, time.Now()) {
		errs.Add("year", "is out of range")
	}
	if !validator.IsInRange(r.RequiredDaysForBonus, 1, 31) {
		errs.Add("required_days_for_bonus", ErrInvalidRequiredDays.Error())
	}
	if r.DepartmentID != nil && !validator.IsValidUUID(*r.DepartmentID) {
		errs.Add("department_id", "must be a valid UUID")
	}

	return errs.OrNil()
}

type BatchEntryResponse struct {
	Kind         string `json:"kind"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name,omitempty"`
	Code         string `json:"code,omitempty"`
	Message      string `json:"message"`
}

type BatchOutcomeResponse struct {
	Month        int                  `json:"month"`
	Year         int                  `json:"year"`
	DepartmentID *string              `json:"department_id,omitempty"`
	Eligible     int                  `json:"eligible"`
	SuccessCount int                  `json:"success_count"`
	ErrorCount   int                  `json:"error_count"`
	Errors       []BatchEntryResponse `json:"errors"`
	DurationMS   int64                `json:"duration_ms"`
}

func ToBatchOutcomeResponse(o BatchOutcome) BatchOutcomeResponse {
	entries := make([]BatchEntryResponse, 0, len(o.Entries))
	for _, e := range o.Entries {
		entries = append(entries, BatchEntryResponse{
			Kind:         string(e.Kind),
			EmployeeID:   e.EmployeeID,
			EmployeeName: e.EmployeeName,
			Code:         e.Code,
			Message:      e.Message,
		})
	}
	return BatchOutcomeResponse{
		Month:        o.Month,
		Year:         o.Year,
		DepartmentID: o.DepartmentID,
		Eligible:     o.Eligible,
		SuccessCount: o.SuccessCount,
		ErrorCount:   o.ErrorCount,
		Errors:       entries,
		DurationMS:   o.FinishedAt.Sub(o.StartedAt).Milliseconds(),
	}
}

// ========== COMPUTE DTOs ==========

// ComputeRequest previews one employee's payroll without storing it. Nil
// overrides fall back to the employee record.
type ComputeRequest struct {
	EmployeeID           string           `json:"employee_id"`
	Month                int              `json:"month"`
	Year                 int              `json:"year"`
	RequiredDaysForBonus int              `json:"required_days_for_bonus"`
	BasicSalary          *decimal.Decimal `json:"basic_salary,omitempty"`
	Allowances           *decimal.Decimal `json:"allowances,omitempty"`
	Bonus                *decimal.Decimal `json:"bonus,omitempty"`
	OtherDeductions      *decimal.Decimal `json:"other_deductions,omitempty"`
	AttendanceBonus      *decimal.Decimal `json:"attendance_bonus,omitempty"`
}

func (r *ComputeRequest) Validate() error {
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
	if !validator.IsInRange(r.RequiredDaysForBonus, 1, 31) {
		errs.Add("required_days_for_bonus", ErrInvalidRequiredDays.Error())
	}
	validateAmount(&errs, "basic_salary", r.BasicSalary)
	validateAmount(&errs, "allowances", r.Allowances)
	validateAmount(&errs, "bonus", r.Bonus)
	validateAmount(&errs, "other_deductions", r.OtherDeductions)
	validateAmount(&errs, "attendance_bonus", r.AttendanceBonus)

	return errs.OrNil()
}

type GOSIResponse struct {
	IsCitizen bool            `json:"is_citizen"`
	Rate      decimal.Decimal `json:"rate"`
	Cap       decimal.Decimal `json:"cap"`
	Base      decimal.Decimal `json:"base"`
	Deduction decimal.Decimal `json:"deduction"`
}

type WarningResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CalculationResponse struct {
	EmployeeID           string            `json:"employee_id"`
	Month                int               `json:"month"`
	Year                 int               `json:"year"`
	AttendanceCalculated bool              `json:"attendance_calculated"`
	PresentDays          int               `json:"present_days"`
	AbsentDays           int               `json:"absent_days"`
	LeaveDays            int               `json:"leave_days"`
	SickDays             int               `json:"sick_days"`
	BasicSalary          decimal.Decimal   `json:"basic_salary"`
	Allowances           decimal.Decimal   `json:"allowances"`
	Bonus                decimal.Decimal   `json:"bonus"`
	OtherDeductions      decimal.Decimal   `json:"other_deductions"`
	DailyWage            decimal.Decimal   `json:"daily_wage"`
	PaidDays             int               `json:"paid_days"`
	Earned               decimal.Decimal   `json:"earned"`
	AttendanceDeduction  decimal.Decimal   `json:"attendance_deduction"`
	AttendanceBonus      decimal.Decimal   `json:"attendance_bonus"`
	EarnedBonus          decimal.Decimal   `json:"earned_bonus"`
	BonusDeduction       decimal.Decimal   `json:"bonus_deduction"`
	GOSI                 GOSIResponse      `json:"gosi"`
	TotalDeductions      decimal.Decimal   `json:"total_deductions"`
	NetSalary            decimal.Decimal   `json:"net_salary"`
	Warnings             []WarningResponse `json:"warnings"`
}

func ToCalculationResponse(c CalculationResult) CalculationResponse {
	warnings := make([]WarningResponse, 0, len(c.Warnings))
	for _, w := range c.Warnings {
		warnings = append(warnings, WarningResponse{Code: string(w.Code), Message: w.Message})
	}
	resp := CalculationResponse{
		EmployeeID:           c.EmployeeID,
		Month:                c.Month,
		Year:                 c.Year,
		AttendanceCalculated: c.AttendanceCalculated,
		BasicSalary:          c.Basic,
		Allowances:           c.Allowances,
		Bonus:                c.Bonus,
		OtherDeductions:      c.OtherDeductions,
		DailyWage:            c.DailyWage,
		PaidDays:             c.PaidDays,
		Earned:               c.Earned,
		AttendanceDeduction:  c.AttendanceDeduction,
		AttendanceBonus:      c.AttendanceBonus,
		EarnedBonus:          c.EarnedBonus,
		BonusDeduction:       c.BonusDeduction,
		GOSI: GOSIResponse{
			IsCitizen: c.GOSI.IsCitizen,
			Rate:      c.GOSI.Rate,
			Cap:       c.GOSI.Cap,
			Base:      c.GOSI.Base,
			Deduction: c.GOSI.Deduction,
		},
		TotalDeductions: c.TotalDeductions,
		NetSalary:       c.NetSalary,
		Warnings:        warnings,
	}
	if c.Summary != nil {
		resp.PresentDays = c.Summary.PresentDays
		resp.AbsentDays = c.Summary.AbsentDays
		resp.LeaveDays = c.Summary.LeaveDays
		resp.SickDays = c.Summary.SickDays
	}
	return resp
}

// ========== SALARY RECORD DTOs ==========

// UpsertSalaryRequest is a manually entered salary. Net is always recomputed.
type UpsertSalaryRequest struct {
	EmployeeID      string           `json:"employee_id"`
	Month           int              `json:"month"`
	Year            int              `json:"year"`
	BasicSalary     decimal.Decimal  `json:"basic_salary"`
	AttendanceBonus decimal.Decimal  `json:"attendance_bonus"`
	Allowances      decimal.Decimal  `json:"allowances"`
	Bonus           decimal.Decimal  `json:"bonus"`
	OtherDeductions decimal.Decimal  `json:"other_deductions"`
	IncludeGOSI     *bool            `json:"include_gosi,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
	PresentDays     *int             `json:"present_days,omitempty"`
	AbsentDays      *int             `json:"absent_days,omitempty"`
	LeaveDays       *int             `json:"leave_days,omitempty"`
	SickDays        *int             `json:"sick_days,omitempty"`
	Deduction       *decimal.Decimal `json:"attendance_deduction,omitempty"`
}

func (r *UpsertSalaryRequest) Validate() error {
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
	validateAmount(&errs, "basic_salary", &r.BasicSalary)
	validateAmount(&errs, "attendance_bonus", &r.AttendanceBonus)
	validateAmount(&errs, "allowances", &r.Allowances)
	validateAmount(&errs, "bonus", &r.Bonus)
	validateAmount(&errs, "other_deductions", &r.OtherDeductions)
	validateAmount(&errs, "attendance_deduction", r.Deduction)

	days := period.New(r.Month, r.Year).Days()
	for field, v := range map[string]*int{
		"present_days": r.PresentDays,
		"absent_days":  r.AbsentDays,
		"leave_days":   r.LeaveDays,
		"sick_days":    r.SickDays,
	} {
		if v != nil && !validator.IsInRange(*v, 0, days) {
			errs.Add(field, "must be between 0 and the days in the month")
		}
	}
	if r.Notes != nil && len(*r.Notes) > 1000 {
		errs.Add("notes", "must be at most 1000 characters")
	}

	return errs.OrNil()
}

type SalaryRecordResponse struct {
	ID                   string          `json:"id"`
	EmployeeID           string          `json:"employee_id"`
	EmployeeName         string          `json:"employee_name"`
	EmployeeCode         string          `json:"employee_code"`
	DepartmentName       *string         `json:"department_name"`
	Month                int             `json:"month"`
	Year                 int             `json:"year"`
	Period               string          `json:"period"`
	BasicSalary          decimal.Decimal `json:"basic_salary"`
	AttendanceBonus      decimal.Decimal `json:"attendance_bonus"`
	Allowances           decimal.Decimal `json:"allowances"`
	Bonus                decimal.Decimal `json:"bonus"`
	Deductions           decimal.Decimal `json:"deductions"`
	OtherDeductions      decimal.Decimal `json:"other_deductions"`
	NetSalary            decimal.Decimal `json:"net_salary"`
	PresentDays          int             `json:"present_days"`
	AbsentDays           int             `json:"absent_days"`
	LeaveDays            int             `json:"leave_days"`
	SickDays             int             `json:"sick_days"`
	AttendanceDeduction  decimal.Decimal `json:"attendance_deduction"`
	AttendanceCalculated bool            `json:"attendance_calculated"`
	Notes                *string         `json:"notes,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func ToSalaryRecordResponse(r SalaryRecord) SalaryRecordResponse {
	return SalaryRecordResponse{
		ID:                   r.ID,
		EmployeeID:           r.EmployeeID,
		EmployeeName:         r.EmployeeName,
		EmployeeCode:         r.EmployeeCode,
		DepartmentName:       r.DepartmentName,
		Month:                r.Month,
		Year:                 r.Year,
		Period:               period.New(r.Month, r.Year).Key(),
		BasicSalary:          r.BasicSalary,
		AttendanceBonus:      r.AttendanceBonus,
		Allowances:           r.Allowances,
		Bonus:                r.Bonus,
		Deductions:           r.Deductions,
		OtherDeductions:      r.OtherDeductions,
		NetSalary:            r.NetSalary,
		PresentDays:          r.PresentDays,
		AbsentDays:           r.AbsentDays,
		LeaveDays:            r.LeaveDays,
		SickDays:             r.SickDays,
		AttendanceDeduction:  r.AttendanceDeduction,
		AttendanceCalculated: r.AttendanceCalculated,
		Notes:                r.Notes,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

func ToSalaryRecordResponses(records []SalaryRecord) []SalaryRecordResponse {
	out := make([]SalaryRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, ToSalaryRecordResponse(r))
	}
	return out
}

type SalaryListResponse struct {
	Salaries []SalaryRecordResponse `json:"salaries"`
	Summary  SalarySummaryResponse  `json:"summary"`
}

type SalarySummaryResponse struct {
	EmployeeCount   int             `json:"employee_count"`
	TotalBasic      decimal.Decimal `json:"total_basic"`
	TotalAllowances decimal.Decimal `json:"total_allowances"`
	TotalBonus      decimal.Decimal `json:"total_bonus"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNet        decimal.Decimal `json:"total_net"`
}

func ToSalarySummaryResponse(s SalarySummary) SalarySummaryResponse {
	return SalarySummaryResponse{
		EmployeeCount:   s.EmployeeCount,
		TotalBasic:      s.TotalBasic,
		TotalAllowances: s.TotalAllowances,
		TotalBonus:      s.TotalBonus,
		TotalDeductions: s.TotalDeductions,
		TotalNet:        s.TotalNet,
	}
}

type ExistsResponse struct {
	Exists bool `json:"exists"`
}

// ========== FILTER ==========

// ParseSalaryFilter builds a filter from raw query values. Empty strings are
// "any".
func ParseSalaryFilter(month, year, employeeID, departmentID string) (SalaryFilter, error) {
	var (
		filter SalaryFilter
		errs   validator.ValidationErrors
	)

	if month != "" {
		m, err := strconv.Atoi(month)
		if err != nil || !validator.IsValidMonth(m) {
			errs.Add("month", "must be between 1 and 12")
		} else {
			filter.Month = &m
		}
	}
	if year != "" {
		y, err := strconv.Atoi(year)
		if err != nil || !validator.IsValidPayrollYear(y, time.Now()) {
			errs.Add("year", "is out of range")
		} else {
			filter.Year = &y
		}
	}
	if employeeID != "" {
		if !validator.IsValidUUID(employeeID) {
			errs.Add("employee_id", "must be a valid UUID")
		} else {
			filter.EmployeeID = &employeeID
		}
	}
	if departmentID != "" {
		if !validator.IsValidUUID(departmentID) {
			errs.Add("department_id", "must be a valid UUID")
		} else {
			filter.DepartmentID = &departmentID
		}
	}

	return filter, errs.OrNil()
}

// ParseExistsQuery validates the (employee, month, year) triple.
func ParseExistsQuery(employeeID, month, year string) (string, int, int, error) {
	filter, err := ParseSalaryFilter(month, year, employeeID, "")
	if err != nil {
		return "", 0, 0, err
	}
	var errs validator.ValidationErrors
	if filter.EmployeeID == nil {
		errs.Add("employee_id", "is required")
	}
	if filter.Month == nil {
		errs.Add("month", "is required")
	}
	if filter.Year == nil {
		errs.Add("year", "is required")
	}
	if err := errs.OrNil(); err != nil {
		return "", 0, 0, err
	}
	return *filter.EmployeeID, *filter.Month, *filter.Year, nil
}

func validateAmount(errs *validator.ValidationErrors, field string, d *decimal.Decimal) {
	if d == nil {
		return
	}
	if !validator.IsNonNegative(*d) {
		errs.Add(field, "must be non-negative")
		return
	}
	if !validator.HasAtMostTwoDecimals(*d) {
		errs.Add(field, "must have at most 2 decimal places")
	}
}
