package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// SalaryRecord - one employee's payroll for one month.
// (EmployeeID, Month, Year) is unique.
type SalaryRecord struct {
	ID                   string
	EmployeeID           string
	Month                int
	Year                 int
	BasicSalary          decimal.Decimal
	AttendanceBonus      decimal.Decimal // earned full-attendance bonus
	Allowances           decimal.Decimal
	Bonus                decimal.Decimal
	Deductions           decimal.Decimal // total deductions, GOSI included
	OtherDeductions      decimal.Decimal // entered by hand, part of Deductions
	NetSalary            decimal.Decimal
	PresentDays          int
	AbsentDays           int
	LeaveDays            int
	SickDays             int
	AttendanceDeduction  decimal.Decimal
	AttendanceCalculated bool
	Notes                *string
	CreatedAt            time.Time
	UpdatedAt            time.Time

	// Joined fields
	EmployeeName   string
	EmployeeCode   string
	NationalID     string
	JobTitle       string
	PhoneNumber    string
	DepartmentName *string
}

// Earnings is everything credited before deductions.
func (r SalaryRecord) Earnings() decimal.Decimal {
	return money.Sum(r.BasicSalary, r.AttendanceBonus, r.Allowances, r.Bonus)
}

// ExpectedNet recomputes net from the stored components.
func (r SalaryRecord) ExpectedNet() decimal.Decimal {
	return money.Round(r.Earnings().Sub(r.Deductions))
}

// GOSIPolicy holds the social-insurance knobs.
type GOSIPolicy struct {
	CitizenRate            decimal.Decimal
	NonCitizenHazardRate   decimal.Decimal
	WageCap                decimal.Decimal
	DeductNonCitizenHazard bool
}

func DefaultGOSIPolicy() GOSIPolicy {
	return GOSIPolicy{
		CitizenRate:            decimal.RequireFromString("0.10"),
		NonCitizenHazardRate:   decimal.Zero,
		WageCap:                decimal.NewFromInt(45000),
		DeductNonCitizenHazard: false,
	}
}

type GOSIResult struct {
	IsCitizen bool
	Rate      decimal.Decimal
	Cap       decimal.Decimal
	Base      decimal.Decimal
	Deduction decimal.Decimal
}

// ComposeInput feeds the net-salary composer.
type ComposeInput struct {
	Basic           decimal.Decimal
	Allowances      decimal.Decimal
	Bonus           decimal.Decimal
	OtherDeductions decimal.Decimal
	Nationality     string
	ContractType    employee.ContractType
	IncludeGOSI     bool
}

type Breakdown struct {
	Basic           decimal.Decimal
	Allowances      decimal.Decimal
	Bonus           decimal.Decimal
	OtherDeductions decimal.Decimal
	GOSIDeduction   decimal.Decimal
	TotalDeductions decimal.Decimal
	NetSalary       decimal.Decimal
	IsCitizen       bool
	GOSIRate        decimal.Decimal
}

// CalculationInput feeds the attendance-integrated calculator.
type CalculationInput struct {
	EmployeeID           string
	Month                int
	Year                 int
	Basic                decimal.Decimal
	Allowances           decimal.Decimal
	Bonus                decimal.Decimal
	OtherDeductions      decimal.Decimal
	RequiredDaysForBonus int
	ExcludeLeave         bool
	ExcludeSick          bool
	AttendanceBonus      decimal.Decimal
	Nationality          string
	ContractType         employee.ContractType
}

// InputFromEmployee fills the employee-owned fields. A missing basic salary
// becomes zero; the caller decides whether to warn.
func InputFromEmployee(emp employee.Employee, month, year, requiredDays int) CalculationInput {
	basic := decimal.Zero
	if emp.BasicSalary != nil {
		basic = *emp.BasicSalary
	}
	return CalculationInput{
		EmployeeID:           emp.ID,
		Month:                month,
		Year:                 year,
		Basic:                basic,
		Allowances:           decimal.Zero,
		Bonus:                decimal.Zero,
		OtherDeductions:      decimal.Zero,
		RequiredDaysForBonus: requiredDays,
		ExcludeLeave:         emp.ExcludeLeaveFromDeduction,
		ExcludeSick:          emp.ExcludeSickFromDeduction,
		AttendanceBonus:      emp.AttendanceBonus,
		Nationality:          emp.Nationality,
		ContractType:         emp.ContractType,
	}
}

// CarryOver copies the hand-entered components of an existing record so a
// recompute only replaces what attendance and GOSI derive.
func (in *CalculationInput) CarryOver(r SalaryRecord) {
	in.Allowances = r.Allowances
	in.Bonus = r.Bonus
	in.OtherDeductions = r.OtherDeductions
}

type CalculationResult struct {
	EmployeeID           string
	Month                int
	Year                 int
	Summary              *attendance.Summary
	AttendanceCalculated bool

	Basic               decimal.Decimal
	Allowances          decimal.Decimal
	Bonus               decimal.Decimal
	OtherDeductions     decimal.Decimal
	DailyWage           decimal.Decimal
	PaidDays            int
	Earned              decimal.Decimal
	AttendanceDeduction decimal.Decimal
	AttendanceBonus     decimal.Decimal // configured baseline
	EarnedBonus         decimal.Decimal
	BonusDeduction      decimal.Decimal
	GOSI                GOSIResult
	TotalDeductions     decimal.Decimal
	NetSalary           decimal.Decimal

	Warnings []Warning
}

// ToSalaryRecord maps the result onto the persisted shape.
func (c CalculationResult) ToSalaryRecord() SalaryRecord {
	rec := SalaryRecord{
		EmployeeID:           c.EmployeeID,
		Month:                c.Month,
		Year:                 c.Year,
		BasicSalary:          money.Round(c.Basic),
		AttendanceBonus:      money.Round(c.EarnedBonus),
		Allowances:           money.Round(c.Allowances),
		Bonus:                money.Round(c.Bonus),
		Deductions:           money.Round(c.TotalDeductions),
		OtherDeductions:      money.Round(c.OtherDeductions),
		NetSalary:            money.Round(c.NetSalary),
		AttendanceDeduction:  money.Round(c.AttendanceDeduction),
		AttendanceCalculated: c.AttendanceCalculated,
	}
	if c.Summary != nil {
		rec.PresentDays = c.Summary.PresentDays
		rec.AbsentDays = c.Summary.AbsentDays
		rec.LeaveDays = c.Summary.LeaveDays
		rec.SickDays = c.Summary.SickDays
	}
	return rec
}

type WarningCode string

const (
	WarningMissingBasicSalary    WarningCode = "missing_basic_salary"
	WarningZeroBasicSalary       WarningCode = "zero_basic_salary"
	WarningAttendanceUnavailable WarningCode = "attendance_unavailable"
	WarningNoAttendanceRecords   WarningCode = "no_attendance_records"
)

// Warning is a non-fatal data issue attached to a per-employee result.
type Warning struct {
	Code       WarningCode
	EmployeeID string
	Message    string
}

type BatchEntryKind string

const (
	BatchEntryWarning BatchEntryKind = "warning"
	BatchEntryError   BatchEntryKind = "error"
)

// BatchEntry is one per-employee message in a batch outcome.
type BatchEntry struct {
	Kind         BatchEntryKind
	EmployeeID   string
	EmployeeName string
	Code         string
	Message      string
}

type BatchOutcome struct {
	Month        int
	Year         int
	DepartmentID *string
	Eligible     int
	SuccessCount int
	ErrorCount   int
	Entries      []BatchEntry
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Warnings returns only the warning entries.
func (o BatchOutcome) Warnings() []BatchEntry {
	var out []BatchEntry
	for _, e := range o.Entries {
		if e.Kind == BatchEntryWarning {
			out = append(out, e)
		}
	}
	return out
}

// SalaryFilter - all fields optional and combined with AND.
type SalaryFilter struct {
	Month        *int
	Year         *int
	EmployeeID   *string
	DepartmentID *string
}

// SalarySummary totals a filtered set. TotalBonus includes the earned
// attendance bonus so that basic + allowances + bonus - deductions = net.
type SalarySummary struct {
	EmployeeCount   int
	TotalBasic      decimal.Decimal
	TotalAllowances decimal.Decimal
	TotalBonus      decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNet        decimal.Decimal
}
