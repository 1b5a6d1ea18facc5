package report

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/money"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/period"
	"github.com/shopspring/decimal"
)

// NoDepartmentLabel groups records whose employee has no department.
const NoDepartmentLabel = "بدون قسم"

type NoticeVariant string

const (
	VariantSalary    NoticeVariant = "salary"
	VariantDeduction NoticeVariant = "deduction"
)

func (v NoticeVariant) IsValid() bool {
	return v == VariantSalary || v == VariantDeduction
}

type CompanyInfo struct {
	Name     string
	NameEn   string
	CRNumber string
}

// Totals accumulates the monetary columns of a set of records.
type Totals struct {
	EmployeeCount   int
	Basic           decimal.Decimal
	AttendanceBonus decimal.Decimal
	Allowances      decimal.Decimal
	Bonus           decimal.Decimal
	Deductions      decimal.Decimal
	Net             decimal.Decimal
	PresentDays     int
	AbsentDays      int
}

func (t *Totals) Add(r payroll.SalaryRecord) {
	t.EmployeeCount++
	t.Basic = t.Basic.Add(r.BasicSalary)
	t.AttendanceBonus = t.AttendanceBonus.Add(r.AttendanceBonus)
	t.Allowances = t.Allowances.Add(r.Allowances)
	t.Bonus = t.Bonus.Add(r.Bonus)
	t.Deductions = t.Deductions.Add(r.Deductions)
	t.Net = t.Net.Add(r.NetSalary)
	t.PresentDays += r.PresentDays
	t.AbsentDays += r.AbsentDays
}

// Merge adds another set of totals.
func (t *Totals) Merge(o Totals) {
	t.EmployeeCount += o.EmployeeCount
	t.Basic = t.Basic.Add(o.Basic)
	t.AttendanceBonus = t.AttendanceBonus.Add(o.AttendanceBonus)
	t.Allowances = t.Allowances.Add(o.Allowances)
	t.Bonus = t.Bonus.Add(o.Bonus)
	t.Deductions = t.Deductions.Add(o.Deductions)
	t.Net = t.Net.Add(o.Net)
	t.PresentDays += o.PresentDays
	t.AbsentDays += o.AbsentDays
}

// AverageNet is zero for an empty set.
func (t Totals) AverageNet() decimal.Decimal {
	if t.EmployeeCount == 0 {
		return decimal.Zero
	}
	return money.Round(money.Div(t.Net, int64(t.EmployeeCount)))
}

type DepartmentGroup struct {
	Name    string
	Records []payroll.SalaryRecord
	Totals  Totals
}

// WorkbookData is everything the spreadsheet layout needs.
type WorkbookData struct {
	Title       string
	Company     CompanyInfo
	GeneratedAt time.Time
	Groups      []DepartmentGroup // sorted by name
	All         []payroll.SalaryRecord
	GrandTotal  Totals
}

// HasAttendance reports whether any record was computed from attendance.
func (w WorkbookData) HasAttendance() bool {
	for _, r := range w.All {
		if r.AttendanceCalculated {
			return true
		}
	}
	return false
}

type BatchPDFData struct {
	Company        CompanyInfo
	Title          string
	Period         *period.Period
	DepartmentName *string
	Rows           []payroll.SalaryRecord
	Totals         Totals
	GeneratedAt    time.Time
}

type LineKind string

const (
	LineEarning   LineKind = "earning"
	LineDeduction LineKind = "deduction"
)

type NoticeLine struct {
	Label  string
	Amount decimal.Decimal
	Kind   LineKind
}

type AttendanceFacts struct {
	PresentDays int
	AbsentDays  int
	LeaveDays   int
	SickDays    int
}

// NoticeData is a single-employee notification page.
type NoticeData struct {
	Variant        NoticeVariant
	Company        CompanyInfo
	Title          string
	Period         period.Period
	EmployeeName   string
	EmployeeCode   string
	NationalID     string
	JobTitle       string
	DepartmentName string
	Lines          []NoticeLine
	TotalLabel     string
	Total          decimal.Decimal
	Attendance     *AttendanceFacts
	Notes          *string
	GeneratedAt    time.Time
}
