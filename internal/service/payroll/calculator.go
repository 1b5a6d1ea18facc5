package payroll

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/money"
	"github.com/shopspring/decimal"
)

// WageDivisor is the fixed day count for the daily wage, whatever the month length.
const WageDivisor = 30

// Calculator derives a salary from attendance facts.
type Calculator struct {
	attendance attendance.AttendanceService
	composer   *Composer
	gosi       *GOSICalculator
}

func NewCalculator(attendanceService attendance.AttendanceService, gosi *GOSICalculator) *Calculator {
	return &Calculator{
		attendance: attendanceService,
		composer:   NewComposer(gosi),
		gosi:       gosi,
	}
}

func (c *Calculator) Composer() *Composer {
	return c.composer
}

// Calculate runs the attendance-integrated computation. It does not return
// an error for missing attendance: that path credits full pay and warns.
func (c *Calculator) Calculate(ctx context.Context, in payroll.CalculationInput) payroll.CalculationResult {
	summary, err := c.attendance.Summarize(ctx, in.EmployeeID, in.Month, in.Year)
	if err != nil {
		res := c.fullCredit(in)
		res.Warnings = append(res.Warnings, payroll.Warning{
			Code:       payroll.WarningAttendanceUnavailable,
			EmployeeID: in.EmployeeID,
			Message:    fmt.Sprintf("attendance unavailable, full pay credited: %v", err),
		})
		return res
	}
	if summary == nil || !summary.HasRecords() {
		res := c.fullCredit(in)
		res.Summary = summary
		res.Warnings = append(res.Warnings, payroll.Warning{
			Code:       payroll.WarningNoAttendanceRecords,
			EmployeeID: in.EmployeeID,
			Message:    "no attendance recorded for the month, full pay credited",
		})
		return res
	}

	return c.FromSummary(in, *summary)
}

// FromSummary is the pure part of Calculate.
func (c *Calculator) FromSummary(in payroll.CalculationInput, s attendance.Summary) payroll.CalculationResult {
	res := newResult(in)
	res.Summary = &s
	res.AttendanceCalculated = true

	exactDaily := money.Div(in.Basic, WageDivisor)
	res.DailyWage = money.Round(exactDaily)

	res.PaidDays = s.PresentDays
	if in.ExcludeLeave {
		res.PaidDays += s.LeaveDays
	}
	if in.ExcludeSick {
		res.PaidDays += s.SickDays
	}

	// exact daily rate so a full month reproduces basic (333.33 x 30 would not)
	res.Earned = money.Min(money.Round(exactDaily.Mul(decimal.NewFromInt(int64(res.PaidDays)))), in.Basic)
	res.AttendanceDeduction = in.Basic.Sub(res.Earned)

	if res.PaidDays >= in.RequiredDaysForBonus {
		res.EarnedBonus = in.AttendanceBonus
		res.BonusDeduction = decimal.Zero
	} else {
		res.EarnedBonus = decimal.Zero
		res.BonusDeduction = in.AttendanceBonus
	}

	res.GOSI = c.gosi.Compute(in.Basic, in.Nationality, in.ContractType)

	res.TotalDeductions = money.Round(money.Sum(res.AttendanceDeduction, res.BonusDeduction, in.OtherDeductions, res.GOSI.Deduction))
	res.NetSalary = money.Round(money.Sum(in.Basic, res.EarnedBonus, in.Allowances, in.Bonus).Sub(res.TotalDeductions))

	return res
}

// fullCredit pays basic and the whole attendance bonus.
func (c *Calculator) fullCredit(in payroll.CalculationInput) payroll.CalculationResult {
	res := newResult(in)
	res.DailyWage = money.Round(money.Div(in.Basic, WageDivisor))
	res.PaidDays = WageDivisor
	res.Earned = in.Basic
	res.AttendanceDeduction = decimal.Zero
	res.EarnedBonus = in.AttendanceBonus
	res.BonusDeduction = decimal.Zero

	b := c.composer.Compose(payroll.ComposeInput{
		Basic:           in.Basic,
		Allowances:      in.Allowances,
		Bonus:           in.Bonus.Add(in.AttendanceBonus),
		OtherDeductions: in.OtherDeductions,
		Nationality:     in.Nationality,
		ContractType:    in.ContractType,
		IncludeGOSI:     true,
	})
	res.GOSI = c.gosi.Compute(in.Basic, in.Nationality, in.ContractType)
	res.TotalDeductions = b.TotalDeductions
	res.NetSalary = b.NetSalary

	return res
}

func newResult(in payroll.CalculationInput) payroll.CalculationResult {
	res := payroll.CalculationResult{
		EmployeeID:      in.EmployeeID,
		Month:           in.Month,
		Year:            in.Year,
		Basic:           in.Basic,
		Allowances:      in.Allowances,
		Bonus:           in.Bonus,
		OtherDeductions: in.OtherDeductions,
		AttendanceBonus: in.AttendanceBonus,
	}
	if in.Basic.IsZero() {
		res.Warnings = append(res.Warnings, payroll.Warning{
			Code:       payroll.WarningZeroBasicSalary,
			EmployeeID: in.EmployeeID,
			Message:    "basic salary is zero",
		})
	}
	return res
}
