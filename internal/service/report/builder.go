package report

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/report"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/money"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/period"
	"github.com/shopspring/decimal"
)

func departmentOf(r payroll.SalaryRecord) string {
	if r.DepartmentName == nil || strings.TrimSpace(*r.DepartmentName) == "" {
		return report.NoDepartmentLabel
	}
	return strings.TrimSpace(*r.DepartmentName)
}

func zeroTotals() report.Totals {
	return report.Totals{
		Basic:           decimal.Zero,
		AttendanceBonus: decimal.Zero,
		Allowances:      decimal.Zero,
		Bonus:           decimal.Zero,
		Deductions:      decimal.Zero,
		Net:             decimal.Zero,
	}
}

// groupByDepartment keeps each group's records in input order and sorts the
// groups by name.
func groupByDepartment(records []payroll.SalaryRecord) []report.DepartmentGroup {
	index := make(map[string]int)
	var groups []report.DepartmentGroup

	for _, r := range records {
		name := departmentOf(r)
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, report.DepartmentGroup{Name: name, Totals: zeroTotals()})
		}
		groups[i].Records = append(groups[i].Records, r)
		groups[i].Totals.Add(r)
	}

	sort.SliceStable(groups, func(a, b int) bool { return groups[a].Name < groups[b].Name })
	return groups
}

func buildWorkbookData(records []payroll.SalaryRecord, company report.CompanyInfo, now time.Time) report.WorkbookData {
	groups := groupByDepartment(records)

	grand := zeroTotals()
	for _, g := range groups {
		grand.Merge(g.Totals)
	}

	return report.WorkbookData{
		Title:       workbookTitle(records),
		Company:     company,
		GeneratedAt: now,
		Groups:      groups,
		All:         records,
		GrandTotal:  grand,
	}
}

// workbookTitle names the period when every record shares one.
func workbookTitle(records []payroll.SalaryRecord) string {
	const base = "تقرير الرواتب"
	if len(records) == 0 {
		return base
	}
	first := period.New(records[0].Month, records[0].Year)
	for _, r := range records[1:] {
		if r.Month != first.Month || r.Year != first.Year {
			return base
		}
	}
	return base + " - " + first.ArabicName() + " " + strconv.Itoa(first.Year)
}

func buildBatchData(records []payroll.SalaryRecord, company report.CompanyInfo, month, year *int, departmentName *string, now time.Time) report.BatchPDFData {
	totals := zeroTotals()
	for _, r := range records {
		totals.Add(r)
	}

	data := report.BatchPDFData{
		Company:        company,
		DepartmentName: departmentName,
		Rows:           records,
		Totals:         totals,
		GeneratedAt:    now,
	}
	if month != nil && year != nil {
		p := period.New(*month, *year)
		data.Period = &p
	}
	data.Title = batchTitle(data.Period, departmentName)
	return data
}

func batchTitle(p *period.Period, departmentName *string) string {
	title := "كشف الرواتب"
	if p != nil {
		title += " - " + p.ArabicName() + " " + strconv.Itoa(p.Year)
	}
	if departmentName != nil && *departmentName != "" {
		title += " - " + *departmentName
	}
	return title
}

// otherDeductions is everything in the stored total except the absence
// deduction: GOSI, the forfeited attendance bonus and manual deductions.
func otherDeductions(r payroll.SalaryRecord) decimal.Decimal {
	return money.Max(r.Deductions.Sub(r.AttendanceDeduction), decimal.Zero)
}

func buildNotice(r payroll.SalaryRecord, variant report.NoticeVariant, company report.CompanyInfo, now time.Time) report.NoticeData {
	p := period.New(r.Month, r.Year)
	data := report.NoticeData{
		Variant:        variant,
		Company:        company,
		Period:         p,
		EmployeeName:   r.EmployeeName,
		EmployeeCode:   r.EmployeeCode,
		NationalID:     r.NationalID,
		JobTitle:       r.JobTitle,
		DepartmentName: departmentOf(r),
		Notes:          r.Notes,
		GeneratedAt:    now,
	}
	if r.AttendanceCalculated {
		data.Attendance = &report.AttendanceFacts{
			PresentDays: r.PresentDays,
			AbsentDays:  r.AbsentDays,
			LeaveDays:   r.LeaveDays,
			SickDays:    r.SickDays,
		}
	}

	deductions := []report.NoticeLine{
		{Label: "خصم الغياب", Amount: r.AttendanceDeduction, Kind: report.LineDeduction},
		{Label: "استقطاعات أخرى والتأمينات", Amount: otherDeductions(r), Kind: report.LineDeduction},
	}

	switch variant {
	case report.VariantDeduction:
		data.Title = "إشعار خصم - " + p.ArabicName() + " " + strconv.Itoa(p.Year)
		data.Lines = deductions
		data.TotalLabel = "إجمالي الخصومات"
		data.Total = r.Deductions
	default:
		data.Title = "إشعار راتب - " + p.ArabicName() + " " + strconv.Itoa(p.Year)
		data.Lines = append([]report.NoticeLine{
			{Label: "الراتب الأساسي", Amount: r.BasicSalary, Kind: report.LineEarning},
			{Label: "مكافأة الحضور", Amount: r.AttendanceBonus, Kind: report.LineEarning},
			{Label: "البدلات", Amount: r.Allowances, Kind: report.LineEarning},
			{Label: "المكافآت", Amount: r.Bonus, Kind: report.LineEarning},
		}, deductions...)
		data.TotalLabel = "صافي الراتب"
		data.Total = r.NetSalary
	}
	return data
}
