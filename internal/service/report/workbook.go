package report

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/report"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/excel"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/money"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/period"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Fixed sheet names. Department sheets are named after the department.
const (
	SheetSummary   = "Summary"
	SheetAll       = "All"
	SheetDashboard = "Dashboard"
)

const totalLabel = "الإجمالي"

type valueKind int

const (
	kindText valueKind = iota
	kindInteger
	kindMoney
)

type highlight int

const (
	highlightNone highlight = iota
	highlightEarning
	highlightDeduction
)

type recordColumn struct {
	header    string
	kind      valueKind
	highlight highlight
	value     func(r payroll.SalaryRecord) any
}

func (c recordColumn) summed() bool {
	return c.kind != kindText
}

// recordColumns is the shared column order of department sheets and All.
func recordColumns(withAttendance bool) []recordColumn {
	cols := []recordColumn{
		{header: "المعرف", value: func(r payroll.SalaryRecord) any { return r.ID }},
		{header: "اسم الموظف", value: func(r payroll.SalaryRecord) any { return r.EmployeeName }},
		{header: "الرقم الوظيفي", value: func(r payroll.SalaryRecord) any { return r.EmployeeCode }},
		{header: "رقم الهوية", value: func(r payroll.SalaryRecord) any { return r.NationalID }},
		{header: "المسمى الوظيفي", value: func(r payroll.SalaryRecord) any { return r.JobTitle }},
		{header: "القسم", value: func(r payroll.SalaryRecord) any { return departmentOf(r) }},
		{header: "الفترة", value: func(r payroll.SalaryRecord) any { return period.New(r.Month, r.Year).Key() }},
		{header: "الراتب الأساسي", kind: kindMoney, highlight: highlightEarning, value: func(r payroll.SalaryRecord) any { return r.BasicSalary }},
		{header: "مكافأة الحضور", kind: kindMoney, highlight: highlightEarning, value: func(r payroll.SalaryRecord) any { return r.AttendanceBonus }},
		{header: "البدلات", kind: kindMoney, highlight: highlightEarning, value: func(r payroll.SalaryRecord) any { return r.Allowances }},
		{header: "المكافآت", kind: kindMoney, highlight: highlightEarning, value: func(r payroll.SalaryRecord) any { return r.Bonus }},
		{header: "الخصومات", kind: kindMoney, highlight: highlightDeduction, value: func(r payroll.SalaryRecord) any { return r.Deductions }},
		{header: "صافي الراتب", kind: kindMoney, highlight: highlightEarning, value: func(r payroll.SalaryRecord) any { return r.NetSalary }},
	}
	if withAttendance {
		cols = append(cols,
			recordColumn{header: "أيام الحضور", kind: kindInteger, value: func(r payroll.SalaryRecord) any { return r.PresentDays }},
			recordColumn{header: "أيام الغياب", kind: kindInteger, value: func(r payroll.SalaryRecord) any { return r.AbsentDays }},
			recordColumn{header: "أيام الإجازة", kind: kindInteger, value: func(r payroll.SalaryRecord) any { return r.LeaveDays }},
			recordColumn{header: "أيام المرض", kind: kindInteger, value: func(r payroll.SalaryRecord) any { return r.SickDays }},
			recordColumn{header: "خصم الغياب", kind: kindMoney, highlight: highlightDeduction, value: func(r payroll.SalaryRecord) any { return r.AttendanceDeduction }},
		)
	}
	cols = append(cols, recordColumn{header: "ملاحظات", value: func(r payroll.SalaryRecord) any {
		if r.Notes == nil {
			return ""
		}
		return *r.Notes
	}})
	return cols
}

var summaryHeaders = []string{
	"القسم", "عدد الموظفين", "إجمالي الأساسي", "إجمالي البدلات",
	"إجمالي الخصومات", "إجمالي المكافآت", "إجمالي الصافي",
}

// summaryValues returns the monetary columns of a Summary row. Bonus folds in
// the earned attendance bonus so that basic + allowances + bonus - deductions
// equals net on every row.
func summaryValues(t report.Totals) []decimal.Decimal {
	return []decimal.Decimal{
		t.Basic,
		t.Allowances,
		t.Deductions,
		t.Bonus.Add(t.AttendanceBonus),
		t.Net,
	}
}

// workbookWriter lays out one workbook. Cell-level failures are logged and
// counted; only structural failures (sheets, serialization) are returned.
type workbookWriter struct {
	f          *excelize.File
	styles     *excel.StyleManager
	padding    float64
	data       report.WorkbookData
	columns    []recordColumn
	cellErrors int
}

func newWorkbookWriter(data report.WorkbookData, fontFamily string, padding float64) *workbookWriter {
	f := excelize.NewFile()
	return &workbookWriter{
		f:       f,
		styles:  excel.NewStyleManager(f, fontFamily),
		padding: padding,
		data:    data,
		columns: recordColumns(data.HasAttendance()),
	}
}

func (w *workbookWriter) Close() {
	if err := w.f.Close(); err != nil {
		slog.Warn("failed to close workbook", "error", err)
	}
}

// Render writes every sheet in order and serializes the workbook.
func (w *workbookWriter) Render() ([]byte, error) {
	if err := w.f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("failed to name summary sheet: %w", err)
	}
	w.writeSummary()

	namer := excel.NewSheetNamer(SheetSummary, SheetAll, SheetDashboard)
	for _, g := range w.data.Groups {
		name := namer.Name(g.Name)
		if _, err := w.f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %q: %w", name, err)
		}
		w.writeRecords(name, g.Records)
	}

	if _, err := w.f.NewSheet(SheetAll); err != nil {
		return nil, fmt.Errorf("failed to create sheet %q: %w", SheetAll, err)
	}
	w.writeRecords(SheetAll, w.data.All)

	if _, err := w.f.NewSheet(SheetDashboard); err != nil {
		return nil, fmt.Errorf("failed to create sheet %q: %w", SheetDashboard, err)
	}
	w.writeDashboard()

	w.f.SetActiveSheet(0)
	w.check(w.f.SetDocProps(&excelize.DocProperties{
		Title:    w.data.Title,
		Creator:  w.data.Company.Name,
		Created:  w.data.GeneratedAt.UTC().Format(time.RFC3339),
		Language: "ar-SA",
	}), "", "docProps")

	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	if w.cellErrors > 0 {
		slog.Warn("workbook rendered with skipped cells", "count", w.cellErrors)
	}
	return buf.Bytes(), nil
}

func (w *workbookWriter) writeSummary() {
	sheet := SheetSummary
	w.rtl(sheet)
	widths := excel.NewWidthTracker(w.padding)

	for col, h := range summaryHeaders {
		w.cell(sheet, 0, col, h)
		widths.Header(col, h)
	}
	w.style(sheet, 0, 0, 0, len(summaryHeaders)-1, w.styles.Header)

	row := 1
	for _, g := range w.data.Groups {
		w.cell(sheet, row, 0, g.Name)
		widths.Observe(0, g.Name)
		w.cell(sheet, row, 1, g.Totals.EmployeeCount)
		for i, v := range summaryValues(g.Totals) {
			w.cell(sheet, row, i+2, v)
			widths.Observe(i+2, money.Format(v))
		}
		row++
	}
	last := row - 1
	if len(w.data.Groups) > 0 {
		w.style(sheet, 1, 0, last, 0, w.styles.Text)
		w.style(sheet, 1, 1, last, 1, w.styles.Integer)
		w.style(sheet, 1, 2, last, len(summaryHeaders)-1, w.styles.Money)
	}

	w.cell(sheet, row, 0, totalLabel)
	for col := 1; col < len(summaryHeaders); col++ {
		w.sumFormula(sheet, row, col, 1, last)
	}
	for i, v := range summaryValues(w.data.GrandTotal) {
		widths.Observe(i+2, money.Format(v))
	}
	w.style(sheet, row, 0, row, 0, w.styles.GrandTotalLabel)
	w.style(sheet, row, 1, row, 1, w.styles.GrandTotalInteger)
	w.style(sheet, row, 2, row, len(summaryHeaders)-1, w.styles.GrandTotalMoney)

	w.freeze(sheet)
	w.check(widths.Apply(w.f, sheet), sheet, "widths")
}

// writeRecords writes the header, one row per record and a SUM row.
func (w *workbookWriter) writeRecords(sheet string, records []payroll.SalaryRecord) {
	w.rtl(sheet)
	widths := excel.NewWidthTracker(w.padding)
	lastCol := len(w.columns) - 1

	for col, c := range w.columns {
		w.cell(sheet, 0, col, c.header)
		widths.Header(col, c.header)
	}
	w.style(sheet, 0, 0, 0, lastCol, w.styles.Header)

	for i, r := range records {
		row := i + 1
		for col, c := range w.columns {
			v := c.value(r)
			w.cell(sheet, row, col, v)
			widths.Observe(col, display(v))
		}
	}

	first, last := 1, len(records)
	if len(records) > 0 {
		for col, c := range w.columns {
			switch c.kind {
			case kindMoney:
				w.style(sheet, first, col, last, col, w.styles.Money)
			case kindInteger:
				w.style(sheet, first, col, last, col, w.styles.Integer)
			default:
				w.style(sheet, first, col, last, col, w.styles.Text)
			}
		}
	}

	totalRow := last + 1
	w.cell(sheet, totalRow, 1, totalLabel)
	w.style(sheet, totalRow, 0, totalRow, lastCol, w.styles.TotalLabel)
	for col, c := range w.columns {
		if !c.summed() {
			continue
		}
		w.sumFormula(sheet, totalRow, col, first, last)
		if c.kind == kindMoney {
			w.style(sheet, totalRow, col, totalRow, col, w.styles.TotalMoney)
		} else {
			w.style(sheet, totalRow, col, totalRow, col, w.styles.TotalInteger)
		}
	}

	if len(records) > 1 {
		w.highlightAboveAverage(sheet, first, last)
	}

	w.freeze(sheet)
	w.check(widths.Apply(w.f, sheet), sheet, "widths")
}

func (w *workbookWriter) highlightAboveAverage(sheet string, first, last int) {
	good, err := w.styles.AboveAverageGood()
	if err != nil {
		w.check(err, sheet, "conditional style")
		return
	}
	bad, err := w.styles.AboveAverageBad()
	if err != nil {
		w.check(err, sheet, "conditional style")
		return
	}

	for col, c := range w.columns {
		format := good
		switch c.highlight {
		case highlightNone:
			continue
		case highlightDeduction:
			format = bad
		}
		ref := excel.ColumnRange(col, first, last)
		w.check(w.f.SetConditionalFormat(sheet, ref, []excelize.ConditionalFormatOptions{
			{Type: "average", Criteria: "=", AboveAverage: true, Format: &format},
		}), sheet, ref)
	}
}

// Dashboard layout, 0-based rows.
const (
	dashTitleRow     = 0
	dashCardLabelRow = 2
	dashCardValueRow = 3
	dashTableRow     = 6
)

func (w *workbookWriter) writeDashboard() {
	sheet := SheetDashboard
	w.rtl(sheet)

	title := w.data.Title
	if w.data.Company.Name != "" {
		title = w.data.Company.Name + " - " + title
	}
	w.cell(sheet, dashTitleRow, 0, title)
	w.merge(sheet, dashTitleRow, 0, dashTitleRow, 7)
	w.style(sheet, dashTitleRow, 0, dashTitleRow, 7, w.styles.Title)
	w.check(w.f.SetRowHeight(sheet, dashTitleRow+1, 32), sheet, "title height")

	grand := w.data.GrandTotal
	cards := []struct {
		label string
		value any
	}{
		{"عدد الموظفين", grand.EmployeeCount},
		{"عدد الأقسام", len(w.data.Groups)},
		{"متوسط صافي الراتب", grand.AverageNet()},
		{"إجمالي صافي الرواتب", grand.Net},
	}
	for i, card := range cards {
		col := i * 2
		w.cell(sheet, dashCardLabelRow, col, card.label)
		w.merge(sheet, dashCardLabelRow, col, dashCardLabelRow, col+1)
		w.style(sheet, dashCardLabelRow, col, dashCardLabelRow, col+1, w.styles.CardLabel)

		w.cell(sheet, dashCardValueRow, col, card.value)
		w.merge(sheet, dashCardValueRow, col, dashCardValueRow, col+1)
		if _, ok := card.value.(int); ok {
			w.style(sheet, dashCardValueRow, col, dashCardValueRow, col+1, w.styles.CardCount)
		} else {
			w.style(sheet, dashCardValueRow, col, dashCardValueRow, col+1, w.styles.CardValue)
		}
	}
	w.check(w.f.SetRowHeight(sheet, dashCardValueRow+1, 30), sheet, "card height")

	headers := []string{"القسم", "عدد الموظفين", "صافي الرواتب"}
	for col, h := range headers {
		w.cell(sheet, dashTableRow, col, h)
	}
	w.style(sheet, dashTableRow, 0, dashTableRow, len(headers)-1, w.styles.Header)

	first := dashTableRow + 1
	for i, g := range w.data.Groups {
		row := first + i
		w.cell(sheet, row, 0, g.Name)
		w.cell(sheet, row, 1, g.Totals.EmployeeCount)
		w.cell(sheet, row, 2, g.Totals.Net)
	}
	last := first + len(w.data.Groups) - 1
	if len(w.data.Groups) > 0 {
		w.style(sheet, first, 0, last, 0, w.styles.Text)
		w.style(sheet, first, 1, last, 1, w.styles.Integer)
		w.style(sheet, first, 2, last, 2, w.styles.Money)
	}
	for col := 0; col < 8; col++ {
		name := excel.IndexToColumn(col)
		w.check(w.f.SetColWidth(sheet, name, name, 18), sheet, name)
	}

	if len(w.data.Groups) == 0 {
		return
	}
	w.addDashboardCharts(sheet, first, last)
}

// addDashboardCharts wires both charts to the breakdown table. A chart that
// cannot be added is left out.
func (w *workbookWriter) addDashboardCharts(sheet string, first, last int) {
	categories := excel.AbsoluteRef(sheet, 0, first, last)

	pie := &excelize.Chart{
		Type: excelize.Pie,
		Series: []excelize.ChartSeries{{
			Name:       "عدد الموظفين",
			Categories: categories,
			Values:     excel.AbsoluteRef(sheet, 1, first, last),
		}},
		Title:     []excelize.RichTextRun{{Text: "توزيع الموظفين على الأقسام"}},
		Legend:    excelize.ChartLegend{Position: "right"},
		PlotArea:  excelize.ChartPlotArea{ShowPercent: true},
		Dimension: excelize.ChartDimension{Width: 480, Height: 300},
	}
	if err := w.f.AddChart(sheet, excel.CellName(dashTableRow, 4), pie); err != nil {
		slog.Warn("dashboard chart omitted", "chart", "employees_by_department", "error", err)
	}

	bar := &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       "صافي الرواتب",
			Categories: categories,
			Values:     excel.AbsoluteRef(sheet, 2, first, last),
		}},
		Title:     []excelize.RichTextRun{{Text: "صافي الرواتب حسب القسم"}},
		Legend:    excelize.ChartLegend{Position: "none"},
		PlotArea:  excelize.ChartPlotArea{ShowVal: true},
		Dimension: excelize.ChartDimension{Width: 480, Height: 300},
	}
	anchor := max(last+3, dashTableRow+17)
	if err := w.f.AddChart(sheet, excel.CellName(anchor, 4), bar); err != nil {
		slog.Warn("dashboard chart omitted", "chart", "net_by_department", "error", err)
	}
}

func (w *workbookWriter) sumFormula(sheet string, row, col, first, last int) {
	ref := excel.CellName(row, col)
	if last < first {
		w.cell(sheet, row, col, 0)
		return
	}
	w.check(w.f.SetCellFormula(sheet, ref, "SUM("+excel.ColumnRange(col, first, last)+")"), sheet, ref)
}

func (w *workbookWriter) cell(sheet string, row, col int, v any) {
	ref := excel.CellName(row, col)
	var err error
	switch x := v.(type) {
	case string:
		err = w.f.SetCellStr(sheet, ref, x)
	case int:
		err = w.f.SetCellInt(sheet, ref, x)
	case decimal.Decimal:
		err = w.f.SetCellFloat(sheet, ref, money.Float(x), money.Places, 64)
	default:
		err = w.f.SetCellValue(sheet, ref, x)
	}
	w.check(err, sheet, ref)
}

func (w *workbookWriter) style(sheet string, fromRow, fromCol, toRow, toCol int, get func() (int, error)) {
	ref := excel.CellName(fromRow, fromCol)
	id, err := get()
	if err != nil {
		w.check(err, sheet, ref)
		return
	}
	w.check(w.f.SetCellStyle(sheet, ref, excel.CellName(toRow, toCol), id), sheet, ref)
}

func (w *workbookWriter) merge(sheet string, fromRow, fromCol, toRow, toCol int) {
	ref := excel.CellName(fromRow, fromCol)
	w.check(w.f.MergeCell(sheet, ref, excel.CellName(toRow, toCol)), sheet, ref)
}

func (w *workbookWriter) rtl(sheet string) {
	on := true
	w.check(w.f.SetSheetView(sheet, -1, &excelize.ViewOptions{RightToLeft: &on}), sheet, "view")
}

// freeze keeps the header row visible.
func (w *workbookWriter) freeze(sheet string) {
	w.check(w.f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}), sheet, "panes")
}

func (w *workbookWriter) check(err error, sheet, ref string) {
	if err == nil {
		return
	}
	w.cellErrors++
	slog.Warn("workbook cell skipped", "sheet", sheet, "cell", ref, "error", err)
}

func display(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case decimal.Decimal:
		return money.Format(x)
	default:
		return fmt.Sprint(x)
	}
}
