package report

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const testFontDir = "../../pkg/pdf/testdata/fonts"

type fakeRecorder struct {
	mu      sync.Mutex
	actions []string
	ids     []string
}

func (f *fakeRecorder) Record(ctx context.Context, action, entityType, entityID string, details any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
	f.ids = append(f.ids, entityID)
}

func (f *fakeRecorder) List(ctx context.Context, filter audit.Filter) ([]audit.EntryResponse, error) {
	return nil, nil
}

func newTestService(fontDir string) (*ReportServiceImpl, *fakeRecorder) {
	rec := &fakeRecorder{}
	svc := NewReportService(Options{
		Company:       report.CompanyInfo{Name: "شركة الاختبار", NameEn: "Test Co", CRNumber: "1010101010"},
		FontDir:       fontDir,
		FontRegular:   "DejaVuSansCondensed.ttf",
		FontBold:      "DejaVuSansCondensed-Bold.ttf",
		ColumnPadding: 2,
	}, rec).(*ReportServiceImpl)
	svc.now = func() time.Time { return time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC) }
	return svc, rec
}

func strPtr(s string) *string { return &s }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func itoa(i int) string { return strconv.Itoa(i) }

func salary(id, name string, dept *string, basic, attBonus, allowances, bonus, deductions, net string) payroll.SalaryRecord {
	return payroll.SalaryRecord{
		ID:              id,
		EmployeeID:      "emp-" + id,
		Month:           6,
		Year:            2024,
		BasicSalary:     dec(basic),
		AttendanceBonus: dec(attBonus),
		Allowances:      dec(allowances),
		Bonus:           dec(bonus),
		Deductions:      dec(deductions),
		NetSalary:       dec(net),
		EmployeeName:    name,
		EmployeeCode:    "E-" + id,
		DepartmentName:  dept,
	}
}

func sampleRecords() []payroll.SalaryRecord {
	s1 := salary("1", "أحمد", strPtr("Sales"), "10000", "300", "500", "0", "1000", "9800")
	s1.AttendanceCalculated = true
	s1.PresentDays = 30
	s2 := salary("2", "Bob", strPtr("Engineering"), "6000", "0", "0", "0", "500", "5500")
	s2.AttendanceCalculated = true
	s2.PresentDays, s2.AbsentDays, s2.LeaveDays = 28, 2, 1
	s2.AttendanceDeduction = dec("200")
	s3 := salary("3", "Carol", nil, "8000", "0", "0", "300", "800", "7500")
	s4 := salary("4", "Dina", strPtr("Sales"), "4000", "300", "200", "100", "0", "4600")
	return []payroll.SalaryRecord{s1, s2, s3, s4}
}

func openWorkbook(t *testing.T, b []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func calc(t *testing.T, f *excelize.File, sheet, cell string) decimal.Decimal {
	t.Helper()
	v, err := f.CalcCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err, "%s!%s", sheet, cell)
	d, err := decimal.NewFromString(v)
	require.NoError(t, err, "%s!%s = %q", sheet, cell, v)
	return d
}

func cellDecimal(t *testing.T, f *excelize.File, sheet, cell string) decimal.Decimal {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	d, err := decimal.NewFromString(v)
	require.NoError(t, err, "%s!%s = %q", sheet, cell, v)
	return d
}

func TestRenderSalaryWorkbook_SheetOrderAndLayout(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(testFontDir)

	// Act
	out, err := svc.RenderSalaryWorkbook(context.Background(), sampleRecords())

	// Assert
	require.NoError(t, err)
	f := openWorkbook(t, out)

	assert.Equal(t, []string{
		SheetSummary, "Engineering", "Sales", report.NoDepartmentLabel, SheetAll, SheetDashboard,
	}, f.GetSheetList())

	for _, sheet := range f.GetSheetList() {
		view, err := f.GetSheetView(sheet, -1)
		require.NoError(t, err)
		require.NotNil(t, view.RightToLeft, sheet)
		assert.True(t, *view.RightToLeft, sheet)
	}

	for _, sheet := range []string{"Sales", SheetAll} {
		panes, err := f.GetPanes(sheet)
		require.NoError(t, err)
		assert.True(t, panes.Freeze, sheet)
		assert.Equal(t, 1, panes.YSplit, sheet)
		assert.Equal(t, "A2", panes.TopLeftCell, sheet)
	}

	name, err := f.GetCellValue(report.NoDepartmentLabel, "F2")
	require.NoError(t, err)
	assert.Equal(t, report.NoDepartmentLabel, name)
}

func TestRenderSalaryWorkbook_SummaryGrandTotal(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(testFontDir)
	records := sampleRecords()

	out, err := svc.RenderSalaryWorkbook(context.Background(), records)
	require.NoError(t, err)
	f := openWorkbook(t, out)

	// three departments in rows 2..4, grand total in row 5
	formula, err := f.GetCellFormula(SheetSummary, "G5")
	require.NoError(t, err)
	assert.Equal(t, "SUM(G2:G4)", formula)

	for _, col := range []string{"B", "C", "D", "E", "F", "G"} {
		sum := decimal.Zero
		for row := 2; row <= 4; row++ {
			sum = sum.Add(cellDecimal(t, f, SheetSummary, col+itoa(row)))
		}
		assert.True(t, sum.Equal(calc(t, f, SheetSummary, col+"5")), "column %s", col)
	}

	assert.True(t, dec("27400").Equal(calc(t, f, SheetSummary, "G5")))
	assert.True(t, dec("4").Equal(calc(t, f, SheetSummary, "B5")))

	// basic + allowances + bonus - deductions = net on the grand-total row
	net := calc(t, f, SheetSummary, "C5").
		Add(calc(t, f, SheetSummary, "D5")).
		Add(calc(t, f, SheetSummary, "F5")).
		Sub(calc(t, f, SheetSummary, "E5"))
	assert.True(t, net.Equal(calc(t, f, SheetSummary, "G5")), "net identity %s", net)
}

func TestRenderSalaryWorkbook_SumFormulasAndHighlights(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(testFontDir)

	out, err := svc.RenderSalaryWorkbook(context.Background(), sampleRecords())
	require.NoError(t, err)
	f := openWorkbook(t, out)

	// All: header + 4 rows, totals in row 6. Net is column M.
	header, err := f.GetCellValue(SheetAll, "M1")
	require.NoError(t, err)
	assert.Equal(t, "صافي الراتب", header)

	formula, err := f.GetCellFormula(SheetAll, "M6")
	require.NoError(t, err)
	assert.Equal(t, "SUM(M2:M5)", formula)
	assert.True(t, dec("27400").Equal(calc(t, f, SheetAll, "M6")))
	assert.True(t, dec("28000").Equal(calc(t, f, SheetAll, "H6")))

	// Sales: two rows, totals in row 4.
	assert.True(t, dec("14400").Equal(calc(t, f, "Sales", "M4")))

	// attendance columns follow net when any record has attendance
	present, err := f.GetCellValue(SheetAll, "N1")
	require.NoError(t, err)
	assert.Equal(t, "أيام الحضور", present)
	assert.True(t, dec("58").Equal(calc(t, f, SheetAll, "N6")))

	formats, err := f.GetConditionalFormats(SheetAll)
	require.NoError(t, err)
	require.Contains(t, formats, "M2:M5")
	require.Len(t, formats["M2:M5"], 1)
	assert.Equal(t, "average", formats["M2:M5"][0].Type)
	assert.True(t, formats["M2:M5"][0].AboveAverage)
	require.Contains(t, formats, "L2:L5", "deductions highlighted")
	assert.NotEqual(t, formats["M2:M5"][0].Format, formats["L2:L5"][0].Format)
	assert.NotContains(t, formats, "B2:B5", "text columns are not highlighted")
}

func TestRenderSalaryWorkbook_NoAttendanceColumns(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(testFontDir)
	records := []payroll.SalaryRecord{
		salary("1", "A", strPtr("Ops"), "5000", "0", "0", "0", "0", "5000"),
	}

	out, err := svc.RenderSalaryWorkbook(context.Background(), records)
	require.NoError(t, err)
	f := openWorkbook(t, out)

	notes, err := f.GetCellValue(SheetAll, "N1")
	require.NoError(t, err)
	assert.Equal(t, "ملاحظات", notes)
}

func TestRenderSalaryWorkbook_Dashboard(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(testFontDir)

	out, err := svc.RenderSalaryWorkbook(context.Background(), sampleRecords())
	require.NoError(t, err)
	f := openWorkbook(t, out)

	title, err := f.GetCellValue(SheetDashboard, "A1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(title, "شركة الاختبار"), title)
	assert.Contains(t, title, "يونيو")

	assert.True(t, dec("4").Equal(cellDecimal(t, f, SheetDashboard, "A4")))
	assert.True(t, dec("3").Equal(cellDecimal(t, f, SheetDashboard, "C4")))
	assert.True(t, dec("6850").Equal(cellDecimal(t, f, SheetDashboard, "E4")))
	assert.True(t, dec("27400").Equal(cellDecimal(t, f, SheetDashboard, "G4")))

	dept, err := f.GetCellValue(SheetDashboard, "A8")
	require.NoError(t, err)
	assert.Equal(t, "Engineering", dept)
	assert.True(t, dec("14400").Equal(cellDecimal(t, f, SheetDashboard, "C9")))
}

func TestRenderSalaryWorkbook_Empty(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(testFontDir)

	out, err := svc.RenderSalaryWorkbook(context.Background(), nil)

	require.NoError(t, err)
	f := openWorkbook(t, out)
	assert.Equal(t, []string{SheetSummary, SheetAll, SheetDashboard}, f.GetSheetList())
	assert.True(t, decimal.Zero.Equal(cellDecimal(t, f, SheetSummary, "G2")))
}

func TestRenderBatchPDF(t *testing.T) {
	t.Parallel()
	svc, rec := newTestService(testFontDir)
	month, year := 6, 2024

	out, err := svc.RenderBatchPDF(context.Background(), sampleRecords(), &month, &year, strPtr("Sales"))

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Empty(t, rec.actions)
}

func TestRenderBatchPDF_RowCountAndPagination(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(testFontDir)
	fonts, err := svc.loadFonts()
	require.NoError(t, err)

	var records []payroll.SalaryRecord
	for i := 0; i < 75; i++ {
		name := "موظف " + itoa(i)
		if i == 10 {
			name = strings.Repeat("عبدالرحمن بن عبدالعزيز ", 5)
		}
		records = append(records, salary(itoa(i), name, nil, "1000", "0", "0", "0", "0", "1000"))
	}
	month, year := 6, 2024
	data := buildBatchData(records, svc.opts.Company, &month, &year, nil, svc.now())

	out, stats, err := renderBatchPDF(data, fonts)

	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Equal(t, 75, stats.DataRows)
	assert.Equal(t, 1, stats.TotalsRows)
	assert.Empty(t, stats.Failed)
	assert.Greater(t, stats.Pages, 1)
	assert.True(t, dec("75000").Equal(data.Totals.Net))
}

func TestRenderBatchPDF_FailedRowIsPlaceholder(t *testing.T) {
	t.Parallel()
	svc, rec := newTestService(testFontDir)
	records := sampleRecords()
	records[1].EmployeeName = "bad \xff name"

	out, err := svc.RenderBatchPDF(context.Background(), records, nil, nil, nil)

	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Equal(t, []string{audit.ActionReportRowFailed}, rec.actions)
	assert.Equal(t, []string{"2"}, rec.ids)

	cells := failedBatchRow(records[1])
	assert.Equal(t, FailedCell, cells[1])
	assert.Equal(t, FailedCell, cells[7])
	assert.Equal(t, "28", cells[5])
}

func TestRenderBatchPDF_MissingFont(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t.TempDir())

	_, err := svc.RenderBatchPDF(context.Background(), sampleRecords(), nil, nil, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, report.ErrAssetMissing)
	var missing *report.AssetMissingError
	require.ErrorAs(t, err, &missing)
	assert.True(t, strings.HasSuffix(missing.Path, "DejaVuSansCondensed.ttf"), missing.Path)
}

func TestRenderSalaryPDF(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(testFontDir)
	r := sampleRecords()[1]
	r.Notes = strPtr(strings.Repeat("ملاحظة على الراتب ", 40))

	for _, variant := range []report.NoticeVariant{report.VariantSalary, report.VariantDeduction} {
		out, err := svc.RenderSalaryPDF(context.Background(), r, variant)
		require.NoError(t, err, variant)
		assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")), variant)
	}

	_, err := svc.RenderSalaryPDF(context.Background(), r, "payslip")
	assert.ErrorIs(t, err, report.ErrInvalidVariant)
}

func TestBuildNotice(t *testing.T) {
	t.Parallel()
	r := sampleRecords()[1]

	salaryNotice := buildNotice(r, report.VariantSalary, report.CompanyInfo{}, time.Now())
	deduction := buildNotice(r, report.VariantDeduction, report.CompanyInfo{}, time.Now())

	assert.True(t, dec("5500").Equal(salaryNotice.Total))
	assert.Len(t, salaryNotice.Lines, 6)
	require.NotNil(t, salaryNotice.Attendance)
	assert.Equal(t, 28, salaryNotice.Attendance.PresentDays)
	assert.Equal(t, "Engineering", salaryNotice.DepartmentName)

	assert.True(t, dec("500").Equal(deduction.Total))
	require.Len(t, deduction.Lines, 2)
	assert.True(t, dec("200").Equal(deduction.Lines[0].Amount))
	assert.True(t, dec("300").Equal(deduction.Lines[1].Amount))
}

func TestGroupByDepartment(t *testing.T) {
	t.Parallel()
	empty := "  "

	groups := groupByDepartment([]payroll.SalaryRecord{
		salary("1", "a", strPtr("Sales"), "100", "0", "0", "0", "0", "100"),
		salary("2", "b", &empty, "200", "0", "0", "0", "0", "200"),
		salary("3", "c", strPtr("Admin"), "300", "0", "0", "0", "0", "300"),
		salary("4", "d", strPtr("Sales"), "400", "0", "0", "0", "0", "400"),
	})

	require.Len(t, groups, 3)
	assert.Equal(t, "Admin", groups[0].Name)
	assert.Equal(t, "Sales", groups[1].Name)
	assert.Equal(t, report.NoDepartmentLabel, groups[2].Name)
	assert.Equal(t, 2, groups[1].Totals.EmployeeCount)
	assert.True(t, dec("500").Equal(groups[1].Totals.Net))
	assert.Equal(t, "1", groups[1].Records[0].ID)
}
