package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/report"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/money"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/pdf"
)

// FailedCell replaces every monetary value of a row that could not be rendered.
const FailedCell = "—"

const timestampLayout = "2006-01-02 15:04"

var errInvalidText = errors.New("record contains invalid UTF-8 text")

var batchColumns = []pdf.Column{
	{Header: "الاسم", Width: 70, Align: "R"},
	{Header: "الأساسي", Width: 30, Align: "R"},
	{Header: "البدلات", Width: 28, Align: "R"},
	{Header: "المكافآت", Width: 28, Align: "R"},
	{Header: "الخصومات", Width: 30, Align: "R"},
	{Header: "أيام الحضور", Width: 22, Align: "C"},
	{Header: "أيام الغياب", Width: 22, Align: "C"},
	{Header: "الصافي", Width: 32, Align: "R"},
}

// monetary columns of batchColumns
var batchMoneyCols = map[int]bool{1: true, 2: true, 3: true, 4: true, 7: true}

const (
	batchRowHeight = 7
	batchFontSize  = 9
)

type rowFailure struct {
	Record payroll.SalaryRecord
	Err    error
}

// batchStats describes what was drawn.
type batchStats struct {
	DataRows   int
	TotalsRows int
	Failed     []rowFailure
	Pages      int
}

func renderBatchPDF(data report.BatchPDFData, fonts *pdf.FontSet) ([]byte, batchStats, error) {
	var stats batchStats

	doc := pdf.NewDocument(pdf.Landscape, fonts, data.GeneratedAt)
	doc.SetTitle(data.Title)
	table := pdf.NewTable(doc, batchColumns, batchRowHeight, batchFontSize)
	p := doc.Fpdf()

	p.SetHeaderFunc(func() {
		top := p.GetY()
		doc.SetFont(true, 11)
		doc.CellAt(doc.Left(), top, 80, 6, data.Company.NameEn, "", "L", false)
		doc.SetFont(false, 9)
		if data.Company.CRNumber != "" {
			doc.CellAt(doc.Left(), top+6, 80, 5, "CR "+data.Company.CRNumber, "", "L", false)
		}
		doc.SetFont(true, 11)
		doc.CellAt(doc.Right()-80, top, 80, 6, data.Company.Name, "", "R", false)

		doc.SetFont(true, 14)
		doc.CellAt(doc.Left(), top+12, doc.ContentWidth(), 8, data.Title, "", "C", false)
		p.SetXY(doc.Left(), top+23)
		table.Header()
	})
	p.SetFooterFunc(func() {
		p.SetY(-12)
		doc.SetFont(false, 8)
		doc.Cell(doc.ContentWidth(), 5, strconv.Itoa(p.PageNo())+"/{nb}", "", "C", false, 1)
		doc.Cell(doc.ContentWidth(), 4, data.GeneratedAt.Format(timestampLayout), "", "C", false, 0)
	})

	doc.AddPage()

	shrinkName := map[int]bool{0: true}
	for i, r := range data.Rows {
		cells, err := formatBatchRow(r)
		if err != nil {
			stats.Failed = append(stats.Failed, rowFailure{Record: r, Err: err})
			cells = failedBatchRow(r)
		}

		var fill *pdf.Color
		if i%2 == 1 {
			fill = &pdf.LightGray
		}
		table.Row(cells, fill, false, shrinkName)
	}
	stats.DataRows = table.Rows()

	t := data.Totals
	table.Row([]string{
		totalLabel,
		money.Format(t.Basic),
		money.Format(t.Allowances),
		money.Format(t.Bonus.Add(t.AttendanceBonus)),
		money.Format(t.Deductions),
		"-",
		"-",
		money.Format(t.Net),
	}, &pdf.TotalFill, true, nil)
	stats.TotalsRows = table.Rows() - stats.DataRows

	out, err := doc.Bytes()
	if err != nil {
		return nil, stats, err
	}
	stats.Pages = doc.PageCount()
	return out, stats, nil
}

func displayName(r payroll.SalaryRecord) string {
	switch {
	case strings.TrimSpace(r.EmployeeName) != "":
		return r.EmployeeName
	case r.EmployeeCode != "":
		return r.EmployeeCode
	default:
		return r.EmployeeID
	}
}

func formatBatchRow(r payroll.SalaryRecord) (cells []string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("failed to format row: %v", p)
		}
	}()

	name := displayName(r)
	if !utf8.ValidString(name) {
		return nil, errInvalidText
	}

	return []string{
		name,
		money.Format(r.BasicSalary),
		money.Format(r.Allowances),
		money.Format(r.Bonus.Add(r.AttendanceBonus)),
		money.Format(r.Deductions),
		strconv.Itoa(r.PresentDays),
		strconv.Itoa(r.AbsentDays),
		money.Format(r.NetSalary),
	}, nil
}

func failedBatchRow(r payroll.SalaryRecord) []string {
	cells := make([]string, len(batchColumns))
	cells[0] = strings.ToValidUTF8(displayName(r), "?")
	for i := 1; i < len(cells); i++ {
		if batchMoneyCols[i] {
			cells[i] = FailedCell
		}
	}
	cells[5] = strconv.Itoa(r.PresentDays)
	cells[6] = strconv.Itoa(r.AbsentDays)
	return cells
}
