package report

import (
	"strconv"
	"strings"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/report"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/money"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/pdf"
)

const (
	noticeBandHeight = 26
	noticeLineHeight = 8
	maxNoteLines     = 8
)

// renderNotice draws a single A4 portrait page for one employee.
func renderNotice(data report.NoticeData, fonts *pdf.FontSet) ([]byte, error) {
	doc := pdf.NewDocument(pdf.Portrait, fonts, data.GeneratedAt)
	doc.SetTitle(data.Title)
	p := doc.Fpdf()
	p.SetAutoPageBreak(false, 0)
	doc.AddPage()

	drawNoticeBand(doc, data)
	drawNoticeInfo(doc, data)
	drawNoticeLines(doc, data)
	if data.Attendance != nil {
		drawNoticeAttendance(doc, *data.Attendance)
	}
	if data.Notes != nil && strings.TrimSpace(*data.Notes) != "" {
		drawNoticeNotes(doc, *data.Notes)
	}
	drawSignatures(doc)

	p.SetXY(doc.Left(), 285)
	doc.SetFont(false, 7)
	doc.SetTextColor(pdf.Black)
	doc.Cell(doc.ContentWidth(), 4, data.GeneratedAt.Format(timestampLayout), "", "C", false, 0)

	return doc.Bytes()
}

func drawNoticeBand(doc *pdf.Document, data report.NoticeData) {
	p := doc.Fpdf()
	w, _ := p.GetPageSize()

	doc.SetFill(pdf.HeaderBlue)
	p.Rect(0, 0, w, noticeBandHeight, "F")

	doc.SetTextColor(pdf.White)
	doc.SetFont(true, 16)
	doc.CellAt(doc.Left(), 6, doc.ContentWidth(), 8, data.Company.Name, "", "R", false)
	doc.SetFont(false, 10)
	doc.CellAt(doc.Left(), 6, doc.ContentWidth(), 6, data.Company.NameEn, "", "L", false)
	if data.Company.CRNumber != "" {
		doc.CellAt(doc.Left(), 13, doc.ContentWidth(), 6, "CR "+data.Company.CRNumber, "", "L", false)
	}

	doc.SetTextColor(pdf.Black)
	doc.SetFont(true, 14)
	doc.CellAt(doc.Left(), noticeBandHeight+6, doc.ContentWidth(), 9, data.Title, "", "C", false)
	p.SetXY(doc.Left(), noticeBandHeight+20)
}

// drawNoticeInfo lays the employee fields out in two columns, label to the
// right of its value.
func drawNoticeInfo(doc *pdf.Document, data report.NoticeData) {
	right := [][2]string{
		{"اسم الموظف", data.EmployeeName},
		{"الرقم الوظيفي", data.EmployeeCode},
		{"رقم الهوية", data.NationalID},
	}
	left := [][2]string{
		{"المسمى الوظيفي", data.JobTitle},
		{"القسم", data.DepartmentName},
		{"الفترة", data.Period.ArabicName() + " " + strconv.Itoa(data.Period.Year)},
	}

	half := doc.ContentWidth() / 2
	labelW := 32.0
	valueW := half - labelW - 4
	y := doc.Fpdf().GetY()

	for i := range right {
		rowY := y + float64(i)*noticeLineHeight
		drawInfoPair(doc, doc.Right()-labelW, rowY, labelW, valueW, right[i])
		drawInfoPair(doc, doc.Left()+half-labelW-4, rowY, labelW, valueW, left[i])
	}
	doc.Fpdf().SetXY(doc.Left(), y+float64(len(right))*noticeLineHeight+6)
}

func drawInfoPair(doc *pdf.Document, labelX, y, labelW, valueW float64, pair [2]string) {
	doc.SetFill(pdf.LightGray)
	doc.SetFont(true, 10)
	doc.CellAt(labelX, y, labelW, noticeLineHeight-1, pair[0], "1", "R", true)

	value := pair[1]
	if value == "" {
		value = "-"
	}
	doc.SetFont(false, doc.FitFontSize(value, valueW-2, 10, 6))
	doc.CellAt(labelX-valueW, y, valueW, noticeLineHeight-1, value, "1", "R", false)
}

func drawNoticeLines(doc *pdf.Document, data report.NoticeData) {
	table := pdf.NewTable(doc, []pdf.Column{
		{Header: "البند", Width: 110, Align: "R"},
		{Header: "المبلغ", Width: 50, Align: "R"},
	}, noticeLineHeight, 10)
	table.Header()

	for i, line := range data.Lines {
		var fill *pdf.Color
		if i%2 == 1 {
			fill = &pdf.LightGray
		}
		amount := money.Format(line.Amount)
		if line.Kind == report.LineDeduction && !line.Amount.IsZero() {
			amount = "(" + amount + ")"
		}
		table.Row([]string{line.Label, amount}, fill, false, nil)
	}
	table.Row([]string{data.TotalLabel, money.Format(data.Total)}, &pdf.NetFill, true, nil)
	doc.Ln(6)
}

func drawNoticeAttendance(doc *pdf.Document, a report.AttendanceFacts) {
	table := pdf.NewTable(doc, []pdf.Column{
		{Header: "أيام الحضور", Width: 40, Align: "C"},
		{Header: "أيام الغياب", Width: 40, Align: "C"},
		{Header: "أيام الإجازة", Width: 40, Align: "C"},
		{Header: "أيام المرض", Width: 40, Align: "C"},
	}, noticeLineHeight-1, 9)
	table.Header()
	table.Row([]string{
		strconv.Itoa(a.PresentDays),
		strconv.Itoa(a.AbsentDays),
		strconv.Itoa(a.LeaveDays),
		strconv.Itoa(a.SickDays),
	}, nil, false, nil)
	doc.Ln(6)
}

func drawNoticeNotes(doc *pdf.Document, notes string) {
	p := doc.Fpdf()
	width := doc.ContentWidth()

	doc.SetFont(false, 9)
	lines := doc.WrapLines(notes, width-6)
	if len(lines) > maxNoteLines {
		lines = append(lines[:maxNoteLines-1], lines[maxNoteLines-1]+" …")
	}

	doc.SetFont(true, 10)
	doc.Cell(width, 7, "ملاحظات", "", "R", false, 1)

	y := p.GetY()
	height := float64(len(lines))*5 + 4
	p.SetDrawColor(166, 166, 166)
	p.Rect(doc.Left(), y, width, height, "D")

	doc.SetFont(false, 9)
	for i, l := range lines {
		doc.CellAt(doc.Left()+3, y+2+float64(i)*5, width-6, 5, l, "", "R", false)
	}
	p.SetXY(doc.Left(), y+height+6)
}

func drawSignatures(doc *pdf.Document) {
	p := doc.Fpdf()
	y := max(p.GetY()+10, 250.0)
	half := doc.ContentWidth() / 2
	lineW := 60.0

	doc.SetFont(false, 10)
	doc.CellAt(doc.Right()-lineW, y, lineW, 6, "توقيع الموظف", "", "C", false)
	doc.CellAt(doc.Left()+half-lineW-10, y, lineW, 6, "المدير المالي", "", "C", false)

	p.SetDrawColor(0, 0, 0)
	doc.Line(doc.Right()-lineW, y+18, doc.Right(), y+18)
	doc.Line(doc.Left()+half-lineW-10, y+18, doc.Left()+half-10, y+18)
}
