package pdf

// Column is one table column. Columns are laid out right to left: the first
// column sits against the right margin.
type Column struct {
	Header string
	Width  float64
	Align  string // "L", "C" or "R"
}

// Table draws fixed-width rows of uniform height.
type Table struct {
	doc        *Document
	columns    []Column
	rowHeight  float64
	fontSize   float64
	headerFill Color
	rows       int
}

func NewTable(doc *Document, columns []Column, rowHeight, fontSize float64) *Table {
	return &Table{
		doc:        doc,
		columns:    columns,
		rowHeight:  rowHeight,
		fontSize:   fontSize,
		headerFill: HeaderBlue,
	}
}

func (t *Table) Columns() []Column {
	return t.columns
}

// Width is the sum of column widths.
func (t *Table) Width() float64 {
	w := 0.0
	for _, c := range t.columns {
		w += c.Width
	}
	return w
}

// Rows is the number of body rows drawn so far.
func (t *Table) Rows() int {
	return t.rows
}

func (t *Table) x(col int) float64 {
	right := t.doc.Right() - (t.doc.ContentWidth()-t.Width())/2
	for i := 0; i <= col; i++ {
		right -= t.columns[i].Width
	}
	return right
}

// Header draws the header row.
func (t *Table) Header() {
	y := t.doc.Fpdf().GetY()
	t.doc.SetFont(true, t.fontSize)
	t.doc.SetFill(t.headerFill)
	t.doc.SetTextColor(White)
	for i, c := range t.columns {
		t.doc.CellAt(t.x(i), y, c.Width, t.rowHeight, c.Header, "1", "C", true)
	}
	t.doc.SetTextColor(Black)
	t.doc.Fpdf().SetXY(t.doc.Left(), y+t.rowHeight)
}

// Row draws one body row. Cells in shrink are drawn at a smaller size when
// needed so the row height stays constant. A page is added first when the
// row would cross the bottom margin; the page header callback is expected
// to redraw the table header.
func (t *Table) Row(cells []string, fill *Color, bold bool, shrink map[int]bool) {
	if t.doc.Remaining() < t.rowHeight {
		t.doc.AddPage()
	}

	y := t.doc.Fpdf().GetY()
	if fill != nil {
		t.doc.SetFill(*fill)
	}
	for i, c := range t.columns {
		text := ""
		if i < len(cells) {
			text = cells[i]
		}
		t.doc.SetFont(bold, t.fontSize)
		if shrink[i] {
			t.doc.SetFont(bold, t.doc.FitFontSize(text, c.Width-2, t.fontSize, t.fontSize/2))
		}
		t.doc.CellAt(t.x(i), y, c.Width, t.rowHeight, text, "1", c.Align, fill != nil)
	}
	t.doc.SetFont(false, t.fontSize)
	t.doc.Fpdf().SetXY(t.doc.Left(), y+t.rowHeight)
	t.rows++
}
