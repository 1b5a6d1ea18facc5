package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/arabic"
	"github.com/jung-kurt/gofpdf"
)

const family = "body"

type Orientation string

const (
	Portrait  Orientation = "P"
	Landscape Orientation = "L"
)

type Color struct {
	R, G, B int
}

var (
	White      = Color{255, 255, 255}
	Black      = Color{0, 0, 0}
	LightGray  = Color{242, 242, 242}
	HeaderBlue = Color{31, 78, 120}
	TotalFill  = Color{255, 230, 153}
	NetFill    = Color{198, 239, 206}
)

// Document is an A4 page sequence using the Arabic font pair. All text goes
// through arabic.ShapeForDisplay before it is drawn.
type Document struct {
	pdf *gofpdf.Fpdf
}

func NewDocument(orientation Orientation, fonts *FontSet, created time.Time) *Document {
	p := gofpdf.New(string(orientation), "mm", "A4", "")
	p.AddUTF8FontFromBytes(family, "", fonts.Regular)
	p.AddUTF8FontFromBytes(family, "B", fonts.Bold)
	p.SetMargins(10, 12, 10)
	p.SetAutoPageBreak(true, 15)
	p.AliasNbPages("{nb}")
	p.SetCreationDate(created)
	p.SetCreator("payroll-engine", false)
	p.SetFont(family, "", 10)

	return &Document{pdf: p}
}

// Fpdf exposes the underlying document for layouts needing more control.
func (d *Document) Fpdf() *gofpdf.Fpdf {
	return d.pdf
}

func (d *Document) SetTitle(title string) {
	d.pdf.SetTitle(title, true)
}

func (d *Document) AddPage() {
	d.pdf.AddPage()
}

func (d *Document) SetFont(bold bool, size float64) {
	style := ""
	if bold {
		style = "B"
	}
	d.pdf.SetFont(family, style, size)
}

func (d *Document) SetFill(c Color) {
	d.pdf.SetFillColor(c.R, c.G, c.B)
}

func (d *Document) SetTextColor(c Color) {
	d.pdf.SetTextColor(c.R, c.G, c.B)
}

// ContentWidth is the page width between the margins.
func (d *Document) ContentWidth() float64 {
	w, _ := d.pdf.GetPageSize()
	left, _, right, _ := d.pdf.GetMargins()
	return w - left - right
}

// Right is the x coordinate of the right margin.
func (d *Document) Right() float64 {
	w, _ := d.pdf.GetPageSize()
	_, _, right, _ := d.pdf.GetMargins()
	return w - right
}

func (d *Document) Left() float64 {
	left, _, _, _ := d.pdf.GetMargins()
	return left
}

// Remaining is the vertical space left above the bottom margin.
func (d *Document) Remaining() float64 {
	_, h := d.pdf.GetPageSize()
	_, _, _, bottom := d.pdf.GetMargins()
	return h - bottom - d.pdf.GetY()
}

// Cell draws shaped text at the current position.
func (d *Document) Cell(w, h float64, text, border, align string, fill bool, ln int) {
	d.pdf.CellFormat(w, h, arabic.ShapeForDisplay(text), border, ln, align, fill, 0, "")
}

// CellAt draws a cell at (x, y) without moving to the next line.
func (d *Document) CellAt(x, y, w, h float64, text, border, align string, fill bool) {
	d.pdf.SetXY(x, y)
	d.Cell(w, h, text, border, align, fill, 0)
}

func (d *Document) Ln(h float64) {
	d.pdf.Ln(h)
}

// TextWidth measures shaped text in the current font.
func (d *Document) TextWidth(text string) float64 {
	return d.pdf.GetStringWidth(arabic.ShapeForDisplay(text))
}

// FitFontSize returns the largest size in [min, size] at which text fits
// width, stepping down half a point at a time. The current font size is
// restored before returning. Text that does not fit even at min gets min.
func (d *Document) FitFontSize(text string, width, size, min float64) float64 {
	current, _ := d.pdf.GetFontSize()
	defer d.pdf.SetFontSize(current)

	for s := size; s >= min; s -= 0.5 {
		d.pdf.SetFontSize(s)
		if d.TextWidth(text) <= width {
			return s
		}
	}
	return min
}

func (d *Document) Line(x1, y1, x2, y2 float64) {
	d.pdf.Line(x1, y1, x2, y2)
}

func (d *Document) PageNo() int {
	return d.pdf.PageNo()
}

func (d *Document) PageCount() int {
	return d.pdf.PageCount()
}

// Bytes finishes the document.
func (d *Document) Bytes() ([]byte, error) {
	if err := d.pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// WrapLines breaks text into lines no wider than width in the current font.
// Wrapping happens on the logical string so each line can be shaped on its
// own; a single word wider than width gets a line to itself.
func (d *Document) WrapLines(text string, width float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			candidate := line + " " + w
			if d.TextWidth(candidate) > width {
				lines = append(lines, line)
				line = w
				continue
			}
			line = candidate
		}
		lines = append(lines, line)
	}
	return lines
}
