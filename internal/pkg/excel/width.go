package excel

import (
	"unicode"

	"github.com/xuri/excelize/v2"
)

const (
	minColumnWidth = 6
	maxColumnWidth = 60
)

// TextWidth estimates the rendered width of s in character units.
func TextWidth(s string) float64 {
	w := 0.0
	for _, r := range s {
		switch {
		case r < 0x80:
			w++
		case unicode.Is(unicode.Mn, r):
			// combining marks take no space
		case unicode.In(r, unicode.Han, unicode.Hangul, unicode.Hiragana, unicode.Katakana):
			w += 2
		default:
			w += 1.2
		}
	}
	return w
}

// WidthTracker remembers the widest value seen per column.
type WidthTracker struct {
	widths  map[int]float64
	headers map[int]float64
	padding float64
}

func NewWidthTracker(padding float64) *WidthTracker {
	return &WidthTracker{
		widths:  make(map[int]float64),
		headers: make(map[int]float64),
		padding: padding,
	}
}

// Header records a header; the column never gets narrower than it.
func (t *WidthTracker) Header(col int, text string) {
	w := TextWidth(text)
	if w > t.headers[col] {
		t.headers[col] = w
	}
	t.Observe(col, text)
}

func (t *WidthTracker) Observe(col int, text string) {
	if w := TextWidth(text); w > t.widths[col] {
		t.widths[col] = w
	}
}

// Width is the final width for col.
func (t *WidthTracker) Width(col int) float64 {
	w := t.widths[col] + t.padding
	if w > maxColumnWidth {
		w = maxColumnWidth
	}
	if h := t.headers[col] + t.padding; w < h {
		w = h
	}
	if w < minColumnWidth {
		w = minColumnWidth
	}
	return w
}

// Apply sets every observed column's width on sheet.
func (t *WidthTracker) Apply(f *excelize.File, sheet string) error {
	for col := range t.widths {
		name := IndexToColumn(col)
		if err := f.SetColWidth(sheet, name, name, t.Width(col)); err != nil {
			return err
		}
	}
	return nil
}
