// Package excel holds spreadsheet helpers shared by the report layouts.
package excel

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxSheetNameLength is the spreadsheet limit on sheet names.
const MaxSheetNameLength = 31

// CellName converts 0-based row and column indices to a cell reference (0,0 → "A1").
func CellName(row, col int) string {
	return fmt.Sprintf("%s%d", IndexToColumn(col), row+1)
}

// IndexToColumn converts a 0-based column index to column letters (0→A, 25→Z, 26→AA).
func IndexToColumn(n int) string {
	result := ""
	for n >= 0 {
		result = string(rune('A'+(n%26))) + result
		n = n/26 - 1
	}
	return result
}

// ColumnRange is "B2:B10" for 0-based col and rows.
func ColumnRange(col, fromRow, toRow int) string {
	return CellName(fromRow, col) + ":" + CellName(toRow, col)
}

// AbsoluteRef is a fully qualified absolute reference such as 'Sheet 1'!$B$2:$B$9,
// suitable for chart series.
func AbsoluteRef(sheet string, col, fromRow, toRow int) string {
	c := IndexToColumn(col)
	return fmt.Sprintf("%s!$%s$%d:$%s$%d", QuoteSheet(sheet), c, fromRow+1, c, toRow+1)
}

// QuoteSheet quotes a sheet name for use in formulas.
func QuoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

var invalidSheetChars = strings.NewReplacer(
	":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", "(", "]", ")",
)

// SheetNamer hands out valid, unique sheet names.
type SheetNamer struct {
	used map[string]struct{}
}

func NewSheetNamer(reserved ...string) *SheetNamer {
	n := &SheetNamer{used: make(map[string]struct{})}
	for _, r := range reserved {
		n.used[strings.ToLower(r)] = struct{}{}
	}
	return n
}

// Name sanitizes want and appends " (2)", " (3)"... until it is unused.
// Comparison is case-insensitive like the spreadsheet's own.
func (n *SheetNamer) Name(want string) string {
	base := strings.Trim(strings.TrimSpace(invalidSheetChars.Replace(want)), "'")
	if base == "" {
		base = "Sheet"
	}
	base = truncateRunes(base, MaxSheetNameLength)

	name := base
	for i := 2; ; i++ {
		if _, taken := n.used[strings.ToLower(name)]; !taken {
			break
		}
		suffix := fmt.Sprintf(" (%d)", i)
		name = truncateRunes(base, MaxSheetNameLength-utf8.RuneCountInString(suffix)) + suffix
	}
	n.used[strings.ToLower(name)] = struct{}{}
	return name
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max])
}
