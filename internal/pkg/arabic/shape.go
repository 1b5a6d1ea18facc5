// Package arabic prepares mixed Arabic/Latin strings for PDF drawing.
//
// PDF text is drawn glyph by glyph left to right, so Arabic must be converted
// to its contextual presentation forms and reordered visually before it is
// handed to the PDF writer. Spreadsheets do not need this; they rely on the
// sheet's right-to-left flag.
package arabic

import "unicode"

// forms holds isolated, final, initial and medial presentation forms.
// Letters that only join to the right have zero initial/medial forms.
type forms [4]rune

const (
	isolated = iota
	final
	initial
	medial
)

var letters = map[rune]forms{
	'ء': {0xFE80, 0, 0, 0},
	'آ': {0xFE81, 0xFE82, 0, 0},
	'أ': {0xFE83, 0xFE84, 0, 0},
	'ؤ': {0xFE85, 0xFE86, 0, 0},
	'إ': {0xFE87, 0xFE88, 0, 0},
	'ئ': {0xFE89, 0xFE8A, 0xFE8B, 0xFE8C},
	'ا': {0xFE8D, 0xFE8E, 0, 0},
	'ب': {0xFE8F, 0xFE90, 0xFE91, 0xFE92},
	'ة': {0xFE93, 0xFE94, 0, 0},
	'ت': {0xFE95, 0xFE96, 0xFE97, 0xFE98},
	'ث': {0xFE99, 0xFE9A, 0xFE9B, 0xFE9C},
	'ج': {0xFE9D, 0xFE9E, 0xFE9F, 0xFEA0},
	'ح': {0xFEA1, 0xFEA2, 0xFEA3, 0xFEA4},
	'خ': {0xFEA5, 0xFEA6, 0xFEA7, 0xFEA8},
	'د': {0xFEA9, 0xFEAA, 0, 0},
	'ذ': {0xFEAB, 0xFEAC, 0, 0},
	'ر': {0xFEAD, 0xFEAE, 0, 0},
	'ز': {0xFEAF, 0xFEB0, 0, 0},
	'س': {0xFEB1, 0xFEB2, 0xFEB3, 0xFEB4},
	'ش': {0xFEB5, 0xFEB6, 0xFEB7, 0xFEB8},
	'ص': {0xFEB9, 0xFEBA, 0xFEBB, 0xFEBC},
	'ض': {0xFEBD, 0xFEBE, 0xFEBF, 0xFEC0},
	'ط': {0xFEC1, 0xFEC2, 0xFEC3, 0xFEC4},
	'ظ': {0xFEC5, 0xFEC6, 0xFEC7, 0xFEC8},
	'ع': {0xFEC9, 0xFECA, 0xFECB, 0xFECC},
	'غ': {0xFECD, 0xFECE, 0xFECF, 0xFED0},
	'ـ': {0x0640, 0x0640, 0x0640, 0x0640},
	'ف': {0xFED1, 0xFED2, 0xFED3, 0xFED4},
	'ق': {0xFED5, 0xFED6, 0xFED7, 0xFED8},
	'ك': {0xFED9, 0xFEDA, 0xFEDB, 0xFEDC},
	'ل': {0xFEDD, 0xFEDE, 0xFEDF, 0xFEE0},
	'م': {0xFEE1, 0xFEE2, 0xFEE3, 0xFEE4},
	'ن': {0xFEE5, 0xFEE6, 0xFEE7, 0xFEE8},
	'ه': {0xFEE9, 0xFEEA, 0xFEEB, 0xFEEC},
	'و': {0xFEED, 0xFEEE, 0, 0},
	'ى': {0xFEEF, 0xFEF0, 0, 0},
	'ي': {0xFEF1, 0xFEF2, 0xFEF3, 0xFEF4},
	'پ': {0xFB56, 0xFB57, 0xFB58, 0xFB59},
	'چ': {0xFB7A, 0xFB7B, 0xFB7C, 0xFB7D},
	'ژ': {0xFB8A, 0xFB8B, 0, 0},
	'ک': {0xFB8E, 0xFB8F, 0xFB90, 0xFB91},
	'گ': {0xFB92, 0xFB93, 0xFB94, 0xFB95},
	'ی': {0xFBFC, 0xFBFD, 0xFBFE, 0xFBFF},
}

// lam-alef ligatures: isolated and final forms keyed by the alef variant.
var lamAlef = map[rune][2]rune{
	'آ': {0xFEF5, 0xFEF6},
	'أ': {0xFEF7, 0xFEF8},
	'إ': {0xFEF9, 0xFEFA},
	'ا': {0xFEFB, 0xFEFC},
}

const lam = 'ل'

func isLetter(r rune) bool {
	_, ok := letters[r]
	return ok
}

func joinsForward(r rune) bool {
	f, ok := letters[r]
	return ok && f[initial] != 0
}

// isTransparent reports harakat and other marks that do not break joining.
func isTransparent(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// ShapeForDisplay returns s shaped and reordered for left-to-right glyph drawing.
// Strings without right-to-left characters are returned unchanged.
func ShapeForDisplay(s string) string {
	if !hasRTL(s) {
		return s
	}
	return Reorder(Shape(s))
}

// Shape replaces Arabic letters with their contextual presentation forms.
// The logical order is preserved.
func Shape(s string) string {
	in := []rune(s)
	out := make([]rune, 0, len(in))

	for i := 0; i < len(in); i++ {
		r := in[i]
		f, ok := letters[r]
		if !ok {
			out = append(out, r)
			continue
		}

		prev := prevLetter(in, i)
		joinPrev := prev != 0 && joinsForward(prev)

		if r == lam {
			if j := nextIndex(in, i); j >= 0 {
				if lig, ok := lamAlef[in[j]]; ok {
					if joinPrev {
						out = append(out, lig[1])
					} else {
						out = append(out, lig[0])
					}
					// keep marks that sat between lam and alef
					out = append(out, in[i+1:j]...)
					i = j
					continue
				}
			}
		}

		next := nextLetter(in, i)
		joinNext := f[initial] != 0 && next != 0

		switch {
		case joinPrev && joinNext:
			out = append(out, f[medial])
		case joinPrev && f[final] != 0:
			out = append(out, f[final])
		case joinNext:
			out = append(out, f[initial])
		default:
			out = append(out, f[isolated])
		}
	}

	return string(out)
}

func prevLetter(in []rune, i int) rune {
	for j := i - 1; j >= 0; j-- {
		if isTransparent(in[j]) {
			continue
		}
		if isLetter(in[j]) {
			return in[j]
		}
		return 0
	}
	return 0
}

func nextIndex(in []rune, i int) int {
	for j := i + 1; j < len(in); j++ {
		if isTransparent(in[j]) {
			continue
		}
		if isLetter(in[j]) {
			return j
		}
		return -1
	}
	return -1
}

func nextLetter(in []rune, i int) rune {
	if j := nextIndex(in, i); j >= 0 {
		return in[j]
	}
	return 0
}
