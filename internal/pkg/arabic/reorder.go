package arabic

import (
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/bidi"
)

type segment struct {
	text  string
	level int
}

func class(r rune) bidi.Class {
	props, _ := bidi.LookupRune(r)
	return props.Class()
}

func isRTL(r rune) bool {
	c := class(r)
	return c == bidi.R || c == bidi.AL
}

func hasRTL(s string) bool {
	return strings.ContainsFunc(s, isRTL)
}

// baseRTL applies the first-strong rule; text without strong characters is LTR.
func baseRTL(s string) bool {
	for _, r := range s {
		switch class(r) {
		case bidi.R, bidi.AL:
			return true
		case bidi.L:
			return false
		}
	}
	return false
}

// Reorder converts a logically ordered single line to visual order.
// Levels are resolved by x/text's bidi paragraph; right-to-left runs are
// reversed with their brackets mirrored.
func Reorder(s string) string {
	if s == "" {
		return s
	}

	rtl := baseRTL(s)
	var opts []bidi.Option
	if rtl {
		opts = append(opts, bidi.DefaultDirection(bidi.RightToLeft))
	}

	var p bidi.Paragraph
	if _, err := p.SetString(s, opts...); err != nil {
		return s
	}
	o, err := p.Order()
	if err != nil {
		return s
	}

	// Ordering only reports direction, so the level of each run is rebuilt:
	// 1 for right-to-left, 2 for left-to-right inside a right-to-left line
	// and for digits that follow right-to-left text in a left-to-right line.
	segs := make([]segment, 0, o.NumRuns())
	for i := 0; i < o.NumRuns(); i++ {
		run := o.Run(i)
		text := run.String()
		switch {
		case run.Direction() == bidi.RightToLeft:
			segs = append(segs, segment{text: text, level: 1})
		case rtl:
			segs = append(segs, segment{text: text, level: 2})
		case i == 0:
			segs = append(segs, segment{text: text, level: 0})
		default:
			head, rest := numberHead(text)
			if head != "" {
				segs = append(segs, segment{text: head, level: 2})
			}
			if rest != "" {
				segs = append(segs, segment{text: rest, level: 0})
			}
		}
	}

	return visual(segs)
}

// numberHead splits a left-to-right run into its leading number and the rest.
func numberHead(run string) (head, rest string) {
	end := 0
	for i, r := range run {
		switch class(r) {
		case bidi.L:
			return run[:end], run[end:]
		case bidi.EN, bidi.AN:
			end = i + utf8.RuneLen(r)
		}
	}
	return run[:end], run[end:]
}

// visual applies the reversal rule from the highest level down to 1.
func visual(segs []segment) string {
	maxLevel := 0
	for i := range segs {
		if segs[i].level%2 == 1 {
			segs[i].text = bidi.ReverseString(segs[i].text)
		}
		maxLevel = max(maxLevel, segs[i].level)
	}

	for level := maxLevel; level >= 1; level-- {
		for i := 0; i < len(segs); {
			if segs[i].level < level {
				i++
				continue
			}
			j := i
			for j < len(segs) && segs[j].level >= level {
				j++
			}
			slices.Reverse(segs[i:j])
			i = j
		}
	}

	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.text)
	}
	return b.String()
}
