// Package period provides calendar helpers for a payroll month.
package period

import (
	"fmt"
	"time"
)

var arabicMonths = [...]string{
	"يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو",
	"يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر",
}

// Period is a payroll month.
type Period struct {
	Month int
	Year  int
}

func New(month, year int) Period {
	return Period{Month: month, Year: year}
}

// Of returns the period containing t.
func Of(t time.Time) Period {
	return Period{Month: int(t.Month()), Year: t.Year()}
}

// Previous returns the month before p.
func (p Period) Previous() Period {
	if p.Month == 1 {
		return Period{Month: 12, Year: p.Year - 1}
	}
	return Period{Month: p.Month - 1, Year: p.Year}
}

// FirstDay is midnight UTC of the first day of the month.
func (p Period) FirstDay() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// LastDay is midnight UTC of the last day of the month.
func (p Period) LastDay() time.Time {
	return p.FirstDay().AddDate(0, 1, -1)
}

// Days is the number of calendar days in the month (28..31).
func (p Period) Days() int {
	return p.LastDay().Day()
}

// Key is a stable identifier such as "2025-01".
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// ArabicName returns the Arabic month name; empty for an invalid month.
func (p Period) ArabicName() string {
	if p.Month < 1 || p.Month > 12 {
		return ""
	}
	return arabicMonths[p.Month-1]
}

// EnglishName returns the English month name.
func (p Period) EnglishName() string {
	if p.Month < 1 || p.Month > 12 {
		return ""
	}
	return time.Month(p.Month).String()
}

// Label is the "<month_name>/<year>" form used in messages.
func (p Period) Label() string {
	return fmt.Sprintf("%s/%d", p.ArabicName(), p.Year)
}
