package attendance

import (
	"time"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLeave   Status = "leave"
	StatusSick    Status = "sick"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLeave, StatusSick:
		return true
	}
	return false
}

// Record is one attendance fact. At most one per (employee, date); the
// attendance subsystem owns them and payroll only reads.
type Record struct {
	ID         string
	EmployeeID string
	Date       time.Time
	Status     Status
}

// Summary aggregates one employee's month.
type Summary struct {
	EmployeeID  string
	Month       int
	Year        int
	DaysInMonth int
	PresentDays int
	AbsentDays  int
	LeaveDays   int
	SickDays    int
	Recorded    int
	Unrecorded  int
}

// TotalAbsent counts explicit absences only; unrecorded days are never billed.
func (s Summary) TotalAbsent() int {
	return s.AbsentDays
}

// HasRecords reports whether anything was captured for the month.
func (s Summary) HasRecords() bool {
	return s.Recorded > 0
}
