package employee

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID                        string
	EmployeeCode              string
	NationalID                string
	FullName                  string
	JobTitle                  string
	Nationality               string
	ContractType              ContractType
	BasicSalary               *decimal.Decimal
	AttendanceBonus           decimal.Decimal
	ExcludeLeaveFromDeduction bool
	ExcludeSickFromDeduction  bool
	Status                    EmploymentStatus
	PhoneNumber               string
	Departments               []Department
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// PrimaryDepartment is the alphabetically first department; reports group by it.
func (e Employee) PrimaryDepartment() (Department, bool) {
	if len(e.Departments) == 0 {
		return Department{}, false
	}
	depts := make([]Department, len(e.Departments))
	copy(depts, e.Departments)
	sort.Slice(depts, func(i, j int) bool { return depts[i].Name < depts[j].Name })
	return depts[0], true
}

// InDepartment reports membership in the given department.
func (e Employee) InDepartment(departmentID string) bool {
	for _, d := range e.Departments {
		if d.ID == departmentID {
			return true
		}
	}
	return false
}

// ContractType is a free-form tag; only ContractTypeCitizen has payroll meaning.
type ContractType string

const (
	ContractTypeCitizen  ContractType = "citizen"
	ContractTypeResident ContractType = "resident"
)

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusInactive   EmploymentStatus = "inactive"
	EmploymentStatusOnLeave    EmploymentStatus = "on_leave"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

func (s EmploymentStatus) IsValid() bool {
	switch s {
	case EmploymentStatusActive, EmploymentStatusInactive, EmploymentStatusOnLeave, EmploymentStatusTerminated:
		return true
	}
	return false
}

type Department struct {
	ID        string
	Name      string
	ManagerID *string

	// Aggregated
	EmployeeCount int
}
