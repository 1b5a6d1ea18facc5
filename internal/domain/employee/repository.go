package employee

import (
	"context"
	"time"
)

// EmployeeRepository is the read model the payroll engine consumes, plus the
// two guarded deletes it owns.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, error)

	// ListEligibleForPayroll returns active employees plus anyone with
	// attendance in [from, to], optionally restricted to a department.
	ListEligibleForPayroll(ctx context.Context, from, to time.Time, departmentID *string) ([]Employee, error)

	// Delete refuses with ErrEmployeeHasPayroll when salary records exist.
	Delete(ctx context.Context, id string) error

	ListDepartments(ctx context.Context) ([]Department, error)
	GetDepartmentByID(ctx context.Context, id string) (Department, error)

	// DeleteDepartment refuses with ErrDepartmentNotEmpty while members remain.
	DeleteDepartment(ctx context.Context, id string) error
}
