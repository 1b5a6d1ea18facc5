package employee

import "context"

// EmployeeService exposes the employee read model over HTTP.
type EmployeeService interface {
	GetEmployee(ctx context.Context, id string) (EmployeeResponse, error)
	ListEmployees(ctx context.Context, filter EmployeeFilter) ([]EmployeeResponse, error)
	DeleteEmployee(ctx context.Context, id string) error

	ListDepartments(ctx context.Context) ([]DepartmentResponse, error)
	GetDepartment(ctx context.Context, id string) (DepartmentResponse, error)
	DeleteDepartment(ctx context.Context, id string) error
}
