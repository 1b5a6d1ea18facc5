package employee

import "errors"

var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrEmployeeHasPayroll = errors.New("employee has payroll history and cannot be deleted")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrDepartmentNotEmpty = errors.New("department still has employees")
	ErrInvalidStatus      = errors.New("invalid employment status")
)
