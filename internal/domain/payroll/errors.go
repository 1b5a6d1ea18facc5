package payroll

import "errors"

var (
	ErrSalaryRecordNotFound = errors.New("salary record not found")
	ErrSalaryRecordConflict = errors.New("salary record already exists for this period")
	ErrInvalidPeriod        = errors.New("invalid payroll period")
	ErrInvalidRequiredDays  = errors.New("required days for bonus must be between 1 and 31")
	ErrEmployeeNotFound     = errors.New("employee not found")
)
