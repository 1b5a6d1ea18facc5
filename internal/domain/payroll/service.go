package payroll

import (
	"context"
)

type PayrollService interface {
	// RecomputeBatch never fails because of one employee; per-employee
	// problems are reported in the outcome.
	RecomputeBatch(ctx context.Context, req BatchRequest) (BatchOutcome, error)
	ComputeSingle(ctx context.Context, req ComputeRequest) (CalculationResult, error)

	UpsertSalary(ctx context.Context, req UpsertSalaryRequest) (SalaryRecord, error)
	GetSalary(ctx context.Context, id string) (SalaryRecord, error)
	QuerySalaries(ctx context.Context, filter SalaryFilter) ([]SalaryRecord, error)
	SummarizeSalaries(ctx context.Context, filter SalaryFilter) (SalarySummary, error)
	Exists(ctx context.Context, employeeID string, month, year int) (bool, error)
	DeleteSalary(ctx context.Context, id string) error
}
