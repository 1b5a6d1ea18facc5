package payroll

import "context"

// SalaryRepository persists salary records. Implementations are bound to
// either a connection pool or a single transaction; see Transactor.
type SalaryRepository interface {
	// Upsert updates the record for (employee, month, year) in place or inserts
	// it. A concurrent insert of the same key surfaces as ErrSalaryRecordConflict.
	Upsert(ctx context.Context, record SalaryRecord) (SalaryRecord, error)

	GetByID(ctx context.Context, id string) (SalaryRecord, error)
	GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (SalaryRecord, error)

	// Query orders by department name, employee name, year desc, month desc.
	Query(ctx context.Context, filter SalaryFilter) ([]SalaryRecord, error)

	Exists(ctx context.Context, employeeID string, month, year int) (bool, error)
	Summarize(ctx context.Context, filter SalaryFilter) (SalarySummary, error)

	// Delete is unconditional; policy checks belong to callers.
	Delete(ctx context.Context, id string) error
}

// Transactor runs fn with a repository bound to one transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repo SalaryRepository) error) error
}

// SalaryStore is what storage backends provide.
type SalaryStore interface {
	SalaryRepository
	Transactor
}
