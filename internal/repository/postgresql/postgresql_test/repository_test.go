package postgresql_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salary(employeeID string, month, year int, net string) payroll.SalaryRecord {
	return payroll.SalaryRecord{
		EmployeeID:  employeeID,
		Month:       month,
		Year:        year,
		BasicSalary: decimal.RequireFromString(net),
		NetSalary:   decimal.RequireFromString(net),
	}
}

func TestSalaryStore_UpsertUpdatesInPlace(t *testing.T) {
	// Arrange
	setup := NewTestDatabase(t)
	ctx := context.Background()
	empID, err := setup.SeedEmployee(ctx, "Ahmed", "active", "Finance")
	require.NoError(t, err)
	store := postgresql.NewSalaryStore(setup.DB)

	// Act
	first, err := store.Upsert(ctx, salary(empID, 6, 2024, "5000"))
	require.NoError(t, err)
	second, err := store.Upsert(ctx, salary(empID, 6, 2024, "5500.50"))
	require.NoError(t, err)

	// Assert
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, decimal.RequireFromString("5500.50").Equal(second.NetSalary))
	require.NotNil(t, second.DepartmentName)
	assert.Equal(t, "Finance", *second.DepartmentName)
	assert.Equal(t, "Ahmed", second.EmployeeName)

	exists, err := store.Exists(ctx, empID, 6, 2024)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSalaryStore_ConcurrentInsertsKeepOneRow(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	empID, err := setup.SeedEmployee(ctx, "Sara", "active", "")
	require.NoError(t, err)
	store := postgresql.NewSalaryStore(setup.DB)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.WithinTx(ctx, func(repo payroll.SalaryRepository) error {
				_, err := repo.Upsert(ctx, salary(empID, 1, 2025, "1000"))
				return err
			})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, payroll.ErrSalaryRecordConflict)
		}
	}
	month, year := 1, 2025
	records, err := store.Query(ctx, payroll.SalaryFilter{Month: &month, Year: &year})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestSalaryStore_QueryOrderAndFilters(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	store := postgresql.NewSalaryStore(setup.DB)

	zaid, err := setup.SeedEmployee(ctx, "Zaid", "active", "Alpha")
	require.NoError(t, err)
	adel, err := setup.SeedEmployee(ctx, "Adel", "active", "Beta")
	require.NoError(t, err)
	badr, err := setup.SeedEmployee(ctx, "Badr", "active", "Alpha")
	require.NoError(t, err)

	for _, rec := range []payroll.SalaryRecord{
		salary(adel, 5, 2024, "100"),
		salary(zaid, 5, 2024, "200"),
		salary(badr, 4, 2024, "300"),
		salary(badr, 5, 2024, "400"),
	} {
		_, err := store.Upsert(ctx, rec)
		require.NoError(t, err)
	}

	all, err := store.Query(ctx, payroll.SalaryFilter{})
	require.NoError(t, err)
	var order []string
	for _, r := range all {
		order = append(order, r.EmployeeName+"/"+r.NetSalary.StringFixed(0))
	}
	assert.Equal(t, []string{"Badr/400", "Badr/300", "Zaid/200", "Adel/100"}, order)

	month := 5
	filtered, err := store.Query(ctx, payroll.SalaryFilter{Month: &month, EmployeeID: &badr})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "400", filtered[0].NetSalary.StringFixed(0))

	sum, err := store.Summarize(ctx, payroll.SalaryFilter{Month: &month})
	require.NoError(t, err)
	assert.Equal(t, 3, sum.EmployeeCount)
	assert.Equal(t, "700", sum.TotalNet.StringFixed(0))
}

func TestSalaryStore_DeleteAndNotFound(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	store := postgresql.NewSalaryStore(setup.DB)
	empID, err := setup.SeedEmployee(ctx, "Huda", "active", "")
	require.NoError(t, err)

	rec, err := store.Upsert(ctx, salary(empID, 2, 2024, "10"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, rec.ID))
	assert.ErrorIs(t, store.Delete(ctx, rec.ID), payroll.ErrSalaryRecordNotFound)
	_, err = store.GetByID(ctx, rec.ID)
	assert.ErrorIs(t, err, payroll.ErrSalaryRecordNotFound)
}

func TestEmployeeRepository_GuardedDeletes(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	employees := postgresql.NewEmployeeRepository(setup.DB)
	store := postgresql.NewSalaryStore(setup.DB)

	paid, err := setup.SeedEmployee(ctx, "Paid", "terminated", "Ops")
	require.NoError(t, err)
	_, err = store.Upsert(ctx, salary(paid, 3, 2024, "10"))
	require.NoError(t, err)

	assert.ErrorIs(t, employees.Delete(ctx, paid), employee.ErrEmployeeHasPayroll)

	depts, err := employees.ListDepartments(ctx)
	require.NoError(t, err)
	require.Len(t, depts, 1)
	assert.Equal(t, 1, depts[0].EmployeeCount)
	assert.ErrorIs(t, employees.DeleteDepartment(ctx, depts[0].ID), employee.ErrDepartmentNotEmpty)

	fresh, err := setup.SeedEmployee(ctx, "Fresh", "active", "")
	require.NoError(t, err)
	require.NoError(t, employees.Delete(ctx, fresh))
	assert.ErrorIs(t, employees.Delete(ctx, fresh), employee.ErrEmployeeNotFound)
}

func TestEmployeeRepository_EligibleForPayroll(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	employees := postgresql.NewEmployeeRepository(setup.DB)

	_, err := setup.SeedEmployee(ctx, "Active", "active", "")
	require.NoError(t, err)
	left, err := setup.SeedEmployee(ctx, "Left", "terminated", "")
	require.NoError(t, err)
	_, err = setup.SeedEmployee(ctx, "Gone", "terminated", "")
	require.NoError(t, err)
	_, err = setup.DB.Exec(ctx, `INSERT INTO attendance_records (employee_id, date, status) VALUES ($1, '2024-06-03', 'present')`, left)
	require.NoError(t, err)

	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	got, err := employees.ListEligibleForPayroll(ctx, from, to, nil)
	require.NoError(t, err)

	var names []string
	for _, e := range got {
		names = append(names, e.FullName)
	}
	assert.Equal(t, []string{"Active", "Left"}, names)

	records, err := postgresql.NewAttendanceRepository(setup.DB).ListByEmployee(ctx, left, from, to)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 3, records[0].Date.Day())
}

func TestAuditRepository_AppendAndList(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewAuditRepository(setup.DB)

	user := "user-1"
	for i, action := range []string{audit.ActionSalaryUpsert, audit.ActionPayrollBatch} {
		require.NoError(t, repo.Append(ctx, audit.Entry{
			ID:         uuid.NewString(),
			Action:     action,
			EntityType: audit.EntitySalaryRecord,
			EntityID:   "s1",
			Details:    []byte(`{"n":1}`),
			UserID:     &user,
			CreatedAt:  time.Now().Add(time.Duration(i) * time.Second),
		}))
	}

	entityType := audit.EntitySalaryRecord
	entries, err := repo.List(ctx, audit.Filter{EntityType: &entityType, Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, audit.ActionPayrollBatch, entries[0].Action)
	assert.JSONEq(t, `{"n":1}`, string(entries[0].Details))
	require.NotNil(t, entries[0].UserID)
	assert.Equal(t, user, *entries[0].UserID)
}
