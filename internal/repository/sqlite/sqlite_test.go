package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	attendanceService "github.com/cmlabs-hris/payroll-engine/internal/service/attendance"
	auditService "github.com/cmlabs-hris/payroll-engine/internal/service/audit"
	payrollService "github.com/cmlabs-hris/payroll-engine/internal/service/payroll"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// seedEmployee inserts an employee and, when department is set, a membership.
func seedEmployee(t *testing.T, db *DB, name, status, department string) string {
	t.Helper()
	ctx := context.Background()

	id := uuid.NewString()
	_, err := db.ExecContext(ctx, `
		INSERT INTO employees (id, full_name, employee_code, status, basic_salary, phone_number)
		VALUES (?, ?, ?, ?, '6000', '0501234567')
	`, id, name, name, status)
	require.NoError(t, err)

	if department == "" {
		return id
	}

	var deptID string
	err = db.QueryRowContext(ctx, `SELECT id FROM departments WHERE name = ?`, department).Scan(&deptID)
	if err != nil {
		deptID = uuid.NewString()
		_, err = db.ExecContext(ctx, `INSERT INTO departments (id, name) VALUES (?, ?)`, deptID, department)
		require.NoError(t, err)
	}
	_, err = db.ExecContext(ctx, `INSERT INTO employee_departments (employee_id, department_id) VALUES (?, ?)`, id, deptID)
	require.NoError(t, err)
	return id
}

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
	t.Parallel()

	// Arrange
	db := openTestDB(t)
	ctx := context.Background()
	empID := seedEmployee(t, db, "Ahmed", "active", "Finance")
	store := NewSalaryStore(db)
	notes := "manual"

	// Act
	first, err := store.Upsert(ctx, salary(empID, 6, 2024, "5000"))
	require.NoError(t, err)
	rec := salary(empID, 6, 2024, "5500.50")
	rec.Notes = &notes
	rec.AttendanceCalculated = true
	second, err := store.Upsert(ctx, rec)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, decimal.RequireFromString("5500.50").Equal(second.NetSalary))
	assert.True(t, second.AttendanceCalculated)
	require.NotNil(t, second.Notes)
	assert.Equal(t, "manual", *second.Notes)
	require.NotNil(t, second.DepartmentName)
	assert.Equal(t, "Finance", *second.DepartmentName)
	assert.Equal(t, "0501234567", second.PhoneNumber)

	exists, err := store.Exists(ctx, empID, 6, 2024)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = store.Exists(ctx, empID, 7, 2024)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPayrollService_BatchKeepsManualEntryOnSQLite(t *testing.T) {
	t.Parallel()

	// Arrange
	db := openTestDB(t)
	ctx := context.Background()
	empID := seedEmployee(t, db, "Ahmed", "active", "Finance")
	for day := 1; day <= 30; day++ {
		require.NoError(t, db.RecordAttendance(ctx, empID, time.Date(2025, 4, day, 0, 0, 0, 0, time.UTC), attendance.StatusPresent))
	}
	svc := payrollService.NewPayrollService(
		NewSalaryStore(db),
		NewEmployeeRepository(db),
		payrollService.NewCalculator(
			attendanceService.NewAttendanceService(NewAttendanceRepository(db)),
			payrollService.NewGOSICalculator(payroll.DefaultGOSIPolicy()),
		),
		auditService.NewRecorder(NewAuditRepository(db)),
		30,
	)
	notes := "housing"
	before, err := svc.UpsertSalary(ctx, payroll.UpsertSalaryRequest{
		EmployeeID:      empID,
		Month:           4,
		Year:            2025,
		BasicSalary:     decimal.NewFromInt(6000),
		Allowances:      decimal.NewFromInt(500),
		OtherDeductions: decimal.NewFromInt(100),
		Notes:           &notes,
	})
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(6400).Equal(before.NetSalary))

	// Act
	_, err = svc.RecomputeBatch(ctx, payroll.BatchRequest{Month: 4, Year: 2025})

	// Assert
	require.NoError(t, err)
	after, err := svc.GetSalary(ctx, before.ID)
	require.NoError(t, err)
	assert.True(t, after.AttendanceCalculated)
	assert.Equal(t, 30, after.PresentDays)
	assert.True(t, decimal.NewFromInt(500).Equal(after.Allowances), "allowances %s", after.Allowances)
	assert.True(t, decimal.NewFromInt(100).Equal(after.OtherDeductions), "other deductions %s", after.OtherDeductions)
	assert.True(t, decimal.NewFromInt(6400).Equal(after.NetSalary), "net %s", after.NetSalary)
	require.NotNil(t, after.Notes)
	assert.Equal(t, "housing", *after.Notes)
}

func TestSalaryStore_DuplicateInsertIsConflict(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()
	empID := seedEmployee(t, db, "Sara", "active", "")

	_, err := db.ExecContext(ctx,
		`INSERT INTO salary_records (id, employee_id, month, year) VALUES (?, ?, 1, 2025)`, uuid.NewString(), empID)
	require.NoError(t, err)

	// a second raw insert hits the same uniqueness rule the store relies on
	_, err = db.ExecContext(ctx,
		`INSERT INTO salary_records (id, employee_id, month, year) VALUES (?, ?, 1, 2025)`, uuid.NewString(), empID)
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))

	_, err = NewSalaryStore(db).Upsert(ctx, salary("missing-employee", 1, 2025, "1"))
	assert.ErrorIs(t, err, payroll.ErrEmployeeNotFound)
}

func TestSalaryStore_WithinTxRollsBack(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()
	empID := seedEmployee(t, db, "Omar", "active", "")
	store := NewSalaryStore(db)

	err := store.WithinTx(ctx, func(repo payroll.SalaryRepository) error {
		if _, err := repo.Upsert(ctx, salary(empID, 2, 2025, "10")); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	exists, err := store.Exists(ctx, empID, 2, 2025)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSalaryStore_QueryOrderAndFilters(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()
	store := NewSalaryStore(db)

	zaid := seedEmployee(t, db, "Zaid", "active", "Alpha")
	adel := seedEmployee(t, db, "Adel", "active", "Beta")
	badr := seedEmployee(t, db, "Badr", "active", "Alpha")
	nobody := seedEmployee(t, db, "Aaron", "active", "")

	for _, rec := range []payroll.SalaryRecord{
		salary(adel, 5, 2024, "100"),
		salary(zaid, 5, 2024, "200"),
		salary(badr, 4, 2024, "300"),
		salary(badr, 5, 2024, "400"),
		salary(nobody, 5, 2024, "50"),
	} {
		_, err := store.Upsert(ctx, rec)
		require.NoError(t, err)
	}

	tests := []struct {
		name   string
		filter payroll.SalaryFilter
		want   []string
	}{
		{
			name:   "no filter orders by department then name then newest period",
			filter: payroll.SalaryFilter{},
			want:   []string{"Badr/400", "Badr/300", "Zaid/200", "Adel/100", "Aaron/50"},
		},
		{
			name:   "month and employee combine",
			filter: payroll.SalaryFilter{Month: intPtr(5), EmployeeID: &badr},
			want:   []string{"Badr/400"},
		},
		{
			name:   "department",
			filter: payroll.SalaryFilter{Month: intPtr(5), DepartmentID: deptID(t, db, "Alpha")},
			want:   []string{"Badr/400", "Zaid/200"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := store.Query(ctx, tt.filter)
			require.NoError(t, err)

			var got []string
			for _, r := range records {
				got = append(got, r.EmployeeName+"/"+r.NetSalary.StringFixed(0))
			}
			assert.Equal(t, tt.want, got)
		})
	}

	sum, err := store.Summarize(ctx, payroll.SalaryFilter{Month: intPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, 4, sum.EmployeeCount)
	assert.Equal(t, "750", sum.TotalNet.StringFixed(0))
}

func TestSalaryStore_Delete(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()
	store := NewSalaryStore(db)
	empID := seedEmployee(t, db, "Huda", "active", "")

	rec, err := store.Upsert(ctx, salary(empID, 2, 2024, "10"))
	require.NoError(t, err)

	got, err := store.GetByEmployeePeriod(ctx, empID, 2, 2024)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	require.NoError(t, store.Delete(ctx, rec.ID))
	assert.ErrorIs(t, store.Delete(ctx, rec.ID), payroll.ErrSalaryRecordNotFound)
	_, err = store.GetByID(ctx, rec.ID)
	assert.ErrorIs(t, err, payroll.ErrSalaryRecordNotFound)
}

func TestEmployeeRepository_GuardedDeletes(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()
	employees := NewEmployeeRepository(db)

	paid := seedEmployee(t, db, "Paid", "terminated", "Ops")
	_, err := NewSalaryStore(db).Upsert(ctx, salary(paid, 3, 2024, "10"))
	require.NoError(t, err)

	assert.ErrorIs(t, employees.Delete(ctx, paid), employee.ErrEmployeeHasPayroll)

	depts, err := employees.ListDepartments(ctx)
	require.NoError(t, err)
	require.Len(t, depts, 1)
	assert.Equal(t, 1, depts[0].EmployeeCount)
	assert.ErrorIs(t, employees.DeleteDepartment(ctx, depts[0].ID), employee.ErrDepartmentNotEmpty)

	fresh := seedEmployee(t, db, "Fresh", "active", "")
	require.NoError(t, db.RecordAttendance(ctx, fresh, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), attendance.StatusPresent))
	require.NoError(t, employees.Delete(ctx, fresh))
	assert.ErrorIs(t, employees.Delete(ctx, fresh), employee.ErrEmployeeNotFound)

	_, err = employees.GetDepartmentByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, employee.ErrDepartmentNotFound)
}

func TestEmployeeRepository_ReadModel(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()
	employees := NewEmployeeRepository(db)

	active := seedEmployee(t, db, "Active", "active", "Sales")
	left := seedEmployee(t, db, "Left", "terminated", "Sales")
	seedEmployee(t, db, "Gone", "terminated", "")
	_, err := db.ExecContext(ctx, `INSERT INTO departments (id, name) VALUES (?, 'Admin')`, uuid.NewString())
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO employee_departments (employee_id, department_id) SELECT ?, id FROM departments WHERE name = 'Admin'`, active)
	require.NoError(t, err)

	require.NoError(t, db.RecordAttendance(ctx, left, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), attendance.StatusPresent))
	require.NoError(t, db.RecordAttendance(ctx, left, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), attendance.StatusSick))
	require.NoError(t, db.RecordAttendance(ctx, left, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), attendance.StatusAbsent))
	assert.ErrorIs(t, db.RecordAttendance(ctx, left, time.Now(), "late"), attendance.ErrInvalidStatus)

	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	t.Run("eligible", func(t *testing.T) {
		got, err := employees.ListEligibleForPayroll(ctx, from, to, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"Active", "Left"}, names(got))

		none, err := employees.ListEligibleForPayroll(ctx, from, to, deptID(t, db, "Admin"))
		require.NoError(t, err)
		assert.Equal(t, []string{"Active"}, names(none))
	})

	t.Run("departments", func(t *testing.T) {
		emp, err := employees.GetByID(ctx, active)
		require.NoError(t, err)
		require.Len(t, emp.Departments, 2)
		assert.Equal(t, "Admin", emp.Departments[0].Name)
		require.NotNil(t, emp.BasicSalary)
		assert.Equal(t, "6000", emp.BasicSalary.String())
		assert.True(t, emp.ExcludeLeaveFromDeduction)
	})

	t.Run("list filters", func(t *testing.T) {
		status := "terminated"
		got, err := employees.List(ctx, employee.EmployeeFilter{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, []string{"Gone", "Left"}, names(got))

		search := "lef"
		got, err = employees.List(ctx, employee.EmployeeFilter{Search: &search})
		require.NoError(t, err)
		assert.Equal(t, []string{"Left"}, names(got))
	})

	t.Run("attendance", func(t *testing.T) {
		records, err := NewAttendanceRepository(db).ListByEmployee(ctx, left, from, to)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, attendance.StatusSick, records[0].Status)
		assert.Equal(t, 3, records[0].Date.Day())
	})
}

func TestAuditRepository_AppendAndList(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewAuditRepository(db)

	user := "user-1"
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	for i, action := range []string{audit.ActionSalaryUpsert, audit.ActionPayrollBatch, audit.ActionEmployeeDelete} {
		entityType := audit.EntitySalaryRecord
		if action == audit.ActionEmployeeDelete {
			entityType = audit.EntityEmployee
		}
		require.NoError(t, repo.Append(ctx, audit.Entry{
			ID:         uuid.NewString(),
			Action:     action,
			EntityType: entityType,
			EntityID:   "x",
			Details:    []byte(`{"n":1}`),
			UserID:     &user,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
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

	limited, err := repo.List(ctx, audit.Filter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, audit.ActionEmployeeDelete, limited[0].Action)
}

func intPtr(v int) *int { return &v }

func deptID(t *testing.T, db *DB, name string) *string {
	t.Helper()
	var id string
	require.NoError(t, db.QueryRowContext(context.Background(), `SELECT id FROM departments WHERE name = ?`, name).Scan(&id))
	return &id
}

func names(emps []employee.Employee) []string {
	var out []string
	for _, e := range emps {
		out = append(out, e.FullName)
	}
	return out
}
