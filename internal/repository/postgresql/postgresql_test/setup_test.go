package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
)

// TestDatabaseSetup holds a migrated test database.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies the schema. The
// test is skipped when the variable is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 10})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	setup := &TestDatabaseSetup{DB: db}
	if err := setup.migrate(ctx); err != nil {
		db.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}
	if err := setup.TruncateAllTables(ctx); err != nil {
		db.Close()
		t.Fatalf("failed to reset test database: %v", err)
	}

	t.Cleanup(db.Close)
	return setup
}

func (t *TestDatabaseSetup) migrate(ctx context.Context) error {
	_, file, _, _ := runtime.Caller(0)
	path := filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "migrations", "001_payroll.sql")

	schema, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = t.DB.Exec(ctx, string(schema))
	return err
}

// TruncateAllTables empties every table the engine touches.
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tables := []string{
		"audit_log",
		"salary_records",
		"attendance_records",
		"employee_departments",
		"departments",
		"employees",
	}

	for _, table := range tables {
		if _, err := t.DB.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}
	return nil
}

// SeedEmployee inserts an employee, optionally into a department created on
// demand, and returns its id.
func (t *TestDatabaseSetup) SeedEmployee(ctx context.Context, name, status, department string) (string, error) {
	var id string
	err := t.DB.QueryRow(ctx, `
		INSERT INTO employees (full_name, employee_code, status, basic_salary, phone_number)
		VALUES ($1, $1, $2, 6000, '0501234567')
		RETURNING id
	`, name, status).Scan(&id)
	if err != nil || department == "" {
		return id, err
	}

	var deptID string
	err = t.DB.QueryRow(ctx, `
		INSERT INTO departments (name) VALUES ($1)
		ON CONFLICT ON CONSTRAINT uk_department_name DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, department).Scan(&deptID)
	if err != nil {
		return id, err
	}
	_, err = t.DB.Exec(ctx, `INSERT INTO employee_departments (employee_id, department_id) VALUES ($1, $2)`, id, deptID)
	return id, err
}
