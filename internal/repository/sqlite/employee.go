package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type employeeRepository struct {
	db *DB
}

func NewEmployeeRepository(db *DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

const employeeColumns = `
	e.id, e.employee_code, e.national_id, e.full_name, e.job_title, e.nationality,
	e.contract_type, e.basic_salary, e.attendance_bonus,
	e.exclude_leave_from_deduction, e.exclude_sick_from_deduction,
	e.status, e.phone_number, e.created_at, e.updated_at`

func scanEmployee(row rowScanner) (employee.Employee, error) {
	var (
		emp   employee.Employee
		basic decimal.NullDecimal
	)
	err := row.Scan(
		&emp.ID, &emp.EmployeeCode, &emp.NationalID, &emp.FullName, &emp.JobTitle, &emp.Nationality,
		&emp.ContractType, &basic, &emp.AttendanceBonus,
		&emp.ExcludeLeaveFromDeduction, &emp.ExcludeSickFromDeduction,
		&emp.Status, &emp.PhoneNumber, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if basic.Valid {
		emp.BasicSalary = &basic.Decimal
	}
	return emp, err
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	emp, err := scanEmployee(r.db.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees e WHERE e.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee with id %s: %w", id, err)
	}

	emps := []employee.Employee{emp}
	if err := r.attachDepartments(ctx, emps); err != nil {
		return employee.Employee{}, err
	}
	return emps[0], nil
}

// List implements employee.EmployeeRepository.
func (r *employeeRepository) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != nil {
		where = append(where, "e.status = ?")
		args = append(args, *filter.Status)
	}
	if filter.DepartmentID != nil {
		where = append(where, "EXISTS (SELECT 1 FROM employee_departments ed WHERE ed.employee_id = e.id AND ed.department_id = ?)")
		args = append(args, *filter.DepartmentID)
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		like := "%" + strings.TrimSpace(*filter.Search) + "%"
		where = append(where, "(e.full_name LIKE ? OR e.employee_code LIKE ? OR e.national_id LIKE ?)")
		args = append(args, like, like, like)
	}

	query := `SELECT ` + employeeColumns + ` FROM employees e`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY e.full_name, e.id"

	return r.queryEmployees(ctx, query, args...)
}

// ListEligibleForPayroll implements employee.EmployeeRepository.
func (r *employeeRepository) ListEligibleForPayroll(ctx context.Context, from, to time.Time, departmentID *string) ([]employee.Employee, error) {
	query := `
		SELECT ` + employeeColumns + `
		FROM employees e
		WHERE (
			e.status = 'active'
			OR EXISTS (
				SELECT 1 FROM attendance_records a
				WHERE a.employee_id = e.id AND a.date BETWEEN ? AND ?
			)
		)`
	args := []any{from.Format(dateLayout), to.Format(dateLayout)}
	if departmentID != nil {
		query += ` AND EXISTS (SELECT 1 FROM employee_departments ed WHERE ed.employee_id = e.id AND ed.department_id = ?)`
		args = append(args, *departmentID)
	}
	query += " ORDER BY e.full_name, e.id"

	return r.queryEmployees(ctx, query, args...)
}

func (r *employeeRepository) queryEmployees(ctx context.Context, query string, args ...any) ([]employee.Employee, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	// close before the next query; in-memory databases have a single connection
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}

	if err := r.attachDepartments(ctx, employees); err != nil {
		return nil, err
	}
	return employees, nil
}

func (r *employeeRepository) attachDepartments(ctx context.Context, employees []employee.Employee) error {
	if len(employees) == 0 {
		return nil
	}

	args := make([]any, len(employees))
	index := make(map[string]int, len(employees))
	for i, emp := range employees {
		args[i] = emp.ID
		index[emp.ID] = i
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT ed.employee_id, d.id, d.name, d.manager_id
		FROM employee_departments ed
		JOIN departments d ON d.id = ed.department_id
		WHERE ed.employee_id IN (`+placeholders(len(args))+`)
		ORDER BY d.name
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to load employee departments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			employeeID string
			d          employee.Department
		)
		if err := rows.Scan(&employeeID, &d.ID, &d.Name, &d.ManagerID); err != nil {
			return fmt.Errorf("failed to scan employee department: %w", err)
		}
		if i, ok := index[employeeID]; ok {
			employees[i].Departments = append(employees[i].Departments, d)
		}
	}
	return rows.Err()
}

// Delete implements employee.EmployeeRepository.
func (r *employeeRepository) Delete(ctx context.Context, id string) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		var hasPayroll bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM salary_records WHERE employee_id = ?)`, id).Scan(&hasPayroll); err != nil {
			return fmt.Errorf("failed to check payroll history: %w", err)
		}
		if hasPayroll {
			return employee.ErrEmployeeHasPayroll
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
		if err != nil {
			if isForeignKeyViolation(err) {
				return employee.ErrEmployeeHasPayroll
			}
			return fmt.Errorf("failed to delete employee with id %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return employee.ErrEmployeeNotFound
		}
		return nil
	})
}

const departmentColumns = `
	d.id, d.name, d.manager_id,
	(SELECT COUNT(*) FROM employee_departments ed WHERE ed.department_id = d.id)`

// ListDepartments implements employee.EmployeeRepository.
func (r *employeeRepository) ListDepartments(ctx context.Context) ([]employee.Department, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+departmentColumns+` FROM departments d ORDER BY d.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	var depts []employee.Department
	for rows.Next() {
		var d employee.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.ManagerID, &d.EmployeeCount); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		depts = append(depts, d)
	}
	return depts, rows.Err()
}

// GetDepartmentByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetDepartmentByID(ctx context.Context, id string) (employee.Department, error) {
	var d employee.Department
	err := r.db.QueryRowContext(ctx, `SELECT `+departmentColumns+` FROM departments d WHERE d.id = ?`, id).
		Scan(&d.ID, &d.Name, &d.ManagerID, &d.EmployeeCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return employee.Department{}, employee.ErrDepartmentNotFound
		}
		return employee.Department{}, fmt.Errorf("failed to get department with id %s: %w", id, err)
	}
	return d, nil
}

// DeleteDepartment implements employee.EmployeeRepository.
func (r *employeeRepository) DeleteDepartment(ctx context.Context, id string) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		var members int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM employee_departments WHERE department_id = ?`, id).Scan(&members); err != nil {
			return fmt.Errorf("failed to count department members: %w", err)
		}
		if members > 0 {
			return employee.ErrDepartmentNotEmpty
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM departments WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete department with id %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return employee.ErrDepartmentNotFound
		}
		return nil
	})
}
