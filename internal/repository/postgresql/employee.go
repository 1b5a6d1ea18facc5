package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	e.id, e.employee_code, e.national_id, e.full_name, e.job_title, e.nationality,
	e.contract_type, e.basic_salary, e.attendance_bonus,
	e.exclude_leave_from_deduction, e.exclude_sick_from_deduction,
	e.status, e.phone_number, e.created_at, e.updated_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.EmployeeCode, &emp.NationalID, &emp.FullName, &emp.JobTitle, &emp.Nationality,
		&emp.ContractType, &emp.BasicSalary, &emp.AttendanceBonus,
		&emp.ExcludeLeaveFromDeduction, &emp.ExcludeSickFromDeduction,
		&emp.Status, &emp.PhoneNumber, &emp.CreatedAt, &emp.UpdatedAt,
	)
	return emp, err
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees e WHERE e.id = $1`

	emp, err := scanEmployee(e.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee with id %s: %w", id, err)
	}

	emps := []employee.Employee{emp}
	if err := e.attachDepartments(ctx, emps); err != nil {
		return employee.Employee{}, err
	}
	return emps[0], nil
}

// List implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, error) {
	var (
		where  []string
		args   []any
		argIdx = 1
	)

	if filter.Status != nil {
		where = append(where, fmt.Sprintf("e.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.DepartmentID != nil {
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM employee_departments ed WHERE ed.employee_id = e.id AND ed.department_id = $%d)", argIdx))
		args = append(args, *filter.DepartmentID)
		argIdx++
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		where = append(where, fmt.Sprintf(
			"(e.full_name ILIKE $%d OR e.employee_code ILIKE $%d OR e.national_id ILIKE $%d)", argIdx, argIdx, argIdx))
		args = append(args, "%"+strings.TrimSpace(*filter.Search)+"%")
		argIdx++
	}

	query := `SELECT ` + employeeColumns + ` FROM employees e`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY e.full_name, e.id"

	return e.queryEmployees(ctx, query, args...)
}

// ListEligibleForPayroll implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListEligibleForPayroll(ctx context.Context, from, to time.Time, departmentID *string) ([]employee.Employee, error) {
	query := `
		SELECT ` + employeeColumns + `
		FROM employees e
		WHERE (
			e.status = 'active'
			OR EXISTS (
				SELECT 1 FROM attendance_records a
				WHERE a.employee_id = e.id AND a.date BETWEEN $1 AND $2
			)
		)
		AND (
			$3::uuid IS NULL
			OR EXISTS (
				SELECT 1 FROM employee_departments ed
				WHERE ed.employee_id = e.id AND ed.department_id = $3::uuid
			)
		)
		ORDER BY e.full_name, e.id
	`

	return e.queryEmployees(ctx, query, from, to, departmentID)
}

func (e *employeeRepositoryImpl) queryEmployees(ctx context.Context, query string, args ...any) ([]employee.Employee, error) {
	rows, err := e.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}

	if err := e.attachDepartments(ctx, employees); err != nil {
		return nil, err
	}
	return employees, nil
}

// attachDepartments loads memberships for all employees in one query.
func (e *employeeRepositoryImpl) attachDepartments(ctx context.Context, employees []employee.Employee) error {
	if len(employees) == 0 {
		return nil
	}

	ids := make([]string, len(employees))
	index := make(map[string]int, len(employees))
	for i, emp := range employees {
		ids[i] = emp.ID
		index[emp.ID] = i
	}

	query := `
		SELECT ed.employee_id, d.id, d.name, d.manager_id
		FROM employee_departments ed
		JOIN departments d ON d.id = ed.department_id
		WHERE ed.employee_id = ANY($1::uuid[])
		ORDER BY d.name
	`

	rows, err := e.db.Query(ctx, query, ids)
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
func (e *employeeRepositoryImpl) Delete(ctx context.Context, id string) error {
	return WithTransaction(ctx, e.db, func(tx pgx.Tx) error {
		var hasPayroll bool
		err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM salary_records WHERE employee_id = $1)`, id).Scan(&hasPayroll)
		if err != nil {
			return fmt.Errorf("failed to check payroll history: %w", err)
		}
		if hasPayroll {
			return employee.ErrEmployeeHasPayroll
		}

		tag, err := tx.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
		if err != nil {
			// a salary row committed between the check and the delete
			if isConstraintViolation(err, codeForeignKeyViolation, "") {
				return employee.ErrEmployeeHasPayroll
			}
			return fmt.Errorf("failed to delete employee with id %s: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return employee.ErrEmployeeNotFound
		}
		return nil
	})
}

// ========== DEPARTMENTS ==========

const departmentColumns = `
	d.id, d.name, d.manager_id,
	(SELECT COUNT(*) FROM employee_departments ed WHERE ed.department_id = d.id)`

// ListDepartments implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListDepartments(ctx context.Context) ([]employee.Department, error) {
	rows, err := e.db.Query(ctx, `SELECT `+departmentColumns+` FROM departments d ORDER BY d.name`)
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
func (e *employeeRepositoryImpl) GetDepartmentByID(ctx context.Context, id string) (employee.Department, error) {
	var d employee.Department
	err := e.db.QueryRow(ctx, `SELECT `+departmentColumns+` FROM departments d WHERE d.id = $1`, id).
		Scan(&d.ID, &d.Name, &d.ManagerID, &d.EmployeeCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Department{}, employee.ErrDepartmentNotFound
		}
		return employee.Department{}, fmt.Errorf("failed to get department with id %s: %w", id, err)
	}
	return d, nil
}

// DeleteDepartment implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) DeleteDepartment(ctx context.Context, id string) error {
	return WithTransaction(ctx, e.db, func(tx pgx.Tx) error {
		var members int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM employee_departments WHERE department_id = $1`, id).Scan(&members); err != nil {
			return fmt.Errorf("failed to count department members: %w", err)
		}
		if members > 0 {
			return employee.ErrDepartmentNotEmpty
		}

		tag, err := tx.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
		if err != nil {
			if isConstraintViolation(err, codeForeignKeyViolation, "") {
				return employee.ErrDepartmentNotEmpty
			}
			return fmt.Errorf("failed to delete department with id %s: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return employee.ErrDepartmentNotFound
		}
		return nil
	})
}
