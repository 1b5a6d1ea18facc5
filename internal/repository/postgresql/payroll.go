package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const salaryPeriodConstraint = "uk_salary_employee_period"

type salaryRepository struct {
	db   *database.DB
	q    database.Querier
	inTx bool
}

// NewSalaryStore returns a pool-bound store. WithinTx hands out copies bound
// to a single transaction.
func NewSalaryStore(db *database.DB) payroll.SalaryStore {
	return &salaryRepository{db: db, q: db.Pool}
}

// WithinTx implements payroll.Transactor.
func (r *salaryRepository) WithinTx(ctx context.Context, fn func(repo payroll.SalaryRepository) error) error {
	if r.inTx {
		return fn(r)
	}
	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&salaryRepository{db: r.db, q: tx, inTx: true})
	})
}

const salarySelect = `
	SELECT s.id, s.employee_id, s.month, s.year,
		s.basic_salary, s.attendance_bonus, s.allowances, s.bonus, s.deductions, s.other_deductions, s.net_salary,
		s.present_days, s.absent_days, s.leave_days, s.sick_days,
		s.attendance_deduction, s.attendance_calculated, s.notes, s.created_at, s.updated_at,
		e.full_name, e.employee_code, e.national_id, e.job_title, e.phone_number,
		(SELECT d.name FROM employee_departments ed JOIN departments d ON d.id = ed.department_id
		 WHERE ed.employee_id = e.id ORDER BY d.name LIMIT 1) AS department_name
	FROM salary_records s
	JOIN employees e ON e.id = s.employee_id`

func scanSalary(row pgx.Row) (payroll.SalaryRecord, error) {
	var s payroll.SalaryRecord
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.Month, &s.Year,
		&s.BasicSalary, &s.AttendanceBonus, &s.Allowances, &s.Bonus, &s.Deductions, &s.OtherDeductions, &s.NetSalary,
		&s.PresentDays, &s.AbsentDays, &s.LeaveDays, &s.SickDays,
		&s.AttendanceDeduction, &s.AttendanceCalculated, &s.Notes, &s.CreatedAt, &s.UpdatedAt,
		&s.EmployeeName, &s.EmployeeCode, &s.NationalID, &s.JobTitle, &s.PhoneNumber,
		&s.DepartmentName,
	)
	return s, err
}

// Upsert implements payroll.SalaryRepository.
func (r *salaryRepository) Upsert(ctx context.Context, record payroll.SalaryRecord) (payroll.SalaryRecord, error) {
	var existingID string
	err := r.q.QueryRow(ctx, `
		SELECT id FROM salary_records
		WHERE employee_id = $1 AND month = $2 AND year = $3
		FOR UPDATE
	`, record.EmployeeID, record.Month, record.Year).Scan(&existingID)

	switch {
	case err == nil:
		_, err = r.q.Exec(ctx, `
			UPDATE salary_records SET
				basic_salary = $2, attendance_bonus = $3, allowances = $4, bonus = $5,
				deductions = $6, other_deductions = $7, net_salary = $8,
				present_days = $9, absent_days = $10, leave_days = $11, sick_days = $12,
				attendance_deduction = $13, attendance_calculated = $14, notes = $15,
				updated_at = NOW()
			WHERE id = $1
		`,
			existingID,
			record.BasicSalary, record.AttendanceBonus, record.Allowances, record.Bonus,
			record.Deductions, record.OtherDeductions, record.NetSalary,
			record.PresentDays, record.AbsentDays, record.LeaveDays, record.SickDays,
			record.AttendanceDeduction, record.AttendanceCalculated, record.Notes,
		)
		if err != nil {
			return payroll.SalaryRecord{}, fmt.Errorf("failed to update salary record: %w", err)
		}
		return r.GetByID(ctx, existingID)

	case errors.Is(err, pgx.ErrNoRows):
		id := record.ID
		if id == "" {
			id = uuid.NewString()
		}
		_, err = r.q.Exec(ctx, `
			INSERT INTO salary_records (
				id, employee_id, month, year,
				basic_salary, attendance_bonus, allowances, bonus, deductions, other_deductions, net_salary,
				present_days, absent_days, leave_days, sick_days,
				attendance_deduction, attendance_calculated, notes
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		`,
			id, record.EmployeeID, record.Month, record.Year,
			record.BasicSalary, record.AttendanceBonus, record.Allowances, record.Bonus,
			record.Deductions, record.OtherDeductions, record.NetSalary,
			record.PresentDays, record.AbsentDays, record.LeaveDays, record.SickDays,
			record.AttendanceDeduction, record.AttendanceCalculated, record.Notes,
		)
		if err != nil {
			if isConstraintViolation(err, codeUniqueViolation, salaryPeriodConstraint) {
				return payroll.SalaryRecord{}, payroll.ErrSalaryRecordConflict
			}
			if isConstraintViolation(err, codeForeignKeyViolation, "") {
				return payroll.SalaryRecord{}, payroll.ErrEmployeeNotFound
			}
			return payroll.SalaryRecord{}, fmt.Errorf("failed to insert salary record: %w", err)
		}
		return r.GetByID(ctx, id)

	default:
		return payroll.SalaryRecord{}, fmt.Errorf("failed to look up salary record: %w", err)
	}
}

// GetByID implements payroll.SalaryRepository.
func (r *salaryRepository) GetByID(ctx context.Context, id string) (payroll.SalaryRecord, error) {
	s, err := scanSalary(r.q.QueryRow(ctx, salarySelect+` WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
		}
		return payroll.SalaryRecord{}, fmt.Errorf("failed to get salary record: %w", err)
	}
	return s, nil
}

// GetByEmployeePeriod implements payroll.SalaryRepository.
func (r *salaryRepository) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (payroll.SalaryRecord, error) {
	s, err := scanSalary(r.q.QueryRow(ctx,
		salarySelect+` WHERE s.employee_id = $1 AND s.month = $2 AND s.year = $3`, employeeID, month, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
		}
		return payroll.SalaryRecord{}, fmt.Errorf("failed to get salary record: %w", err)
	}
	return s, nil
}

func salaryWhere(filter payroll.SalaryFilter) (string, []any) {
	var (
		where  []string
		args   []any
		argIdx = 1
	)

	if filter.Month != nil {
		where = append(where, fmt.Sprintf("s.month = $%d", argIdx))
		args = append(args, *filter.Month)
		argIdx++
	}
	if filter.Year != nil {
		where = append(where, fmt.Sprintf("s.year = $%d", argIdx))
		args = append(args, *filter.Year)
		argIdx++
	}
	if filter.EmployeeID != nil {
		where = append(where, fmt.Sprintf("s.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.DepartmentID != nil {
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM employee_departments ed WHERE ed.employee_id = s.employee_id AND ed.department_id = $%d)", argIdx))
		args = append(args, *filter.DepartmentID)
		argIdx++
	}

	if len(where) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

// Query implements payroll.SalaryRepository.
func (r *salaryRepository) Query(ctx context.Context, filter payroll.SalaryFilter) ([]payroll.SalaryRecord, error) {
	where, args := salaryWhere(filter)
	query := salarySelect + where +
		` ORDER BY department_name NULLS LAST, e.full_name, s.year DESC, s.month DESC, s.id`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query salary records: %w", err)
	}
	defer rows.Close()

	var records []payroll.SalaryRecord
	for rows.Next() {
		s, err := scanSalary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary record: %w", err)
		}
		records = append(records, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate salary records: %w", err)
	}

	return records, nil
}

// Exists implements payroll.SalaryRepository.
func (r *salaryRepository) Exists(ctx context.Context, employeeID string, month, year int) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM salary_records WHERE employee_id = $1 AND month = $2 AND year = $3
		)
	`, employeeID, month, year).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check salary record: %w", err)
	}
	return exists, nil
}

// Summarize implements payroll.SalaryRepository.
func (r *salaryRepository) Summarize(ctx context.Context, filter payroll.SalaryFilter) (payroll.SalarySummary, error) {
	where, args := salaryWhere(filter)
	query := `
		SELECT COUNT(DISTINCT s.employee_id),
			COALESCE(SUM(s.basic_salary), 0),
			COALESCE(SUM(s.allowances), 0),
			COALESCE(SUM(s.bonus + s.attendance_bonus), 0),
			COALESCE(SUM(s.deductions), 0),
			COALESCE(SUM(s.net_salary), 0)
		FROM salary_records s` + where

	var sum payroll.SalarySummary
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&sum.EmployeeCount, &sum.TotalBasic, &sum.TotalAllowances,
		&sum.TotalBonus, &sum.TotalDeductions, &sum.TotalNet,
	)
	if err != nil {
		return payroll.SalarySummary{}, fmt.Errorf("failed to summarize salary records: %w", err)
	}
	return sum, nil
}

// Delete implements payroll.SalaryRepository.
func (r *salaryRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM salary_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete salary record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrSalaryRecordNotFound
	}
	return nil
}
