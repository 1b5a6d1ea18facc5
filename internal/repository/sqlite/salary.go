package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type salaryRepository struct {
	db   *DB
	q    querier
	inTx bool
}

func NewSalaryStore(db *DB) payroll.SalaryStore {
	return &salaryRepository{db: db, q: db.DB}
}

// WithinTx implements payroll.Transactor.
func (r *salaryRepository) WithinTx(ctx context.Context, fn func(repo payroll.SalaryRepository) error) error {
	if r.inTx {
		return fn(r)
	}
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSalary(row rowScanner) (payroll.SalaryRecord, error) {
	var (
		s    payroll.SalaryRecord
		dept sql.NullString
	)
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.Month, &s.Year,
		&s.BasicSalary, &s.AttendanceBonus, &s.Allowances, &s.Bonus, &s.Deductions, &s.OtherDeductions, &s.NetSalary,
		&s.PresentDays, &s.AbsentDays, &s.LeaveDays, &s.SickDays,
		&s.AttendanceDeduction, &s.AttendanceCalculated, &s.Notes, &s.CreatedAt, &s.UpdatedAt,
		&s.EmployeeName, &s.EmployeeCode, &s.NationalID, &s.JobTitle, &s.PhoneNumber,
		&dept,
	)
	if dept.Valid {
		s.DepartmentName = &dept.String
	}
	return s, err
}

// Upsert implements payroll.SalaryRepository.
func (r *salaryRepository) Upsert(ctx context.Context, record payroll.SalaryRecord) (payroll.SalaryRecord, error) {
	var existingID string
	err := r.q.QueryRowContext(ctx,
		`SELECT id FROM salary_records WHERE employee_id = ? AND month = ? AND year = ?`,
		record.EmployeeID, record.Month, record.Year,
	).Scan(&existingID)

	now := time.Now().UTC()

	switch {
	case err == nil:
		_, err = r.q.ExecContext(ctx, `
			UPDATE salary_records SET
				basic_salary = ?, attendance_bonus = ?, allowances = ?, bonus = ?,
				deductions = ?, other_deductions = ?, net_salary = ?,
				present_days = ?, absent_days = ?, leave_days = ?, sick_days = ?,
				attendance_deduction = ?, attendance_calculated = ?, notes = ?,
				updated_at = ?
			WHERE id = ?
		`,
			record.BasicSalary, record.AttendanceBonus, record.Allowances, record.Bonus,
			record.Deductions, record.OtherDeductions, record.NetSalary,
			record.PresentDays, record.AbsentDays, record.LeaveDays, record.SickDays,
			record.AttendanceDeduction, record.AttendanceCalculated, record.Notes,
			now, existingID,
		)
		if err != nil {
			return payroll.SalaryRecord{}, fmt.Errorf("failed to update salary record: %w", err)
		}
		return r.GetByID(ctx, existingID)

	case errors.Is(err, sql.ErrNoRows):
		id := record.ID
		if id == "" {
			id = uuid.NewString()
		}
		_, err = r.q.ExecContext(ctx, `
			INSERT INTO salary_records (
				id, employee_id, month, year,
				basic_salary, attendance_bonus, allowances, bonus, deductions, other_deductions, net_salary,
				present_days, absent_days, leave_days, sick_days,
				attendance_deduction, attendance_calculated, notes, created_at, updated_at
			) VALUES (`+placeholders(20)+`)
		`,
			id, record.EmployeeID, record.Month, record.Year,
			record.BasicSalary, record.AttendanceBonus, record.Allowances, record.Bonus,
			record.Deductions, record.OtherDeductions, record.NetSalary,
			record.PresentDays, record.AbsentDays, record.LeaveDays, record.SickDays,
			record.AttendanceDeduction, record.AttendanceCalculated, record.Notes, now, now,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return payroll.SalaryRecord{}, payroll.ErrSalaryRecordConflict
			}
			if isForeignKeyViolation(err) {
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
	s, err := scanSalary(r.q.QueryRowContext(ctx, salarySelect+` WHERE s.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
		}
		return payroll.SalaryRecord{}, fmt.Errorf("failed to get salary record: %w", err)
	}
	return s, nil
}

// GetByEmployeePeriod implements payroll.SalaryRepository.
func (r *salaryRepository) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (payroll.SalaryRecord, error) {
	s, err := scanSalary(r.q.QueryRowContext(ctx,
		salarySelect+` WHERE s.employee_id = ? AND s.month = ? AND s.year = ?`, employeeID, month, year))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
		}
		return payroll.SalaryRecord{}, fmt.Errorf("failed to get salary record: %w", err)
	}
	return s, nil
}

func salaryWhere(filter payroll.SalaryFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if filter.Month != nil {
		where = append(where, "s.month = ?")
		args = append(args, *filter.Month)
	}
	if filter.Year != nil {
		where = append(where, "s.year = ?")
		args = append(args, *filter.Year)
	}
	if filter.EmployeeID != nil {
		where = append(where, "s.employee_id = ?")
		args = append(args, *filter.EmployeeID)
	}
	if filter.DepartmentID != nil {
		where = append(where, "EXISTS (SELECT 1 FROM employee_departments ed WHERE ed.employee_id = s.employee_id AND ed.department_id = ?)")
		args = append(args, *filter.DepartmentID)
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
		` ORDER BY department_name IS NULL, department_name, e.full_name, s.year DESC, s.month DESC, s.id`

	rows, err := r.q.QueryContext(ctx, query, args...)
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
	err := r.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM salary_records WHERE employee_id = ? AND month = ? AND year = ?)`,
		employeeID, month, year,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check salary record: %w", err)
	}
	return exists, nil
}

// Summarize implements payroll.SalaryRepository. Amounts are stored as text,
// so totals are added up here rather than with SUM.
func (r *salaryRepository) Summarize(ctx context.Context, filter payroll.SalaryFilter) (payroll.SalarySummary, error) {
	records, err := r.Query(ctx, filter)
	if err != nil {
		return payroll.SalarySummary{}, err
	}

	sum := payroll.SalarySummary{
		TotalBasic:      decimal.Zero,
		TotalAllowances: decimal.Zero,
		TotalBonus:      decimal.Zero,
		TotalDeductions: decimal.Zero,
		TotalNet:        decimal.Zero,
	}
	employees := make(map[string]struct{})
	for _, rec := range records {
		employees[rec.EmployeeID] = struct{}{}
		sum.TotalBasic = sum.TotalBasic.Add(rec.BasicSalary)
		sum.TotalAllowances = sum.TotalAllowances.Add(rec.Allowances)
		sum.TotalBonus = sum.TotalBonus.Add(rec.Bonus).Add(rec.AttendanceBonus)
		sum.TotalDeductions = sum.TotalDeductions.Add(rec.Deductions)
		sum.TotalNet = sum.TotalNet.Add(rec.NetSalary)
	}
	sum.EmployeeCount = len(employees)
	return sum, nil
}

// Delete implements payroll.SalaryRepository.
func (r *salaryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM salary_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete salary record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payroll.ErrSalaryRecordNotFound
	}
	return nil
}
