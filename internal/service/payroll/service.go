package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// DefaultRequiredDaysForBonus applies when a request leaves the threshold unset.
const DefaultRequiredDaysForBonus = 30

type PayrollServiceImpl struct {
	store        payroll.SalaryStore
	employeeRepo employee.EmployeeRepository
	calculator   *Calculator
	recorder     audit.Recorder
	requiredDays int
}

func NewPayrollService(
	store payroll.SalaryStore,
	employeeRepo employee.EmployeeRepository,
	calculator *Calculator,
	recorder audit.Recorder,
	requiredDays int,
) payroll.PayrollService {
	if requiredDays <= 0 {
		requiredDays = DefaultRequiredDaysForBonus
	}
	return &PayrollServiceImpl{
		store:        store,
		employeeRepo: employeeRepo,
		calculator:   calculator,
		recorder:     recorder,
		requiredDays: requiredDays,
	}
}

// ========== COMPUTE ==========

// ComputeSingle implements payroll.PayrollService. Nothing is stored.
func (s *PayrollServiceImpl) ComputeSingle(ctx context.Context, req payroll.ComputeRequest) (payroll.CalculationResult, error) {
	if req.RequiredDaysForBonus == 0 {
		req.RequiredDaysForBonus = s.requiredDays
	}
	if err := req.Validate(); err != nil {
		return payroll.CalculationResult{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return payroll.CalculationResult{}, err
	}

	in := payroll.InputFromEmployee(emp, req.Month, req.Year, req.RequiredDaysForBonus)
	if req.BasicSalary != nil {
		in.Basic = *req.BasicSalary
	}
	if req.Allowances != nil {
		in.Allowances = *req.Allowances
	}
	if req.Bonus != nil {
		in.Bonus = *req.Bonus
	}
	if req.OtherDeductions != nil {
		in.OtherDeductions = *req.OtherDeductions
	}
	if req.AttendanceBonus != nil {
		in.AttendanceBonus = *req.AttendanceBonus
	}

	res := s.calculator.Calculate(ctx, in)
	if emp.BasicSalary == nil && req.BasicSalary == nil {
		res.Warnings = withMissingBasic(res.Warnings, emp.ID)
	}
	return res, nil
}

// ========== SALARY RECORDS ==========

// UpsertSalary stores a manually entered salary. Net is recomputed with the
// employee's nationality and contract so stored records stay consistent.
func (s *PayrollServiceImpl) UpsertSalary(ctx context.Context, req payroll.UpsertSalaryRequest) (payroll.SalaryRecord, error) {
	if err := req.Validate(); err != nil {
		return payroll.SalaryRecord{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return payroll.SalaryRecord{}, err
	}

	includeGOSI := true
	if req.IncludeGOSI != nil {
		includeGOSI = *req.IncludeGOSI
	}

	other := req.OtherDeductions
	attendanceDeduction := decimal.Zero
	if req.Deduction != nil {
		attendanceDeduction = *req.Deduction
		other = other.Add(attendanceDeduction)
	}

	b := s.calculator.Composer().Compose(payroll.ComposeInput{
		Basic:           req.BasicSalary,
		Allowances:      req.Allowances,
		Bonus:           req.Bonus.Add(req.AttendanceBonus),
		OtherDeductions: other,
		Nationality:     emp.Nationality,
		ContractType:    emp.ContractType,
		IncludeGOSI:     includeGOSI,
	})

	record := payroll.SalaryRecord{
		EmployeeID:          req.EmployeeID,
		Month:               req.Month,
		Year:                req.Year,
		BasicSalary:         req.BasicSalary,
		AttendanceBonus:     req.AttendanceBonus,
		Allowances:          req.Allowances,
		Bonus:               req.Bonus,
		Deductions:          b.TotalDeductions,
		OtherDeductions:     req.OtherDeductions,
		NetSalary:           b.NetSalary,
		AttendanceDeduction: attendanceDeduction,
		Notes:               req.Notes,
	}
	record.PresentDays = derefInt(req.PresentDays)
	record.AbsentDays = derefInt(req.AbsentDays)
	record.LeaveDays = derefInt(req.LeaveDays)
	record.SickDays = derefInt(req.SickDays)

	saved, err := s.upsert(ctx, record)
	if err != nil {
		return payroll.SalaryRecord{}, err
	}

	s.recorder.Record(ctx, audit.ActionSalaryUpsert, audit.EntitySalaryRecord, saved.ID, map[string]any{
		"employee_id": saved.EmployeeID,
		"month":       saved.Month,
		"year":        saved.Year,
		"net_salary":  saved.NetSalary.StringFixed(2),
		"manual":      true,
	})

	return saved, nil
}

// upsert runs one transaction and retries once when a concurrent insert won
// the uniqueness race; the retry finds the row and updates it.
func (s *PayrollServiceImpl) upsert(ctx context.Context, record payroll.SalaryRecord) (payroll.SalaryRecord, error) {
	var saved payroll.SalaryRecord
	attempt := func() error {
		return s.store.WithinTx(ctx, func(repo payroll.SalaryRepository) error {
			var err error
			saved, err = repo.Upsert(ctx, record)
			return err
		})
	}

	err := attempt()
	if errors.Is(err, payroll.ErrSalaryRecordConflict) {
		slog.WarnContext(ctx, "salary upsert raced, retrying as update",
			"employee_id", record.EmployeeID, "month", record.Month, "year", record.Year)
		err = attempt()
	}
	if err != nil {
		return payroll.SalaryRecord{}, fmt.Errorf("failed to upsert salary record: %w", err)
	}
	return saved, nil
}

func (s *PayrollServiceImpl) GetSalary(ctx context.Context, id string) (payroll.SalaryRecord, error) {
	if !validator.IsValidUUID(id) {
		return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
	}
	return s.store.GetByID(ctx, id)
}

func (s *PayrollServiceImpl) QuerySalaries(ctx context.Context, filter payroll.SalaryFilter) ([]payroll.SalaryRecord, error) {
	return s.store.Query(ctx, filter)
}

func (s *PayrollServiceImpl) SummarizeSalaries(ctx context.Context, filter payroll.SalaryFilter) (payroll.SalarySummary, error) {
	return s.store.Summarize(ctx, filter)
}

func (s *PayrollServiceImpl) Exists(ctx context.Context, employeeID string, month, year int) (bool, error) {
	return s.store.Exists(ctx, employeeID, month, year)
}

func (s *PayrollServiceImpl) DeleteSalary(ctx context.Context, id string) error {
	if !validator.IsValidUUID(id) {
		return payroll.ErrSalaryRecordNotFound
	}

	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.recorder.Record(ctx, audit.ActionSalaryDelete, audit.EntitySalaryRecord, id, map[string]any{
		"employee_id": existing.EmployeeID,
		"month":       existing.Month,
		"year":        existing.Year,
	})
	return nil
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// withMissingBasic replaces the zero-basic warning with the more specific
// missing-basic one.
func withMissingBasic(warnings []payroll.Warning, employeeID string) []payroll.Warning {
	out := make([]payroll.Warning, 0, len(warnings)+1)
	out = append(out, payroll.Warning{
		Code:       payroll.WarningMissingBasicSalary,
		EmployeeID: employeeID,
		Message:    "basic salary is not set, computed with zero",
	})
	for _, w := range warnings {
		if w.Code != payroll.WarningZeroBasicSalary {
			out = append(out, w)
		}
	}
	return out
}
