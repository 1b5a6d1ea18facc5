package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/period"
)

// RecomputeBatch implements payroll.PayrollService.
//
// Each employee is computed and stored in its own transaction. Per-employee
// failures become outcome entries; only validation and the eligibility
// query fail the whole call.
func (s *PayrollServiceImpl) RecomputeBatch(ctx context.Context, req payroll.BatchRequest) (payroll.BatchOutcome, error) {
	if req.RequiredDaysForBonus == 0 {
		req.RequiredDaysForBonus = s.requiredDays
	}
	if err := req.Validate(); err != nil {
		return payroll.BatchOutcome{}, err
	}

	p := period.New(req.Month, req.Year)
	outcome := payroll.BatchOutcome{
		Month:        req.Month,
		Year:         req.Year,
		DepartmentID: req.DepartmentID,
		StartedAt:    time.Now(),
	}

	employees, err := s.employeeRepo.ListEligibleForPayroll(ctx, p.FirstDay(), p.LastDay(), req.DepartmentID)
	if err != nil {
		return payroll.BatchOutcome{}, fmt.Errorf("failed to list eligible employees: %w", err)
	}
	outcome.Eligible = len(employees)

	for _, emp := range employees {
		entries, err := s.recomputeEmployee(ctx, emp, req)
		outcome.Entries = append(outcome.Entries, entries...)
		if err != nil {
			outcome.ErrorCount++
			outcome.Entries = append(outcome.Entries, payroll.BatchEntry{
				Kind:         payroll.BatchEntryError,
				EmployeeID:   emp.ID,
				EmployeeName: emp.FullName,
				Message:      err.Error(),
			})
			slog.WarnContext(ctx, "payroll recompute failed for employee",
				"employee_id", emp.ID, "period", p.Key(), "error", err)
			continue
		}
		outcome.SuccessCount++
	}
	outcome.FinishedAt = time.Now()

	entityID := p.Key()
	if req.DepartmentID != nil {
		entityID += ":" + *req.DepartmentID
	}
	s.recorder.Record(ctx, audit.ActionPayrollBatch, audit.EntitySalaryBatch, entityID, map[string]any{
		"month":                   req.Month,
		"year":                    req.Year,
		"department_id":           req.DepartmentID,
		"required_days_for_bonus": req.RequiredDaysForBonus,
		"eligible":                outcome.Eligible,
		"success_count":           outcome.SuccessCount,
		"error_count":             outcome.ErrorCount,
		"warning_count":           len(outcome.Warnings()),
	})

	slog.InfoContext(ctx, "payroll batch finished",
		"period", p.Key(),
		"eligible", outcome.Eligible,
		"success", outcome.SuccessCount,
		"errors", outcome.ErrorCount,
		"duration", outcome.FinishedAt.Sub(outcome.StartedAt),
	)

	return outcome, nil
}

// recomputeEmployee returns the warning entries for emp and an error when
// its record could not be stored. Allowances, bonus, other deductions and
// notes of an existing record for the period are kept.
func (s *PayrollServiceImpl) recomputeEmployee(ctx context.Context, emp employee.Employee, req payroll.BatchRequest) ([]payroll.BatchEntry, error) {
	in := payroll.InputFromEmployee(emp, req.Month, req.Year, req.RequiredDaysForBonus)

	var notes *string
	existing, err := s.store.GetByEmployeePeriod(ctx, emp.ID, req.Month, req.Year)
	switch {
	case err == nil:
		in.CarryOver(existing)
		notes = existing.Notes
	case !errors.Is(err, payroll.ErrSalaryRecordNotFound):
		return nil, fmt.Errorf("failed to load existing salary record: %w", err)
	}

	res := s.calculator.Calculate(ctx, in)
	if emp.BasicSalary == nil {
		res.Warnings = withMissingBasic(res.Warnings, emp.ID)
	}

	entries := make([]payroll.BatchEntry, 0, len(res.Warnings))
	for _, w := range res.Warnings {
		entries = append(entries, payroll.BatchEntry{
			Kind:         payroll.BatchEntryWarning,
			EmployeeID:   emp.ID,
			EmployeeName: emp.FullName,
			Code:         string(w.Code),
			Message:      w.Message,
		})
	}

	record := res.ToSalaryRecord()
	record.Notes = notes
	if _, err := s.upsert(ctx, record); err != nil {
		return entries, err
	}
	return entries, nil
}
