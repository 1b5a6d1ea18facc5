package employee

import (
	"context"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	recorder     audit.Recorder
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository, recorder audit.Recorder) employee.EmployeeService {
	return &EmployeeServiceImpl{
		employeeRepo: employeeRepo,
		recorder:     recorder,
	}
}

func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	if !validator.IsValidUUID(id) {
		return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
	}

	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.ToEmployeeResponse(emp), nil
}

func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.EmployeeFilter) ([]employee.EmployeeResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	emps, err := s.employeeRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]employee.EmployeeResponse, 0, len(emps))
	for _, e := range emps {
		out = append(out, employee.ToEmployeeResponse(e))
	}
	return out, nil
}

// DeleteEmployee is refused by the repository while payroll history exists.
func (s *EmployeeServiceImpl) DeleteEmployee(ctx context.Context, id string) error {
	if !validator.IsValidUUID(id) {
		return employee.ErrEmployeeNotFound
	}

	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.employeeRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.recorder.Record(ctx, audit.ActionEmployeeDelete, audit.EntityEmployee, id, map[string]any{
		"employee_code": emp.EmployeeCode,
		"full_name":     emp.FullName,
	})
	return nil
}

func (s *EmployeeServiceImpl) ListDepartments(ctx context.Context) ([]employee.DepartmentResponse, error) {
	depts, err := s.employeeRepo.ListDepartments(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]employee.DepartmentResponse, 0, len(depts))
	for _, d := range depts {
		out = append(out, employee.ToDepartmentResponse(d))
	}
	return out, nil
}

func (s *EmployeeServiceImpl) GetDepartment(ctx context.Context, id string) (employee.DepartmentResponse, error) {
	if !validator.IsValidUUID(id) {
		return employee.DepartmentResponse{}, employee.ErrDepartmentNotFound
	}

	dept, err := s.employeeRepo.GetDepartmentByID(ctx, id)
	if err != nil {
		return employee.DepartmentResponse{}, err
	}
	return employee.ToDepartmentResponse(dept), nil
}

func (s *EmployeeServiceImpl) DeleteDepartment(ctx context.Context, id string) error {
	if !validator.IsValidUUID(id) {
		return employee.ErrDepartmentNotFound
	}

	dept, err := s.employeeRepo.GetDepartmentByID(ctx, id)
	if err != nil {
		return err
	}
	if dept.EmployeeCount > 0 {
		return employee.ErrDepartmentNotEmpty
	}

	if err := s.employeeRepo.DeleteDepartment(ctx, id); err != nil {
		return err
	}

	s.recorder.Record(ctx, audit.ActionDepartmentDelete, audit.EntityDepartment, id, map[string]any{
		"name": dept.Name,
	})
	return nil
}
