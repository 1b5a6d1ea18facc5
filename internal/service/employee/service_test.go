package employee

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	empID  = "11111111-1111-4111-8111-111111111111"
	deptID = "6f1c2d3e-4b5a-4c6d-8e7f-901a2b3c4d5e"
)

type fakeRepo struct {
	emps       map[string]employee.Employee
	depts      map[string]employee.Department
	hasPayroll map[string]bool
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	e, ok := f.emps[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeRepo) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f.emps {
		if filter.Status != nil && string(e.Status) != *filter.Status {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeRepo) ListEligibleForPayroll(ctx context.Context, from, to time.Time, departmentID *string) ([]employee.Employee, error) {
	return nil, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	if f.hasPayroll[id] {
		return employee.ErrEmployeeHasPayroll
	}
	delete(f.emps, id)
	return nil
}

func (f *fakeRepo) ListDepartments(ctx context.Context) ([]employee.Department, error) {
	var out []employee.Department
	for _, d := range f.depts {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeRepo) GetDepartmentByID(ctx context.Context, id string) (employee.Department, error) {
	d, ok := f.depts[id]
	if !ok {
		return employee.Department{}, employee.ErrDepartmentNotFound
	}
	return d, nil
}

func (f *fakeRepo) DeleteDepartment(ctx context.Context, id string) error {
	delete(f.depts, id)
	return nil
}

type countingRecorder struct{ n int }

func (c *countingRecorder) Record(ctx context.Context, action, entityType, entityID string, details any) {
	c.n++
}

func (c *countingRecorder) List(ctx context.Context, filter audit.Filter) ([]audit.EntryResponse, error) {
	return nil, nil
}

func newRepo() *fakeRepo {
	return &fakeRepo{
		emps: map[string]employee.Employee{
			empID: {ID: empID, FullName: "سارة", Status: employee.EmploymentStatusActive},
		},
		depts: map[string]employee.Department{
			deptID: {ID: deptID, Name: "الموارد البشرية", EmployeeCount: 1},
		},
		hasPayroll: map[string]bool{},
	}
}

func TestGetEmployee(t *testing.T) {
	t.Parallel()
	svc := NewEmployeeService(newRepo(), &countingRecorder{})

	got, err := svc.GetEmployee(context.Background(), empID)
	require.NoError(t, err)
	assert.Equal(t, "سارة", got.FullName)

	_, err = svc.GetEmployee(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestListEmployees_InvalidStatus(t *testing.T) {
	t.Parallel()
	svc := NewEmployeeService(newRepo(), &countingRecorder{})
	status := "retired"

	_, err := svc.ListEmployees(context.Background(), employee.EmployeeFilter{Status: &status})

	assert.Error(t, err)
}

func TestDeleteEmployee_RefusedWithPayroll(t *testing.T) {
	t.Parallel()
	repo := newRepo()
	repo.hasPayroll[empID] = true
	rec := &countingRecorder{}
	svc := NewEmployeeService(repo, rec)

	err := svc.DeleteEmployee(context.Background(), empID)

	assert.ErrorIs(t, err, employee.ErrEmployeeHasPayroll)
	assert.Zero(t, rec.n)
}

func TestDeleteEmployee(t *testing.T) {
	t.Parallel()
	rec := &countingRecorder{}
	svc := NewEmployeeService(newRepo(), rec)

	require.NoError(t, svc.DeleteEmployee(context.Background(), empID))
	assert.Equal(t, 1, rec.n)
}

func TestDeleteDepartment_RefusedWhenNotEmpty(t *testing.T) {
	t.Parallel()
	svc := NewEmployeeService(newRepo(), &countingRecorder{})

	err := svc.DeleteDepartment(context.Background(), deptID)

	assert.ErrorIs(t, err, employee.ErrDepartmentNotEmpty)
}

func TestDeleteDepartment_Empty(t *testing.T) {
	t.Parallel()
	repo := newRepo()
	d := repo.depts[deptID]
	d.EmployeeCount = 0
	repo.depts[deptID] = d
	svc := NewEmployeeService(repo, &countingRecorder{})

	require.NoError(t, svc.DeleteDepartment(context.Background(), deptID))

	depts, err := svc.ListDepartments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, depts)
}

func TestGetDepartment(t *testing.T) {
	t.Parallel()
	svc := NewEmployeeService(newRepo(), &countingRecorder{})

	got, err := svc.GetDepartment(context.Background(), deptID)
	require.NoError(t, err)
	assert.Equal(t, "الموارد البشرية", got.Name)

	_, err = svc.GetDepartment(context.Background(), "hr")
	assert.ErrorIs(t, err, employee.ErrDepartmentNotFound)
}
