package payroll

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---- attendance ----

type stubAttendance struct {
	summaries map[string]*attendance.Summary
	err       error
	// none makes Summarize report no data at all.
	none bool
}

func (s *stubAttendance) Summarize(ctx context.Context, employeeID string, month, year int) (*attendance.Summary, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.none {
		return nil, nil
	}
	if sum, ok := s.summaries[employeeID]; ok {
		cp := *sum
		return &cp, nil
	}
	return &attendance.Summary{EmployeeID: employeeID, Month: month, Year: year, DaysInMonth: 30, Unrecorded: 30}, nil
}

func (s *stubAttendance) GetSummary(ctx context.Context, req attendance.SummaryRequest) (attendance.SummaryResponse, error) {
	return attendance.SummaryResponse{}, errors.New("not used")
}

func summary(present, absent, leave, sick, days int) *attendance.Summary {
	recorded := present + absent + leave + sick
	return &attendance.Summary{
		DaysInMonth: days,
		PresentDays: present,
		AbsentDays:  absent,
		LeaveDays:   leave,
		SickDays:    sick,
		Recorded:    recorded,
		Unrecorded:  days - recorded,
	}
}

// ---- employees ----

type fakeEmployees struct {
	byID map[string]employee.Employee
	err  error
}

func newFakeEmployees(emps ...employee.Employee) *fakeEmployees {
	f := &fakeEmployees{byID: map[string]employee.Employee{}}
	for _, e := range emps {
		f.byID[e.ID] = e
	}
	return f
}

func (f *fakeEmployees) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	e, ok := f.byID[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeEmployees) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, error) {
	return f.sorted(), nil
}

func (f *fakeEmployees) ListEligibleForPayroll(ctx context.Context, from, to time.Time, departmentID *string) ([]employee.Employee, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []employee.Employee
	for _, e := range f.sorted() {
		if departmentID != nil && !e.InDepartment(*departmentID) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEmployees) sorted() []employee.Employee {
	out := make([]employee.Employee, 0, len(f.byID))
	for _, e := range f.byID {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out
}

func (f *fakeEmployees) Delete(ctx context.Context, id string) error { return nil }
func (f *fakeEmployees) ListDepartments(ctx context.Context) ([]employee.Department, error) {
	return nil, nil
}
func (f *fakeEmployees) GetDepartmentByID(ctx context.Context, id string) (employee.Department, error) {
	return employee.Department{}, employee.ErrDepartmentNotFound
}
func (f *fakeEmployees) DeleteDepartment(ctx context.Context, id string) error { return nil }

// ---- salary store ----

type memStore struct {
	mu      sync.Mutex
	records map[string]payroll.SalaryRecord

	// conflictsLeft makes the next Upsert calls fail with a uniqueness conflict.
	conflictsLeft int
	failFor       map[string]error
	txCount       int
}

func newMemStore() *memStore {
	return &memStore{records: map[string]payroll.SalaryRecord{}, failFor: map[string]error{}}
}

func (m *memStore) WithinTx(ctx context.Context, fn func(repo payroll.SalaryRepository) error) error {
	m.mu.Lock()
	m.txCount++
	snapshot := make(map[string]payroll.SalaryRecord, len(m.records))
	for k, v := range m.records {
		snapshot[k] = v
	}
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.records = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) Upsert(ctx context.Context, r payroll.SalaryRecord) (payroll.SalaryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failFor[r.EmployeeID]; err != nil {
		return payroll.SalaryRecord{}, err
	}
	if m.conflictsLeft > 0 {
		m.conflictsLeft--
		return payroll.SalaryRecord{}, payroll.ErrSalaryRecordConflict
	}

	now := time.Now()
	for id, existing := range m.records {
		if existing.EmployeeID == r.EmployeeID && existing.Month == r.Month && existing.Year == r.Year {
			r.ID = id
			r.CreatedAt = existing.CreatedAt
			r.UpdatedAt = now
			m.records[id] = r
			return r, nil
		}
	}
	r.ID = uuid.NewString()
	r.CreatedAt, r.UpdatedAt = now, now
	m.records[r.ID] = r
	return r, nil
}

func (m *memStore) GetByID(ctx context.Context, id string) (payroll.SalaryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
	}
	return r, nil
}

func (m *memStore) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (payroll.SalaryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.EmployeeID == employeeID && r.Month == month && r.Year == year {
			return r, nil
		}
	}
	return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
}

func (m *memStore) Query(ctx context.Context, f payroll.SalaryFilter) ([]payroll.SalaryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []payroll.SalaryRecord
	for _, r := range m.records {
		if f.Month != nil && r.Month != *f.Month {
			continue
		}
		if f.Year != nil && r.Year != *f.Year {
			continue
		}
		if f.EmployeeID != nil && r.EmployeeID != *f.EmployeeID {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

func (m *memStore) Exists(ctx context.Context, employeeID string, month, year int) (bool, error) {
	_, err := m.GetByEmployeePeriod(ctx, employeeID, month, year)
	if errors.Is(err, payroll.ErrSalaryRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (m *memStore) Summarize(ctx context.Context, f payroll.SalaryFilter) (payroll.SalarySummary, error) {
	records, _ := m.Query(ctx, f)
	employees := map[string]bool{}
	s := payroll.SalarySummary{
		TotalBasic:      decimal.Zero,
		TotalAllowances: decimal.Zero,
		TotalBonus:      decimal.Zero,
		TotalDeductions: decimal.Zero,
		TotalNet:        decimal.Zero,
	}
	for _, r := range records {
		s.TotalBasic = s.TotalBasic.Add(r.BasicSalary)
		s.TotalAllowances = s.TotalAllowances.Add(r.Allowances)
		s.TotalBonus = s.TotalBonus.Add(r.Bonus).Add(r.AttendanceBonus)
		s.TotalDeductions = s.TotalDeductions.Add(r.Deductions)
		s.TotalNet = s.TotalNet.Add(r.NetSalary)
		employees[r.EmployeeID] = true
	}
	s.EmployeeCount = len(employees)
	return s, nil
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return payroll.ErrSalaryRecordNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *memStore) all() []payroll.SalaryRecord {
	out, _ := m.Query(context.Background(), payroll.SalaryFilter{})
	return out
}

// ---- audit ----

type recordedEntry struct {
	Action, EntityType, EntityID string
	Details                      any
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []recordedEntry
}

func (f *fakeRecorder) Record(ctx context.Context, action, entityType, entityID string, details any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, recordedEntry{action, entityType, entityID, details})
}

func (f *fakeRecorder) List(ctx context.Context, filter audit.Filter) ([]audit.EntryResponse, error) {
	return nil, nil
}

func (f *fakeRecorder) count(action string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.entries {
		if e.Action == action {
			n++
		}
	}
	return n
}

// ---- helpers ----

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func defaultGOSI() *GOSICalculator {
	return NewGOSICalculator(payroll.DefaultGOSIPolicy())
}
