package employee

import (
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type EmployeeFilter struct {
	Status       *string `json:"status,omitempty"`
	DepartmentID *string `json:"department_id,omitempty"`
	Search       *string `json:"search,omitempty"`
}

func (f EmployeeFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !EmploymentStatus(*f.Status).IsValid() {
		errs.Add("status", "must be one of active, inactive, on_leave, terminated")
	}
	if f.DepartmentID != nil && !validator.IsValidUUID(*f.DepartmentID) {
		errs.Add("department_id", "must be a valid UUID")
	}

	return errs.OrNil()
}

type DepartmentResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	ManagerID     *string `json:"manager_id,omitempty"`
	EmployeeCount int     `json:"employee_count"`
}

type EmployeeResponse struct {
	ID                        string               `json:"id"`
	EmployeeCode              string               `json:"employee_code"`
	NationalID                string               `json:"national_id"`
	FullName                  string               `json:"full_name"`
	JobTitle                  string               `json:"job_title"`
	Nationality               string               `json:"nationality"`
	ContractType              string               `json:"contract_type"`
	BasicSalary               *decimal.Decimal     `json:"basic_salary"`
	AttendanceBonus           decimal.Decimal      `json:"attendance_bonus"`
	ExcludeLeaveFromDeduction bool                 `json:"exclude_leave_from_deduction"`
	ExcludeSickFromDeduction  bool                 `json:"exclude_sick_from_deduction"`
	Status                    string               `json:"status"`
	PhoneNumber               string               `json:"phone_number"`
	Departments               []DepartmentResponse `json:"departments"`
}

func ToEmployeeResponse(e Employee) EmployeeResponse {
	depts := make([]DepartmentResponse, 0, len(e.Departments))
	for _, d := range e.Departments {
		depts = append(depts, ToDepartmentResponse(d))
	}
	return EmployeeResponse{
		ID:                        e.ID,
		EmployeeCode:              e.EmployeeCode,
		NationalID:                e.NationalID,
		FullName:                  e.FullName,
		JobTitle:                  e.JobTitle,
		Nationality:               e.Nationality,
		ContractType:              string(e.ContractType),
		BasicSalary:               e.BasicSalary,
		AttendanceBonus:           e.AttendanceBonus,
		ExcludeLeaveFromDeduction: e.ExcludeLeaveFromDeduction,
		ExcludeSickFromDeduction:  e.ExcludeSickFromDeduction,
		Status:                    string(e.Status),
		PhoneNumber:               e.PhoneNumber,
		Departments:               depts,
	}
}

func ToDepartmentResponse(d Department) DepartmentResponse {
	return DepartmentResponse{
		ID:            d.ID,
		Name:          d.Name,
		ManagerID:     d.ManagerID,
		EmployeeCount: d.EmployeeCount,
	}
}
