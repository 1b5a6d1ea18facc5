package http

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/report"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ReportHandler interface {
	// Salary workbook (xlsx)
	SalaryWorkbook(w http.ResponseWriter, r *http.Request)

	// Batch salary report (pdf)
	BatchPDF(w http.ResponseWriter, r *http.Request)

	// Salary or deduction notice for one record (pdf)
	SalaryPDF(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService   report.ReportService
	payrollService  payroll.PayrollService
	employeeService employee.EmployeeService
}

func NewReportHandler(reportService report.ReportService, payrollService payroll.PayrollService, employeeService employee.EmployeeService) ReportHandler {
	return &reportHandlerImpl{
		reportService:   reportService,
		payrollService:  payrollService,
		employeeService: employeeService,
	}
}

func (h *reportHandlerImpl) queryRecords(r *http.Request) (payroll.SalaryFilter, []payroll.SalaryRecord, error) {
	q := r.URL.Query()
	filter, err := payroll.ParseSalaryFilter(q.Get("month"), q.Get("year"), q.Get("employee_id"), q.Get("department_id"))
	if err != nil {
		return payroll.SalaryFilter{}, nil, err
	}

	records, err := h.payrollService.QuerySalaries(r.Context(), filter)
	if err != nil {
		return payroll.SalaryFilter{}, nil, err
	}
	return filter, records, nil
}

// SalaryWorkbook handles GET /reports/salaries.xlsx
func (h *reportHandlerImpl) SalaryWorkbook(w http.ResponseWriter, r *http.Request) {
	filter, records, err := h.queryRecords(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	content, err := h.reportService.RenderSalaryWorkbook(r.Context(), records)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, report.ContentTypeXLSX, reportFilename("salaries", filter, "xlsx"), content)
}

// BatchPDF handles GET /reports/salaries.pdf
func (h *reportHandlerImpl) BatchPDF(w http.ResponseWriter, r *http.Request) {
	filter, records, err := h.queryRecords(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var departmentName *string
	if filter.DepartmentID != nil {
		dept, err := h.employeeService.GetDepartment(r.Context(), *filter.DepartmentID)
		if err != nil {
			response.HandleError(w, err)
			return
		}
		departmentName = &dept.Name
	}

	content, err := h.reportService.RenderBatchPDF(r.Context(), records, filter.Month, filter.Year, departmentName)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, report.ContentTypePDF, reportFilename("salaries", filter, "pdf"), content)
}

// SalaryPDF handles GET /payroll/salaries/{id}/pdf?variant=salary|deduction
func (h *reportHandlerImpl) SalaryPDF(w http.ResponseWriter, r *http.Request) {
	variant, err := report.ParseVariant(r.URL.Query().Get("variant"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	record, err := h.payrollService.GetSalary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	content, err := h.reportService.RenderSalaryPDF(r.Context(), record, variant)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	name := fmt.Sprintf("%s-%s-%04d-%02d.pdf", variant, record.EmployeeCode, record.Year, record.Month)
	response.File(w, report.ContentTypePDF, name, content)
}

func reportFilename(base string, f payroll.SalaryFilter, ext string) string {
	switch {
	case f.Year != nil && f.Month != nil:
		return fmt.Sprintf("%s-%04d-%02d.%s", base, *f.Year, *f.Month, ext)
	case f.Year != nil:
		return fmt.Sprintf("%s-%04d.%s", base, *f.Year, ext)
	default:
		return base + "." + ext
	}
}
