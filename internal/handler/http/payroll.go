package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Computation
	RecomputeBatch(w http.ResponseWriter, r *http.Request)
	ComputeSingle(w http.ResponseWriter, r *http.Request)

	// Salary records
	QuerySalaries(w http.ResponseWriter, r *http.Request)
	SalaryExists(w http.ResponseWriter, r *http.Request)
	GetSalary(w http.ResponseWriter, r *http.Request)
	UpsertSalary(w http.ResponseWriter, r *http.Request)
	DeleteSalary(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== COMPUTATION ==========

// RecomputeBatch handles POST /payroll/batches
func (h *payrollHandlerImpl) RecomputeBatch(w http.ResponseWriter, r *http.Request) {
	var req payroll.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	outcome, err := h.payrollService.RecomputeBatch(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll batch completed", payroll.ToBatchOutcomeResponse(outcome))
}

// ComputeSingle handles POST /payroll/compute. Nothing is stored.
func (h *payrollHandlerImpl) ComputeSingle(w http.ResponseWriter, r *http.Request) {
	var req payroll.ComputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.ComputeSingle(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, payroll.ToCalculationResponse(result))
}

// ========== SALARY RECORDS ==========

// QuerySalaries handles GET /payroll/salaries?month=&year=&employee_id=&department_id=
// The response carries the matching records and their summary.
func (h *payrollHandlerImpl) QuerySalaries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := payroll.ParseSalaryFilter(q.Get("month"), q.Get("year"), q.Get("employee_id"), q.Get("department_id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	records, err := h.payrollService.QuerySalaries(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	summary, err := h.payrollService.SummarizeSalaries(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, payroll.SalaryListResponse{
		Salaries: payroll.ToSalaryRecordResponses(records),
		Summary:  payroll.ToSalarySummaryResponse(summary),
	}, &response.Meta{TotalItems: int64(len(records))})
}

// SalaryExists handles GET /payroll/salaries/exists?employee_id=&month=&year=
func (h *payrollHandlerImpl) SalaryExists(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	employeeID, month, year, err := payroll.ParseExistsQuery(q.Get("employee_id"), q.Get("month"), q.Get("year"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	exists, err := h.payrollService.Exists(r.Context(), employeeID, month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, payroll.ExistsResponse{Exists: exists})
}

func (h *payrollHandlerImpl) GetSalary(w http.ResponseWriter, r *http.Request) {
	record, err := h.payrollService.GetSalary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, payroll.ToSalaryRecordResponse(record))
}

// UpsertSalary handles PUT /payroll/salaries. Net salary in the body is
// ignored and recomputed.
func (h *payrollHandlerImpl) UpsertSalary(w http.ResponseWriter, r *http.Request) {
	var req payroll.UpsertSalaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	record, err := h.payrollService.UpsertSalary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary record saved", payroll.ToSalaryRecordResponse(record))
}

func (h *payrollHandlerImpl) DeleteSalary(w http.ResponseWriter, r *http.Request) {
	if err := h.payrollService.DeleteSalary(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary record deleted", nil)
}
