package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/notification"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/report"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var assetErr *report.AssetMissingError
	if errors.As(err, &assetErr) {
		slog.Error("report asset missing", "path", assetErr.Path)
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error: &ErrorDetail{
				Code:    "ASSET_MISSING",
				Message: "A required report asset is missing",
				Details: map[string]string{"path": assetErr.Path},
			},
		})
		return
	}

	switch {
	// Auth
	case errors.Is(err, jwt.ErrInvalidClaims):
		Unauthorized(w, "Invalid token")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound), errors.Is(err, payroll.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrDepartmentNotFound):
		NotFound(w, "Department not found")
	case errors.Is(err, employee.ErrEmployeeHasPayroll):
		Conflict(w, "Employee has payroll history and cannot be deleted")
	case errors.Is(err, employee.ErrDepartmentNotEmpty):
		Conflict(w, "Department still has employees")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrSalaryRecordNotFound):
		NotFound(w, "Salary record not found")
	case errors.Is(err, payroll.ErrSalaryRecordConflict):
		Conflict(w, "Salary record already exists for this period")

	// Notification domain errors
	case errors.Is(err, notification.ErrMissingPhone):
		ValidationError(w, map[string]string{"phone": notification.ErrMissingPhone.Error()})
	case errors.Is(err, notification.ErrMessagingDisabled):
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error: &ErrorDetail{
				Code:    "SERVICE_UNAVAILABLE",
				Message: "Messaging is not configured",
			},
		})
	case errors.Is(err, notification.ErrAdapterFailure):
		writeJSON(w, http.StatusBadGateway, Response{
			Success: false,
			Error: &ErrorDetail{
				Code:    "ADAPTER_FAILURE",
				Message: err.Error(),
			},
		})

	case errors.Is(err, report.ErrInvalidVariant):
		ValidationError(w, map[string]string{"variant": report.ErrInvalidVariant.Error()})

	case errors.Is(err, attendance.ErrAttendanceQueryFailed):
		slog.Error("attendance query failed", "error", err)
		InternalServerError(w, "Attendance data is unavailable")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
