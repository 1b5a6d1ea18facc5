package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/notification"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/report"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type NotificationHandler interface {
	Dispatch(w http.ResponseWriter, r *http.Request)
	DispatchBatch(w http.ResponseWriter, r *http.Request)
}

type notificationHandlerImpl struct {
	notificationService notification.NotificationService
}

func NewNotificationHandler(notificationService notification.NotificationService) NotificationHandler {
	return &notificationHandlerImpl{notificationService: notificationService}
}

// Dispatch handles POST /payroll/salaries/{id}/notify?variant=salary|deduction.
// A rejected send is still a 200 with ok=false and the adapter message.
func (h *notificationHandlerImpl) Dispatch(w http.ResponseWriter, r *http.Request) {
	variant, err := report.ParseVariant(r.URL.Query().Get("variant"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.notificationService.Dispatch(r.Context(), chi.URLParam(r, "id"), variant)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, notification.ToDispatchResponse(result))
}

// DispatchBatch handles POST /payroll/notifications
func (h *notificationHandlerImpl) DispatchBatch(w http.ResponseWriter, r *http.Request) {
	var req notification.BatchDispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	outcome, err := h.notificationService.DispatchBatch(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, notification.ToBatchOutcomeResponse(outcome))
}
