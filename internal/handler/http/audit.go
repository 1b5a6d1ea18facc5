package http

import (
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
)

type AuditHandler interface {
	List(w http.ResponseWriter, r *http.Request)
}

type auditHandlerImpl struct {
	recorder audit.Recorder
}

func NewAuditHandler(recorder audit.Recorder) AuditHandler {
	return &auditHandlerImpl{recorder: recorder}
}

// List handles GET /audit?entity_type=&action=&limit=
func (h *auditHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := audit.ParseFilter(q.Get("entity_type"), q.Get("action"), q.Get("limit"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	entries, err := h.recorder.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, entries)
}
