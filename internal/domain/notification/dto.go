package notification

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/report"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

type BatchDispatchRequest struct {
	Month        int     `json:"month"`
	Year         int     `json:"year"`
	DepartmentID *string `json:"department_id,omitempty"`
	Variant      string  `json:"variant"`
}

func (r *BatchDispatchRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidMonth(r.Month) {
		errs.Add("month", "must be between 1 and 12")
	}
	if !validator.IsValidPayrollYear(r.Year, time.Now()) {
		errs.Add("year", "is out of range")
	}
	if r.DepartmentID != nil && !validator.IsValidUUID(*r.DepartmentID) {
		errs.Add("department_id", "must be a valid UUID")
	}
	if r.Variant != "" && !report.NoticeVariant(r.Variant).IsValid() {
		errs.Add("variant", report.ErrInvalidVariant.Error())
	}

	return errs.OrNil()
}

// NoticeVariant defaults to the salary notice.
func (r BatchDispatchRequest) NoticeVariant() report.NoticeVariant {
	if r.Variant == "" {
		return report.VariantSalary
	}
	return report.NoticeVariant(r.Variant)
}

func (r BatchDispatchRequest) Filter() payroll.SalaryFilter {
	month, year := r.Month, r.Year
	return payroll.SalaryFilter{Month: &month, Year: &year, DepartmentID: r.DepartmentID}
}

type DispatchResponse struct {
	SalaryID    string  `json:"salary_id"`
	OK          bool    `json:"ok"`
	Message     string  `json:"message"`
	Channel     Channel `json:"channel,omitempty"`
	ShareLink   *string `json:"share_link,omitempty"`
	ArtifactURL *string `json:"artifact_url,omitempty"`
}

func ToDispatchResponse(r Result) DispatchResponse {
	resp := DispatchResponse{
		SalaryID: r.SalaryID,
		OK:       r.OK,
		Message:  r.Message,
		Channel:  r.Channel,
	}
	if r.ShareLink != "" {
		link := r.ShareLink
		resp.ShareLink = &link
	}
	if r.Artifact != nil && r.Artifact.URL != "" {
		u := r.Artifact.URL
		resp.ArtifactURL = &u
	}
	return resp
}

type BatchOutcomeResponse struct {
	SuccessCount int                `json:"success_count"`
	FailureCount int                `json:"failure_count"`
	Errors       []string           `json:"errors"`
	Results      []DispatchResponse `json:"results"`
}

func ToBatchOutcomeResponse(o BatchOutcome) BatchOutcomeResponse {
	resp := BatchOutcomeResponse{
		SuccessCount: o.SuccessCount,
		FailureCount: o.FailureCount,
		Errors:       o.Errors,
		Results:      make([]DispatchResponse, 0, len(o.Results)),
	}
	if resp.Errors == nil {
		resp.Errors = []string{}
	}
	for _, r := range o.Results {
		resp.Results = append(resp.Results, ToDispatchResponse(r))
	}
	return resp
}
