package report

import (
	"strings"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

// ParseVariant defaults to the salary notice.
func ParseVariant(s string) (NoticeVariant, error) {
	if strings.TrimSpace(s) == "" {
		return VariantSalary, nil
	}
	v := NoticeVariant(strings.ToLower(strings.TrimSpace(s)))
	if !v.IsValid() {
		var errs validator.ValidationErrors
		errs.Add("variant", ErrInvalidVariant.Error())
		return "", errs
	}
	return v, nil
}

// Content types of rendered artifacts.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)
