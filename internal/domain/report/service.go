package report

import (
	"context"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
)

// ReportService renders salary artifacts. Callers fetch the records.
type ReportService interface {
	RenderSalaryWorkbook(ctx context.Context, records []payroll.SalaryRecord) ([]byte, error)

	// RenderBatchPDF renders one table row per record plus a totals row.
	// month and year are optional and only used for the title.
	RenderBatchPDF(ctx context.Context, records []payroll.SalaryRecord, month, year *int, departmentName *string) ([]byte, error)

	RenderSalaryPDF(ctx context.Context, record payroll.SalaryRecord, variant NoticeVariant) ([]byte, error)
}
