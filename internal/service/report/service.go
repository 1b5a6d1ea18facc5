package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/report"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/pdf"
)

// Options configures rendering.
type Options struct {
	Company         report.CompanyInfo
	FontDir         string
	FontRegular     string
	FontBold        string
	SpreadsheetFont string
	ColumnPadding   float64
}

type ReportServiceImpl struct {
	fonts    *pdf.FontSource
	opts     Options
	recorder audit.Recorder
	now      func() time.Time
}

func NewReportService(opts Options, recorder audit.Recorder) report.ReportService {
	return &ReportServiceImpl{
		fonts:    pdf.NewFontSource(opts.FontDir, opts.FontRegular, opts.FontBold),
		opts:     opts,
		recorder: recorder,
		now:      time.Now,
	}
}

// RenderSalaryWorkbook implements report.ReportService.
func (s *ReportServiceImpl) RenderSalaryWorkbook(ctx context.Context, records []payroll.SalaryRecord) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := buildWorkbookData(records, s.opts.Company, s.now())
	w := newWorkbookWriter(data, s.opts.SpreadsheetFont, s.opts.ColumnPadding)
	defer w.Close()

	out, err := w.Render()
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "salary workbook rendered",
		"records", len(records), "departments", len(data.Groups), "bytes", len(out))
	return out, nil
}

// RenderBatchPDF implements report.ReportService.
func (s *ReportServiceImpl) RenderBatchPDF(ctx context.Context, records []payroll.SalaryRecord, month, year *int, departmentName *string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fonts, err := s.loadFonts()
	if err != nil {
		return nil, err
	}

	data := buildBatchData(records, s.opts.Company, month, year, departmentName, s.now())
	out, stats, err := renderBatchPDF(data, fonts)
	if err != nil {
		return nil, err
	}

	for _, f := range stats.Failed {
		slog.WarnContext(ctx, "salary row rendered as placeholder",
			"salary_id", f.Record.ID, "employee_id", f.Record.EmployeeID, "error", f.Err)
		s.recorder.Record(ctx, audit.ActionReportRowFailed, audit.EntitySalaryRecord, f.Record.ID, map[string]any{
			"report":      "batch_pdf",
			"employee_id": f.Record.EmployeeID,
			"error":       f.Err.Error(),
		})
	}

	slog.InfoContext(ctx, "salary batch pdf rendered",
		"rows", stats.DataRows, "failed_rows", len(stats.Failed), "pages", stats.Pages)
	return out, nil
}

// RenderSalaryPDF implements report.ReportService.
func (s *ReportServiceImpl) RenderSalaryPDF(ctx context.Context, record payroll.SalaryRecord, variant report.NoticeVariant) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !variant.IsValid() {
		return nil, report.ErrInvalidVariant
	}

	fonts, err := s.loadFonts()
	if err != nil {
		return nil, err
	}

	return renderNotice(buildNotice(record, variant, s.opts.Company, s.now()), fonts)
}

func (s *ReportServiceImpl) loadFonts() (*pdf.FontSet, error) {
	fonts, err := s.fonts.Load()
	if err != nil {
		var missing *pdf.MissingFontError
		if errors.As(err, &missing) {
			return nil, &report.AssetMissingError{Path: missing.Path}
		}
		return nil, fmt.Errorf("failed to load fonts: %w", err)
	}
	return fonts, nil
}
