package notification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/notification"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/report"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/storage"
)

// Config holds notification service configuration
type Config struct {
	Templates        Templates
	CountryPrefix    string
	ShareLinkBaseURL string
	ArtifactExpiry   time.Duration // default: 7 days
	WorkerCount      int           // default: 4
}

// SalaryReader is the slice of the salary repository dispatch needs.
type SalaryReader interface {
	GetByID(ctx context.Context, id string) (payroll.SalaryRecord, error)
	Query(ctx context.Context, filter payroll.SalaryFilter) ([]payroll.SalaryRecord, error)
}

type NotificationServiceImpl struct {
	salaries  SalaryReader
	reports   report.ReportService
	files     storage.FileStorage
	sender    notification.Sender
	publisher notification.Publisher
	recorder  audit.Recorder
	composer  *Composer
	config    Config
	now       func() time.Time
}

// NewNotificationService wires dispatch. A nil sender means no messaging
// account is configured and notices are returned as share links. A nil
// publisher sends inline instead of queueing.
func NewNotificationService(
	salaries SalaryReader,
	reports report.ReportService,
	files storage.FileStorage,
	sender notification.Sender,
	publisher notification.Publisher,
	recorder audit.Recorder,
	cfg Config,
) notification.NotificationService {
	if cfg.ArtifactExpiry == 0 {
		cfg.ArtifactExpiry = 7 * 24 * time.Hour
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}

	return &NotificationServiceImpl{
		salaries:  salaries,
		reports:   reports,
		files:     files,
		sender:    sender,
		publisher: publisher,
		recorder:  recorder,
		composer:  NewComposer(cfg.Templates, cfg.CountryPrefix, cfg.ShareLinkBaseURL),
		config:    cfg,
		now:       time.Now,
	}
}

// Dispatch implements notification.NotificationService.
func (s *NotificationServiceImpl) Dispatch(ctx context.Context, salaryID string, variant report.NoticeVariant) (notification.Result, error) {
	if !variant.IsValid() {
		return notification.Result{}, report.ErrInvalidVariant
	}

	rec, err := s.salaries.GetByID(ctx, salaryID)
	if err != nil {
		return notification.Result{}, err
	}

	res, err := s.dispatchRecord(ctx, rec, variant)
	if err != nil {
		return notification.Result{}, err
	}

	s.recorder.Record(ctx, audit.ActionNotificationSent, audit.EntitySalaryRecord, rec.ID, map[string]any{
		"variant": variant,
		"channel": res.Channel,
		"ok":      res.OK,
		"message": res.Message,
	})
	return res, nil
}

// DispatchBatch implements notification.NotificationService.
func (s *NotificationServiceImpl) DispatchBatch(ctx context.Context, req notification.BatchDispatchRequest) (notification.BatchOutcome, error) {
	if err := req.Validate(); err != nil {
		return notification.BatchOutcome{}, err
	}
	variant := req.NoticeVariant()

	records, err := s.salaries.Query(ctx, req.Filter())
	if err != nil {
		return notification.BatchOutcome{}, fmt.Errorf("failed to query salaries: %w", err)
	}

	results := make([]notification.Result, len(records))
	errs := make([]error, len(records))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(s.config.WorkerCount, max(len(records), 1)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = s.dispatchRecord(ctx, records[i], variant)
			}
		}()
	}
	for i := range records {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var outcome notification.BatchOutcome
	for i, rec := range records {
		res := results[i]
		if errs[i] != nil {
			res = notification.Result{SalaryID: rec.ID, EmployeeID: rec.EmployeeID, Message: errs[i].Error()}
		}
		outcome.Results = append(outcome.Results, res)

		if res.OK {
			outcome.SuccessCount++
			continue
		}
		outcome.FailureCount++
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("%s: %s", recipientLabel(rec), res.Message))
	}

	p := fmt.Sprintf("%04d-%02d", req.Year, req.Month)
	s.recorder.Record(ctx, audit.ActionNotificationSent, audit.EntityNotificationBatch, p, map[string]any{
		"variant":       variant,
		"department_id": req.DepartmentID,
		"success_count": outcome.SuccessCount,
		"failure_count": outcome.FailureCount,
	})

	slog.InfoContext(ctx, "notification batch finished",
		"period", p, "variant", variant,
		"success", outcome.SuccessCount, "failures", outcome.FailureCount)

	return outcome, nil
}

// Deliver implements notification.NotificationService.
func (s *NotificationServiceImpl) Deliver(ctx context.Context, intent notification.DispatchIntent) error {
	if s.sender == nil {
		return notification.ErrMessagingDisabled
	}
	if err := validateIntent(intent); err != nil {
		return err
	}
	return s.sender.Send(ctx, intent.Message())
}

// dispatchRecord returns an error only when the notice itself could not be
// produced; delivery problems are reported in the Result.
func (s *NotificationServiceImpl) dispatchRecord(ctx context.Context, rec payroll.SalaryRecord, variant report.NoticeVariant) (notification.Result, error) {
	res := notification.Result{SalaryID: rec.ID, EmployeeID: rec.EmployeeID}

	doc, err := s.reports.RenderSalaryPDF(ctx, rec, variant)
	if err != nil {
		return res, fmt.Errorf("failed to render notice: %w", err)
	}
	artifact, err := s.storeArtifact(ctx, rec, variant, doc)
	if err != nil {
		return res, err
	}
	res.Artifact = &artifact

	recipient, err := s.composer.Recipient(rec)
	if err != nil {
		res.Message = err.Error()
		return res, nil
	}
	res.Recipient = recipient

	if s.sender == nil {
		res.Channel = notification.ChannelShareLink
		res.ShareLink = s.composer.ShareLink(recipient, s.composer.Text(rec, variant, artifact.URL))
		res.OK = true
		res.Message = "share link composed"
		return res, nil
	}

	intent := s.composer.Intent(rec, variant, recipient, artifact.URL, s.now())

	if s.publisher != nil {
		err := s.publisher.Publish(ctx, intent)
		if err == nil {
			res.Channel = notification.ChannelQueued
			res.OK = true
			res.Message = "queued"
			return res, nil
		}
		slog.WarnContext(ctx, "failed to queue notification, sending inline",
			"salary_id", rec.ID, "error", err)
	}

	res.Channel = notification.ChannelMessaging
	if err := s.sender.Send(ctx, intent.Message()); err != nil {
		if !errors.Is(err, notification.ErrAdapterFailure) {
			err = &notification.AdapterError{Recipient: recipient, Body: err.Error()}
		}
		slog.WarnContext(ctx, "notification send failed", "salary_id", rec.ID, "error", err)
		res.Message = err.Error()
		return res, nil
	}

	res.OK = true
	res.Message = "sent"
	return res, nil
}

func (s *NotificationServiceImpl) storeArtifact(ctx context.Context, rec payroll.SalaryRecord, variant report.NoticeVariant, doc []byte) (notification.Artifact, error) {
	key, err := s.files.Upload(ctx, bytes.NewReader(doc), ArtifactPath(rec, variant), report.ContentTypePDF)
	if err != nil {
		return notification.Artifact{}, fmt.Errorf("failed to store notice: %w", err)
	}
	link, err := s.files.GetURL(ctx, key, s.config.ArtifactExpiry)
	if err != nil {
		return notification.Artifact{}, fmt.Errorf("failed to link notice: %w", err)
	}
	return notification.Artifact{Path: key, URL: link, Size: len(doc)}, nil
}

func recipientLabel(rec payroll.SalaryRecord) string {
	if rec.EmployeeName != "" {
		return rec.EmployeeName
	}
	return rec.EmployeeID
}
