package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
)

const payrollCheckInterval = time.Hour

// PayrollJob recomputes the previous month once, on the configured day of
// the month.
type PayrollJob struct {
	service      payroll.PayrollService
	runDay       int
	requiredDays int
	now          func() time.Time
	logger       *slog.Logger

	mu      sync.Mutex
	lastRun string
}

func NewPayrollJob(service payroll.PayrollService, runDay, requiredDays int, logger *slog.Logger) *PayrollJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &PayrollJob{
		service:      service,
		runDay:       runDay,
		requiredDays: requiredDays,
		now:          time.Now,
		logger:       logger,
	}
}

// Register adds the job to s. A run day of 0 leaves the scheduler untouched.
func (j *PayrollJob) Register(s *Scheduler) bool {
	if j.runDay < 1 || j.runDay > 28 {
		return false
	}
	s.AddJob("payroll_auto_run", payrollCheckInterval, j.Run)
	return true
}

func (j *PayrollJob) Run(ctx context.Context) error {
	now := j.now()
	if now.Day() != j.runDay {
		return nil
	}

	month, year := previousMonth(now)
	key := fmt.Sprintf("%04d-%02d", year, month)

	j.mu.Lock()
	if j.lastRun == key {
		j.mu.Unlock()
		return nil
	}
	j.lastRun = key
	j.mu.Unlock()

	outcome, err := j.service.RecomputeBatch(ctx, payroll.BatchRequest{
		Month:                month,
		Year:                 year,
		RequiredDaysForBonus: j.requiredDays,
	})
	if err != nil {
		// allow the next tick to retry
		j.mu.Lock()
		j.lastRun = ""
		j.mu.Unlock()
		return fmt.Errorf("scheduled payroll run for %s failed: %w", key, err)
	}

	j.logger.InfoContext(ctx, "scheduled payroll run finished",
		"period", key, "success", outcome.SuccessCount, "errors", outcome.ErrorCount)
	return nil
}

func previousMonth(t time.Time) (month, year int) {
	if t.Month() == time.January {
		return 12, t.Year() - 1
	}
	return int(t.Month()) - 1, t.Year()
}
