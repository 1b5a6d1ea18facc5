package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePayrollService struct {
	payroll.PayrollService
	requests []payroll.BatchRequest
	err      error
}

func (f *fakePayrollService) RecomputeBatch(_ context.Context, req payroll.BatchRequest) (payroll.BatchOutcome, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return payroll.BatchOutcome{}, f.err
	}
	return payroll.BatchOutcome{Month: req.Month, Year: req.Year, SuccessCount: 3}, nil
}

func TestPayrollJob_RunsPreviousMonthOnce(t *testing.T) {
	t.Parallel()

	// Arrange
	svc := &fakePayrollService{}
	job := NewPayrollJob(svc, 2, 30, nil)
	job.now = func() time.Time { return time.Date(2025, 1, 2, 1, 0, 0, 0, time.UTC) }

	// Act
	require.NoError(t, job.Run(context.Background()))
	require.NoError(t, job.Run(context.Background()))

	// Assert
	require.Len(t, svc.requests, 1)
	assert.Equal(t, payroll.BatchRequest{Month: 12, Year: 2024, RequiredDaysForBonus: 30}, svc.requests[0])
}

func TestPayrollJob_SkipsOtherDays(t *testing.T) {
	t.Parallel()
	svc := &fakePayrollService{}
	job := NewPayrollJob(svc, 5, 30, nil)
	job.now = func() time.Time { return time.Date(2024, 7, 4, 1, 0, 0, 0, time.UTC) }

	require.NoError(t, job.Run(context.Background()))

	assert.Empty(t, svc.requests)
}

func TestPayrollJob_FailureAllowsRetry(t *testing.T) {
	t.Parallel()
	svc := &fakePayrollService{err: errors.New("database down")}
	job := NewPayrollJob(svc, 1, 30, nil)
	job.now = func() time.Time { return time.Date(2024, 7, 1, 1, 0, 0, 0, time.UTC) }

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2024-06")

	svc.err = nil
	require.NoError(t, job.Run(context.Background()))
	assert.Len(t, svc.requests, 2)
}

func TestPayrollJob_Register(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		day  int
		want bool
	}{
		{name: "disabled", day: 0, want: false},
		{name: "first day", day: 1, want: true},
		{name: "day 28", day: 28, want: true},
		{name: "past day 28", day: 29, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewScheduler(nil)

			got := NewPayrollJob(&fakePayrollService{}, tt.day, 30, nil).Register(s)

			assert.Equal(t, tt.want, got)
			if tt.want {
				assert.Len(t, s.jobs, 1)
			} else {
				assert.Empty(t, s.jobs)
			}
		})
	}
}

func TestScheduler_RunOnce(t *testing.T) {
	t.Parallel()
	s := NewScheduler(nil)
	var calls []string
	s.AddJob("a", time.Hour, func(context.Context) error { calls = append(calls, "a"); return nil })
	s.AddJob("b", time.Hour, func(context.Context) error { calls = append(calls, "b"); return errors.New("boom") })
	s.AddJob("c", time.Hour, func(context.Context) error { calls = append(calls, "c"); return nil })

	s.RunOnce(context.Background())

	assert.Equal(t, []string{"a", "b", "c"}, calls)
}

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()
	s := NewScheduler(nil)
	ran := make(chan struct{}, 1)
	s.AddJob("tick", time.Hour, func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	s.Start()
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()
}
