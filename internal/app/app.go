// Package app wires configuration into stores and services for the
// binaries under cmd/.
package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/payroll-engine/internal/config"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/notification"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/report"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/messaging"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/storage"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/mysql"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/postgresql"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/sqlite"
	attendanceService "github.com/cmlabs-hris/payroll-engine/internal/service/attendance"
	auditService "github.com/cmlabs-hris/payroll-engine/internal/service/audit"
	employeeService "github.com/cmlabs-hris/payroll-engine/internal/service/employee"
	notificationService "github.com/cmlabs-hris/payroll-engine/internal/service/notification"
	payrollService "github.com/cmlabs-hris/payroll-engine/internal/service/payroll"
	reportService "github.com/cmlabs-hris/payroll-engine/internal/service/report"
)

// Stores are the repositories behind every service.
type Stores struct {
	Employees  employee.EmployeeRepository
	Attendance attendance.AttendanceRepository
	Salaries   payroll.SalaryStore
	Audit      audit.AuditRepository

	closers []func()
}

func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// OpenStores connects the primary store selected by DB_DRIVER and, when
// configured, the external MySQL attendance database.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	stores := &Stores{}

	switch cfg.Database.Driver {
	case "sqlite":
		db, err := sqlite.Open(cfg.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		stores.closers = append(stores.closers, func() { _ = db.Close() })
		stores.Employees = sqlite.NewEmployeeRepository(db)
		stores.Attendance = sqlite.NewAttendanceRepository(db)
		stores.Salaries = sqlite.NewSalaryStore(db)
		stores.Audit = sqlite.NewAuditRepository(db)
		slog.Info("using embedded store", "path", cfg.Database.SQLitePath)

	default:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.DefaultPoolOptions())
		if err != nil {
			return nil, err
		}
		stores.closers = append(stores.closers, db.Close)
		stores.Employees = postgresql.NewEmployeeRepository(db)
		stores.Attendance = postgresql.NewAttendanceRepository(db)
		stores.Salaries = postgresql.NewSalaryStore(db)
		stores.Audit = postgresql.NewAuditRepository(db)
		slog.Info("using postgres store", "host", cfg.Database.Host, "database", cfg.Database.Name)
	}

	if cfg.Attendance.Source == "mysql" {
		gdb, err := mysql.Open(mysql.Config{
			Host:     cfg.Attendance.MySQLHost,
			Port:     cfg.Attendance.MySQLPort,
			User:     cfg.Attendance.MySQLUser,
			Password: cfg.Attendance.MySQLPassword,
			Database: cfg.Attendance.MySQLDatabase,
		})
		if err != nil {
			stores.Close()
			return nil, err
		}
		if sqlDB, err := gdb.DB(); err == nil {
			stores.closers = append(stores.closers, func() { _ = sqlDB.Close() })
		}
		stores.Attendance = mysql.NewAttendanceRepository(gdb, cfg.Attendance.MySQLTable, nil)
		slog.Info("reading attendance from mysql", "host", cfg.Attendance.MySQLHost, "table", cfg.Attendance.MySQLTable)
	}

	return stores, nil
}

type Services struct {
	Recorder     audit.Recorder
	Attendance   attendance.AttendanceService
	Employee     employee.EmployeeService
	Payroll      payroll.PayrollService
	Report       report.ReportService
	Notification notification.NotificationService
	Storage      *storage.LocalStorage
}

// NewServices builds the service graph. publisher may be nil; dispatch then
// sends inline.
func NewServices(cfg *config.Config, stores *Stores, publisher notification.Publisher) (*Services, error) {
	baseURL := cfg.Storage.BaseURL
	if baseURL == "" && cfg.App.BaseURL != "" {
		baseURL = strings.TrimRight(cfg.App.BaseURL, "/") + "/files"
	}
	files, err := storage.NewLocalStorage(cfg.Storage.Root, baseURL)
	if err != nil {
		return nil, err
	}

	recorder := auditService.NewRecorder(stores.Audit)
	attendanceSvc := attendanceService.NewAttendanceService(stores.Attendance)

	gosi := payrollService.NewGOSICalculator(payroll.GOSIPolicy{
		CitizenRate:            cfg.GOSI.CitizenRate,
		NonCitizenHazardRate:   cfg.GOSI.NonCitizenHazardRate,
		WageCap:                cfg.GOSI.WageCap,
		DeductNonCitizenHazard: cfg.GOSI.DeductNonCitizenHazard,
	})
	calculator := payrollService.NewCalculator(attendanceSvc, gosi)
	payrollSvc := payrollService.NewPayrollService(stores.Salaries, stores.Employees, calculator, recorder, cfg.Payroll.RequiredDaysForBonus)

	reportSvc := reportService.NewReportService(reportService.Options{
		Company: report.CompanyInfo{
			Name:     cfg.Report.CompanyName,
			NameEn:   cfg.Report.CompanyNameEn,
			CRNumber: cfg.Report.CompanyCR,
		},
		FontDir:       cfg.Report.FontDir,
		FontRegular:   cfg.Report.FontRegular,
		FontBold:      cfg.Report.FontBold,
		ColumnPadding: cfg.Report.ColumnPadding,
	}, recorder)

	var sender notification.Sender
	if cfg.Messaging.Enabled() {
		sender = notificationService.NewMessagingSender(messaging.NewClient(messaging.Config{
			BaseURL:   cfg.Messaging.BaseURL,
			AccountID: cfg.Messaging.AccountID,
			AuthToken: cfg.Messaging.AuthToken,
			Sender:    cfg.Messaging.Sender,
			Timeout:   cfg.Messaging.Timeout,
		}))
	} else {
		slog.Warn("messaging adapter not configured; notifications fall back to share links")
	}

	notificationSvc := notificationService.NewNotificationService(stores.Salaries, reportSvc, files, sender, publisher, recorder, notificationService.Config{
		Templates: notificationService.Templates{
			Salary:    cfg.Messaging.SalaryTemplateID,
			Deduction: cfg.Messaging.DeductionTemplateID,
		},
		CountryPrefix:    cfg.Notification.CountryPrefix,
		ShareLinkBaseURL: cfg.Notification.ShareLinkBaseURL,
	})

	return &Services{
		Recorder:     recorder,
		Attendance:   attendanceSvc,
		Employee:     employeeService.NewEmployeeService(stores.Employees, recorder),
		Payroll:      payrollSvc,
		Report:       reportSvc,
		Notification: notificationSvc,
		Storage:      files,
	}, nil
}

// Describe summarizes the optional integrations for the startup log.
func Describe(cfg *config.Config) []any {
	return []any{
		"db_driver", cfg.Database.Driver,
		"attendance_source", cfg.Attendance.Source,
		"messaging", cfg.Messaging.Enabled(),
		"queue", cfg.ServiceBus.Enabled(),
		"auto_run_day", cfg.Payroll.AutoRunDay,
		"storage_root", cfg.Storage.Root,
	}
}
