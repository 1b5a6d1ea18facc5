package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/app"
	"github.com/cmlabs-hris/payroll-engine/internal/config"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/notification"
	appHTTP "github.com/cmlabs-hris/payroll-engine/internal/handler/http"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/queue"
	notificationService "github.com/cmlabs-hris/payroll-engine/internal/service/notification"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	routerOpts := appHTTP.RouterOptions{
		Env:            cfg.App.Env,
		Version:        version,
		AllowedOrigins: cfg.App.CORSAllowedOrigins,
		LogLevel:       cfg.SlogLevel(),
		ArtifactDir:    cfg.Storage.Root,
	}
	slog.SetDefault(appHTTP.Logger(routerOpts))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := app.OpenStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	var publisher notification.Publisher
	if cfg.ServiceBus.Enabled() {
		p, err := queue.NewPublisher(cfg.ServiceBus.ConnectionString, cfg.ServiceBus.NotificationQueue)
		if err != nil {
			return err
		}
		defer p.Close(context.Background())
		publisher = notificationService.NewQueuePublisher(p)
	}

	services, err := app.NewServices(cfg, stores, publisher)
	if err != nil {
		return err
	}

	scheduler := cron.NewScheduler(slog.Default())
	if cron.NewPayrollJob(services.Payroll, cfg.Payroll.AutoRunDay, cfg.Payroll.RequiredDaysForBonus, slog.Default()).Register(scheduler) {
		scheduler.Start()
		defer scheduler.Stop()
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	router := appHTTP.NewRouter(routerOpts, JWTService, appHTTP.Handlers{
		Payroll:      appHTTP.NewPayrollHandler(services.Payroll),
		Employee:     appHTTP.NewEmployeeHandler(services.Employee),
		Attendance:   appHTTP.NewAttendanceHandler(services.Attendance),
		Notification: appHTTP.NewNotificationHandler(services.Notification),
		Report:       appHTTP.NewReportHandler(services.Report, services.Payroll, services.Employee),
		Audit:        appHTTP.NewAuditHandler(services.Recorder),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server running", append([]any{"addr", server.Addr}, app.Describe(cfg)...)...)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	slog.Info("shutting down server")
	return server.Shutdown(shutdownCtx)
}
