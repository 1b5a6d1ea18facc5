package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cmlabs-hris/payroll-engine/internal/app"
	"github.com/cmlabs-hris/payroll-engine/internal/config"
	appHTTP "github.com/cmlabs-hris/payroll-engine/internal/handler/http"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/queue"
	notificationService "github.com/cmlabs-hris/payroll-engine/internal/service/notification"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("notifier stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	slog.SetDefault(appHTTP.Logger(appHTTP.RouterOptions{
		Env:      cfg.App.Env,
		Version:  version,
		LogLevel: cfg.SlogLevel(),
	}).With(slog.String("component", "notifier")))

	if !cfg.ServiceBus.Enabled() {
		return errors.New("SERVICEBUS_CONNECTION_STRING and SERVICEBUS_NOTIFICATION_QUEUE are required")
	}
	if !cfg.Messaging.Enabled() {
		return errors.New("messaging adapter is not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := app.OpenStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	// no publisher: the notifier must send, never re-queue
	services, err := app.NewServices(cfg, stores, nil)
	if err != nil {
		return err
	}

	consumer, err := queue.NewConsumer(cfg.ServiceBus.ConnectionString, cfg.ServiceBus.NotificationQueue, queue.ConsumerOptions{})
	if err != nil {
		return err
	}
	defer consumer.Close(context.Background())

	slog.Info("notifier running", app.Describe(cfg)...)
	return consumer.Run(ctx, func(ctx context.Context, body []byte) error {
		intent, err := notificationService.DecodeIntent(body)
		if err != nil {
			return err
		}
		return services.Notification.Deliver(ctx, intent)
	})
}
