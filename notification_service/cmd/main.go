// Package main runs the notification service: it consumes email requests from NATS and mails them.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "net/http/pprof"

	"github.com/abgdnv/inventory/notification_service/internal/config"
	"github.com/abgdnv/inventory/notification_service/internal/mailer"
	"github.com/abgdnv/inventory/notification_service/internal/subscriber"
	"github.com/abgdnv/inventory/pkg/bootstrap"
	"github.com/abgdnv/inventory/pkg/config/configloader"
	"github.com/abgdnv/inventory/pkg/messaging"
	"github.com/abgdnv/inventory/pkg/nats"
	"github.com/abgdnv/inventory/pkg/probes"
	"github.com/abgdnv/inventory/pkg/telemetry"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

const serviceName = "notification"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run initializes the application, starts the NATS subscriber, and optionally starts the pprof server if enabled.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	telemetry.InstallPropagator()
	if cfg.Telemetry.TracingEnabled() {
		tp, err := telemetry.NewTracerProvider(ctx, serviceName, cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("failed to create tracer provider: %w", err)
		}
		defer shutdownWithTimeout(logger, "tracer provider", cfg.Shutdown.Timeout, tp.Shutdown)
	}
	if cfg.Telemetry.Metrics.Enabled {
		metrics, err := telemetry.NewMeterProvider(serviceName)
		if err != nil {
			return fmt.Errorf("failed to create meter provider: %w", err)
		}
		defer shutdownWithTimeout(logger, "meter provider", cfg.Shutdown.Timeout, metrics.Provider.Shutdown)
		// served next to pprof on the diagnostics listener
		http.Handle("/metrics", metrics.Handler)
	}

	natsConn, err := nats.NewClient(cfg.Nats)
	if err != nil {
		return fmt.Errorf("failed to create NATS connection: %w", err)
	}
	defer func() {
		if err := natsConn.Drain(); err != nil {
			logger.Warn("failed to drain NATS connection", "error", err)
		}
	}()
	js, err := nats.NewJetStreamContext(natsConn)
	if err != nil {
		return fmt.Errorf("failed to get JetStream context: %w", err)
	}
	streamCtx, cancel := context.WithTimeout(ctx, cfg.Nats.Timeout)
	defer cancel()
	if _, err := nats.EnsureStream(streamCtx, js, nats.StreamSpec{
		Name:       cfg.Subscriber.Stream,
		Subjects:   []string{messaging.NotificationsSubjects},
		MaxAge:     cfg.Stream.MaxAge,
		Duplicates: cfg.Stream.Duplicates,
	}); err != nil {
		return err
	}

	if !cfg.Mail.SMTP.Enabled() {
		logger.Warn("SMTP relay not configured, mails are logged only")
	}
	handler := subscriber.NewHandler(mailer.New(cfg.Mail.SMTP, logger), otel.Meter(serviceName), logger)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("NATS subscriber started", "stream", cfg.Subscriber.Stream, "consumer", cfg.Subscriber.Consumer)
		err := subscriber.Start(gCtx, js, cfg.Subscriber, handler)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("subscriber failed", "error", err)
			return err
		}
		logger.Info("subscriber stopped gracefully.")
		return nil
	})

	// file based probes, the service has no HTTP API
	g.Go(func() error {
		return probes.RunLiveness(gCtx, cfg.ProbesConfig, logger)
	})
	if err := probes.MarkReady(cfg.ProbesConfig); err != nil {
		return err
	}
	defer func() {
		if err := probes.MarkNotReady(cfg.ProbesConfig); err != nil {
			logger.Warn("failed to clear readiness", "error", err)
		}
	}()

	// Start the pprof server if enabled
	if cfg.PProf.Enabled {
		pprofServer := &http.Server{
			Addr:              cfg.PProf.Addr,
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("Pprof server listening", slog.String("addr", pprofServer.Addr))
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("pprof server failed: %w", err)
			}
			return nil
		})
		// gracefully shutdown pprof server on context cancellation
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down pprof server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			return pprofServer.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		if !errors.Is(err, context.Canceled) {
			return fmt.Errorf("errgroup encountered an error: %w", err)
		}
	}

	return nil
}

func shutdownWithTimeout(logger *slog.Logger, name string, timeout time.Duration, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Error("failed to shut down "+name, "error", err)
	}
}
