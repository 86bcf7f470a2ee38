package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"finrep/internal/amqp"
	"finrep/internal/cli"
	apphttp "finrep/internal/http"
	applog "finrep/internal/log"
	"finrep/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting finrep server", "port", cfg.Port, "backend", cfg.DataBackend)

	store := cli.OpenStore(logger, cfg)
	defer store.Close()

	portal := cli.ProvisionFromPortal(context.Background(), logger, cfg, store)

	// The event bus is optional; without it mutations still persist, they
	// just are not announced.
	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, running without event publishing", "error", err)
		} else {
			defer amqpClient.Close()
			events = amqpClient
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	reportLogger := applog.New(applog.Config{Component: applog.ComponentReport})
	reports := services.NewReportService(store, events, portal.FundingCaps(), reportLogger)

	srv := apphttp.NewServer(":"+cfg.Port, reports)
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
