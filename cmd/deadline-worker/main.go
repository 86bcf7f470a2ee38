package main

import (
	"context"
	"errors"
	"os"
	"time"

	"finrep/internal/amqp"
	"finrep/internal/cli"
	applog "finrep/internal/log"
	"finrep/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting deadline-worker",
		"interval", cfg.DeadlineCheckInterval,
		"warn_window", cfg.DeadlineWarnWindow)

	store := cli.OpenStore(logger, cfg)
	defer store.Close()

	portal := cli.ProvisionFromPortal(context.Background(), logger, cfg, store)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	deadlineLogger := applog.New(applog.Config{Component: applog.ComponentDeadline})
	reports := services.NewReportService(store, nil, portal.FundingCaps(), deadlineLogger)
	processor := services.NewDeadlineProcessor(reports, amqpClient, cfg.DeadlineWarnWindow, deadlineLogger)

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, nil)

	if err := processor.Run(ctx, cfg.DeadlineCheckInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Deadline processor stopped with error", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Deadline worker stopped gracefully")
}
