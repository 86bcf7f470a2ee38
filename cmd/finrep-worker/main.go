package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"finrep/internal/amqp"
	"finrep/internal/cli"
	"finrep/internal/export"
	gsheet "finrep/internal/export/google"
	exportmem "finrep/internal/export/memory"
	applog "finrep/internal/log"
	"finrep/internal/services"
	"finrep/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting finrep-worker")

	store := cli.OpenStore(logger, cfg)
	defer store.Close()

	portal := cli.ProvisionFromPortal(context.Background(), logger, cfg, store)

	var exporter export.BudgetExporter
	if cfg.SheetsExportEnabled() {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets exporter", "error", err)
			os.Exit(1)
		}
		exporter = client
		logger.Info("Google Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		exporter = exportmem.New()
		logger.Info("Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided, recording in memory")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	reportLogger := applog.New(applog.Config{Component: applog.ComponentWorker})
	reports := services.NewReportService(store, nil, portal.FundingCaps(), reportLogger)
	exportWorker := worker.NewExportWorker(reports, exporter)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	// The consumer reacts to report events; the ticker heals missed ones.
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return amqpClient.ConsumeReportEvents(groupCtx, func(msg *amqp.ReportEventMessage) error {
			return exportWorker.HandleReportEvent(groupCtx, msg)
		})
	})
	group.Go(func() error {
		return exportWorker.RunPeriodic(groupCtx, cfg.ExportInterval)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
