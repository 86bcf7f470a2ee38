package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finrep/internal/amqp"
	"finrep/internal/core"
	"finrep/internal/export"
	"finrep/internal/services"
)

// ExportWorker keeps the external budget sheet in sync with the engine. It
// recomputes the full budget view on every report event and on a periodic
// tick, so a missed event heals on the next interval.
type ExportWorker struct {
	reports  *services.ReportService
	exporter export.BudgetExporter
}

func NewExportWorker(reports *services.ReportService, exporter export.BudgetExporter) *ExportWorker {
	return &ExportWorker{
		reports:  reports,
		exporter: exporter,
	}
}

// HandleReportEvent processes a single report event from AMQP.
func (w *ExportWorker) HandleReportEvent(ctx context.Context, msg *amqp.ReportEventMessage) error {
	slog.InfoContext(ctx, "Processing report event",
		"type", msg.Type,
		"period_label", msg.MonthLabel,
		"clone_count", msg.CloneCount)

	// Deadline notices carry no ledger change
	if msg.Type == amqp.EventDeadlineNotice {
		return nil
	}

	return w.export(ctx)
}

// RunPeriodic re-exports on every tick until the context is cancelled.
func (w *ExportWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Periodic budget export started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.export(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic budget export failed", "error", err)
			}
		}
	}
}

func (w *ExportWorker) export(ctx context.Context) error {
	view, err := w.reports.BudgetView(ctx)
	if err != nil {
		return fmt.Errorf("compute budget view: %w", err)
	}

	ref, err := w.exporter.ExportBudget(ctx, view)
	if err != nil {
		return fmt.Errorf("export budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget export complete",
		"sheets_ref", ref,
		"periods", len(view.PerPeriod),
		"cumulative_sources", len(view.Cumulative))
	return nil
}

// Snapshot returns the current view without exporting, for readiness probes.
func (w *ExportWorker) Snapshot(ctx context.Context) (core.BudgetView, error) {
	return w.reports.BudgetView(ctx)
}
