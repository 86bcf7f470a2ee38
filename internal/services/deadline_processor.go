package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"finrep/internal/amqp"
	"finrep/internal/core"
	"finrep/internal/log"
)

// DeadlineProcessor scans the period snapshot and emits deadline notices:
// an "approaching" notice when a period's submission deadline falls inside
// the warn window, and a "closed" notice once the deadline has passed. Each
// notice fires at most once per period per process lifetime.
type DeadlineProcessor struct {
	service    *ReportService
	events     EventPublisher
	warnWindow time.Duration
	logger     *log.Logger
	nowFn      func() time.Time

	mu       sync.Mutex
	notified map[string]bool // period ID + notice kind
}

func NewDeadlineProcessor(service *ReportService, events EventPublisher, warnWindow time.Duration, logger *log.Logger) *DeadlineProcessor {
	return &DeadlineProcessor{
		service:    service,
		events:     events,
		warnWindow: warnWindow,
		logger:     logger,
		nowFn:      time.Now,
		notified:   make(map[string]bool),
	}
}

// Run scans on every tick until the context is cancelled.
func (d *DeadlineProcessor) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.logger.Info("deadline processor started", "interval", interval, "warn_window", d.warnWindow)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := d.Scan(ctx); err != nil {
				d.logger.Error("deadline scan failed", "error", err)
			}
		}
	}
}

// Scan runs a single pass over all periods.
func (d *DeadlineProcessor) Scan(ctx context.Context) error {
	periods, err := d.service.Periods(ctx)
	if err != nil {
		return fmt.Errorf("deadline scan: %w", err)
	}

	now := d.nowFn()
	for _, p := range periods {
		deadline := p.Deadline()
		if deadline.IsZero() {
			continue
		}

		switch {
		case now.After(deadline):
			d.notify(ctx, p, amqp.DeadlineClosed, now)
		case deadline.Sub(now) <= d.warnWindow:
			d.notify(ctx, p, amqp.DeadlineApproaching, now)
		}
	}
	return nil
}

func (d *DeadlineProcessor) notify(ctx context.Context, p core.ReportingPeriod, kind string, now time.Time) {
	key := p.ID + ":" + kind

	d.mu.Lock()
	seen := d.notified[key]
	if !seen {
		d.notified[key] = true
	}
	d.mu.Unlock()
	if seen {
		return
	}

	msg := amqp.NewReportEvent(amqp.EventDeadlineNotice, p.ID, p.MonthLabel)
	msg.NoticeKind = kind
	msg.DisplayStatus = core.DisplayStatus(p, now)

	if err := d.events.PublishReportEvent(ctx, msg); err != nil {
		// unmark so the next scan retries
		d.mu.Lock()
		delete(d.notified, key)
		d.mu.Unlock()
		d.logger.Error("failed to publish deadline notice",
			"kind", kind,
			log.FieldPeriodLabel, p.MonthLabel,
			"error", err)
		return
	}
	d.logger.Info("deadline notice published", "kind", kind, log.FieldPeriodLabel, p.MonthLabel)
}
