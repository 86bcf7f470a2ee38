package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"finrep/internal/amqp"
	"finrep/internal/core"
	"finrep/internal/log"
	"finrep/internal/storage"
)

// EventPublisher emits report events to the bus. The AMQP client satisfies
// this; tests substitute an in-memory recorder.
type EventPublisher interface {
	PublishReportEvent(ctx context.Context, msg *amqp.ReportEventMessage) error
}

// ReportService ties the reducer to storage and the event bus. All mutation
// goes through Mutate: load the snapshot, apply the command, save the new
// snapshot, then publish. Publishing is best effort; a bus failure is logged
// and the persisted state stands.
type ReportService struct {
	store  storage.Store
	events EventPublisher
	caps   map[string]int64
	logger *log.Logger
	nowFn  func() time.Time
}

func NewReportService(store storage.Store, events EventPublisher, caps map[string]int64, logger *log.Logger) *ReportService {
	return &ReportService{
		store:  store,
		events: events,
		caps:   caps,
		logger: logger,
		nowFn:  time.Now,
	}
}

// Periods returns the full snapshot ordered by month.
func (s *ReportService) Periods(ctx context.Context) ([]core.ReportingPeriod, error) {
	periods, err := s.store.LoadPeriods(ctx)
	if err != nil {
		return nil, fmt.Errorf("load periods: %w", err)
	}
	sortPeriods(periods)
	return periods, nil
}

// Period returns a single period by ID or month label.
func (s *ReportService) Period(ctx context.Context, ref string) (core.ReportingPeriod, error) {
	periods, err := s.Periods(ctx)
	if err != nil {
		return core.ReportingPeriod{}, err
	}
	idx := findPeriod(periods, ref)
	if idx < 0 {
		return core.ReportingPeriod{}, fmt.Errorf("%w: %q", ErrPeriodNotFound, ref)
	}
	return periods[idx], nil
}

// Mutate applies one command and persists the result. The returned Outcome
// describes what changed.
func (s *ReportService) Mutate(ctx context.Context, cmd Command) (Outcome, error) {
	periods, err := s.store.LoadPeriods(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("load periods: %w", err)
	}
	sortPeriods(periods)

	now := s.nowFn()
	next, outcome, err := Apply(periods, cmd, now)
	if err != nil {
		return Outcome{}, err
	}

	if err := s.store.SavePeriods(ctx, next); err != nil {
		return Outcome{}, fmt.Errorf("save periods: %w", err)
	}

	s.publishOutcome(ctx, next, outcome, now)
	return outcome, nil
}

// BudgetView recomputes the aggregated budget from the current snapshot.
func (s *ReportService) BudgetView(ctx context.Context) (core.BudgetView, error) {
	periods, err := s.Periods(ctx)
	if err != nil {
		return core.BudgetView{}, err
	}
	return core.ComputeBudgetView(periods, s.caps), nil
}

func (s *ReportService) publishOutcome(ctx context.Context, periods []core.ReportingPeriod, outcome Outcome, now time.Time) {
	if s.events == nil || outcome.NoOp {
		return
	}

	var eventType string
	switch outcome.Command {
	case "submit":
		eventType = amqp.EventSubmitted
	case "add_expense":
		eventType = amqp.EventExpenseAdded
	case "remove_expense":
		eventType = amqp.EventExpenseRemoved
	default:
		eventType = amqp.EventLedgerUpdated
	}

	msg := amqp.NewReportEvent(eventType, outcome.PeriodID, outcome.MonthLabel)
	msg.EntryID = outcome.EntryID
	msg.CloneCount = outcome.Clones
	if idx := findPeriod(periods, outcome.PeriodID); idx >= 0 {
		msg.DisplayStatus = core.DisplayStatus(periods[idx], now)
	}

	if err := s.events.PublishReportEvent(ctx, msg); err != nil {
		s.logger.Error("failed to publish report event",
			"event", eventType,
			log.FieldPeriodLabel, outcome.MonthLabel,
			"error", err)
	}
}

func sortPeriods(periods []core.ReportingPeriod) {
	sort.SliceStable(periods, func(i, j int) bool {
		mi, erri := periods[i].MonthIndex()
		mj, errj := periods[j].MonthIndex()
		if erri != nil || errj != nil {
			return periods[i].MonthLabel < periods[j].MonthLabel
		}
		return mi < mj
	})
}
