package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finrep/internal/amqp"
	"finrep/internal/core"
	"finrep/internal/log"
	"finrep/internal/storage"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*amqp.ReportEventMessage
	fail   bool
}

func (r *recordingPublisher) PublishReportEvent(_ context.Context, msg *amqp.ReportEventMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return assert.AnError
	}
	r.events = append(r.events, msg)
	return nil
}

func (r *recordingPublisher) published() []*amqp.ReportEventMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*amqp.ReportEventMessage, len(r.events))
	copy(out, r.events)
	return out
}

func newTestService(t *testing.T, labels []string, pub EventPublisher) *ReportService {
	t.Helper()
	store := storage.NewMemoryStore()
	require.NoError(t, store.SavePeriods(context.Background(), testPeriods(t, labels)))
	svc := NewReportService(store, pub, map[string]int64{"Incubation Grant": 10_000_00}, log.New(log.DefaultConfig()))
	svc.nowFn = func() time.Time { return testNow }
	return svc
}

func TestMutatePersistsAndPublishes(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(t, []string{"October 2023", "November 2023"}, pub)

	outcome, err := svc.Mutate(context.Background(), AddExpense{
		PeriodRef: "October 2023",
		Input:     validExpenseInput(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Clones)

	periods, err := svc.Periods(context.Background())
	require.NoError(t, err)
	require.Len(t, periods[0].StartupLedger.Expenses, 1)
	require.Len(t, periods[1].StartupLedger.Expenses, 1)

	events := pub.published()
	require.Len(t, events, 1)
	assert.Equal(t, amqp.EventExpenseAdded, events[0].Type)
	assert.Equal(t, "October 2023", events[0].MonthLabel)
	assert.Equal(t, 1, events[0].CloneCount)
	assert.Equal(t, outcome.EntryID, events[0].EntryID)
}

func TestMutateRejectedCommandDoesNotPersistOrPublish(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(t, []string{"October 2023"}, pub)

	input := validExpenseInput()
	input.Amount = "abc"
	_, err := svc.Mutate(context.Background(), AddExpense{PeriodRef: "October 2023", Input: input})
	require.ErrorIs(t, err, core.ErrInvalidAmount)

	periods, err := svc.Periods(context.Background())
	require.NoError(t, err)
	assert.Empty(t, periods[0].StartupLedger.Expenses)
	assert.Empty(t, pub.published())
}

func TestMutateSubmitPublishesDisplayStatus(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(t, []string{"October 2023"}, pub)

	_, err := svc.Mutate(context.Background(), Submit{PeriodRef: "October 2023"})
	require.NoError(t, err)

	events := pub.published()
	require.Len(t, events, 1)
	assert.Equal(t, amqp.EventSubmitted, events[0].Type)
	assert.Equal(t, core.DisplaySubmitted, events[0].DisplayStatus)
}

func TestMutatePublishFailureIsNotFatal(t *testing.T) {
	pub := &recordingPublisher{fail: true}
	svc := newTestService(t, []string{"October 2023"}, pub)

	_, err := svc.Mutate(context.Background(), Submit{PeriodRef: "October 2023"})
	require.NoError(t, err, "a bus failure must not roll back the persisted state")

	periods, err := svc.Periods(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.StatusSubmitted, periods[0].Status)
}

func TestMutateWithoutPublisher(t *testing.T) {
	svc := newTestService(t, []string{"October 2023"}, nil)
	_, err := svc.Mutate(context.Background(), Submit{PeriodRef: "October 2023"})
	require.NoError(t, err)
}

func TestPeriodLookup(t *testing.T) {
	svc := newTestService(t, []string{"October 2023", "November 2023"}, nil)

	p, err := svc.Period(context.Background(), "November 2023")
	require.NoError(t, err)
	assert.Equal(t, "November 2023", p.MonthLabel)

	_, err = svc.Period(context.Background(), "March 2031")
	assert.ErrorIs(t, err, ErrPeriodNotFound)
}

func TestPeriodsAreSortedByMonth(t *testing.T) {
	store := storage.NewMemoryStore()
	// stored out of order
	require.NoError(t, store.SavePeriods(context.Background(),
		testPeriods(t, []string{"January 2024", "October 2023", "December 2023"})))
	svc := NewReportService(store, nil, nil, log.New(log.DefaultConfig()))

	periods, err := svc.Periods(context.Background())
	require.NoError(t, err)
	labels := []string{periods[0].MonthLabel, periods[1].MonthLabel, periods[2].MonthLabel}
	assert.Equal(t, []string{"October 2023", "December 2023", "January 2024"}, labels)
}

func TestBudgetViewUsesConfiguredCaps(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(t, []string{"October 2023"}, pub)

	input := validExpenseInput()
	input.Classification = "one_time"
	input.Category = "Equipment"
	input.Periodicity = ""
	input.Amount = "2500"
	_, err := svc.Mutate(context.Background(), AddExpense{PeriodRef: "October 2023", Input: input})
	require.NoError(t, err)

	view, err := svc.BudgetView(context.Background())
	require.NoError(t, err)
	require.Len(t, view.PerPeriod, 1)
	assert.Equal(t, int64(2500_00), view.PerPeriod[0].OneTimeCents)

	status, ok := view.Funding["Incubation Grant"]
	require.True(t, ok)
	assert.Equal(t, int64(10_000_00), status.CapCents)
	assert.Equal(t, int64(2500_00), status.CumulativeCents)
	assert.False(t, status.Overbudget)
}
