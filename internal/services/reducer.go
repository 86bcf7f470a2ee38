package services

import (
	"fmt"
	"strings"
	"time"

	"finrep/internal/core"

	"github.com/google/uuid"
)

// Apply runs one command against the period collection and returns a new
// collection. The input snapshot is never touched: the reducer deep-copies
// first, so callers holding the old slice keep a consistent view and a failed
// command changes nothing.
func Apply(periods []core.ReportingPeriod, cmd Command, now time.Time) ([]core.ReportingPeriod, Outcome, error) {
	next := core.ClonePeriods(periods)

	var ref string
	switch c := cmd.(type) {
	case AddExpense:
		ref = c.PeriodRef
	case RemoveExpense:
		ref = c.PeriodRef
	case AddPoint:
		ref = c.PeriodRef
	case RemovePoint:
		ref = c.PeriodRef
	case AddMilestone:
		ref = c.PeriodRef
	case RemoveMilestone:
		ref = c.PeriodRef
	case Submit:
		ref = c.PeriodRef
	default:
		return periods, Outcome{}, ErrUnknownCommand
	}

	idx := findPeriod(next, ref)
	if idx < 0 {
		return periods, Outcome{}, fmt.Errorf("%w: %q", ErrPeriodNotFound, ref)
	}
	period := &next[idx]

	if core.IsFuture(*period, now) {
		return periods, Outcome{}, ErrPeriodFuture
	}
	if core.IsLocked(*period, now) {
		return periods, Outcome{}, ErrPeriodLocked
	}

	outcome := Outcome{
		Command:    cmd.commandName(),
		PeriodID:   period.ID,
		MonthLabel: period.MonthLabel,
	}

	var err error
	switch c := cmd.(type) {
	case AddExpense:
		err = applyAddExpense(next, period, c, now, &outcome)
	case RemoveExpense:
		err = applyRemoveExpense(period, c)
	case AddPoint:
		err = applyAddPoint(period, c, &outcome)
	case RemovePoint:
		err = applyRemovePoint(period, c)
	case AddMilestone:
		err = applyAddMilestone(period, c, &outcome)
	case RemoveMilestone:
		err = applyRemoveMilestone(period, c)
	case Submit:
		period.Status = core.StatusSubmitted
	}
	if err != nil {
		return periods, Outcome{}, err
	}

	return next, outcome, nil
}

// findPeriod matches by ID first, then by month label.
func findPeriod(periods []core.ReportingPeriod, ref string) int {
	for i := range periods {
		if periods[i].ID == ref {
			return i
		}
	}
	for i := range periods {
		if strings.EqualFold(periods[i].MonthLabel, strings.TrimSpace(ref)) {
			return i
		}
	}
	return -1
}

// ledgerFor resolves the target scope. The empty project id addresses the
// startup-level ledger.
func ledgerFor(p *core.ReportingPeriod, projectID string) (core.Ledger, error) {
	if projectID == "" {
		return p.StartupLedger, nil
	}
	ledger, ok := p.ProjectLedgers[projectID]
	if !ok {
		return core.Ledger{}, fmt.Errorf("%w: %q", ErrScopeNotFound, projectID)
	}
	return ledger, nil
}

func storeLedger(p *core.ReportingPeriod, projectID string, l core.Ledger) {
	if projectID == "" {
		p.StartupLedger = l
	} else {
		p.ProjectLedgers[projectID] = l
	}
}

// buildExpense validates and normalizes the raw input into an entry owned by
// the given period. Amount parsing is strict; category falls back to the
// classification's default; periodicity defaults to monthly for recurring
// entries and is dropped for one-time ones.
func buildExpense(input ExpenseInput, originMonth int, now time.Time) (core.ExpenseEntry, error) {
	item := strings.TrimSpace(input.Item)
	if item == "" {
		return core.ExpenseEntry{}, core.ErrEmptyItem
	}

	cents, err := core.ParseDecimalToCents(input.Amount)
	if err != nil {
		return core.ExpenseEntry{}, err
	}

	classification := core.Classification(strings.ToLower(strings.TrimSpace(input.Classification)))
	if !classification.Valid() {
		return core.ExpenseEntry{}, core.ErrUnknownClassification
	}

	source := core.CanonicalFundingSource(input.FundingSource)
	if source == "" {
		return core.ExpenseEntry{}, core.ErrUnknownFundingSource
	}

	entry := core.ExpenseEntry{
		ID:             uuid.NewString(),
		Item:           item,
		Amount:         core.Money{Cents: cents},
		Classification: classification,
		Category:       classification.NormalizeCategory(input.Category),
		FundingSource:  source,
		OriginMonth:    originMonth,
		Date:           core.NewDate(now.Year(), now.Month(), now.Day()),
	}

	if classification == core.Recurring {
		periodicity := core.Periodicity(strings.ToLower(strings.TrimSpace(input.Periodicity)))
		if periodicity == "" {
			periodicity = core.Monthly
		}
		if !periodicity.Valid() {
			return core.ExpenseEntry{}, core.ErrUnknownPeriodicity
		}
		entry.Periodicity = periodicity
	}

	return entry, entry.Validate()
}

func applyAddExpense(all []core.ReportingPeriod, period *core.ReportingPeriod, c AddExpense, now time.Time, outcome *Outcome) error {
	originMonth, err := period.MonthIndex()
	if err != nil {
		return fmt.Errorf("period %s: %w", period.ID, err)
	}

	entry, err := buildExpense(c.Input, originMonth, now)
	if err != nil {
		return err
	}

	ledger, err := ledgerFor(period, c.ProjectID)
	if err != nil {
		return err
	}
	ledger.Expenses = append(ledger.Expenses, entry)
	storeLedger(period, c.ProjectID, ledger)

	outcome.EntryID = entry.ID

	if entry.Classification == core.Recurring {
		clones, err := propagateRecurring(entry, c.ProjectID, all)
		if err != nil {
			return err
		}
		outcome.Clones = clones
	}
	return nil
}

func applyRemoveExpense(period *core.ReportingPeriod, c RemoveExpense) error {
	ledger, err := ledgerFor(period, c.ProjectID)
	if err != nil {
		return err
	}
	for i, e := range ledger.Expenses {
		if e.ID == c.EntryID {
			ledger.Expenses = append(ledger.Expenses[:i], ledger.Expenses[i+1:]...)
			storeLedger(period, c.ProjectID, ledger)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrEntryNotFound, c.EntryID)
}

func applyAddPoint(period *core.ReportingPeriod, c AddPoint, outcome *Outcome) error {
	if !c.List.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPointKind, c.List)
	}
	ledger, err := ledgerFor(period, c.ProjectID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(c.Text) == "" {
		// empty text must not append an empty entry
		outcome.NoOp = true
		return nil
	}
	if c.List == PointHighlights {
		ledger.Highlights = ledger.Highlights.Add(c.Text)
	} else {
		ledger.Risks = ledger.Risks.Add(c.Text)
	}
	storeLedger(period, c.ProjectID, ledger)
	return nil
}

func applyRemovePoint(period *core.ReportingPeriod, c RemovePoint) error {
	if !c.List.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPointKind, c.List)
	}
	ledger, err := ledgerFor(period, c.ProjectID)
	if err != nil {
		return err
	}
	if c.List == PointHighlights {
		ledger.Highlights, err = ledger.Highlights.RemoveAt(c.Index)
	} else {
		ledger.Risks, err = ledger.Risks.RemoveAt(c.Index)
	}
	if err != nil {
		return err
	}
	storeLedger(period, c.ProjectID, ledger)
	return nil
}

func applyAddMilestone(period *core.ReportingPeriod, c AddMilestone, outcome *Outcome) error {
	ledger, err := ledgerFor(period, c.ProjectID)
	if err != nil {
		return err
	}
	m := core.Milestone{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(c.Input.Title),
		Description: strings.TrimSpace(c.Input.Description),
		Status:      core.MilestonePending,
	}
	if !c.Input.Deadline.IsZero() {
		m.Deadline = core.Date{Time: c.Input.Deadline.UTC()}
	}
	if err := m.Validate(); err != nil {
		return err
	}
	ledger.Milestones = append(ledger.Milestones, m)
	storeLedger(period, c.ProjectID, ledger)
	outcome.Milestone = m.ID
	return nil
}

func applyRemoveMilestone(period *core.ReportingPeriod, c RemoveMilestone) error {
	ledger, err := ledgerFor(period, c.ProjectID)
	if err != nil {
		return err
	}
	for i, m := range ledger.Milestones {
		if m.ID == c.MilestoneID {
			ledger.Milestones = append(ledger.Milestones[:i], ledger.Milestones[i+1:]...)
			storeLedger(period, c.ProjectID, ledger)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrMilestoneNotFound, c.MilestoneID)
}
