package http

import (
	"time"

	"finrep/internal/core"
)

// JSON views of the domain types. Amounts travel as integer cents plus a
// pre-formatted major-unit string so clients never re-derive rounding.

type expenseView struct {
	ID             string `json:"id"`
	Item           string `json:"item"`
	AmountCents    int64  `json:"amount_cents"`
	Amount         string `json:"amount"`
	Classification string `json:"classification"`
	Category       string `json:"category"`
	FundingSource  string `json:"funding_source"`
	Periodicity    string `json:"periodicity,omitempty"`
	Date           string `json:"date"`
}

type milestoneView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Deadline    string `json:"deadline,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
}

type ledgerView struct {
	Highlights []string        `json:"highlights"`
	Risks      []string        `json:"risks"`
	Milestones []milestoneView `json:"milestones"`
	Expenses   []expenseView   `json:"expenses"`
}

type budgetSnapshotView struct {
	TotalCents    int64  `json:"total_cents"`
	UtilizedCents int64  `json:"utilized_cents"`
	Status        string `json:"status,omitempty"`
}

type periodView struct {
	ID              string                `json:"id"`
	MonthLabel      string                `json:"month_label"`
	Status          string                `json:"status"`
	DisplayStatus   string                `json:"display_status"`
	Deadline        string                `json:"deadline,omitempty"`
	Locked          bool                  `json:"locked"`
	StartupLedger   ledgerView            `json:"startup_ledger"`
	ProjectLedgers  map[string]ledgerView `json:"project_ledgers"`
	Budget          budgetSnapshotView    `json:"budget"`
	ReviewerRemarks string                `json:"reviewer_remarks,omitempty"`
}

type fundingStatusView struct {
	CapCents        int64 `json:"cap_cents"`
	CumulativeCents int64 `json:"cumulative_cents"`
	RemainingCents  int64 `json:"remaining_cents"`
	Overbudget      bool  `json:"overbudget"`
}

type periodBudgetView struct {
	MonthLabel      string           `json:"month_label"`
	RecurringCents  int64            `json:"recurring_cents"`
	OneTimeCents    int64            `json:"one_time_cents"`
	TotalCents      int64            `json:"total_cents"`
	ByFundingSource map[string]int64 `json:"by_funding_source"`
}

type budgetView struct {
	PerPeriod  []periodBudgetView           `json:"per_period"`
	Cumulative map[string]int64             `json:"cumulative_by_source"`
	Funding    map[string]fundingStatusView `json:"funding"`
}

const dateLayout = "2006-01-02"

func toExpenseView(e core.ExpenseEntry) expenseView {
	v := expenseView{
		ID:             e.ID,
		Item:           e.Item,
		AmountCents:    e.Amount.Cents,
		Amount:         formatAmount(e.Amount.Cents),
		Classification: string(e.Classification),
		Category:       e.Category,
		FundingSource:  e.FundingSource,
		Periodicity:    string(e.Periodicity),
	}
	if !e.Date.IsZero() {
		v.Date = e.Date.Format(dateLayout)
	}
	return v
}

func toLedgerView(l core.Ledger) ledgerView {
	v := ledgerView{
		Highlights: l.Highlights.Items(),
		Risks:      l.Risks.Items(),
		Milestones: make([]milestoneView, 0, len(l.Milestones)),
		Expenses:   make([]expenseView, 0, len(l.Expenses)),
	}
	for _, m := range l.Milestones {
		mv := milestoneView{
			ID:          m.ID,
			Title:       m.Title,
			Description: m.Description,
			Status:      m.Status,
		}
		if !m.Deadline.IsZero() {
			mv.Deadline = m.Deadline.Format(dateLayout)
		}
		v.Milestones = append(v.Milestones, mv)
	}
	for _, e := range l.Expenses {
		v.Expenses = append(v.Expenses, toExpenseView(e))
	}
	return v
}

func toPeriodView(p core.ReportingPeriod, now time.Time) periodView {
	v := periodView{
		ID:            p.ID,
		MonthLabel:    p.MonthLabel,
		Status:        string(p.Status),
		DisplayStatus: core.DisplayStatus(p, now),
		Locked:        core.IsLocked(p, now),
		StartupLedger: toLedgerView(p.StartupLedger),
		ProjectLedgers: make(map[string]ledgerView, len(p.ProjectLedgers)),
		Budget: budgetSnapshotView{
			TotalCents:    p.Budget.TotalCents,
			UtilizedCents: p.Budget.UtilizedCents,
			Status:        p.Budget.Status,
		},
		ReviewerRemarks: p.ReviewerRemarks,
	}
	if deadline := p.Deadline(); !deadline.IsZero() {
		v.Deadline = deadline.Format(time.RFC3339)
	}
	for id, ledger := range p.ProjectLedgers {
		v.ProjectLedgers[id] = toLedgerView(ledger)
	}
	return v
}

func toBudgetView(b core.BudgetView) budgetView {
	v := budgetView{
		PerPeriod:  make([]periodBudgetView, 0, len(b.PerPeriod)),
		Cumulative: b.Cumulative,
		Funding:    make(map[string]fundingStatusView, len(b.Funding)),
	}
	for _, pb := range b.PerPeriod {
		v.PerPeriod = append(v.PerPeriod, periodBudgetView{
			MonthLabel:      pb.MonthLabel,
			RecurringCents:  pb.RecurringCents,
			OneTimeCents:    pb.OneTimeCents,
			TotalCents:      pb.TotalCents,
			ByFundingSource: pb.ByFundingSource,
		})
	}
	for source, status := range b.Funding {
		v.Funding[source] = fundingStatusView{
			CapCents:        status.CapCents,
			CumulativeCents: status.CumulativeCents,
			RemainingCents:  status.RemainingCents,
			Overbudget:      status.Overbudget,
		}
	}
	return v
}
