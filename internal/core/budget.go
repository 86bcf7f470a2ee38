package core

// PeriodBudget is the roll-up for a single reporting period across the
// startup ledger and every project ledger.
type PeriodBudget struct {
	MonthLabel      string
	RecurringCents  int64
	OneTimeCents    int64
	TotalCents      int64
	ByFundingSource map[string]int64
}

// FundingStatus tracks one funding channel against its fixed cap.
// RemainingCents is always a magnitude; Overbudget flags the sign.
type FundingStatus struct {
	CapCents        int64
	CumulativeCents int64
	RemainingCents  int64
	Overbudget      bool
}

// BudgetView is the read-side projection over the whole period collection.
// It is computed on demand and never mutates the periods.
type BudgetView struct {
	PerPeriod  []PeriodBudget
	Cumulative map[string]int64
	Funding    map[string]FundingStatus
}

// ComputePeriodBudget sums all expense entries of one period.
func ComputePeriodBudget(p ReportingPeriod) PeriodBudget {
	pb := PeriodBudget{
		MonthLabel:      p.MonthLabel,
		ByFundingSource: make(map[string]int64),
	}
	addLedger := func(l Ledger) {
		for _, e := range l.Expenses {
			if e.Classification == Recurring {
				pb.RecurringCents += e.Amount.Cents
			} else {
				pb.OneTimeCents += e.Amount.Cents
			}
			pb.ByFundingSource[e.FundingSource] += e.Amount.Cents
		}
	}
	addLedger(p.StartupLedger)
	for _, l := range p.ProjectLedgers {
		addLedger(l)
	}
	pb.TotalCents = pb.RecurringCents + pb.OneTimeCents
	return pb
}

// ComputeBudgetView rolls up every period and checks cumulative spend per
// funding source against the caps table. Overbudget channels report the
// overrun as a positive remaining magnitude with the flag set, never clamped
// to zero.
func ComputeBudgetView(periods []ReportingPeriod, caps map[string]int64) BudgetView {
	view := BudgetView{
		PerPeriod:  make([]PeriodBudget, 0, len(periods)),
		Cumulative: make(map[string]int64),
		Funding:    make(map[string]FundingStatus),
	}
	for _, p := range periods {
		pb := ComputePeriodBudget(p)
		view.PerPeriod = append(view.PerPeriod, pb)
		for source, cents := range pb.ByFundingSource {
			view.Cumulative[source] += cents
		}
	}
	for source, capCents := range caps {
		used := view.Cumulative[source]
		fs := FundingStatus{CapCents: capCents, CumulativeCents: used}
		remaining := capCents - used
		if remaining < 0 {
			fs.Overbudget = true
			fs.RemainingCents = -remaining
		} else {
			fs.RemainingCents = remaining
		}
		view.Funding[source] = fs
	}
	return view
}
