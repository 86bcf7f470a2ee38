package core

import "testing"

func entry(id string, cents int64, class Classification, source string) ExpenseEntry {
	return ExpenseEntry{
		ID:             id,
		Item:           "item " + id,
		Amount:         Money{Cents: cents},
		Classification: class,
		Category:       DefaultCategory,
		FundingSource:  source,
	}
}

func TestComputePeriodBudget(t *testing.T) {
	p := ReportingPeriod{
		MonthLabel: "October 2023",
		StartupLedger: Ledger{Expenses: []ExpenseEntry{
			entry("a", 500_000, Recurring, "Incubation Grant"),
			entry("b", 120_000, OneTime, "Seed Support"),
		}},
		ProjectLedgers: map[string]Ledger{
			"proj-1": {Expenses: []ExpenseEntry{
				entry("c", 80_000, Recurring, "Incubation Grant"),
			}},
		},
	}

	pb := ComputePeriodBudget(p)
	if pb.RecurringCents != 580_000 {
		t.Fatalf("recurring = %d", pb.RecurringCents)
	}
	if pb.OneTimeCents != 120_000 {
		t.Fatalf("one-time = %d", pb.OneTimeCents)
	}
	if pb.TotalCents != 700_000 {
		t.Fatalf("total = %d", pb.TotalCents)
	}
	if pb.ByFundingSource["Incubation Grant"] != 580_000 {
		t.Fatalf("grant sum = %d", pb.ByFundingSource["Incubation Grant"])
	}
}

func TestComputeBudgetViewCumulative(t *testing.T) {
	periods := []ReportingPeriod{
		{MonthLabel: "October 2023", StartupLedger: Ledger{Expenses: []ExpenseEntry{
			entry("a", 100_000, Recurring, "Incubation Grant"),
		}}},
		{MonthLabel: "November 2023", StartupLedger: Ledger{Expenses: []ExpenseEntry{
			entry("b", 150_000, OneTime, "Incubation Grant"),
			entry("c", 30_000, OneTime, "Self-Funded"),
		}}},
	}
	caps := map[string]int64{"Incubation Grant": 200_000, "Self-Funded": 0}

	view := ComputeBudgetView(periods, caps)
	if view.Cumulative["Incubation Grant"] != 250_000 {
		t.Fatalf("cumulative grant = %d", view.Cumulative["Incubation Grant"])
	}

	grant := view.Funding["Incubation Grant"]
	if !grant.Overbudget {
		t.Fatalf("grant should be overbudget")
	}
	if grant.RemainingCents != 50_000 {
		t.Fatalf("overrun must be reported as a magnitude, got %d", grant.RemainingCents)
	}

	self := view.Funding["Self-Funded"]
	if !self.Overbudget || self.RemainingCents != 30_000 {
		t.Fatalf("self-funded status = %+v", self)
	}
}

// Changing one entry's amount must change the cumulative by exactly that delta.
func TestComputeBudgetViewDelta(t *testing.T) {
	mk := func(cents int64) []ReportingPeriod {
		return []ReportingPeriod{
			{MonthLabel: "October 2023", StartupLedger: Ledger{Expenses: []ExpenseEntry{
				entry("a", cents, Recurring, "Seed Support"),
				entry("b", 70_000, OneTime, "Seed Support"),
			}}},
		}
	}
	before := ComputeBudgetView(mk(10_000), nil)
	after := ComputeBudgetView(mk(12_500), nil)
	if diff := after.Cumulative["Seed Support"] - before.Cumulative["Seed Support"]; diff != 2_500 {
		t.Fatalf("delta = %d, want 2500", diff)
	}
}
