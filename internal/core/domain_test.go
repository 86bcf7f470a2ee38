package core

import (
	"testing"
	"time"
)

func TestExpenseEntryValidate(t *testing.T) {
	good := ExpenseEntry{
		ID:             "e1",
		Item:           "Cloud Hosting",
		Amount:         Money{Cents: 500_000},
		Classification: Recurring,
		Category:       "Cloud Services",
		FundingSource:  "Incubation Grant",
		Periodicity:    Monthly,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []ExpenseEntry{
		{Item: "  ", Amount: Money{Cents: 1}, Classification: OneTime, FundingSource: "Seed Support"},
		{Item: "x", Amount: Money{Cents: -1}, Classification: OneTime, FundingSource: "Seed Support"},
		{Item: "x", Amount: Money{Cents: 1}, Classification: "weird", FundingSource: "Seed Support"},
		{Item: "x", Amount: Money{Cents: 1}, Classification: OneTime, FundingSource: "Petty Cash"},
		{Item: "x", Amount: Money{Cents: 1}, Classification: Recurring, FundingSource: "Seed Support"}, // missing periodicity
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestNormalizeCategory(t *testing.T) {
	if got := Recurring.NormalizeCategory("cloud services"); got != "Cloud Services" {
		t.Fatalf("got %q", got)
	}
	// one-time vocabulary does not know recurring categories
	if got := OneTime.NormalizeCategory("Cloud Services"); got != DefaultCategory {
		t.Fatalf("got %q, want fallback", got)
	}
	if got := Recurring.NormalizeCategory(""); got != DefaultCategory {
		t.Fatalf("got %q, want fallback", got)
	}
}

func TestCanonicalFundingSource(t *testing.T) {
	if got := CanonicalFundingSource(" seed support "); got != "Seed Support" {
		t.Fatalf("got %q", got)
	}
	if got := CanonicalFundingSource("slush fund"); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}

func TestPeriodCloneIsDeep(t *testing.T) {
	orig := ReportingPeriod{
		ID:         "p1",
		MonthLabel: "October 2023",
		StartupLedger: Ledger{
			Highlights: PointList("one"),
			Expenses:   []ExpenseEntry{{ID: "e1", Item: "x", Amount: Money{Cents: 10}}},
		},
		ProjectLedgers: map[string]Ledger{
			"proj-1": {Expenses: []ExpenseEntry{{ID: "e2", Item: "y"}}},
		},
	}

	cp := orig.Clone()
	cp.StartupLedger.Expenses[0].Amount.Cents = 999
	cp.StartupLedger.Highlights = cp.StartupLedger.Highlights.Add("two")
	pl := cp.ProjectLedgers["proj-1"]
	pl.Expenses = append(pl.Expenses, ExpenseEntry{ID: "e3"})
	cp.ProjectLedgers["proj-1"] = pl

	if orig.StartupLedger.Expenses[0].Amount.Cents != 10 {
		t.Fatalf("clone mutation leaked into original expense")
	}
	if orig.StartupLedger.Highlights.Len() != 1 {
		t.Fatalf("clone mutation leaked into original point list")
	}
	if len(orig.ProjectLedgers["proj-1"].Expenses) != 1 {
		t.Fatalf("clone mutation leaked into original project ledger")
	}
}

func TestMilestoneValidate(t *testing.T) {
	m := Milestone{ID: "m1", Title: "MVP release", Deadline: NewDate(2023, time.November, 15)}
	if err := m.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Milestone{Title: "   "}).Validate(); err == nil {
		t.Fatalf("expected error for empty title")
	}
}
