package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
)

const (
	Recurring Classification = "recurring"
	OneTime   Classification = "one_time"
)

const (
	Monthly   Periodicity = "monthly"
	Quarterly Periodicity = "quarterly"
	Yearly    Periodicity = "yearly"
)

// DefaultCategory is the fallback category shared by both vocabularies.
const DefaultCategory = "Others"

type (
	// Status is the stored lifecycle state of a reporting period. Only these
	// two values are ever persisted; "Auto-Submitted" and "Reviewed" are
	// display-only derivations (see lifecycle.go).
	Status string

	Classification string

	Periodicity string
)

type (
	Date struct {
		time.Time
	}

	// ExpenseEntry is a single monetary record in a ledger. Clones created by
	// propagation are independent entries with their own ID; they inherit
	// OriginMonth from the original so the propagation rule stays anchored to
	// the true origin.
	ExpenseEntry struct {
		ID             string
		Item           string
		Amount         Money
		Classification Classification
		Category       string
		FundingSource  string
		Periodicity    Periodicity // meaningful only when Classification == Recurring
		OriginMonth    int         // absolute month index of the period of first creation
		Date           Date        // creation date for originals, first of month for clones
	}

	Milestone struct {
		ID          string
		Title       string
		Deadline    Date
		Description string
		Status      string
	}

	// Ledger groups the editable content attached to either the startup level
	// or one project level within a single reporting period.
	Ledger struct {
		Highlights PointList
		Risks      PointList
		Milestones []Milestone
		Expenses   []ExpenseEntry
	}

	// BudgetSnapshot is supplied by an external collaborator and only echoed
	// back for display. The engine never computes or updates it.
	BudgetSnapshot struct {
		TotalCents    int64
		UtilizedCents int64
		Status        string
	}

	// ReportingPeriod is one calendar month of bookkeeping. Periods are
	// provisioned externally, totally ordered by month, and never deleted by
	// the engine.
	ReportingPeriod struct {
		ID              string
		MonthLabel      string // e.g. "October 2023", unique
		Status          Status
		StartupLedger   Ledger
		ProjectLedgers  map[string]Ledger
		Budget          BudgetSnapshot
		ReviewerRemarks string
	}
)

// Milestone statuses. Stored as plain strings so external collaborators can
// extend the set without a schema change.
const (
	MilestonePending  = "pending"
	MilestoneAchieved = "achieved"
	MilestoneMissed   = "missed"
)

// Funding sources. A fixed enumerated set of channels expenses are tracked
// and capped against.
var FundingSources = []string{
	"Incubation Grant",
	"Innovation Fund",
	"Seed Support",
	"Self-Funded",
}

// Category vocabularies. Recurring and one-time expenses draw from disjoint
// sets, with DefaultCategory as the shared fallback.
var (
	RecurringCategories = []string{
		"Salaries",
		"Rent & Utilities",
		"Software Subscriptions",
		"Cloud Services",
		"Marketing",
		DefaultCategory,
	}

	OneTimeCategories = []string{
		"Equipment",
		"Legal & Compliance",
		"Product Development",
		"Travel & Events",
		DefaultCategory,
	}
)

var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrEmptyItem            = errors.New("empty expense item")
	ErrEmptyTitle           = errors.New("empty milestone title")
	ErrUnknownClassification = errors.New("unknown classification")
	ErrUnknownPeriodicity   = errors.New("unknown periodicity")
	ErrUnknownFundingSource = errors.New("unknown funding source")
)

// NewDate creates a Date from year, month, day at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (c Classification) Valid() bool {
	return c == Recurring || c == OneTime
}

func (p Periodicity) Valid() bool {
	switch p {
	case Monthly, Quarterly, Yearly:
		return true
	}
	return false
}

func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusSubmitted
}

// Categories returns the vocabulary for a classification.
func (c Classification) Categories() []string {
	if c == Recurring {
		return RecurringCategories
	}
	return OneTimeCategories
}

// NormalizeCategory maps a raw category onto the classification's vocabulary.
// Anything outside the vocabulary falls back to DefaultCategory, which is the
// same reset behavior the entry form applies when the classification switches.
func (c Classification) NormalizeCategory(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, known := range c.Categories() {
		if strings.EqualFold(known, raw) {
			return known
		}
	}
	return DefaultCategory
}

// ValidFundingSource reports whether s is one of the fixed funding channels.
func ValidFundingSource(s string) bool {
	for _, known := range FundingSources {
		if strings.EqualFold(known, strings.TrimSpace(s)) {
			return true
		}
	}
	return false
}

// CanonicalFundingSource returns the canonical spelling for s, or "" when s
// is not a known channel.
func CanonicalFundingSource(s string) string {
	for _, known := range FundingSources {
		if strings.EqualFold(known, strings.TrimSpace(s)) {
			return known
		}
	}
	return ""
}

func (e ExpenseEntry) Validate() error {
	if strings.TrimSpace(e.Item) == "" {
		return ErrEmptyItem
	}
	if e.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if !e.Classification.Valid() {
		return ErrUnknownClassification
	}
	if !ValidFundingSource(e.FundingSource) {
		return ErrUnknownFundingSource
	}
	if e.Classification == Recurring && !e.Periodicity.Valid() {
		return ErrUnknownPeriodicity
	}
	return nil
}

func (m Milestone) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// Clone returns a deep copy of the ledger. Expense and milestone slices are
// copied so mutations on the clone never leak into the receiver.
func (l Ledger) Clone() Ledger {
	out := Ledger{
		Highlights: l.Highlights,
		Risks:      l.Risks,
	}
	if len(l.Milestones) > 0 {
		out.Milestones = make([]Milestone, len(l.Milestones))
		copy(out.Milestones, l.Milestones)
	}
	if len(l.Expenses) > 0 {
		out.Expenses = make([]ExpenseEntry, len(l.Expenses))
		copy(out.Expenses, l.Expenses)
	}
	return out
}

// Clone returns a deep copy of the period, including every project ledger.
func (p ReportingPeriod) Clone() ReportingPeriod {
	out := p
	out.StartupLedger = p.StartupLedger.Clone()
	if p.ProjectLedgers != nil {
		out.ProjectLedgers = make(map[string]Ledger, len(p.ProjectLedgers))
		for id, l := range p.ProjectLedgers {
			out.ProjectLedgers[id] = l.Clone()
		}
	}
	return out
}

// ClonePeriods deep-copies a whole snapshot. All mutation goes through copies
// so a partially applied command is never observable.
func ClonePeriods(periods []ReportingPeriod) []ReportingPeriod {
	out := make([]ReportingPeriod, len(periods))
	for i, p := range periods {
		out[i] = p.Clone()
	}
	return out
}
