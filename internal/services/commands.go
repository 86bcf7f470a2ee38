// Package services holds the mutation engine: commands, the pure reducer,
// recurring-expense propagation, and the orchestration around storage and the
// event bus.
package services

import (
	"errors"
	"time"
)

// PointKind selects one of the two point lists on a ledger.
type PointKind string

const (
	PointHighlights PointKind = "highlights"
	PointRisks      PointKind = "risks"
)

func (k PointKind) Valid() bool {
	return k == PointHighlights || k == PointRisks
}

// ExpenseInput is the raw expense form data. Amount stays a string until the
// reducer parses it; an unparsable amount rejects the whole mutation.
type ExpenseInput struct {
	Item           string
	Amount         string
	Classification string
	Category       string
	FundingSource  string
	Periodicity    string
}

// MilestoneInput is the raw milestone form data.
type MilestoneInput struct {
	Title       string
	Deadline    time.Time
	Description string
}

// Command is one mutation against the period collection. PeriodRef matches a
// period by ID or by month label.
type Command interface {
	commandName() string
}

type (
	AddExpense struct {
		PeriodRef string
		ProjectID string // empty for the startup-level ledger
		Input     ExpenseInput
	}

	RemoveExpense struct {
		PeriodRef string
		ProjectID string
		EntryID   string
	}

	AddPoint struct {
		PeriodRef string
		ProjectID string
		List      PointKind
		Text      string
	}

	RemovePoint struct {
		PeriodRef string
		ProjectID string
		List      PointKind
		Index     int
	}

	AddMilestone struct {
		PeriodRef string
		ProjectID string
		Input     MilestoneInput
	}

	RemoveMilestone struct {
		PeriodRef   string
		ProjectID   string
		MilestoneID string
	}

	Submit struct {
		PeriodRef string
	}
)

func (AddExpense) commandName() string      { return "add_expense" }
func (RemoveExpense) commandName() string   { return "remove_expense" }
func (AddPoint) commandName() string        { return "add_point" }
func (RemovePoint) commandName() string     { return "remove_point" }
func (AddMilestone) commandName() string    { return "add_milestone" }
func (RemoveMilestone) commandName() string { return "remove_milestone" }
func (Submit) commandName() string          { return "submit" }

// Outcome reports what a successful mutation did.
type Outcome struct {
	Command    string
	PeriodID   string
	MonthLabel string
	EntryID    string
	Milestone  string
	Clones     int
	NoOp       bool // e.g. adding an empty point
}

// Expected, user-facing failure modes. None of these are fatal; state is
// unchanged when they are returned.
var (
	ErrPeriodNotFound    = errors.New("reporting period not found")
	ErrScopeNotFound     = errors.New("project ledger not found in this period")
	ErrEntryNotFound     = errors.New("expense entry not found")
	ErrMilestoneNotFound = errors.New("milestone not found")
	ErrPeriodLocked      = errors.New("reporting period is locked: its submission deadline has passed")
	ErrPeriodFuture      = errors.New("reporting period has not started yet; it opens for editing on the first day of its month")
	ErrUnknownCommand    = errors.New("unknown command")
	ErrUnknownPointKind  = errors.New("unknown point list")
)
