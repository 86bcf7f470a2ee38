// Recurring-expense propagation.
//
// Each periodicity has its own eligibility gate over the month distance from
// the origin period. The gates are pure and registered in a lookup table so a
// new cadence only needs a new entry here.

package services

import (
	"fmt"

	"finrep/internal/core"

	"github.com/google/uuid"
)

// PropagationGate decides whether a recurring expense lands in a period that
// is monthsFromOrigin months after its origin. Callers only ask about
// strictly positive distances.
type PropagationGate interface {
	Eligible(monthsFromOrigin int) bool
}

// MonthlyGate accepts every later month.
type MonthlyGate struct{}

func (MonthlyGate) Eligible(int) bool { return true }

// QuarterlyGate accepts multiples of three months.
type QuarterlyGate struct{}

func (QuarterlyGate) Eligible(monthsFromOrigin int) bool {
	return monthsFromOrigin%3 == 0
}

// YearlyGate accepts multiples of twelve months.
type YearlyGate struct{}

func (YearlyGate) Eligible(monthsFromOrigin int) bool {
	return monthsFromOrigin%12 == 0
}

var propagationGates = map[core.Periodicity]PropagationGate{
	core.Monthly:   MonthlyGate{},
	core.Quarterly: QuarterlyGate{},
	core.Yearly:    YearlyGate{},
}

// GateFor returns the gate for a periodicity.
func GateFor(p core.Periodicity) (PropagationGate, error) {
	gate, ok := propagationGates[p]
	if !ok {
		return nil, fmt.Errorf("unknown periodicity: %s", p)
	}
	return gate, nil
}

// propagateRecurring inserts independent clones of entry into every
// qualifying later period, in the same scope the original lives in. The
// passed slice is the already-copied snapshot, so insertion happens in place.
//
// Propagation runs exactly once, at insertion time. Later edits or deletions
// of the original never touch the clones; that non-retroactivity is a
// deliberate simplification, not a bug.
//
// Returns the number of clones created. A later period without the target
// project scope is skipped: the scope is just not applicable there yet.
func propagateRecurring(entry core.ExpenseEntry, projectID string, periods []core.ReportingPeriod) (int, error) {
	if entry.Classification != core.Recurring {
		return 0, nil
	}
	gate, err := GateFor(entry.Periodicity)
	if err != nil {
		return 0, err
	}

	clones := 0
	for i := range periods {
		target := &periods[i]
		targetMonth, err := target.MonthIndex()
		if err != nil {
			// a period with an unparsable label cannot qualify
			continue
		}
		diff := targetMonth - entry.OriginMonth
		if diff <= 0 || !gate.Eligible(diff) {
			continue
		}

		clone := entry
		clone.ID = uuid.NewString()
		first := target.FirstDay()
		clone.Date = core.Date{Time: first}

		if projectID == "" {
			target.StartupLedger.Expenses = append(target.StartupLedger.Expenses, clone)
		} else {
			ledger, ok := target.ProjectLedgers[projectID]
			if !ok {
				continue
			}
			ledger.Expenses = append(ledger.Expenses, clone)
			target.ProjectLedgers[projectID] = ledger
		}
		clones++
	}
	return clones, nil
}
