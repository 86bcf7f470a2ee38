package export

import (
	"context"

	"finrep/internal/core"
)

// BudgetExporter pushes the aggregated budget view to an external surface
// reviewers can read without touching the engine.
type BudgetExporter interface {
	// ExportBudget replaces the previous export with the given view and
	// returns a reference to where it landed (sheet range, memory slot).
	ExportBudget(ctx context.Context, view core.BudgetView) (ref string, err error)
}
