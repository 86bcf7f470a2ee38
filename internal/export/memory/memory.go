package memory

import (
	"context"
	"fmt"
	"sync"

	"finrep/internal/core"
	ports "finrep/internal/export"
)

// Exporter records budget exports in memory. Used when no spreadsheet is
// configured and by tests that assert on what was exported.
type Exporter struct {
	mu      sync.Mutex
	exports []core.BudgetView
}

var _ ports.BudgetExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{}
}

func (e *Exporter) ExportBudget(_ context.Context, view core.BudgetView) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.exports = append(e.exports, view)
	return fmt.Sprintf("mem:%d", len(e.exports)), nil
}

// Exports returns a copy of everything exported so far.
func (e *Exporter) Exports() []core.BudgetView {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]core.BudgetView, len(e.exports))
	copy(out, e.exports)
	return out
}

// Latest returns the most recent export, if any.
func (e *Exporter) Latest() (core.BudgetView, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.exports) == 0 {
		return core.BudgetView{}, false
	}
	return e.exports[len(e.exports)-1], true
}
