package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finrep/internal/core"

	"github.com/google/uuid"
)

// ProvisionSpec describes the externally configured period range and project
// registry. Periods are provisioned once; the engine itself never creates or
// deletes them.
type ProvisionSpec struct {
	FromLabel string
	Months    int
	Projects  []ProvisionProject
}

// ProvisionProject is one registered project. A project's ledger exists only
// in periods at or after its start month; earlier periods simply have no
// scope for it.
type ProvisionProject struct {
	ID        string
	Name      string
	FromLabel string
}

// EnsureProvisioned seeds the store with one draft period per calendar month
// when it is empty. Returns true when seeding happened.
func EnsureProvisioned(ctx context.Context, store Store, spec ProvisionSpec) (bool, error) {
	existing, err := store.LoadPeriods(ctx)
	if err != nil {
		return false, fmt.Errorf("load periods: %w", err)
	}
	if len(existing) > 0 {
		return false, nil
	}

	periods, err := BuildPeriods(spec)
	if err != nil {
		return false, err
	}
	if err := store.SavePeriods(ctx, periods); err != nil {
		return false, fmt.Errorf("save provisioned periods: %w", err)
	}

	slog.InfoContext(ctx, "Provisioned reporting periods",
		"from", spec.FromLabel,
		"months", spec.Months,
		"projects", len(spec.Projects))
	return true, nil
}

// BuildPeriods expands a spec into draft periods with empty ledgers.
func BuildPeriods(spec ProvisionSpec) ([]core.ReportingPeriod, error) {
	if spec.Months < 1 {
		return nil, fmt.Errorf("provision spec: months must be at least 1, got %d", spec.Months)
	}
	year, month, err := core.ParseMonthLabel(spec.FromLabel)
	if err != nil {
		return nil, fmt.Errorf("provision spec: %w", err)
	}

	type projectStart struct {
		id   string
		from int
	}
	starts := make([]projectStart, 0, len(spec.Projects))
	for _, proj := range spec.Projects {
		from := core.AbsoluteMonth(year, month)
		if proj.FromLabel != "" {
			py, pm, err := core.ParseMonthLabel(proj.FromLabel)
			if err != nil {
				return nil, fmt.Errorf("provision spec, project %s: %w", proj.ID, err)
			}
			from = core.AbsoluteMonth(py, pm)
		}
		starts = append(starts, projectStart{id: proj.ID, from: from})
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	periods := make([]core.ReportingPeriod, 0, spec.Months)
	for i := 0; i < spec.Months; i++ {
		cur := first.AddDate(0, i, 0)
		idx := core.AbsoluteMonth(cur.Year(), cur.Month())
		p := core.ReportingPeriod{
			ID:             uuid.NewString(),
			MonthLabel:     core.FormatMonthLabel(cur.Year(), cur.Month()),
			Status:         core.StatusDraft,
			ProjectLedgers: make(map[string]core.Ledger),
		}
		for _, ps := range starts {
			if idx >= ps.from {
				p.ProjectLedgers[ps.id] = core.Ledger{}
			}
		}
		periods = append(periods, p)
	}
	return periods, nil
}
