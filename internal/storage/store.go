// Package storage persists the reporting snapshot.
//
// The engine mutates an in-memory snapshot and hands the whole thing back to
// a Store once per completed mutation. A write replaces the previous
// snapshot; there is no partial persistence, so a crash between mutation and
// save loses that one mutation in its entirety (at-most-once).
package storage

import (
	"context"

	"finrep/internal/core"
)

// Store is the snapshot persistence port with sqlite and in-memory adapters.
type Store interface {
	// LoadPeriods returns the full period collection ordered by month.
	LoadPeriods(ctx context.Context) ([]core.ReportingPeriod, error)

	// SavePeriods replaces the stored snapshot in a single transaction.
	SavePeriods(ctx context.Context, periods []core.ReportingPeriod) error

	Close() error
}
