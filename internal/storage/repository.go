package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"finrep/internal/core"

	_ "modernc.org/sqlite"
)

const entryDateLayout = "2006-01-02"

// SQLiteRepository stores the snapshot in a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadPeriods reads the whole snapshot, ordered by calendar month.
func (r *SQLiteRepository) LoadPeriods(ctx context.Context) ([]core.ReportingPeriod, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, month_label, status, budget_total_cents, budget_utilized_cents, budget_status, reviewer_remarks
		FROM periods ORDER BY month_index`)
	if err != nil {
		return nil, fmt.Errorf("query periods: %w", err)
	}
	defer rows.Close()

	var periods []core.ReportingPeriod
	for rows.Next() {
		var p core.ReportingPeriod
		var status string
		if err := rows.Scan(&p.ID, &p.MonthLabel, &status,
			&p.Budget.TotalCents, &p.Budget.UtilizedCents, &p.Budget.Status,
			&p.ReviewerRemarks); err != nil {
			return nil, fmt.Errorf("scan period: %w", err)
		}
		p.Status = core.Status(status)
		p.ProjectLedgers = make(map[string]core.Ledger)
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate periods: %w", err)
	}

	for i := range periods {
		if err := r.loadLedgers(ctx, &periods[i]); err != nil {
			return nil, err
		}
	}

	return periods, nil
}

func (r *SQLiteRepository) loadLedgers(ctx context.Context, p *core.ReportingPeriod) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, highlights, risks
		FROM ledgers WHERE period_id = ? ORDER BY project_id`, p.ID)
	if err != nil {
		return fmt.Errorf("query ledgers for period %s: %w", p.ID, err)
	}
	defer rows.Close()

	type ledgerRow struct {
		id        int64
		projectID string
		ledger    core.Ledger
	}
	var ledgerRows []ledgerRow
	for rows.Next() {
		var lr ledgerRow
		var highlights, risks string
		if err := rows.Scan(&lr.id, &lr.projectID, &highlights, &risks); err != nil {
			return fmt.Errorf("scan ledger: %w", err)
		}
		lr.ledger.Highlights = core.PointList(highlights)
		lr.ledger.Risks = core.PointList(risks)
		ledgerRows = append(ledgerRows, lr)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate ledgers: %w", err)
	}

	for i := range ledgerRows {
		lr := &ledgerRows[i]
		if err := r.loadExpenses(ctx, lr.id, &lr.ledger); err != nil {
			return err
		}
		if err := r.loadMilestones(ctx, lr.id, &lr.ledger); err != nil {
			return err
		}
		if lr.projectID == "" {
			p.StartupLedger = lr.ledger
		} else {
			p.ProjectLedgers[lr.projectID] = lr.ledger
		}
	}
	return nil
}

func (r *SQLiteRepository) loadExpenses(ctx context.Context, ledgerID int64, l *core.Ledger) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, item, amount_cents, classification, category, funding_source, periodicity, origin_month, entry_date
		FROM expenses WHERE ledger_id = ? ORDER BY position`, ledgerID)
	if err != nil {
		return fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e core.ExpenseEntry
		var classification, periodicity, entryDate string
		if err := rows.Scan(&e.ID, &e.Item, &e.Amount.Cents, &classification,
			&e.Category, &e.FundingSource, &periodicity, &e.OriginMonth, &entryDate); err != nil {
			return fmt.Errorf("scan expense: %w", err)
		}
		e.Classification = core.Classification(classification)
		e.Periodicity = core.Periodicity(periodicity)
		if t, err := time.Parse(entryDateLayout, entryDate); err == nil {
			e.Date = core.Date{Time: t}
		}
		l.Expenses = append(l.Expenses, e)
	}
	return rows.Err()
}

func (r *SQLiteRepository) loadMilestones(ctx context.Context, ledgerID int64, l *core.Ledger) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, deadline, description, status
		FROM milestones WHERE ledger_id = ? ORDER BY position`, ledgerID)
	if err != nil {
		return fmt.Errorf("query milestones: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m core.Milestone
		var deadline string
		if err := rows.Scan(&m.ID, &m.Title, &deadline, &m.Description, &m.Status); err != nil {
			return fmt.Errorf("scan milestone: %w", err)
		}
		if t, err := time.Parse(entryDateLayout, deadline); err == nil {
			m.Deadline = core.Date{Time: t}
		}
		l.Milestones = append(l.Milestones, m)
	}
	return rows.Err()
}

// SavePeriods replaces the stored snapshot in one transaction. Write order
// keeps the tables consistent without relying on cascade support.
func (r *SQLiteRepository) SavePeriods(ctx context.Context, periods []core.ReportingPeriod) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"milestones", "expenses", "ledgers", "periods"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, p := range periods {
		idx, err := p.MonthIndex()
		if err != nil {
			return fmt.Errorf("period %s: %w", p.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO periods (id, month_label, month_index, status, budget_total_cents, budget_utilized_cents, budget_status, reviewer_remarks)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.MonthLabel, idx, string(p.Status),
			p.Budget.TotalCents, p.Budget.UtilizedCents, p.Budget.Status, p.ReviewerRemarks)
		if err != nil {
			return fmt.Errorf("insert period %s: %w", p.ID, err)
		}

		if err := saveLedger(ctx, tx, p.ID, "", p.StartupLedger); err != nil {
			return err
		}
		// stable order for the project ledgers
		projectIDs := make([]string, 0, len(p.ProjectLedgers))
		for id := range p.ProjectLedgers {
			projectIDs = append(projectIDs, id)
		}
		sort.Strings(projectIDs)
		for _, id := range projectIDs {
			if err := saveLedger(ctx, tx, p.ID, id, p.ProjectLedgers[id]); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot saved to SQLite", "periods", len(periods))
	return nil
}

func saveLedger(ctx context.Context, tx *sql.Tx, periodID, projectID string, l core.Ledger) error {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO ledgers (period_id, project_id, highlights, risks)
		VALUES (?, ?, ?, ?)`,
		periodID, projectID, string(l.Highlights), string(l.Risks))
	if err != nil {
		return fmt.Errorf("insert ledger (period=%s, project=%q): %w", periodID, projectID, err)
	}
	ledgerID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("ledger id: %w", err)
	}

	for i, e := range l.Expenses {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO expenses (id, ledger_id, item, amount_cents, classification, category, funding_source, periodicity, origin_month, entry_date, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, ledgerID, e.Item, e.Amount.Cents, string(e.Classification),
			e.Category, e.FundingSource, string(e.Periodicity), e.OriginMonth,
			e.Date.Format(entryDateLayout), i)
		if err != nil {
			return fmt.Errorf("insert expense %s: %w", e.ID, err)
		}
	}

	for i, m := range l.Milestones {
		deadline := ""
		if !m.Deadline.IsZero() {
			deadline = m.Deadline.Format(entryDateLayout)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO milestones (id, ledger_id, title, deadline, description, status, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			m.ID, ledgerID, m.Title, deadline, m.Description, m.Status, i)
		if err != nil {
			return fmt.Errorf("insert milestone %s: %w", m.ID, err)
		}
	}

	return nil
}
