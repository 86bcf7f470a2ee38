package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"finrep/internal/core"
	ports "finrep/internal/export"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client exports the budget view into a single sheet, one row per period
// plus a funding summary block. Each export clears and rewrites the sheet so
// reviewers always see the current state.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.BudgetExporter = (*Client)(nil)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Credentials: GOOGLE_CREDENTIALS_JSON, GOOGLE_CREDENTIALS_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS. Sheet name: GOOGLE_SHEET_NAME (default "Budget").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Budget"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	credentialsJSON := strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS_JSON"))
	credentialsFile := strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS_FILE"))
	if credentialsJSON == "" && credentialsFile == "" {
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var creds []byte
	var err error
	switch {
	case credentialsJSON != "":
		creds = []byte(credentialsJSON)
	case credentialsFile != "":
		creds, err = os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
	default:
		return nil, errors.New("no Google credentials configured")
	}

	svc, err := gsheet.NewService(ctx, goption.WithCredentialsJSON(creds), goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// ExportBudget rewrites the budget sheet from the view.
func (c *Client) ExportBudget(ctx context.Context, view core.BudgetView) (string, error) {
	values := buildRows(view)

	clearRange := fmt.Sprintf("%s!A:Z", c.sheetName)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("clear budget sheet: %w", err)
	}

	writeRange := fmt.Sprintf("%s!A1", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, &gsheet.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("write budget sheet: %w", err)
	}

	ref := resp.UpdatedRange
	slog.InfoContext(ctx, "Budget exported to sheet",
		"sheets_ref", ref,
		"periods", len(view.PerPeriod),
		"funding_sources", len(view.Funding))
	return ref, nil
}

// buildRows flattens the view into sheet rows: a per-period table followed by
// a funding summary block. Amounts are written in major units.
func buildRows(view core.BudgetView) [][]interface{} {
	rows := [][]interface{}{
		{"Period", "Recurring", "One-Time", "Total"},
	}
	for _, pb := range view.PerPeriod {
		rows = append(rows, []interface{}{
			pb.MonthLabel,
			centsToMajor(pb.RecurringCents),
			centsToMajor(pb.OneTimeCents),
			centsToMajor(pb.TotalCents),
		})
	}

	rows = append(rows, []interface{}{})
	rows = append(rows, []interface{}{"Funding Source", "Cap", "Used", "Remaining", "Overbudget"})
	for _, source := range core.FundingSources {
		status, ok := view.Funding[source]
		if !ok {
			continue
		}
		rows = append(rows, []interface{}{
			source,
			centsToMajor(status.CapCents),
			centsToMajor(status.CumulativeCents),
			centsToMajor(status.RemainingCents),
			status.Overbudget,
		})
	}
	return rows
}

func centsToMajor(cents int64) float64 {
	return float64(cents) / 100
}
