package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"finrep/internal/core"
	"finrep/internal/log"
	"finrep/internal/services"
	"finrep/internal/storage"
)

func newTestServer(t *testing.T, labels ...string) *Server {
	t.Helper()
	store := storage.NewMemoryStore()
	periods := make([]core.ReportingPeriod, len(labels))
	for i, label := range labels {
		periods[i] = core.ReportingPeriod{
			ID:             "p-" + label,
			MonthLabel:     label,
			Status:         core.StatusDraft,
			ProjectLedgers: map[string]core.Ledger{"alpha": {}},
		}
	}
	if err := store.SavePeriods(context.Background(), periods); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	svc := services.NewReportService(store, nil, map[string]int64{"Incubation Grant": 100_000_00}, log.New(log.DefaultConfig()))
	srv := NewServer(":0", svc)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv
}

// currentLabel returns the label of the month containing time.Now, so the
// seeded period is open for editing during the test run.
func currentLabel() string {
	return time.Now().UTC().Format(core.MonthLabelFormat)
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, currentLabel())

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, srv, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestListPeriods(t *testing.T) {
	srv := newTestServer(t, "October 2023", currentLabel())

	rec := doJSON(t, srv, http.MethodGet, "/periods", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Periods []periodView `json:"periods"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Periods) != 2 {
		t.Fatalf("expected 2 periods, got %d", len(payload.Periods))
	}
	// October 2023 is long past its deadline
	if payload.Periods[0].DisplayStatus != core.DisplayAutoSubmitted {
		t.Fatalf("expected %q, got %q", core.DisplayAutoSubmitted, payload.Periods[0].DisplayStatus)
	}
	if !payload.Periods[0].Locked {
		t.Fatal("expected past period to be locked")
	}
}

func TestGetPeriodByLabelAndID(t *testing.T) {
	label := currentLabel()
	srv := newTestServer(t, label)

	for _, ref := range []string{label, "p-" + label} {
		rec := doJSON(t, srv, http.MethodGet, "/periods/"+url.PathEscape(ref), nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("ref %q: expected 200, got %d", ref, rec.Code)
		}
	}

	rec := doJSON(t, srv, http.MethodGet, "/periods/"+url.PathEscape("March 2031"), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCommandAddExpense(t *testing.T) {
	label := currentLabel()
	srv := newTestServer(t, label)

	rec := doJSON(t, srv, http.MethodPost, "/commands", map[string]any{
		"type":           "add_expense",
		"period":         label,
		"item":           "Office Rent",
		"amount":         "1250.50",
		"classification": "one_time",
		"category":       "Equipment",
		"funding_source": "Incubation Grant",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var outcome struct {
		EntryID string `json:"entry_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if outcome.EntryID == "" {
		t.Fatal("expected entry_id in outcome")
	}

	rec = doJSON(t, srv, http.MethodGet, "/periods/"+url.PathEscape(label), nil)
	var view periodView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(view.StartupLedger.Expenses) != 1 {
		t.Fatalf("expected 1 expense, got %d", len(view.StartupLedger.Expenses))
	}
	if view.StartupLedger.Expenses[0].AmountCents != 125050 {
		t.Fatalf("expected 125050 cents, got %d", view.StartupLedger.Expenses[0].AmountCents)
	}
	if view.StartupLedger.Expenses[0].Amount != "1250.50" {
		t.Fatalf("unexpected formatted amount %q", view.StartupLedger.Expenses[0].Amount)
	}
}

func TestCommandErrorMapping(t *testing.T) {
	label := currentLabel()
	srv := newTestServer(t, "October 2023", label)

	tests := []struct {
		name     string
		body     map[string]any
		wantCode int
	}{
		{
			"validation failure is 422",
			map[string]any{
				"type": "add_expense", "period": label,
				"item": "X", "amount": "not-a-number",
				"classification": "one_time", "funding_source": "Incubation Grant",
			},
			http.StatusUnprocessableEntity,
		},
		{
			"locked period is 409",
			map[string]any{"type": "submit", "period": "October 2023"},
			http.StatusConflict,
		},
		{
			"unknown period is 404",
			map[string]any{"type": "submit", "period": "March 2031"},
			http.StatusNotFound,
		},
		{
			"unknown command type is 400",
			map[string]any{"type": "explode", "period": label},
			http.StatusBadRequest,
		},
		{
			"missing period is 400",
			map[string]any{"type": "submit"},
			http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/commands", tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCommandInvalidatesCaches(t *testing.T) {
	label := currentLabel()
	srv := newTestServer(t, label)

	// prime the budget cache
	rec := doJSON(t, srv, http.MethodGet, "/budget", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/commands", map[string]any{
		"type": "add_expense", "period": label,
		"item": "Laptops", "amount": "3000",
		"classification": "one_time", "category": "Equipment",
		"funding_source": "Incubation Grant",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodGet, "/budget", nil)
	var view budgetView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Cumulative["Incubation Grant"] != 300000 {
		t.Fatalf("expected fresh budget after mutation, got %v", view.Cumulative)
	}
}

func TestMalformedBody(t *testing.T) {
	srv := newTestServer(t, currentLabel())

	req := httptest.NewRequest(http.MethodPost, "/commands", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, currentLabel())

	rec := doJSON(t, srv, http.MethodGet, "/periods", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected nosniff, got %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("expected DENY, got %q", got)
	}
}

func TestRateLimitOnCommands(t *testing.T) {
	label := currentLabel()
	srv := newTestServer(t, label)

	limited := false
	for i := 0; i < 70; i++ {
		rec := doJSON(t, srv, http.MethodPost, "/commands", map[string]any{
			"type": "add_point", "period": label,
			"list": "highlights", "text": fmt.Sprintf("point %d", i),
		})
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Fatal("expected rate limiter to kick in on the 61st request")
	}
}
