package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finrep/internal/core"
	applog "finrep/internal/log"
	"finrep/internal/services"
)

const (
	periodsCacheKey = "periods"
	budgetCacheKey  = "budget"
)

func (s *Server) handleListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, ok := s.periodsCache.Get(periodsCacheKey)
	if !ok {
		var err error
		periods, err = s.reports.Periods(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.periodsCache.Set(periodsCacheKey, periods)
	}

	now := time.Now()
	views := make([]periodView, 0, len(periods))
	for _, p := range periods {
		views = append(views, toPeriodView(p, now))
	}
	writeJSON(w, http.StatusOK, map[string]any{"periods": views})
}

func (s *Server) handleGetPeriod(w http.ResponseWriter, r *http.Request) {
	ref := r.PathValue("ref")
	period, err := s.reports.Period(r.Context(), ref)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodView(period, time.Now()))
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	view, ok := s.budgetCache.Get(budgetCacheKey)
	if !ok {
		var err error
		view, err = s.reports.BudgetView(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.budgetCache.Set(budgetCacheKey, view)
	}
	writeJSON(w, http.StatusOK, toBudgetView(view))
}

// commandRequest is the wire form of a mutation. Type selects the command;
// the remaining fields are read per type and the rest ignored.
type commandRequest struct {
	Type      string `json:"type"`
	Period    string `json:"period"` // period ID or month label
	ProjectID string `json:"project_id,omitempty"`

	// add_expense
	Item           string `json:"item,omitempty"`
	Amount         string `json:"amount,omitempty"`
	Classification string `json:"classification,omitempty"`
	Category       string `json:"category,omitempty"`
	FundingSource  string `json:"funding_source,omitempty"`
	Periodicity    string `json:"periodicity,omitempty"`

	// remove_expense
	EntryID string `json:"entry_id,omitempty"`

	// add_point / remove_point
	List  string `json:"list,omitempty"`
	Text  string `json:"text,omitempty"`
	Index *int   `json:"index,omitempty"`

	// add_milestone / remove_milestone
	Title       string `json:"title,omitempty"`
	Deadline    string `json:"deadline,omitempty"` // YYYY-MM-DD
	Description string `json:"description,omitempty"`
	MilestoneID string `json:"milestone_id,omitempty"`
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "expected application/json")
		return
	}

	var req commandRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64*1024))
	if err := dec.Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	cmd, err := buildCommand(req)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := s.reports.Mutate(r.Context(), cmd)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// any successful mutation invalidates the read caches
	s.periodsCache.Purge()
	s.budgetCache.Purge()

	writeJSON(w, http.StatusOK, map[string]any{
		"command":     outcome.Command,
		"period_id":   outcome.PeriodID,
		"month_label": outcome.MonthLabel,
		"entry_id":    outcome.EntryID,
		"milestone":   outcome.Milestone,
		"clones":      outcome.Clones,
		"no_op":       outcome.NoOp,
	})
}

func buildCommand(req commandRequest) (services.Command, error) {
	if strings.TrimSpace(req.Period) == "" {
		return nil, errors.New("period is required")
	}

	switch req.Type {
	case "add_expense":
		return services.AddExpense{
			PeriodRef: req.Period,
			ProjectID: req.ProjectID,
			Input: services.ExpenseInput{
				Item:           req.Item,
				Amount:         req.Amount,
				Classification: req.Classification,
				Category:       req.Category,
				FundingSource:  req.FundingSource,
				Periodicity:    req.Periodicity,
			},
		}, nil
	case "remove_expense":
		if req.EntryID == "" {
			return nil, errors.New("entry_id is required")
		}
		return services.RemoveExpense{PeriodRef: req.Period, ProjectID: req.ProjectID, EntryID: req.EntryID}, nil
	case "add_point":
		return services.AddPoint{PeriodRef: req.Period, ProjectID: req.ProjectID, List: services.PointKind(req.List), Text: req.Text}, nil
	case "remove_point":
		if req.Index == nil {
			return nil, errors.New("index is required")
		}
		return services.RemovePoint{PeriodRef: req.Period, ProjectID: req.ProjectID, List: services.PointKind(req.List), Index: *req.Index}, nil
	case "add_milestone":
		input := services.MilestoneInput{Title: req.Title, Description: req.Description}
		if req.Deadline != "" {
			deadline, err := time.Parse(dateLayout, req.Deadline)
			if err != nil {
				return nil, fmt.Errorf("invalid deadline %q: expected YYYY-MM-DD", req.Deadline)
			}
			input.Deadline = deadline
		}
		return services.AddMilestone{PeriodRef: req.Period, ProjectID: req.ProjectID, Input: input}, nil
	case "remove_milestone":
		if req.MilestoneID == "" {
			return nil, errors.New("milestone_id is required")
		}
		return services.RemoveMilestone{PeriodRef: req.Period, ProjectID: req.ProjectID, MilestoneID: req.MilestoneID}, nil
	case "submit":
		return services.Submit{PeriodRef: req.Period}, nil
	default:
		return nil, fmt.Errorf("unknown command type %q", req.Type)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeError maps service errors onto HTTP statuses: validation failures are
// 422, lifecycle conflicts 409, lookups 404, everything else 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyItem),
		errors.Is(err, core.ErrEmptyTitle),
		errors.Is(err, core.ErrUnknownClassification),
		errors.Is(err, core.ErrUnknownPeriodicity),
		errors.Is(err, core.ErrUnknownFundingSource),
		errors.Is(err, services.ErrUnknownPointKind),
		errors.Is(err, core.ErrPointOutOfRange):
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrPeriodLocked),
		errors.Is(err, services.ErrPeriodFuture):
		writeJSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrPeriodNotFound),
		errors.Is(err, services.ErrScopeNotFound),
		errors.Is(err, services.ErrEntryNotFound),
		errors.Is(err, services.ErrMilestoneNotFound):
		writeJSONError(w, http.StatusNotFound, err.Error())
	default:
		applog.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func formatAmount(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	major := cents / 100
	rem := cents % 100
	s := strconv.FormatInt(major, 10) + "." + fmt.Sprintf("%02d", rem)
	if neg {
		return "-" + s
	}
	return s
}
