package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"spendlog/internal/classify"
	"spendlog/internal/core"
	applog "spendlog/internal/log"
	"spendlog/internal/services"
	"spendlog/internal/speech"
)

const maxRequestBody = 1 << 20 // 1 MiB

type expenseDTO struct {
	ID          int64  `json:"id,omitempty"`
	SpentAt     string `json:"spent_at"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
}

func toExpenseDTO(e core.Expense) expenseDTO {
	return expenseDTO{
		ID:          e.ID,
		SpentAt:     e.SpentAt.Format(time.RFC3339),
		Description: e.Description,
		AmountCents: e.Amount.Cents,
		Amount:      e.Amount.String(),
		Category:    e.Category,
	}
}

func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dst)
}

// --- capture ---

type captureRequest struct {
	Transcript string `json:"transcript"`
	Confirm    bool   `json:"confirm"`
	Category   string `json:"category"`
}

type captureResponse struct {
	Expense     expenseDTO `json:"expense"`
	Category    string     `json:"category"`
	Suggestions []string   `json:"suggestions"`
	Saved       bool       `json:"saved"`
}

// handleCapture turns a voice transcript into an expense. Without confirm it
// returns a preview; with confirm it saves, honoring an optional category
// override.
func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	var req captureRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Transcript) == "" {
		writeError(w, http.StatusBadRequest, "transcript is required")
		return
	}

	preview, err := services.PreviewCapture(req.Transcript)
	switch {
	case errors.Is(err, speech.ErrNoAmount):
		writeError(w, http.StatusUnprocessableEntity, "no amount found in transcript")
		return
	case errors.Is(err, services.ErrCandidateOutOfRange):
		writeError(w, http.StatusUnprocessableEntity, "parsed expense out of range")
		return
	case err != nil:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Capture preview failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to parse transcript")
		return
	}

	expense := preview.ToExpense(req.Category)
	resp := captureResponse{
		Expense:     toExpenseDTO(expense),
		Category:    expense.Category,
		Suggestions: categoryNames(preview.Suggestions),
	}

	if !req.Confirm {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	id, err := s.backend.CreateExpense(r.Context(), expense)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to save captured expense", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save expense")
		return
	}

	s.invalidateMonth(expense.SpentAt.UTC().Year(), int(expense.SpentAt.UTC().Month()))

	resp.Expense.ID = id
	resp.Saved = true
	writeJSON(w, http.StatusCreated, resp)
}

// --- expenses ---

type createExpenseRequest struct {
	SpentAt     string `json:"spent_at"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
	Category    string `json:"category"`
}

// parseCreateExpenseRequest accepts JSON bodies and classic form posts with
// the same field names.
func parseCreateExpenseRequest(r *http.Request) (createExpenseRequest, error) {
	var req createExpenseRequest

	ct := r.Header.Get("Content-Type")
	if strings.Contains(ct, "application/x-www-form-urlencoded") ||
		strings.Contains(ct, "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			return req, err
		}
		req.SpentAt = strings.TrimSpace(r.Form.Get("spent_at"))
		req.Description = r.Form.Get("description")
		req.Amount = strings.TrimSpace(r.Form.Get("amount"))
		req.Category = strings.TrimSpace(r.Form.Get("category"))
		if v := strings.TrimSpace(r.Form.Get("amount_cents")); v != "" {
			cents, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return req, err
			}
			req.AmountCents = cents
		}
		return req, nil
	}

	return req, decodeJSON(r, &req)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	req, err := parseCreateExpenseRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents := req.AmountCents
	if req.Amount != "" {
		parsed, err := core.ParseDecimalToCents(req.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid amount")
			return
		}
		cents = parsed
	}

	spentAt := time.Now()
	if req.SpentAt != "" {
		t, err := time.Parse(time.RFC3339, req.SpentAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid spent_at, want RFC 3339")
			return
		}
		spentAt = t
	}

	category := req.Category
	if category == "" {
		category = string(classify.Classify(req.Description))
	} else if !classify.Valid(category) {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}

	expense := core.Expense{
		SpentAt:     spentAt,
		Description: strings.TrimSpace(req.Description),
		Amount:      core.Money{Cents: cents},
		Category:    category,
	}
	if err := expense.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.backend.CreateExpense(r.Context(), expense)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to create expense", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save expense")
		return
	}

	s.invalidateMonth(spentAt.UTC().Year(), int(spentAt.UTC().Month()))

	expense.ID = id
	writeJSON(w, http.StatusCreated, toExpenseDTO(expense))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	year, month := monthParams(r.URL.Query())

	expenses, err := s.backend.ListExpenses(r.Context(), year, month)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to list expenses", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}

	dtos := make([]expenseDTO, 0, len(expenses))
	for _, e := range expenses {
		dtos = append(dtos, toExpenseDTO(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":     year,
		"month":    month,
		"expenses": dtos,
	})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	// Look the expense up first so we know which month to invalidate.
	expense, err := s.backend.GetExpense(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "expense not found")
		return
	}
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to load expense", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete expense")
		return
	}

	if err := s.backend.DeleteExpense(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "expense not found")
			return
		}
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to delete expense", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete expense")
		return
	}

	s.invalidateMonth(expense.SpentAt.UTC().Year(), int(expense.SpentAt.UTC().Month()))
	w.WriteHeader(http.StatusNoContent)
}

// --- categories ---

type categoryDTO struct {
	Name       string `json:"name"`
	Icon       string `json:"icon"`
	Background string `json:"background"`
	Foreground string `json:"foreground"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, _ *http.Request) {
	cats := classify.All()
	dtos := make([]categoryDTO, 0, len(cats))
	for _, cat := range cats {
		colors := classify.Colors(cat)
		dtos = append(dtos, categoryDTO{
			Name:       string(cat),
			Icon:       classify.Icon(cat),
			Background: colors.Background,
			Foreground: colors.Foreground,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": dtos})
}

func (s *Server) handleSuggestCategories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	writeJSON(w, http.StatusOK, map[string]any{
		"query":       q,
		"suggestions": categoryNames(classify.Suggest(q)),
	})
}

func categoryNames(cats []classify.Category) []string {
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, string(c))
	}
	return names
}

// --- budgets ---

type budgetRequest struct {
	Category   string `json:"category"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	Limit      string `json:"limit"`
	LimitCents int64  `json:"limit_cents"`
}

func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents := req.LimitCents
	if req.Limit != "" {
		parsed, err := core.ParseDecimalToCents(req.Limit)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		cents = parsed
	}

	budget := core.Budget{
		Category: strings.TrimSpace(req.Category),
		Year:     req.Year,
		Month:    req.Month,
		Limit:    core.Money{Cents: cents},
	}
	if err := budget.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !classify.Valid(budget.Category) {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}

	if err := s.backend.UpsertBudget(r.Context(), budget); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to upsert budget", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save budget")
		return
	}

	s.invalidateMonth(budget.Year, budget.Month)
	w.WriteHeader(http.StatusNoContent)
}

type budgetStatusDTO struct {
	Category       string `json:"category"`
	LimitCents     int64  `json:"limit_cents"`
	SpentCents     int64  `json:"spent_cents"`
	RemainingCents int64  `json:"remaining_cents"`
	Over           bool   `json:"over"`
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	year, month := monthParams(r.URL.Query())
	key := monthKey(year, month)

	statuses, ok := s.budgetCache.Get(key)
	if !ok {
		var err error
		statuses, err = s.backend.ListBudgetStatuses(r.Context(), year, month)
		if err != nil {
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to list budget statuses", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list budgets")
			return
		}
		s.budgetCache.Set(key, statuses)
	}

	dtos := make([]budgetStatusDTO, 0, len(statuses))
	for _, st := range statuses {
		dtos = append(dtos, budgetStatusDTO{
			Category:       st.Category,
			LimitCents:     st.Limit.Cents,
			SpentCents:     st.Spent.Cents,
			RemainingCents: st.Remaining.Cents,
			Over:           st.Over,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":    year,
		"month":   month,
		"budgets": dtos,
	})
}

// --- reports ---

type categoryAmountDTO struct {
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
}

func (s *Server) handleMonthReport(w http.ResponseWriter, r *http.Request) {
	year, month := monthParams(r.URL.Query())
	key := monthKey(year, month)

	overview, ok := s.overviewCache.Get(key)
	if !ok {
		var err error
		overview, err = s.backend.MonthOverview(r.Context(), year, month)
		if err != nil {
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to build month overview", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to build report")
			return
		}
		s.overviewCache.Set(key, overview)
	}

	byCategory := make([]categoryAmountDTO, 0, len(overview.ByCategory))
	for _, ca := range overview.ByCategory {
		byCategory = append(byCategory, categoryAmountDTO{
			Name:        ca.Name,
			AmountCents: ca.Amount.Cents,
			Amount:      ca.Amount.String(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":        overview.Year,
		"month":       overview.Month,
		"total_cents": overview.Total.Cents,
		"total":       overview.Total.String(),
		"by_category": byCategory,
	})
}

// monthParams extracts year and month from query parameters, defaulting to
// the current month.
func monthParams(query url.Values) (int, int) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			month = m
		}
	}
	return year, month
}
