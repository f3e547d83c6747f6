package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"spendlog/internal/core"
	"spendlog/internal/sheets/memory"
)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	store := memory.New()
	s := NewServer(":0", store)
	t.Cleanup(func() {
		s.janitor.Stop()
		s.rateLimiter.stop()
	})
	return s, store
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, s, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestCapturePreview(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/capture", map[string]any{
		"transcript": "spent 25 dollars on coffee",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Expense struct {
			Description string `json:"description"`
			AmountCents int64  `json:"amount_cents"`
		} `json:"expense"`
		Category string `json:"category"`
		Saved    bool   `json:"saved"`
	}
	decodeBody(t, rec, &resp)

	if resp.Expense.Description != "Coffee" {
		t.Errorf("description = %q, want Coffee", resp.Expense.Description)
	}
	if resp.Expense.AmountCents != 2500 {
		t.Errorf("amount_cents = %d, want 2500", resp.Expense.AmountCents)
	}
	if resp.Category != "Food & Dining" {
		t.Errorf("category = %q, want Food & Dining", resp.Category)
	}
	if resp.Saved {
		t.Error("preview should not be saved")
	}
}

func TestCaptureConfirmSaves(t *testing.T) {
	s, store := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/capture", map[string]any{
		"transcript": "paid $30 for gas",
		"confirm":    true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Expense struct {
			ID int64 `json:"id"`
		} `json:"expense"`
		Saved bool `json:"saved"`
	}
	decodeBody(t, rec, &resp)
	if !resp.Saved || resp.Expense.ID == 0 {
		t.Fatalf("saved = %v, id = %d", resp.Saved, resp.Expense.ID)
	}

	if _, err := store.GetExpense(context.Background(), resp.Expense.ID); err != nil {
		t.Errorf("expense not in store: %v", err)
	}
}

func TestCaptureErrors(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name       string
		transcript string
		wantStatus int
	}{
		{"empty transcript", "", http.StatusBadRequest},
		{"no amount", "bought some snacks", http.StatusUnprocessableEntity},
		{"amount too large", "spent 99999 on a car", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/capture", map[string]any{
				"transcript": tt.transcript,
			})
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestExpenseLifecycle(t *testing.T) {
	s, _ := newTestServer(t)

	spentAt := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	rec := doJSON(t, s, http.MethodPost, "/api/expenses", map[string]any{
		"spent_at":    spentAt.Format(time.RFC3339),
		"description": "Lunch",
		"amount":      "12.50",
		"category":    "Food & Dining",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d; body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID          int64 `json:"id"`
		AmountCents int64 `json:"amount_cents"`
	}
	decodeBody(t, rec, &created)
	if created.AmountCents != 1250 {
		t.Errorf("amount_cents = %d, want 1250", created.AmountCents)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/expenses?year=2025&month=6", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listed struct {
		Expenses []expenseDTO `json:"expenses"`
	}
	decodeBody(t, rec, &listed)
	if len(listed.Expenses) != 1 {
		t.Fatalf("listed %d expenses, want 1", len(listed.Expenses))
	}

	rec = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/api/expenses/%d", created.ID), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/api/expenses/%d", created.ID), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestCreateExpenseDefaultsCategory(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/expenses", map[string]any{
		"description":  "uber downtown",
		"amount_cents": 1800,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Category string `json:"category"`
	}
	decodeBody(t, rec, &created)
	if created.Category != "Transportation" {
		t.Errorf("category = %q, want Transportation", created.Category)
	}
}

func TestCreateExpenseRejectsUnknownCategory(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/api/expenses", map[string]any{
		"description":  "yacht fuel",
		"amount_cents": 500000,
		"category":     "Yachts",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", rec.Code, rec.Body.String())
	}

	// Nothing should have been stored.
	now := time.Now().UTC()
	list := doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/expenses?year=%d&month=%d", now.Year(), int(now.Month())), nil)
	var resp struct {
		Expenses []expenseDTO `json:"expenses"`
	}
	decodeBody(t, list, &resp)
	if len(resp.Expenses) != 0 {
		t.Errorf("got %d expenses, want 0", len(resp.Expenses))
	}
}

func TestListCategories(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/categories", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Categories []categoryDTO `json:"categories"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Categories) != 8 {
		t.Fatalf("got %d categories, want 8", len(resp.Categories))
	}
	if resp.Categories[0].Name != "Food & Dining" {
		t.Errorf("first category = %q, want Food & Dining", resp.Categories[0].Name)
	}
	if resp.Categories[0].Icon != "utensils" {
		t.Errorf("icon = %q, want utensils", resp.Categories[0].Icon)
	}
}

func TestSuggestCategories(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/categories/suggest?q=coffee+shopping+bill", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Suggestions []string `json:"suggestions"`
	}
	decodeBody(t, rec, &resp)
	want := []string{"Shopping", "Food & Dining", "Utilities"}
	if len(resp.Suggestions) != len(want) {
		t.Fatalf("suggestions = %v, want %v", resp.Suggestions, want)
	}
	for i := range want {
		if resp.Suggestions[i] != want[i] {
			t.Errorf("suggestions[%d] = %q, want %q", i, resp.Suggestions[i], want[i])
		}
	}
}

func TestBudgetsAndMonthReport(t *testing.T) {
	s, store := newTestServer(t)
	ctx := context.Background()

	spentAt := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	_, err := store.CreateExpense(ctx, core.Expense{
		SpentAt:     spentAt,
		Description: "Groceries run",
		Amount:      core.Money{Cents: 9500},
		Category:    "Groceries",
	})
	if err != nil {
		t.Fatalf("seed expense: %v", err)
	}

	rec := doJSON(t, s, http.MethodPut, "/api/budgets", map[string]any{
		"category": "Groceries",
		"year":     2025,
		"month":    6,
		"limit":    "100.00",
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("budget status = %d; body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodGet, "/api/budgets?year=2025&month=6", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list budgets status = %d", rec.Code)
	}
	var budgets struct {
		Budgets []budgetStatusDTO `json:"budgets"`
	}
	decodeBody(t, rec, &budgets)
	if len(budgets.Budgets) != 1 {
		t.Fatalf("budgets = %d, want 1", len(budgets.Budgets))
	}
	b := budgets.Budgets[0]
	if b.SpentCents != 9500 || b.RemainingCents != 500 || b.Over {
		t.Errorf("budget status = %+v", b)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/reports/month?year=2025&month=6", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("report status = %d", rec.Code)
	}
	var report struct {
		TotalCents int64               `json:"total_cents"`
		ByCategory []categoryAmountDTO `json:"by_category"`
	}
	decodeBody(t, rec, &report)
	if report.TotalCents != 9500 {
		t.Errorf("total_cents = %d, want 9500", report.TotalCents)
	}
	if len(report.ByCategory) != 1 || report.ByCategory[0].Name != "Groceries" {
		t.Errorf("by_category = %+v", report.ByCategory)
	}
}

func TestBudgetRejectsUnknownCategory(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(t, s, http.MethodPut, "/api/budgets", map[string]any{
		"category":    "Yachts",
		"year":        2025,
		"month":       6,
		"limit_cents": 100000,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestReportCacheInvalidatedOnWrite(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/reports/month?year=2025&month=6", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("report status = %d", rec.Code)
	}

	spentAt := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	rec = doJSON(t, s, http.MethodPost, "/api/expenses", map[string]any{
		"spent_at":     spentAt.Format(time.RFC3339),
		"description":  "Lunch",
		"amount_cents": 1250,
		"category":     "Food & Dining",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/reports/month?year=2025&month=6", nil)
	var report struct {
		TotalCents int64 `json:"total_cents"`
	}
	decodeBody(t, rec, &report)
	if report.TotalCents != 1250 {
		t.Errorf("total_cents after write = %d, want 1250", report.TotalCents)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < requestsPerMinute; i++ {
		if !rl.allow("1.2.3.4") {
			t.Fatalf("request %d unexpectedly limited", i+1)
		}
	}
	if rl.allow("1.2.3.4") {
		t.Error("request over the limit was allowed")
	}
	if !rl.allow("5.6.7.8") {
		t.Error("other client should not be limited")
	}
}
