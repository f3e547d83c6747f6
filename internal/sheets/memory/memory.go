// Package memory provides an in-memory expense store for development and
// tests. Nothing survives a restart.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"spendlog/internal/core"
)

type budgetKey struct {
	category string
	year     int
	month    int
}

type Store struct {
	mu      sync.Mutex
	nextID  int64
	items   []core.Expense
	deleted map[int64]bool
	budgets map[budgetKey]core.Money
}

func New() *Store {
	return &Store{
		deleted: make(map[int64]bool),
		budgets: make(map[budgetKey]core.Money),
	}
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	e.ID = s.nextID
	s.items = append(s.items, e)
	return e.ID, nil
}

func (s *Store) GetExpense(_ context.Context, id int64) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.items {
		if e.ID == id && !s.deleted[id] {
			return e, nil
		}
	}
	return core.Expense{}, sql.ErrNoRows
}

func (s *Store) DeleteExpense(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.items {
		if e.ID == id && !s.deleted[id] {
			s.deleted[id] = true
			return nil
		}
	}
	return sql.ErrNoRows
}

// ListExpenses returns the month's expenses, most recent first.
func (s *Store) ListExpenses(_ context.Context, year, month int) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Expense
	for _, e := range s.items {
		if s.deleted[e.ID] || !inMonth(e.SpentAt, year, month) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].SpentAt.Equal(out[j].SpentAt) {
			return out[i].SpentAt.After(out[j].SpentAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) MonthOverview(ctx context.Context, year, month int) (core.MonthOverview, error) {
	expenses, err := s.ListExpenses(ctx, year, month)
	if err != nil {
		return core.MonthOverview{}, err
	}

	overview := core.MonthOverview{Year: year, Month: month}
	byCategory := make(map[string]int64)
	var order []string
	for _, e := range expenses {
		overview.Total.Cents += e.Amount.Cents
		if _, seen := byCategory[e.Category]; !seen {
			order = append(order, e.Category)
		}
		byCategory[e.Category] += e.Amount.Cents
	}
	for _, name := range order {
		overview.ByCategory = append(overview.ByCategory, core.CategoryAmount{
			Name:   name,
			Amount: core.Money{Cents: byCategory[name]},
		})
	}
	sort.SliceStable(overview.ByCategory, func(i, j int) bool {
		return overview.ByCategory[i].Amount.Cents > overview.ByCategory[j].Amount.Cents
	})
	return overview, nil
}

func (s *Store) UpsertBudget(_ context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[budgetKey{b.Category, b.Year, b.Month}] = b.Limit
	return nil
}

func (s *Store) ListBudgetStatuses(ctx context.Context, year, month int) ([]core.BudgetStatus, error) {
	overview, err := s.MonthOverview(ctx, year, month)
	if err != nil {
		return nil, err
	}
	spentByCategory := make(map[string]core.Money)
	for _, ca := range overview.ByCategory {
		spentByCategory[ca.Name] = ca.Amount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var statuses []core.BudgetStatus
	for key, limit := range s.budgets {
		if key.year != year || key.month != month {
			continue
		}
		statuses = append(statuses, core.NewBudgetStatus(key.category, limit, spentByCategory[key.category]))
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Category < statuses[j].Category
	})
	return statuses, nil
}

// AppendExpense stores the expense and returns a synthetic row reference, so
// the store can stand in for the spreadsheet exporter in tests.
func (s *Store) AppendExpense(ctx context.Context, e core.Expense) (string, error) {
	id, err := s.CreateExpense(ctx, e)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("mem:%d", id), nil
}

func inMonth(t time.Time, year, month int) bool {
	u := t.UTC()
	return u.Year() == year && int(u.Month()) == month
}
