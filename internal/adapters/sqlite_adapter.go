// Package adapters glues concrete storage and services onto the backend
// interfaces the HTTP layer consumes.
package adapters

import (
	"context"

	"spendlog/internal/core"
	"spendlog/internal/services"
	"spendlog/internal/storage"
)

// SQLiteAdapter exposes SQLiteRepository and ExpenseService as a single
// backend. Writes go through the service so sync messages get published;
// reads hit the repository directly.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.ExpenseService
}

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.ExpenseService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

func (a *SQLiteAdapter) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	return a.service.CreateExpense(ctx, e)
}

func (a *SQLiteAdapter) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	return a.storage.GetExpense(ctx, id)
}

func (a *SQLiteAdapter) DeleteExpense(ctx context.Context, id int64) error {
	return a.service.DeleteExpense(ctx, id)
}

func (a *SQLiteAdapter) ListExpenses(ctx context.Context, year, month int) ([]core.Expense, error) {
	return a.storage.ListExpenses(ctx, year, month)
}

func (a *SQLiteAdapter) MonthOverview(ctx context.Context, year, month int) (core.MonthOverview, error) {
	return a.storage.MonthOverview(ctx, year, month)
}

func (a *SQLiteAdapter) UpsertBudget(ctx context.Context, b core.Budget) error {
	return a.storage.UpsertBudget(ctx, b)
}

func (a *SQLiteAdapter) ListBudgetStatuses(ctx context.Context, year, month int) ([]core.BudgetStatus, error) {
	return a.storage.ListBudgetStatuses(ctx, year, month)
}
