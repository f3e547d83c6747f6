// Package backend selects and constructs the data backend.
package backend

import (
	"context"

	"spendlog/internal/core"
)

// ExpenseStore covers create, read and delete for expense records.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, e core.Expense) (int64, error)
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
	ListExpenses(ctx context.Context, year, month int) ([]core.Expense, error)
}

// BudgetStore sets per-category monthly limits.
type BudgetStore interface {
	UpsertBudget(ctx context.Context, b core.Budget) error
}

// ReportReader serves aggregated month views.
type ReportReader interface {
	MonthOverview(ctx context.Context, year, month int) (core.MonthOverview, error)
	ListBudgetStatuses(ctx context.Context, year, month int) ([]core.BudgetStatus, error)
}

// Backend is everything the HTTP layer needs from a data backend.
type Backend interface {
	ExpenseStore
	BudgetStore
	ReportReader
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result pairs a backend with its cleanup, which may be nil.
type Result struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Type names a data backend implementation.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

func (t Type) String() string { return string(t) }

func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	}
	return false
}
