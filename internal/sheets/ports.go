package sheets

import (
	"context"

	"spendlog/internal/core"
)

// ExpenseAppender appends one confirmed expense row to the export
// spreadsheet and returns a row reference.
type ExpenseAppender interface {
	AppendExpense(ctx context.Context, e core.Expense) (rowRef string, err error)
}

// ExpenseDeleter retracts a previously exported expense. Exporters that
// are append-only do not implement it and deletions stay local.
type ExpenseDeleter interface {
	DeleteExpense(ctx context.Context, id int64) error
}
