// Package worker exports locally saved expenses to the spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"spendlog/internal/amqp"
	applog "spendlog/internal/log"
	"spendlog/internal/sheets"
	"spendlog/internal/storage"
)

// SyncWorker moves expenses from SQLite to the spreadsheet. It is driven two
// ways: AMQP messages for near real-time export, and a periodic scan of
// pending rows as a backstop for lost messages. The deleter is optional;
// without one, delete messages are acknowledged and the exported row stays.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	appender  sheets.ExpenseAppender
	deleter   sheets.ExpenseDeleter
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, appender sheets.ExpenseAppender, deleter sheets.ExpenseDeleter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		appender:  appender,
		deleter:   deleter,
		batchSize: batchSize,
	}
}

// HandleSyncMessage exports one expense named by an AMQP message.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.ExpenseSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		applog.FieldOperation, applog.OpSync,
		applog.FieldExpenseID, msg.ID,
		"version", msg.Version)

	return w.exportExpense(ctx, msg.ID)
}

// HandleDeleteMessage retracts an exported expense, or acknowledges the
// message without touching the spreadsheet when no deleter is configured.
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.ExpenseDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldExpenseID, msg.ID)

	if w.deleter == nil {
		slog.WarnContext(ctx, "Exporter is append-only, leaving exported row in place",
			applog.FieldExpenseID, msg.ID)
		return nil
	}

	if err := w.deleter.DeleteExpense(ctx, msg.ID); err != nil {
		return fmt.Errorf("delete exported expense: %w", err)
	}

	slog.InfoContext(ctx, "Exported expense deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldExpenseID, msg.ID)
	return nil
}

// ProcessPendingExpenses exports up to batchSize expenses still marked
// pending. Failures mark the row and continue with the rest of the batch.
func (w *SyncWorker) ProcessPendingExpenses(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncExpenses(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending expenses: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending expenses", "count", len(pending))

	var failed int
	for _, p := range pending {
		if err := w.exportExpense(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export pending expense",
				applog.FieldExpenseID, p.ID,
				applog.FieldError, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d pending expenses failed to export", failed, len(pending))
	}
	return nil
}

func (w *SyncWorker) exportExpense(ctx context.Context, id int64) error {
	expense, err := w.storage.GetExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("get expense from storage: %w", err)
	}

	ref, err := w.appender.AppendExpense(ctx, expense)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error",
				applog.FieldExpenseID, id,
				applog.FieldError, markErr)
		}
		return fmt.Errorf("append expense to sheet: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		return fmt.Errorf("mark expense synced: %w", err)
	}

	slog.InfoContext(ctx, "Expense exported",
		applog.FieldOperation, applog.OpSync,
		applog.FieldExpenseID, id,
		applog.FieldSheetsRef, ref)
	return nil
}
