package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"spendlog/internal/amqp"
	"spendlog/internal/core"
	"spendlog/internal/sheets/memory"
	"spendlog/internal/storage"
)

type failingAppender struct{}

func (failingAppender) AppendExpense(context.Context, core.Expense) (string, error) {
	return "", errors.New("sheet unavailable")
}

func newTestStorage(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "worker.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedExpense(t *testing.T, repo *storage.SQLiteRepository) int64 {
	t.Helper()
	id, err := repo.CreateExpense(context.Background(), core.Expense{
		SpentAt:     time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC),
		Description: "Coffee",
		Amount:      core.Money{Cents: 450},
		Category:    "Food & Dining",
	})
	if err != nil {
		t.Fatalf("seed expense: %v", err)
	}
	return id
}

func TestHandleSyncMessageExports(t *testing.T) {
	repo := newTestStorage(t)
	store := memory.New()
	w := NewSyncWorker(repo, store, nil, 10)
	ctx := context.Background()

	id := seedExpense(t, repo)
	msg := amqp.NewExpenseSyncMessage(id, 1)
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("HandleSyncMessage: %v", err)
	}

	pending, err := repo.GetPendingSyncExpenses(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncExpenses: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after sync = %d, want 0", len(pending))
	}

	if _, err := store.GetExpense(ctx, 1); err != nil {
		t.Errorf("expense not appended: %v", err)
	}
}

func TestHandleSyncMessageUnknownExpense(t *testing.T) {
	repo := newTestStorage(t)
	w := NewSyncWorker(repo, memory.New(), nil, 10)

	msg := amqp.NewExpenseSyncMessage(999, 1)
	if err := w.HandleSyncMessage(context.Background(), msg); err == nil {
		t.Error("expected error for unknown expense")
	}
}

func TestHandleDeleteMessageRetractsRow(t *testing.T) {
	repo := newTestStorage(t)
	store := memory.New()
	w := NewSyncWorker(repo, store, store, 10)
	ctx := context.Background()

	id := seedExpense(t, repo)
	if err := w.HandleSyncMessage(ctx, amqp.NewExpenseSyncMessage(id, 1)); err != nil {
		t.Fatalf("HandleSyncMessage: %v", err)
	}

	if err := w.HandleDeleteMessage(ctx, amqp.NewExpenseDeleteMessage(1)); err != nil {
		t.Fatalf("HandleDeleteMessage: %v", err)
	}
	if _, err := store.GetExpense(ctx, 1); err == nil {
		t.Error("expense still present after delete message")
	}
}

func TestHandleDeleteMessageWithoutDeleter(t *testing.T) {
	repo := newTestStorage(t)
	store := memory.New()
	w := NewSyncWorker(repo, store, nil, 10)
	ctx := context.Background()

	id := seedExpense(t, repo)
	if err := w.HandleSyncMessage(ctx, amqp.NewExpenseSyncMessage(id, 1)); err != nil {
		t.Fatalf("HandleSyncMessage: %v", err)
	}

	// Append-only exporter: the message is acked, the row stays.
	if err := w.HandleDeleteMessage(ctx, amqp.NewExpenseDeleteMessage(1)); err != nil {
		t.Fatalf("HandleDeleteMessage: %v", err)
	}
	if _, err := store.GetExpense(ctx, 1); err != nil {
		t.Errorf("exported row should survive delete without a deleter: %v", err)
	}
}

func TestProcessPendingExpenses(t *testing.T) {
	repo := newTestStorage(t)
	store := memory.New()
	w := NewSyncWorker(repo, store, nil, 10)
	ctx := context.Background()

	seedExpense(t, repo)
	seedExpense(t, repo)

	if err := w.ProcessPendingExpenses(ctx); err != nil {
		t.Fatalf("ProcessPendingExpenses: %v", err)
	}

	pending, _ := repo.GetPendingSyncExpenses(ctx, 10)
	if len(pending) != 0 {
		t.Errorf("pending = %d, want 0", len(pending))
	}
}

func TestProcessPendingMarksErrors(t *testing.T) {
	repo := newTestStorage(t)
	w := NewSyncWorker(repo, failingAppender{}, nil, 10)
	ctx := context.Background()

	id := seedExpense(t, repo)

	if err := w.ProcessPendingExpenses(ctx); err == nil {
		t.Fatal("expected error when appender fails")
	}

	// Row is marked error, not pending, so the next scan skips it.
	pending, _ := repo.GetPendingSyncExpenses(ctx, 10)
	for _, p := range pending {
		if p.ID == id {
			t.Error("failed expense still pending")
		}
	}
}

func TestProcessPendingNoWork(t *testing.T) {
	repo := newTestStorage(t)
	w := NewSyncWorker(repo, memory.New(), nil, 10)
	if err := w.ProcessPendingExpenses(context.Background()); err != nil {
		t.Errorf("ProcessPendingExpenses on empty db: %v", err)
	}
}
