// Package services holds business logic that spans storage and messaging.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"spendlog/internal/amqp"
	"spendlog/internal/core"
	applog "spendlog/internal/log"
	"spendlog/internal/storage"
)

// ExpenseService saves expenses to SQLite and queues them for spreadsheet
// export over AMQP. The queue is best effort: a failed publish never fails
// the request, the sync worker picks up pending rows on its next scan.
type ExpenseService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewExpenseService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *ExpenseService {
	return &ExpenseService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// CreateExpense saves the expense locally, then publishes a sync message.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	id, err := s.storage.CreateExpense(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save expense: %w", err)
	}

	if err := s.publishSyncMessage(ctx, id, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			applog.FieldOperation, applog.OpCreate,
			applog.FieldExpenseID, id,
			applog.FieldError, err)
	}

	return id, nil
}

// DeleteExpense soft deletes the expense locally, then publishes a delete
// message so the worker can retract the exported row if its exporter
// supports deletion.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) error {
	if err := s.storage.SoftDeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("soft delete expense: %w", err)
	}

	if err := s.publishDeleteMessage(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			applog.FieldOperation, applog.OpDelete,
			applog.FieldExpenseID, id,
			applog.FieldError, err)
	}

	return nil
}

func (s *ExpenseService) publishSyncMessage(ctx context.Context, id, version int64) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.amqpClient.PublishExpenseSync(ctx, id, version)
}

func (s *ExpenseService) publishDeleteMessage(ctx context.Context, id int64) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping delete message")
		return nil
	}
	return s.amqpClient.PublishExpenseDelete(ctx, id)
}

// Close closes storage and the AMQP connection.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}
	return nil
}
