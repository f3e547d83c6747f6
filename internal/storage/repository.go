package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"spendlog/internal/core"

	_ "modernc.org/sqlite"
)

// Sync states for the spreadsheet export worker.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateExpense inserts a new expense and returns its database ID.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (spent_at, description, amount_cents, category)
		VALUES (?, ?, ?, ?)`,
		e.SpentAt, e.Description, e.Amount.Cents, e.Category)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", id,
		"description", e.Description,
		"amount_cents", e.Amount.Cents,
		"category", e.Category)

	return id, nil
}

// GetExpense retrieves a single expense by ID. Soft-deleted rows are excluded.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	var e core.Expense
	err := r.db.QueryRowContext(ctx, `
		SELECT id, spent_at, description, amount_cents, category
		FROM expenses
		WHERE id = ? AND deleted_at IS NULL`, id).
		Scan(&e.ID, &e.SpentAt, &e.Description, &e.Amount.Cents, &e.Category)
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense by id: %w", err)
	}
	return e, nil
}

// SoftDeleteExpense marks an expense as deleted without removing the row.
func (r *SQLiteRepository) SoftDeleteExpense(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses
		SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("soft delete expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	slog.InfoContext(ctx, "Expense soft deleted", "id", id)
	return nil
}

// ListExpenses returns all non-deleted expenses for the given year and month,
// most recent first.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, year, month int) ([]core.Expense, error) {
	from, to := monthBounds(year, month)
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, spent_at, description, amount_cents, category
		FROM expenses
		WHERE deleted_at IS NULL AND spent_at >= ? AND spent_at < ?
		ORDER BY spent_at DESC, id DESC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var e core.Expense
		if err := rows.Scan(&e.ID, &e.SpentAt, &e.Description, &e.Amount.Cents, &e.Category); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

// MonthOverview aggregates the month's total and per-category sums.
func (r *SQLiteRepository) MonthOverview(ctx context.Context, year, month int) (core.MonthOverview, error) {
	overview := core.MonthOverview{Year: year, Month: month}
	from, to := monthBounds(year, month)

	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM expenses
		WHERE deleted_at IS NULL AND spent_at >= ? AND spent_at < ?`, from, to).
		Scan(&overview.Total.Cents)
	if err != nil {
		return overview, fmt.Errorf("month total: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT category, SUM(amount_cents) AS total
		FROM expenses
		WHERE deleted_at IS NULL AND spent_at >= ? AND spent_at < ?
		GROUP BY category
		ORDER BY total DESC`, from, to)
	if err != nil {
		return overview, fmt.Errorf("category sums: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ca core.CategoryAmount
		if err := rows.Scan(&ca.Name, &ca.Amount.Cents); err != nil {
			return overview, fmt.Errorf("scan category sum: %w", err)
		}
		overview.ByCategory = append(overview.ByCategory, ca)
	}
	if err := rows.Err(); err != nil {
		return overview, fmt.Errorf("iterate category sums: %w", err)
	}
	return overview, nil
}

// UpsertBudget creates or replaces the limit for a category+month.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (category, year, month, limit_cents)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(category, year, month)
		DO UPDATE SET limit_cents = excluded.limit_cents, updated_at = CURRENT_TIMESTAMP`,
		b.Category, b.Year, b.Month, b.Limit.Cents)
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget saved",
		"category", b.Category,
		"year", b.Year,
		"month", b.Month,
		"limit_cents", b.Limit.Cents)
	return nil
}

// ListBudgetStatuses returns every budget for the month joined with what was
// actually spent in its category.
func (r *SQLiteRepository) ListBudgetStatuses(ctx context.Context, year, month int) ([]core.BudgetStatus, error) {
	from, to := monthBounds(year, month)
	rows, err := r.db.QueryContext(ctx, `
		SELECT b.category, b.limit_cents, COALESCE((
			SELECT SUM(e.amount_cents)
			FROM expenses e
			WHERE e.category = b.category
			  AND e.deleted_at IS NULL
			  AND e.spent_at >= ? AND e.spent_at < ?
		), 0) AS spent_cents
		FROM budgets b
		WHERE b.year = ? AND b.month = ?
		ORDER BY b.category`, from, to, year, month)
	if err != nil {
		return nil, fmt.Errorf("list budget statuses: %w", err)
	}
	defer rows.Close()

	var statuses []core.BudgetStatus
	for rows.Next() {
		var category string
		var limit, spent core.Money
		if err := rows.Scan(&category, &limit.Cents, &spent.Cents); err != nil {
			return nil, fmt.Errorf("scan budget status: %w", err)
		}
		statuses = append(statuses, core.NewBudgetStatus(category, limit, spent))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budget statuses: %w", err)
	}
	return statuses, nil
}

// PendingSyncExpense is the minimal data needed for sync queue messages.
type PendingSyncExpense struct {
	ID      int64
	Version int64
}

// GetPendingSyncExpenses returns expenses still waiting for spreadsheet export.
func (r *SQLiteRepository) GetPendingSyncExpenses(ctx context.Context, limit int) ([]PendingSyncExpense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, version
		FROM expenses
		WHERE sync_status = ? AND deleted_at IS NULL
		ORDER BY id
		LIMIT ?`, SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync expenses: %w", err)
	}
	defer rows.Close()

	var pending []PendingSyncExpense
	for rows.Next() {
		var p PendingSyncExpense
		if err := rows.Scan(&p.ID, &p.Version); err != nil {
			return nil, fmt.Errorf("scan pending expense: %w", err)
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending expenses: %w", err)
	}
	return pending, nil
}

// MarkSynced marks an expense as successfully exported.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if err := r.setSyncStatus(ctx, id, SyncDone); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Expense marked as synced", "id", id)
	return nil
}

// MarkSyncError marks an expense as having failed export.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if err := r.setSyncStatus(ctx, id, SyncError); err != nil {
		return err
	}
	slog.WarnContext(ctx, "Expense marked with sync error", "id", id)
	return nil
}

func (r *SQLiteRepository) setSyncStatus(ctx context.Context, id int64, status string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE expenses
		SET sync_status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("set sync status %s: %w", status, err)
	}
	return nil
}

// monthBounds returns the half-open UTC interval covering the month.
func monthBounds(year, month int) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}
