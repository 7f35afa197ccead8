package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jiwoo-hwang/receipt-budget/internal/common"
	"github.com/jiwoo-hwang/receipt-budget/internal/entity"
)

// updatableColumns whitelists the fields an inline correction may touch.
var updatableColumns = map[string]string{
	"store":    "store",
	"amount":   "amount",
	"date":     "date",
	"category": "category",
}

type TransactionRepository interface {
	Insert(ctx context.Context, tx *entity.Transaction) error
	ListByUser(ctx context.Context, userID string) ([]*entity.Transaction, error)
	GetByID(ctx context.Context, userID string, id uuid.UUID) (*entity.Transaction, error)
	UpdateField(ctx context.Context, userID string, id uuid.UUID, field string, value any) error
	SoftDelete(ctx context.Context, userID string, id uuid.UUID) error
	Stats(ctx context.Context, userID, month string) (*entity.Stats, error)
}

type transactionRepository struct {
	db     *sql.DB
	budget BudgetRepository
	logger *slog.Logger
}

func NewTransactionRepository(db *sql.DB, budget BudgetRepository, logger *slog.Logger) TransactionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &transactionRepository{db: db, budget: budget, logger: logger}
}

func (r *transactionRepository) Insert(ctx context.Context, tx *entity.Transaction) error {
	var amount any
	if tx.Amount != nil {
		amount = *tx.Amount
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, store, amount, date, category, ocr_store, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID.String(), tx.UserID, tx.Store, amount, tx.Date, tx.Category, tx.OCRStore,
		tx.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		r.logger.Error("insert transaction failed", "id", tx.ID, "error", err)
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, store, amount, date, category, ocr_store, created_at
		 FROM transactions
		 WHERE user_id = ? AND deleted_at IS NULL
		 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]*entity.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (r *transactionRepository) GetByID(ctx context.Context, userID string, id uuid.UUID) (*entity.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, store, amount, date, category, ocr_store, created_at
		 FROM transactions
		 WHERE user_id = ? AND id = ? AND deleted_at IS NULL`, userID, id.String())
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return tx, err
}

func (r *transactionRepository) UpdateField(ctx context.Context, userID string, id uuid.UUID, field string, value any) error {
	col, ok := updatableColumns[field]
	if !ok {
		return common.NewAppError("INVALID_FIELD", fmt.Sprintf("field %q is not updatable", field), common.ErrInvalidInput)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET `+col+` = ? WHERE user_id = ? AND id = ? AND deleted_at IS NULL`,
		value, userID, id.String())
	if err != nil {
		return fmt.Errorf("update %s: %w", field, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *transactionRepository) SoftDelete(ctx context.Context, userID string, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET deleted_at = ? WHERE user_id = ? AND id = ? AND deleted_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339), userID, id.String())
	if err != nil {
		return fmt.Errorf("soft delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// Stats aggregates spending for the user, optionally filtered to a single
// YYYY-MM month. The monthly breakdown always covers all months.
func (r *transactionRepository) Stats(ctx context.Context, userID, month string) (*entity.Stats, error) {
	stats := &entity.Stats{
		CategoryStats: make(map[string]int64),
		MonthlyStats:  make(map[string]int64),
	}

	where := `user_id = ? AND deleted_at IS NULL`
	args := []any{userID}
	if month != "" {
		where += ` AND SUBSTR(date, 1, 7) = ?`
		args = append(args, month)
	}

	var total, count sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(amount), COUNT(*) FROM transactions WHERE `+where, args...).
		Scan(&total, &count)
	if err != nil {
		return nil, fmt.Errorf("stats totals: %w", err)
	}
	stats.TotalSpent = total.Int64
	stats.TransactionCount = count.Int64

	rows, err := r.db.QueryContext(ctx,
		`SELECT category, SUM(amount) FROM transactions WHERE `+where+` GROUP BY category`, args...)
	if err != nil {
		return nil, fmt.Errorf("stats categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			category sql.NullString
			sum      sql.NullInt64
		)
		if err := rows.Scan(&category, &sum); err != nil {
			return nil, err
		}
		key := category.String
		if key == "" {
			key = "기타"
		}
		stats.CategoryStats[key] = sum.Int64
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	monthRows, err := r.db.QueryContext(ctx,
		`SELECT SUBSTR(date, 1, 7), SUM(amount)
		 FROM transactions
		 WHERE user_id = ? AND deleted_at IS NULL
		 GROUP BY 1`, userID)
	if err != nil {
		return nil, fmt.Errorf("stats monthly: %w", err)
	}
	defer monthRows.Close()
	for monthRows.Next() {
		var (
			ym  sql.NullString
			sum sql.NullInt64
		)
		if err := monthRows.Scan(&ym, &sum); err != nil {
			return nil, err
		}
		key := ym.String
		if key == "" {
			key = "unknown"
		}
		stats.MonthlyStats[key] = sum.Int64
	}
	if err := monthRows.Err(); err != nil {
		return nil, err
	}

	budget, ok, err := r.budget.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ok {
		stats.MonthlyBudget = budget
		stats.RemainingBudget = budget - stats.TotalSpent
	}
	return stats, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (*entity.Transaction, error) {
	var (
		tx        entity.Transaction
		idStr     string
		amount    sql.NullInt64
		createdAt string
	)
	if err := row.Scan(&idStr, &tx.UserID, &tx.Store, &amount, &tx.Date, &tx.Category, &tx.OCRStore, &createdAt); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse transaction id: %w", err)
	}
	tx.ID = id
	if amount.Valid {
		v := amount.Int64
		tx.Amount = &v
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		tx.CreatedAt = t
	}
	return &tx, nil
}
