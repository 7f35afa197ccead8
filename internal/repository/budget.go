package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type BudgetRepository interface {
	// Get returns the user's monthly budget; ok is false when none is set.
	Get(ctx context.Context, userID string) (budget int64, ok bool, err error)
	Set(ctx context.Context, userID string, budget int64) error
}

type budgetRepository struct {
	db *sql.DB
}

func NewBudgetRepository(db *sql.DB) BudgetRepository {
	return &budgetRepository{db: db}
}

func (r *budgetRepository) Get(ctx context.Context, userID string) (int64, bool, error) {
	var budget int64
	err := r.db.QueryRowContext(ctx,
		`SELECT budget FROM user_budget WHERE user_id = ?`, userID).Scan(&budget)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get budget: %w", err)
	}
	return budget, true, nil
}

func (r *budgetRepository) Set(ctx context.Context, userID string, budget int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO user_budget (user_id, budget) VALUES (?, ?)`, userID, budget)
	if err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	return nil
}
