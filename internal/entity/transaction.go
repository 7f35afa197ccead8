package entity

import (
	"time"

	"github.com/google/uuid"
)

// Transaction is one confirmed receipt in the ledger.
type Transaction struct {
	ID       uuid.UUID `json:"id"`
	UserID   string    `json:"-"`
	Store    string    `json:"store"`
	Amount   *int64    `json:"amount"`
	Date     string    `json:"date"`
	Category string    `json:"category"`
	// OCRStore is the merchant string as OCR saw it, kept so a later user
	// correction can be fed back into the learning store.
	OCRStore  string    `json:"ocr_store"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats summarizes a user's spending for the dashboard.
type Stats struct {
	TotalSpent       int64            `json:"total_spent"`
	TransactionCount int64            `json:"transaction_count"`
	MonthlyBudget    int64            `json:"monthly_budget"`
	RemainingBudget  int64            `json:"remaining_budget"`
	CategoryStats    map[string]int64 `json:"category_stats"`
	MonthlyStats     map[string]int64 `json:"monthly_stats"`
}
