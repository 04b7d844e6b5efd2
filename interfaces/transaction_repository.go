package interfaces

import (
	"context"
	"time"

	"github.com/ledgerstack/ledgerstack/internal/models"
)

type TransactionRepository interface {
	Create(ctx context.Context, transaction *models.Transaction) error
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Transaction, error)
	ListUncategorizedByUser(ctx context.Context, userID string) ([]*models.Transaction, error)
	SetCategory(ctx context.Context, transactionID, category string) error
	// ExistsInWindow reports a same-amount transaction for the user with
	// occurred_at inside the symmetric window around occurredAt.
	ExistsInWindow(ctx context.Context, userID string, amount float64, occurredAt time.Time, window time.Duration) (bool, error)
	TotalsByType(ctx context.Context, userID string) (*TypeTotals, error)
	SpendByCategory(ctx context.Context, userID string) ([]CategorySpend, error)
}

// TypeTotals aggregates credited and debited amounts for a user.
type TypeTotals struct {
	Credited float64
	Debited  float64
}

// CategorySpend is the per-category debit total, descending.
type CategorySpend struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}
