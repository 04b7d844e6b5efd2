package interfaces

import (
	"context"

	"github.com/ledgerstack/ledgerstack/internal/models"
)

// AnalysisService runs the downstream, best-effort AI steps over persisted
// transactions.
type AnalysisService interface {
	// CategorizeTransactions labels all uncategorized transactions for the
	// user. Returns how many were labeled.
	CategorizeTransactions(ctx context.Context, userID string) (int, error)
	// GenerateMonthlyReport builds and stores the report for the given
	// month, replacing any previous one.
	GenerateMonthlyReport(ctx context.Context, userID string, month, year int) (*models.FinancialReport, error)
	GetMonthlyReport(ctx context.Context, userID string, month, year int) (*models.FinancialReport, error)
}
