package interfaces

import (
	"context"

	"github.com/ledgerstack/ledgerstack/internal/models"
)

type FinancialReportRepository interface {
	GetByUserMonth(ctx context.Context, userID string, month, year int) (*models.FinancialReport, error)
	Save(ctx context.Context, report *models.FinancialReport) error
}
