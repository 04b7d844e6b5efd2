package repository

import (
	"context"
	"errors"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/ledgerstack/ledgerstack/interfaces"
	"github.com/ledgerstack/ledgerstack/internal/models"
	"github.com/ledgerstack/ledgerstack/internal/tracing"
	"github.com/ledgerstack/ledgerstack/internal/utils"
)

type financialReportRepository struct {
	db *gorm.DB
}

func NewFinancialReportRepository(db *gorm.DB) interfaces.FinancialReportRepository {
	return &financialReportRepository{db: db}
}

func (r *financialReportRepository) GetByUserMonth(ctx context.Context, userID string, month, year int) (*models.FinancialReport, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "financialReportRepository.GetByUserMonth")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.SetTag("user.id", userID)

	var report models.FinancialReport
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &report, nil
}

// Save replaces the report for a user month if one already exists.
func (r *financialReportRepository) Save(ctx context.Context, report *models.FinancialReport) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "financialReportRepository.Save")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.SetTag("user.id", report.UserID)

	result := r.db.WithContext(ctx).
		Model(&models.FinancialReport{}).
		Where("user_id = ? AND month = ? AND year = ?", report.UserID, report.Month, report.Year).
		Updates(map[string]interface{}{
			"report_data":  report.ReportData,
			"generated_at": utils.Now(),
		})
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return result.Error
	}

	if result.RowsAffected == 0 {
		if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
			tracing.TraceErr(span, err)
			return err
		}
	}

	return nil
}
