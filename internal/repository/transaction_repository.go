package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/ledgerstack/ledgerstack/interfaces"
	"github.com/ledgerstack/ledgerstack/internal/enum"
	"github.com/ledgerstack/ledgerstack/internal/models"
	"github.com/ledgerstack/ledgerstack/internal/tracing"
	"github.com/ledgerstack/ledgerstack/internal/utils"
)

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) interfaces.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "transactionRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	result := r.db.WithContext(ctx).Create(transaction)
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return result.Error
	}

	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "transactionRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var transaction models.Transaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &transaction, nil
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID string) ([]*models.Transaction, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "transactionRepository.ListByUser")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var transactions []*models.Transaction
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("occurred_at DESC").
		Find(&transactions).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	return transactions, nil
}

func (r *transactionRepository) ListUncategorizedByUser(ctx context.Context, userID string) ([]*models.Transaction, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "transactionRepository.ListUncategorizedByUser")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var transactions []*models.Transaction
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND category IS NULL", userID).
		Order("occurred_at DESC").
		Find(&transactions).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	return transactions, nil
}

// SetCategory fills category exactly once; already-categorized rows are left alone.
func (r *transactionRepository) SetCategory(ctx context.Context, transactionID, category string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "transactionRepository.SetCategory")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.SetTag("transaction.id", transactionID)

	result := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND category IS NULL", transactionID).
		Updates(map[string]interface{}{
			"category":   category,
			"updated_at": utils.Now(),
		})
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return fmt.Errorf("failed to set category: %w", result.Error)
	}

	return nil
}

// ExistsInWindow backs the duplicate resolver. Windowed amount matching cannot
// be expressed as a uniqueness constraint, so it runs as a query before insert.
func (r *transactionRepository) ExistsInWindow(ctx context.Context, userID string, amount float64, occurredAt time.Time, window time.Duration) (bool, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "transactionRepository.ExistsInWindow")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.SetTag("user.id", userID)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("user_id = ? AND amount = ? AND occurred_at BETWEEN ? AND ?",
			userID, amount, occurredAt.Add(-window), occurredAt.Add(window)).
		Count(&count).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return false, fmt.Errorf("failed to check duplicate window: %w", err)
	}

	return count > 0, nil
}

func (r *transactionRepository) TotalsByType(ctx context.Context, userID string) (*interfaces.TypeTotals, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "transactionRepository.TotalsByType")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	totals := &interfaces.TypeTotals{}

	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("user_id = ? AND type = ?", userID, enum.TransactionCredited).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&totals.Credited).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("user_id = ? AND type = ?", userID, enum.TransactionDebited).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&totals.Debited).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	return totals, nil
}

func (r *transactionRepository) SpendByCategory(ctx context.Context, userID string) ([]interfaces.CategorySpend, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "transactionRepository.SpendByCategory")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var spend []interfaces.CategorySpend
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("user_id = ? AND type = ? AND category IS NOT NULL", userID, enum.TransactionDebited).
		Select("category, SUM(amount) as total").
		Group("category").
		Order("total DESC").
		Scan(&spend).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	return spend, nil
}
