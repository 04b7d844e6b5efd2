package repository

import (
	"context"
	"errors"
	"time"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/ledgerstack/ledgerstack/interfaces"
	"github.com/ledgerstack/ledgerstack/internal/models"
	"github.com/ledgerstack/ledgerstack/internal/tracing"
	"github.com/ledgerstack/ledgerstack/internal/utils"
)

type syncStateRepository struct {
	db *gorm.DB
}

func NewSyncStateRepository(db *gorm.DB) interfaces.SyncStateRepository {
	return &syncStateRepository{db: db}
}

func (r *syncStateRepository) GetSyncState(ctx context.Context, userID string) (*models.SyncState, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "syncStateRepository.GetSyncState")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.SetTag("user.id", userID)

	var state models.SyncState
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&state).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &state, nil
}

// SaveSyncState advances the cursor, creating the row on first sync.
func (r *syncStateRepository) SaveSyncState(ctx context.Context, userID string, lastSyncedAt time.Time) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "syncStateRepository.SaveSyncState")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.SetTag("user.id", userID)

	result := r.db.WithContext(ctx).
		Model(&models.SyncState{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"last_synced_at": lastSyncedAt,
			"updated_at":     utils.Now(),
		})
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return result.Error
	}

	if result.RowsAffected == 0 {
		state := models.SyncState{
			UserID:       userID,
			LastSyncedAt: lastSyncedAt,
		}
		if err := r.db.WithContext(ctx).Create(&state).Error; err != nil {
			tracing.TraceErr(span, err)
			return err
		}
	}

	return nil
}

func (r *syncStateRepository) DeleteSyncState(ctx context.Context, userID string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "syncStateRepository.DeleteSyncState")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.SetTag("user.id", userID)

	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.SyncState{}).Error; err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}
