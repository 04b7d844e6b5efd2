package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/ledgerstack/ledgerstack/interfaces"
	"github.com/ledgerstack/ledgerstack/internal/models"
	"github.com/ledgerstack/ledgerstack/internal/tracing"
	"github.com/ledgerstack/ledgerstack/internal/utils"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) interfaces.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.UserProfile) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "userRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	result := r.db.WithContext(ctx).Create(user)
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return result.Error
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.UserProfile, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "userRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var user models.UserProfile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByFirebaseUID(ctx context.Context, firebaseUID string) (*models.UserProfile, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "userRepository.GetByFirebaseUID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var user models.UserProfile
	if err := r.db.WithContext(ctx).Where("firebase_uid = ?", firebaseUID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "userRepository.GetByEmail")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var user models.UserProfile
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &user, nil
}

// ListWithGoogleCredential returns all users eligible for a background sync
func (r *userRepository) ListWithGoogleCredential(ctx context.Context) ([]*models.UserProfile, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "userRepository.ListWithGoogleCredential")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var users []*models.UserProfile
	if err := r.db.WithContext(ctx).
		Where("google_access_token <> '' AND google_refresh_token <> ''").
		Find(&users).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, fmt.Errorf("failed to list syncable users: %w", err)
	}

	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.UserProfile) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "userRepository.Update")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	user.UpdatedAt = utils.Now()
	result := r.db.WithContext(ctx).Save(user)
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return result.Error
	}

	return nil
}

func (r *userRepository) SaveGoogleTokens(ctx context.Context, userID, accessToken, refreshToken string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "userRepository.SaveGoogleTokens")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.SetTag("user.id", userID)

	updates := map[string]interface{}{
		"google_access_token": accessToken,
		"updated_at":          utils.Now(),
	}
	// Google omits the refresh token on repeat consent; keep the stored one.
	if refreshToken != "" {
		updates["google_refresh_token"] = refreshToken
	}

	result := r.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("id = ?", userID).
		Updates(updates)
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return fmt.Errorf("failed to save google tokens: %w", result.Error)
	}

	return nil
}
