package interfaces

import (
	"context"

	"github.com/ledgerstack/ledgerstack/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.UserProfile) error
	GetByID(ctx context.Context, id string) (*models.UserProfile, error)
	GetByFirebaseUID(ctx context.Context, firebaseUID string) (*models.UserProfile, error)
	GetByEmail(ctx context.Context, email string) (*models.UserProfile, error)
	ListWithGoogleCredential(ctx context.Context) ([]*models.UserProfile, error)
	Update(ctx context.Context, user *models.UserProfile) error
	SaveGoogleTokens(ctx context.Context, userID, accessToken, refreshToken string) error
}
