package interfaces

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/ledgerstack/ledgerstack/internal/models"
)

// CredentialService manages the user's Google OAuth credential.
type CredentialService interface {
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
	// EnsureValidToken refreshes the stored token when expired and persists
	// the rotated credential. Returns AuthRequired when re-consent is needed.
	EnsureValidToken(ctx context.Context, user *models.UserProfile) (*oauth2.Token, error)
}
