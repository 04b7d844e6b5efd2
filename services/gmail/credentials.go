package gmail

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"

	"github.com/ledgerstack/ledgerstack/config"
	"github.com/ledgerstack/ledgerstack/interfaces"
	"github.com/ledgerstack/ledgerstack/internal/errors"
	"github.com/ledgerstack/ledgerstack/internal/logger"
	"github.com/ledgerstack/ledgerstack/internal/models"
	"github.com/ledgerstack/ledgerstack/internal/tracing"
)

type credentialService struct {
	log         logger.Logger
	oauthConfig *oauth2.Config
	users       interfaces.UserRepository
}

func NewCredentialService(log logger.Logger, cfg *config.GoogleOAuthConfig, users interfaces.UserRepository) interfaces.CredentialService {
	return &credentialService{
		log: log,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{gmail.GmailReadonlyScope},
			Endpoint:     google.Endpoint,
		},
		users: users,
	}
}

func (s *credentialService) AuthURL(state string) string {
	// Offline access plus forced consent so Google returns a refresh token.
	return s.oauthConfig.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
}

func (s *credentialService) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "CredentialService.ExchangeCode")
	defer span.Finish()
	tracing.TagComponentGoogle(span)

	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		wrapped := errors.NewAuthRequired("failed to exchange authorization code", err)
		tracing.TraceErr(span, wrapped)
		return nil, wrapped
	}
	return token, nil
}

// EnsureValidToken exchanges the stored refresh token for a fresh access
// token and persists the rotated credential. Token expiry is not stored, so
// every sync starts from a refresh rather than trusting a stale access token.
func (s *credentialService) EnsureValidToken(ctx context.Context, user *models.UserProfile) (*oauth2.Token, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "CredentialService.EnsureValidToken")
	defer span.Finish()
	tracing.TagComponentGoogle(span)
	tracing.TagUserId(span, user.ID)

	if !user.HasGoogleCredential() {
		err := errors.NewAuthRequired("google account is not connected", errors.ErrGoogleNotConnected)
		tracing.TraceErr(span, err)
		return nil, err
	}

	stored := &oauth2.Token{
		AccessToken:  user.GoogleAccessToken,
		RefreshToken: user.GoogleRefreshToken,
	}

	fresh, err := s.oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: stored.RefreshToken}).Token()
	if err != nil {
		wrapped := errors.NewAuthRequired("failed to refresh google credential", err)
		tracing.TraceErr(span, wrapped)
		return nil, wrapped
	}

	if fresh.AccessToken != stored.AccessToken || (fresh.RefreshToken != "" && fresh.RefreshToken != stored.RefreshToken) {
		if err := s.users.SaveGoogleTokens(ctx, user.ID, fresh.AccessToken, fresh.RefreshToken); err != nil {
			tracing.TraceErr(span, err)
			return nil, errors.NewPersistenceFailure("failed to persist refreshed credential", err)
		}
		user.GoogleAccessToken = fresh.AccessToken
		if fresh.RefreshToken != "" {
			user.GoogleRefreshToken = fresh.RefreshToken
		}
	}

	return fresh, nil
}
