package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ledgerstack/ledgerstack/interfaces"
	"github.com/ledgerstack/ledgerstack/internal/repository"
	"github.com/ledgerstack/ledgerstack/internal/tracing"
)

type OAuthHandler struct {
	credentials interfaces.CredentialService
	repos       *repository.Repositories
}

func NewOAuthHandler(credentials interfaces.CredentialService, repos *repository.Repositories) *OAuthHandler {
	return &OAuthHandler{
		credentials: credentials,
		repos:       repos,
	}
}

// Connect returns the Google consent URL for the user. The user id rides in
// the OAuth state parameter and comes back on the callback.
func (h *OAuthHandler) Connect() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "GoogleConnect", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		id := c.Param("id")
		tracing.TagUserId(span, id)

		user, err := h.repos.User.GetByID(ctx, id)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if user == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"authUrl": h.credentials.AuthURL(user.ID)})
	}
}

// Callback handles the Google redirect, exchanges the code and stores the
// tokens on the user's profile.
func (h *OAuthHandler) Callback() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "GoogleCallback", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		userID := c.Query("state")
		code := c.Query("code")
		if userID == "" || code == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing state or code"})
			return
		}
		tracing.TagUserId(span, userID)

		user, err := h.repos.User.GetByID(ctx, userID)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if user == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		token, err := h.credentials.ExchangeCode(ctx, code)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to exchange authorization code"})
			return
		}

		if err := h.repos.User.SaveGoogleTokens(ctx, user.ID, token.AccessToken, token.RefreshToken); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "google account connected"})
	}
}
