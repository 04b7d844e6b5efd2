package gmail

import (
	goerrors "errors"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"

	"github.com/ledgerstack/ledgerstack/internal/errors"
)

// wrapGoogleError maps a Gmail API failure onto the sync error taxonomy.
// Credential problems are terminal for the batch; quota and server-side
// failures are retryable.
func wrapGoogleError(message string, err error) error {
	var apiErr *googleapi.Error
	if !goerrors.As(err, &apiErr) {
		return errors.NewCollaboratorUnavailable(message, err)
	}

	switch {
	case apiErr.Code == http.StatusUnauthorized:
		return errors.NewAuthRequired(message, err)
	case apiErr.Code == http.StatusForbidden && isRateLimited(apiErr):
		return errors.NewCollaboratorUnavailable(message, err)
	case apiErr.Code == http.StatusForbidden:
		return errors.NewAuthRequired(message, err)
	case apiErr.Code == http.StatusTooManyRequests:
		return errors.NewCollaboratorUnavailable(message, err)
	case apiErr.Code >= http.StatusInternalServerError:
		return errors.NewCollaboratorUnavailable(message, err)
	default:
		return errors.NewSyncError(errors.KindCollaboratorUnavailable, message, err, false)
	}
}

func isRateLimited(apiErr *googleapi.Error) bool {
	if strings.Contains(strings.ToLower(apiErr.Message), "rate limit") {
		return true
	}
	for _, item := range apiErr.Errors {
		if item.Reason == "rateLimitExceeded" || item.Reason == "userRateLimitExceeded" {
			return true
		}
	}
	return false
}
