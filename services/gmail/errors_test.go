package gmail

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	ledgererrors "github.com/ledgerstack/ledgerstack/internal/errors"
)

func TestWrapGoogleError_Unauthorized(t *testing.T) {
	err := wrapGoogleError("list failed", &googleapi.Error{Code: http.StatusUnauthorized})

	require.Equal(t, ledgererrors.KindAuthRequired, ledgererrors.KindOf(err))
	require.False(t, ledgererrors.IsRetryable(err))
}

func TestWrapGoogleError_RateLimited(t *testing.T) {
	forbidden := &googleapi.Error{
		Code:   http.StatusForbidden,
		Errors: []googleapi.ErrorItem{{Reason: "rateLimitExceeded"}},
	}

	err := wrapGoogleError("list failed", forbidden)
	require.Equal(t, ledgererrors.KindCollaboratorUnavailable, ledgererrors.KindOf(err))
	require.True(t, ledgererrors.IsRetryable(err))

	err = wrapGoogleError("list failed", &googleapi.Error{Code: http.StatusTooManyRequests})
	require.True(t, ledgererrors.IsRetryable(err))
}

func TestWrapGoogleError_ForbiddenWithoutQuotaReasonIsAuth(t *testing.T) {
	err := wrapGoogleError("list failed", &googleapi.Error{Code: http.StatusForbidden})

	require.Equal(t, ledgererrors.KindAuthRequired, ledgererrors.KindOf(err))
}

func TestWrapGoogleError_ServerErrorRetryable(t *testing.T) {
	err := wrapGoogleError("get failed", &googleapi.Error{Code: http.StatusBadGateway})

	require.Equal(t, ledgererrors.KindCollaboratorUnavailable, ledgererrors.KindOf(err))
	require.True(t, ledgererrors.IsRetryable(err))
}

func TestWrapGoogleError_NetworkError(t *testing.T) {
	err := wrapGoogleError("get failed", errors.New("connection reset"))

	require.Equal(t, ledgererrors.KindCollaboratorUnavailable, ledgererrors.KindOf(err))
	require.True(t, ledgererrors.IsRetryable(err))
}
