package handlers

import (
	goerrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ledgerstack/ledgerstack/interfaces"
	"github.com/ledgerstack/ledgerstack/internal/errors"
	"github.com/ledgerstack/ledgerstack/internal/tracing"
)

type SyncHandler struct {
	syncService interfaces.SyncService
	syncStates  interfaces.SyncStateRepository
}

func NewSyncHandler(syncService interfaces.SyncService, syncStates interfaces.SyncStateRepository) *SyncHandler {
	return &SyncHandler{syncService: syncService, syncStates: syncStates}
}

// Trigger runs a sync for the user and returns the scanned/saved counts
func (h *SyncHandler) Trigger() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "TriggerSync", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		id := c.Param("id")
		tracing.TagUserId(span, id)

		result, err := h.syncService.RunSync(ctx, id)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(syncErrorStatus(err), gin.H{"error": syncErrorMessage(err)})
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// Reset drops the user's sync cursor so the next run re-scans from the
// configured epoch. Already-stored transactions stay put; the duplicate
// window absorbs the re-scan.
func (h *SyncHandler) Reset() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "ResetSync", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		id := c.Param("id")
		tracing.TagUserId(span, id)

		if err := h.syncStates.DeleteSyncState(ctx, id); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset sync state"})
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// syncErrorStatus maps error kinds to HTTP status codes. Collaborator
// internals never leak into the response body.
func syncErrorStatus(err error) int {
	switch errors.KindOf(err) {
	case errors.KindAuthRequired:
		return http.StatusUnauthorized
	case errors.KindCollaboratorUnavailable:
		return http.StatusServiceUnavailable
	case errors.KindValidation:
		if goerrors.Is(err, errors.ErrSyncInProgress) {
			return http.StatusConflict
		}
		if goerrors.Is(err, errors.ErrUserNotFound) {
			return http.StatusNotFound
		}
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func syncErrorMessage(err error) string {
	var syncErr *errors.SyncError
	if goerrors.As(err, &syncErr) {
		return syncErr.Message
	}
	return "sync failed"
}
