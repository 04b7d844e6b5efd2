package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ledgerstack/ledgerstack/internal/errors"
	"github.com/ledgerstack/ledgerstack/internal/models"
)

type fakeSyncStates struct {
	state     *models.SyncState
	deleteErr error
	deleted   []string
}

func (f *fakeSyncStates) GetSyncState(ctx context.Context, userID string) (*models.SyncState, error) {
	return f.state, nil
}

func (f *fakeSyncStates) SaveSyncState(ctx context.Context, userID string, lastSyncedAt time.Time) error {
	f.state = &models.SyncState{UserID: userID, LastSyncedAt: lastSyncedAt}
	return nil
}

func (f *fakeSyncStates) DeleteSyncState(ctx context.Context, userID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, userID)
	f.state = nil
	return nil
}

func resetRequest(t *testing.T, handler *SyncHandler, userID string) *httptest.ResponseRecorder {
	t.Helper()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.DELETE("/v1/users/:id/sync", handler.Reset())

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodDelete, "/v1/users/"+userID+"/sync", nil)
	r.ServeHTTP(recorder, request)
	return recorder
}

func TestSyncHandler_ResetDropsCursor(t *testing.T) {
	syncStates := &fakeSyncStates{state: &models.SyncState{UserID: "user_1", LastSyncedAt: time.Now()}}
	handler := NewSyncHandler(nil, syncStates)

	recorder := resetRequest(t, handler, "user_1")

	require.Equal(t, http.StatusNoContent, recorder.Code)
	require.Equal(t, []string{"user_1"}, syncStates.deleted)
	require.Nil(t, syncStates.state)
}

func TestSyncHandler_ResetFailure(t *testing.T) {
	syncStates := &fakeSyncStates{deleteErr: errors.NewPersistenceFailure("delete failed", nil)}
	handler := NewSyncHandler(nil, syncStates)

	recorder := resetRequest(t, handler, "user_1")

	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	require.Empty(t, syncStates.deleted)
}
