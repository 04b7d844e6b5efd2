package interfaces

import (
	"context"
	"time"

	"github.com/ledgerstack/ledgerstack/internal/models"
)

type SyncStateRepository interface {
	GetSyncState(ctx context.Context, userID string) (*models.SyncState, error)
	SaveSyncState(ctx context.Context, userID string, lastSyncedAt time.Time) error
	DeleteSyncState(ctx context.Context, userID string) error
}
