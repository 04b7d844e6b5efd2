package interfaces

import (
	"context"
)

// SyncService drives one user's email-to-transaction ingestion.
type SyncService interface {
	// RunSync lists new messages since the user's cursor, extracts and
	// persists transactions, and advances the cursor once the batch
	// completes. Concurrent calls for the same user are serialized.
	RunSync(ctx context.Context, userID string) (*SyncResult, error)
}

type SyncResult struct {
	Scanned int `json:"scanned"`
	Saved   int `json:"saved"`
}
