package enum

type TransactionType string

const (
	TransactionCredited TransactionType = "credited"
	TransactionDebited  TransactionType = "debited"
	TransactionUnknown  TransactionType = "unknown"
)

func (t TransactionType) String() string {
	return string(t)
}

type SyncStatus string

const (
	SyncStatusIdle       SyncStatus = "idle"
	SyncStatusListing    SyncStatus = "listing_messages"
	SyncStatusProcessing SyncStatus = "processing_batch"
	SyncStatusFinalizing SyncStatus = "finalizing"
	SyncStatusDone       SyncStatus = "done"
	SyncStatusFailed     SyncStatus = "failed"
)

func (t SyncStatus) String() string {
	return string(t)
}
