package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SyncState is the per-user sync cursor. A missing row means the user has
// never completed a sync and the configured epoch date bounds the first fetch.
type SyncState struct {
	ID           string    `gorm:"column:id;type:uuid;primaryKey"`
	UserID       string    `gorm:"column:user_id;type:varchar(50);uniqueIndex;not null"`
	LastSyncedAt time.Time `gorm:"column:last_synced_at;type:timestamp;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp"`
	UpdatedAt    time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp"`
}

func (SyncState) TableName() string {
	return "sync_states"
}

func (s *SyncState) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
