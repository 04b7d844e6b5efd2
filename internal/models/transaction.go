package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/ledgerstack/ledgerstack/internal/enum"
	"github.com/ledgerstack/ledgerstack/internal/utils"
)

// Transaction is a persisted financial transaction extracted from an email.
// Immutable after insert except for Category, which the classifier sets once.
type Transaction struct {
	ID     string `gorm:"column:id;type:varchar(50);primaryKey"`
	UserID string `gorm:"column:user_id;type:varchar(50);index;not null"`

	Type        enum.TransactionType `gorm:"column:type;type:varchar(10);index;not null"`
	Amount      float64              `gorm:"column:amount;not null"`
	Source      string               `gorm:"column:source;type:varchar(100)"`
	Account     string               `gorm:"column:account;type:varchar(50)"`
	Description string               `gorm:"column:description;type:text"`
	Category    *string              `gorm:"column:category;type:varchar(50);index"`

	// OccurredAt prefers an in-body date over the provider timestamp.
	OccurredAt time.Time `gorm:"column:occurred_at;type:timestamp;index;not null"`

	SourceMessageID string `gorm:"column:source_message_id;type:varchar(255);index"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = utils.GenerateNanoIDWithPrefix("txn", 24)
	}
	t.CreatedAt = utils.Now()
	return nil
}

// ExtractedTransaction is a candidate produced by the field extractor. It is
// transient; it becomes a Transaction only after the duplicate check passes.
type ExtractedTransaction struct {
	Type        enum.TransactionType
	Amount      float64
	OccurredAt  time.Time
	Description string
	Source      string
	Account     string
}
