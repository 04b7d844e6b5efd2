package dto

import (
	"github.com/ledgerstack/ledgerstack/internal/enum"
	"github.com/ledgerstack/ledgerstack/internal/models"
)

type Event struct {
	Event    EventDetails  `json:"event"`
	Metadata EventMetadata `json:"metadata"`
}

type EventDetails struct {
	Id         string          `json:"id"`
	EntityId   string          `json:"entityId"`
	EntityType enum.EntityType `json:"entityType"`
	EventType  string          `json:"eventType"`
	Data       interface{}     `json:"data"`
}

type EventMetadata struct {
	UberTraceId string `json:"uber-trace-id"`
	AppSource   string `json:"appSource"`
	Timestamp   string `json:"timestamp"`
}

// TransactionCreated is emitted after a candidate survives the duplicate
// check and is persisted.
type TransactionCreated struct {
	Transaction *models.Transaction `json:"transaction"`
}
