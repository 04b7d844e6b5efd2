package interfaces

import (
	"context"

	"github.com/ledgerstack/ledgerstack/internal/enum"
)

type EventPublisher interface {
	PublishDirectEvent(ctx context.Context, entityId string, entityType enum.EntityType, message interface{}) error
	Close() error
}
