package repository

import (
	"context"

	"opsplan-service/internal/domain/entity"
)

// NotifierRepository defines the interface for delivering a rendered
// reminder to a recipient.
type NotifierRepository interface {
	SendReminder(ctx context.Context, recipient string, message *entity.RenderedMessage) error
}
