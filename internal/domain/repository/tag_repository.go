package repository

import (
	"context"

	"opsplan-service/internal/domain/entity"
)

// TagIndex defines the tag lookup used to decorate plan reads
type TagIndex interface {
	TagsFor(ctx context.Context, entityType, entityID string) ([]*entity.Tag, error)
}
