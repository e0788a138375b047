package repository

import (
	"context"

	"opsplan-service/internal/domain/entity"
)

// TemplateRenderer defines the interface for rendering a notification
// template by reference id with a context map.
type TemplateRenderer interface {
	Render(ctx context.Context, templateID string, data map[string]interface{}) (*entity.RenderedMessage, error)
}
