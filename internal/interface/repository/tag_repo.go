package repository

import (
	"context"

	"gorm.io/gorm"

	"opsplan-service/internal/domain/entity"
	"opsplan-service/internal/domain/repository"
)

// GormTagIndex implements the TagIndex interface
type GormTagIndex struct {
	db *gorm.DB
}

// NewGormTagIndex creates a new GORM tag index
func NewGormTagIndex(db *gorm.DB) repository.TagIndex {
	return &GormTagIndex{
		db: db,
	}
}

// TagModel GORM model for database mapping
type TagModel struct {
	ID    string `gorm:"primaryKey;column:id"`
	Name  string `gorm:"column:name"`
	Color string `gorm:"column:color"`
}

// TableName overrides the default table name
func (TagModel) TableName() string {
	return "m_tags"
}

// TagBindingModel GORM model for database mapping
type TagBindingModel struct {
	TagID      string `gorm:"primaryKey;column:tag_id"`
	EntityType string `gorm:"primaryKey;column:entity_type"`
	EntityID   string `gorm:"primaryKey;column:entity_id"`
}

// TableName overrides the default table name
func (TagBindingModel) TableName() string {
	return "m_tag_bindings"
}

// TagsFor returns the tags bound to the given entity
func (r *GormTagIndex) TagsFor(ctx context.Context, entityType, entityID string) ([]*entity.Tag, error) {
	var models []TagModel
	result := r.db.WithContext(ctx).
		Joins("JOIN m_tag_bindings ON m_tag_bindings.tag_id = m_tags.id").
		Where("m_tag_bindings.entity_type = ? AND m_tag_bindings.entity_id = ?", entityType, entityID).
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	tags := make([]*entity.Tag, 0, len(models))
	for _, model := range models {
		tags = append(tags, &entity.Tag{
			ID:    model.ID,
			Name:  model.Name,
			Color: model.Color,
		})
	}
	return tags, nil
}
