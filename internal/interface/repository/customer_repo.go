package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"opsplan-service/internal/domain/repository"
)

// GormCustomerDirectory implements the CustomerDirectory interface
type GormCustomerDirectory struct {
	db *gorm.DB
}

// NewGormCustomerDirectory creates a new GORM customer directory
func NewGormCustomerDirectory(db *gorm.DB) repository.CustomerDirectory {
	return &GormCustomerDirectory{
		db: db,
	}
}

// CustomerModel GORM model for database mapping
type CustomerModel struct {
	ID        string `gorm:"primaryKey;column:id"`
	TenantID  string `gorm:"column:tenant_id;index"`
	Name      string `gorm:"column:name"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName overrides the default table name
func (CustomerModel) TableName() string {
	return "m_customers"
}

// Exists reports whether the customer is present in the tenant's directory
func (r *GormCustomerDirectory) Exists(ctx context.Context, tenantID, customerID string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&CustomerModel{}).
		Where("id = ? AND tenant_id = ?", customerID, tenantID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}
