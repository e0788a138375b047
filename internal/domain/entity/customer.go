package entity

import (
	"time"

	"gorm.io/gorm"
)

// Customer is a directory entry owned by the customer subsystem; this
// service only checks existence and echoes the id on board groups.
type Customer struct {
	ID        string
	TenantID  string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt
}
