package repository

import "gorm.io/gorm"

// AutoMigrate creates or updates the relational tables this service owns.
// The customer and tag tables belong to other subsystems in production;
// migrating them here keeps local development self-contained.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&PlanModel{},
		&PlanNodeModel{},
		&ReminderRuleModel{},
		&ParticipantModel{},
		&CustomerModel{},
		&TagModel{},
		&TagBindingModel{},
	)
}
