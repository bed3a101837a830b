package database

import (
	"gorm.io/gorm"

	"github.com/twohearts/wedding-api/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Token{},
		&models.InvitationGroup{},
		&models.Invitation{},
		&models.Guest{},
		&models.MenuItem{},
	)
}
