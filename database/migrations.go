package database

import (
	"project/models"

	"gorm.io/gorm"
)

// Migrate runs AutoMigrate for every model inside a transaction where the
// dialect supports it.
func Migrate(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		return tx.AutoMigrate(
			&models.Admin{},
			&models.RefreshToken{},
			&models.RevokedToken{},
			&models.User{},
			&models.Plan{},
			&models.Investment{},
			&models.Transaction{},
			&models.KycSubmission{},
			&models.Setting{},
		)
	})
}
