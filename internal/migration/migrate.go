package migration

import (
	"gorm.io/gorm"

	"github.com/threadpost/threadpost-backend/internal/domain"
)

// Run applies the schema for the three record sets. AutoMigrate only adds
// missing columns and indexes; it never drops data.
func Run(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Message{},
		&domain.MessageHistory{},
		&domain.Notification{},
	)
}
