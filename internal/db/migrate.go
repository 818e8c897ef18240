package db

import (
	"context"

	"gorm.io/gorm"

	"tradepost/internal/models"
)

// Migrate performs schema migrations for the persistent models.
func Migrate(ctx context.Context, database *gorm.DB) error {
	return database.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.PushToken{},
		&models.RefreshToken{},
		&models.ConsentRecord{},
		&models.Notification{},
		&models.Project{},
		&models.Idea{},
		&models.Collaboration{},
		&models.DeletionRequest{},
		&models.AuditLogEntry{},
	)
}
