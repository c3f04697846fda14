package db

import (
	"fmt"

	"github.com/diewo77/go-employes/internal/models"
	"gorm.io/gorm"
)

// Migrate runs all database migrations.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.EmployeProfile{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
