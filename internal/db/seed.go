package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/go-employes/internal/config"
	"github.com/diewo77/go-employes/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed ensures the bootstrap administrator exists when configured.
// It is idempotent: an existing account with that email is left untouched.
func Seed(ctx context.Context, db *gorm.DB, cfg config.BootstrapConfig, logger *zap.Logger) error {
	if !cfg.Enabled() {
		logger.Debug("admin bootstrap skipped: ADMIN_EMAIL or ADMIN_PASSWORD not set")
		return nil
	}
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))

	var existing models.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("bootstrap lookup user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("bootstrap hash password: %w", err)
	}
	admin := models.User{
		Email:    email,
		Password: string(hashed),
		IsActive: true,
		Role:     models.RoleAdmin,
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return fmt.Errorf("bootstrap create user: %w", err)
	}
	logger.Info("bootstrap admin user created",
		zap.String("email", admin.Email),
		zap.Uint("user_id", admin.ID),
	)
	return nil
}
