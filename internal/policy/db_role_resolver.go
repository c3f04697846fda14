package policy

import (
	"context"
	"errors"

	"github.com/diewo77/go-employes/gate"
	"github.com/diewo77/go-employes/internal/models"
	"gorm.io/gorm"
)

// DBRoleResolver resolves a user id to the profile of the user's role.
type DBRoleResolver struct {
	DB    *gorm.DB
	Roles gate.RoleTable
}

// NewDBRoleResolver creates a resolver reading roles from db.
func NewDBRoleResolver(db *gorm.DB, roles gate.RoleTable) *DBRoleResolver {
	return &DBRoleResolver{DB: db, Roles: roles}
}

// Resolve returns nil for unknown and inactive users.
func (r *DBRoleResolver) Resolve(ctx context.Context, userID uint) (gate.Profile, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Select("id", "role", "is_active").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, nil
	}
	return r.Roles.Profile(string(user.Role)), nil
}
