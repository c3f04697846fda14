// Package serializers maps models to and from their JSON representation.
//
// UserRepresentation is read only. EmployeRepresentation nests it under
// "user"; on input only the four employee fields are writable, "id" and
// "user" are ignored, and the user association is supplied by the caller.
package serializers

import "github.com/diewo77/go-employes/internal/models"

// UserRepresentation exposes exactly id, email, is_active and role.
type UserRepresentation struct {
	ID       uint        `json:"id"`
	Email    string      `json:"email"`
	IsActive bool        `json:"is_active"`
	Role     models.Role `json:"role"`
}

// NewUserRepresentation maps a user to its public fields.
func NewUserRepresentation(u models.User) UserRepresentation {
	return UserRepresentation{
		ID:       u.ID,
		Email:    u.Email,
		IsActive: u.IsActive,
		Role:     u.Role,
	}
}
