package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is the category of a user account.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleEmploye Role = "employe"
	RoleClient  Role = "client"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmploye, RoleClient:
		return true
	}
	return false
}

// User represents an account able to authenticate.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Email     string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"` // Hashed, never exposed in JSON
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
	Role      Role           `gorm:"size:20;not null;default:'client'" json:"role"`
}
