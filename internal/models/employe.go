package models

import (
	"time"

	"gorm.io/gorm"
)

// EmployeProfile is the staff record attached to exactly one user account.
type EmployeProfile struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`

	Nom                  string `gorm:"size:100;not null" json:"nom"`
	Prenom               string `gorm:"size:100;not null" json:"prenom"`
	Matricule            string `gorm:"size:50;uniqueIndex;not null" json:"matricule"`
	IdentifiantTelephone string `gorm:"size:50;not null" json:"identifiant_telephone"`
}

// GetUserID returns the owning account, for ownership checks.
func (p *EmployeProfile) GetUserID() uint {
	return p.UserID
}

// FullName is "Prenom Nom".
func (p *EmployeProfile) FullName() string {
	switch {
	case p.Prenom == "":
		return p.Nom
	case p.Nom == "":
		return p.Prenom
	}
	return p.Prenom + " " + p.Nom
}
