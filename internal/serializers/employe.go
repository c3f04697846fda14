package serializers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/go-employes/internal/models"
	"github.com/diewo77/go-employes/validation"
	"gorm.io/gorm"
)

var (
	ErrUserNotLoaded  = errors.New("employe user not loaded")
	ErrUserRequired   = errors.New("employe user required")
	ErrUserHasProfile = errors.New("user already has an employe profile")
)

// EmployeRepresentation is the JSON form of an EmployeProfile.
type EmployeRepresentation struct {
	ID                   uint               `json:"id"`
	User                 UserRepresentation `json:"user"`
	Nom                  string             `json:"nom"`
	Prenom               string             `json:"prenom"`
	Matricule            string             `json:"matricule"`
	IdentifiantTelephone string             `json:"identifiant_telephone"`
}

// NewEmployeRepresentation requires p.User to be loaded.
func NewEmployeRepresentation(p *models.EmployeProfile) (EmployeRepresentation, error) {
	if p == nil || p.User.ID == 0 || p.User.ID != p.UserID {
		return EmployeRepresentation{}, ErrUserNotLoaded
	}
	return EmployeRepresentation{
		ID:                   p.ID,
		User:                 NewUserRepresentation(p.User),
		Nom:                  p.Nom,
		Prenom:               p.Prenom,
		Matricule:            p.Matricule,
		IdentifiantTelephone: p.IdentifiantTelephone,
	}, nil
}

// NewEmployeRepresentations maps a list, failing on the first unloaded user.
func NewEmployeRepresentations(profiles []models.EmployeProfile) ([]EmployeRepresentation, error) {
	out := make([]EmployeRepresentation, 0, len(profiles))
	for i := range profiles {
		rep, err := NewEmployeRepresentation(&profiles[i])
		if err != nil {
			return nil, fmt.Errorf("employe %d: %w", profiles[i].ID, err)
		}
		out = append(out, rep)
	}
	return out, nil
}

// EmployeInput holds the writable employee fields after decoding.
type EmployeInput struct {
	Nom                  string `json:"nom" validate:"required,max=100"`
	Prenom               string `json:"prenom" validate:"required,max=100"`
	Matricule            string `json:"matricule" validate:"required,max=50"`
	IdentifiantTelephone string `json:"identifiant_telephone" validate:"required,max=50"`
}

// DecodeEmploye decodes and validates an employee payload.
// The returned error is a *validation.Error.
func DecodeEmploye(data []byte) (EmployeInput, error) {
	fields, err := decodeObject(data)
	if err != nil {
		return EmployeInput{}, err
	}
	in, v := employeFields(fields)
	return in, v.Err()
}

func employeFields(fields map[string]json.RawMessage) (EmployeInput, validation.Violations) {
	v := make(validation.Violations)
	in := EmployeInput{
		Nom:                  charField(fields, "nom", v),
		Prenom:               charField(fields, "prenom", v),
		Matricule:            charField(fields, "matricule", v),
		IdentifiantTelephone: charField(fields, "identifiant_telephone", v),
	}
	if err := validation.Struct(in, v); err != nil {
		v.Add("non_field_errors", "invalid")
	}
	return in, v
}

// decodeObject accepts only a JSON object.
func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' || json.Unmarshal(trimmed, &fields) != nil {
		return nil, validation.Violations{"non_field_errors": "invalid"}.Err()
	}
	return fields, nil
}

// charField reads a text field: strings and numbers are accepted, numbers
// as their literal text; the value is whitespace trimmed. Presence and type
// problems are recorded in v, blank and length are left to the validate tags.
func charField(fields map[string]json.RawMessage, name string, v validation.Violations) string {
	return textField(fields, name, true, v)
}

func textField(fields map[string]json.RawMessage, name string, trim bool, v validation.Violations) string {
	raw, ok := fields[name]
	if !ok {
		v.Add(name, "required")
		return ""
	}
	raw = bytes.TrimSpace(raw)
	switch {
	case bytes.Equal(raw, []byte("null")):
		v.Add(name, "null")
		return ""
	case len(raw) > 0 && raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			v.Add(name, "invalid")
			return ""
		}
		if trim {
			s = strings.TrimSpace(s)
		}
		return s
	case len(raw) > 0 && (raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9')):
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			v.Add(name, "invalid")
			return ""
		}
		return n.String()
	default:
		v.Add(name, "invalid")
		return ""
	}
}

// EmployeSerializer persists decoded employee input.
type EmployeSerializer struct {
	db *gorm.DB
}

// NewEmployeSerializer creates a serializer writing through db.
func NewEmployeSerializer(db *gorm.DB) *EmployeSerializer {
	return &EmployeSerializer{db: db}
}

// WithDB returns a serializer bound to tx, for use inside a transaction.
func (s *EmployeSerializer) WithDB(tx *gorm.DB) *EmployeSerializer {
	return &EmployeSerializer{db: tx}
}

// Create stores a new profile for user. The id is assigned by the database.
func (s *EmployeSerializer) Create(ctx context.Context, in EmployeInput, user *models.User) (*models.EmployeProfile, error) {
	if user == nil || user.ID == 0 {
		return nil, ErrUserRequired
	}
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.EmployeProfile{}).Where("matricule = ?", in.Matricule).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check matricule: %w", err)
	}
	if count > 0 {
		return nil, validation.Violations{"matricule": "unique"}.Err()
	}
	if err := db.Model(&models.EmployeProfile{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check user profile: %w", err)
	}
	if count > 0 {
		return nil, ErrUserHasProfile
	}

	profile := &models.EmployeProfile{
		UserID:               user.ID,
		Nom:                  in.Nom,
		Prenom:               in.Prenom,
		Matricule:            in.Matricule,
		IdentifiantTelephone: in.IdentifiantTelephone,
	}
	if err := db.Omit("User").Create(profile).Error; err != nil {
		return nil, fmt.Errorf("create employe: %w", err)
	}
	profile.User = *user
	return profile, nil
}
