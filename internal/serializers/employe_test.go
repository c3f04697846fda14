package serializers

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/diewo77/go-employes/internal/models"
	"github.com/diewo77/go-employes/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.EmployeProfile{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Password: "hash", IsActive: true, Role: models.RoleEmploye}
	require.NoError(t, db.Create(u).Error)
	return u
}

func keys(t *testing.T, data []byte) []string {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &m))
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func violations(t *testing.T, err error) validation.Violations {
	t.Helper()
	v, ok := validation.AsError(err)
	require.True(t, ok, "expected a validation error, got %v", err)
	return v
}

func TestEmployeRepresentation_Fields(t *testing.T) {
	p := &models.EmployeProfile{
		ID: 3, UserID: 9,
		User:                 models.User{ID: 9, Email: "jean@jo.fr", IsActive: true, Role: models.RoleEmploye, Password: "hash"},
		Nom:                  "Dupont",
		Prenom:               "Jean",
		Matricule:            "E123",
		IdentifiantTelephone: "P456",
	}
	rep, err := NewEmployeRepresentation(p)
	require.NoError(t, err)

	data, err := json.Marshal(rep)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "identifiant_telephone", "matricule", "nom", "prenom", "user"}, keys(t, data))

	var nested struct {
		User json.RawMessage `json:"user"`
	}
	require.NoError(t, json.Unmarshal(data, &nested))
	assert.Equal(t, []string{"email", "id", "is_active", "role"}, keys(t, nested.User))
	assert.JSONEq(t, `{"id":9,"email":"jean@jo.fr","is_active":true,"role":"employe"}`, string(nested.User))
}

func TestEmployeRepresentation_UserNotLoaded(t *testing.T) {
	_, err := NewEmployeRepresentation(&models.EmployeProfile{ID: 1, UserID: 4})
	assert.ErrorIs(t, err, ErrUserNotLoaded)

	_, err = NewEmployeRepresentation(nil)
	assert.ErrorIs(t, err, ErrUserNotLoaded)

	_, err = NewEmployeRepresentations([]models.EmployeProfile{{ID: 2, UserID: 4}})
	assert.ErrorIs(t, err, ErrUserNotLoaded)
}

func TestDecodeEmploye_Valid(t *testing.T) {
	in, err := DecodeEmploye([]byte(`{"nom": "Dupont", "prenom": "Jean", "matricule": "E123", "identifiant_telephone": "P456"}`))
	require.NoError(t, err)
	assert.Equal(t, EmployeInput{Nom: "Dupont", Prenom: "Jean", Matricule: "E123", IdentifiantTelephone: "P456"}, in)
}

func TestDecodeEmploye_IgnoresReadOnlyFields(t *testing.T) {
	in, err := DecodeEmploye([]byte(`{"id": 77, "user": {"id": 1, "role": "admin"}, "extra": true,
		"nom": " Dupont ", "prenom": "Jean", "matricule": 123, "identifiant_telephone": "P456"}`))
	require.NoError(t, err)
	assert.Equal(t, "Dupont", in.Nom)
	assert.Equal(t, "123", in.Matricule)
}

func TestDecodeEmploye_Violations(t *testing.T) {
	tests := []struct {
		name string
		body string
		want validation.Violations
	}{
		{
			name: "missing nom",
			body: `{"prenom": "Jean", "matricule": "E123", "identifiant_telephone": "P456"}`,
			want: validation.Violations{"nom": "required"},
		},
		{
			name: "empty object",
			body: `{}`,
			want: validation.Violations{"nom": "required", "prenom": "required", "matricule": "required", "identifiant_telephone": "required"},
		},
		{
			name: "null blank and wrong types",
			body: `{"nom": null, "prenom": "   ", "matricule": true, "identifiant_telephone": ["P"]}`,
			want: validation.Violations{"nom": "null", "prenom": "blank", "matricule": "invalid", "identifiant_telephone": "invalid"},
		},
		{
			name: "too long",
			body: `{"nom": "Dupont", "prenom": "Jean", "matricule": "` + strings.Repeat("M", 51) + `", "identifiant_telephone": "P456"}`,
			want: validation.Violations{"matricule": "max_length"},
		},
		{
			name: "not an object",
			body: `["Dupont"]`,
			want: validation.Violations{"non_field_errors": "invalid"},
		},
		{
			name: "malformed",
			body: `{"nom": `,
			want: validation.Violations{"non_field_errors": "invalid"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEmploye([]byte(tt.body))
			assert.Equal(t, tt.want, violations(t, err))
		})
	}
}

func TestEmployeSerializer_Create(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "jean@jo.fr")
	s := NewEmployeSerializer(db)

	in, err := DecodeEmploye([]byte(`{"id": 999, "user": {"id": 12345}, "nom": "Dupont", "prenom": "Jean", "matricule": "E123", "identifiant_telephone": "P456"}`))
	require.NoError(t, err)

	profile, err := s.Create(context.Background(), in, user)
	require.NoError(t, err)
	assert.NotZero(t, profile.ID)
	assert.NotEqual(t, uint(999), profile.ID)
	assert.Equal(t, user.ID, profile.UserID)

	var stored models.EmployeProfile
	require.NoError(t, db.Preload("User").First(&stored, profile.ID).Error)
	assert.Equal(t, "Dupont", stored.Nom)
	assert.Equal(t, "Jean", stored.Prenom)
	assert.Equal(t, "E123", stored.Matricule)
	assert.Equal(t, "P456", stored.IdentifiantTelephone)
	assert.Equal(t, user.ID, stored.User.ID)

	// round trip
	rep, err := NewEmployeRepresentation(&stored)
	require.NoError(t, err)
	assert.Equal(t, EmployeRepresentation{
		ID:                   profile.ID,
		User:                 UserRepresentation{ID: user.ID, Email: "jean@jo.fr", IsActive: true, Role: models.RoleEmploye},
		Nom:                  "Dupont",
		Prenom:               "Jean",
		Matricule:            "E123",
		IdentifiantTelephone: "P456",
	}, rep)
}

func TestEmployeSerializer_CreateConstraints(t *testing.T) {
	db := setupTestDB(t)
	s := NewEmployeSerializer(db)
	ctx := context.Background()
	first := seedUser(t, db, "a@jo.fr")
	second := seedUser(t, db, "b@jo.fr")

	in := EmployeInput{Nom: "Dupont", Prenom: "Jean", Matricule: "E123", IdentifiantTelephone: "P456"}
	_, err := s.Create(ctx, in, first)
	require.NoError(t, err)

	_, err = s.Create(ctx, in, second)
	assert.Equal(t, validation.Violations{"matricule": "unique"}, violations(t, err))

	in.Matricule = "E124"
	_, err = s.Create(ctx, in, first)
	assert.True(t, errors.Is(err, ErrUserHasProfile), "got %v", err)

	_, err = s.Create(ctx, in, nil)
	assert.ErrorIs(t, err, ErrUserRequired)

	var count int64
	db.Model(&models.EmployeProfile{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
