package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/go-employes/internal/models"
	"github.com/diewo77/go-employes/internal/serializers"
	"github.com/diewo77/go-employes/validation"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmployeNotFound = errors.New("employe_not_found")
	ErrInvalidStatus   = errors.New("invalid_status")
)

// Status filter values accepted by List.
const (
	StatusAll      = "all"
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// EmployeFilters narrows List. Search matches nom, prenom, matricule,
// identifiant_telephone and the account email, case insensitively.
type EmployeFilters struct {
	Search string
	Status string
}

type EmployeService struct {
	db         *gorm.DB
	serializer *serializers.EmployeSerializer
	logger     *zap.Logger
}

// NewEmployeService creates the employe service.
func NewEmployeService(db *gorm.DB, logger *zap.Logger) *EmployeService {
	return &EmployeService{
		db:         db,
		serializer: serializers.NewEmployeSerializer(db),
		logger:     logger,
	}
}

// List returns the matching profiles with their user, ordered by name.
func (s *EmployeService) List(ctx context.Context, f EmployeFilters) ([]models.EmployeProfile, error) {
	q := s.db.WithContext(ctx).
		Model(&models.EmployeProfile{}).
		Joins("JOIN users ON users.id = employe_profiles.user_id AND users.deleted_at IS NULL").
		Preload("User")

	switch strings.ToLower(strings.TrimSpace(f.Status)) {
	case "", StatusAll:
	case StatusActive:
		q = q.Where("users.is_active = ?", true)
	case StatusInactive:
		q = q.Where("users.is_active = ?", false)
	default:
		return nil, ErrInvalidStatus
	}

	var profiles []models.EmployeProfile
	if err := q.Order("employe_profiles.nom, employe_profiles.prenom, employe_profiles.id").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("list employes: %w", err)
	}

	// Matched here rather than with LIKE: sqlite LOWER() folds ASCII only,
	// and the term must match literally.
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		matched := profiles[:0]
		for _, p := range profiles {
			if matchesSearch(p, term) {
				matched = append(matched, p)
			}
		}
		profiles = matched
	}
	return profiles, nil
}

func matchesSearch(p models.EmployeProfile, term string) bool {
	for _, field := range []string{p.Nom, p.Prenom, p.Matricule, p.IdentifiantTelephone, p.User.Email} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// Get loads one profile with its user.
func (s *EmployeService) Get(ctx context.Context, id uint) (*models.EmployeProfile, error) {
	return s.first(ctx, "id = ?", id)
}

// GetByUserID loads the profile owned by userID.
func (s *EmployeService) GetByUserID(ctx context.Context, userID uint) (*models.EmployeProfile, error) {
	return s.first(ctx, "user_id = ?", userID)
}

func (s *EmployeService) first(ctx context.Context, query string, arg uint) (*models.EmployeProfile, error) {
	var p models.EmployeProfile
	err := s.db.WithContext(ctx).Preload("User").Where(query, arg).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEmployeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get employe: %w", err)
	}
	if p.User.ID == 0 {
		// account soft deleted
		return nil, ErrEmployeNotFound
	}
	return &p, nil
}

// Register creates an employe account and its profile in one transaction.
func (s *EmployeService) Register(ctx context.Context, in serializers.RegistrationInput) (*models.EmployeProfile, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, validation.Violations{"password": "max_length"}.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var profile *models.EmployeProfile
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if count > 0 {
			return validation.Violations{"email": "unique"}.Err()
		}

		user := models.User{
			Email:    in.Email,
			Password: string(hashed),
			IsActive: true,
			Role:     models.RoleEmploye,
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		created, err := s.serializer.WithDB(tx).Create(ctx, in.Employe, &user)
		if err != nil {
			return err
		}
		profile = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("employe registered",
		zap.Uint("employe_id", profile.ID),
		zap.Uint("user_id", profile.UserID),
		zap.String("matricule", profile.Matricule),
		zap.String("name", profile.FullName()),
	)
	return profile, nil
}

// ToggleActive flips the is_active flag of the profile's account.
func (s *EmployeService) ToggleActive(ctx context.Context, id uint) (*models.EmployeProfile, error) {
	var profile *models.EmployeProfile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.EmployeProfile
		err := tx.Preload("User").First(&p, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmployeNotFound
		}
		if err != nil {
			return fmt.Errorf("get employe: %w", err)
		}

		active := !p.User.IsActive
		if err := tx.Model(&models.User{}).Where("id = ?", p.UserID).Update("is_active", active).Error; err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		p.User.IsActive = active
		profile = &p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("employe active flag toggled",
		zap.Uint("employe_id", profile.ID),
		zap.Uint("user_id", profile.UserID),
		zap.Bool("is_active", profile.User.IsActive),
	)
	return profile, nil
}
