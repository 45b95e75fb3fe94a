package service

import (
	"errors"
	"time"

	"github.com/pozor22/iiko/internal/apperr"
	"github.com/pozor22/iiko/internal/model"
	"github.com/pozor22/iiko/prometheus"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Register creates a user with a hashed password. The six-digit login code
// is generated by the model hook and is immutable afterwards.
func (s *Service) Register(username, email, password string) (*model.User, error) {
	if username == "" || email == "" {
		return nil, apperr.Validationf("username and email are required")
	}
	if len(password) < 8 {
		return nil, apperr.Validationf("password must be at least 8 characters")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var user model.User
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).
			Where("username = ? OR email = ?", username, email).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Validationf("user with this username or email already exists")
		}

		user = model.User{
			Username: username,
			Email:    email,
			Password: string(hashed),
			IsActive: true,
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("User registered",
		zap.Uint("id", user.ID),
		zap.String("username", user.Username))
	return &user, nil
}

// Authenticate verifies a username/password pair
func (s *Service) Authenticate(username, password string) (*model.User, error) {
	var user model.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.PermissionDeniedf("invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperr.PermissionDeniedf("invalid credentials")
	}
	return &user, nil
}

// AuthenticateByCode verifies a user by their six-digit login code
func (s *Service) AuthenticateByCode(code int) (*model.User, error) {
	var user model.User
	if err := s.db.Where("code = ?", code).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.PermissionDeniedf("invalid code")
		}
		return nil, err
	}
	return &user, nil
}

// GetUser returns one user
func (s *Service) GetUser(id uint) (*model.User, error) {
	var user model.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("user %d not found", id)
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all users
func (s *Service) ListUsers() ([]model.User, error) {
	var users []model.User
	if err := s.db.Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UserMemberships collects the entities a user belongs to plus the
// organizations the user authors (owned organizations).
type UserMemberships struct {
	Organizations      []model.Organization `json:"organizations"`
	Chains             []model.Chain        `json:"chains"`
	Restaurants        []model.Restaurant   `json:"restaurants"`
	OwnedOrganizations []model.Organization `json:"owned_organizations"`
}

// GetUserMemberships returns the full membership picture for one user
func (s *Service) GetUserMemberships(userID uint) (*UserMemberships, error) {
	defer prometheus.TrackDBOperation("get_user_memberships")(time.Now())

	if _, err := s.GetUser(userID); err != nil {
		return nil, err
	}

	var memberships UserMemberships

	err := s.db.Model(&model.Organization{}).
		Joins("JOIN organization_members ON organization_members.organization_id = organizations.id").
		Where("organization_members.user_id = ?", userID).
		Order("organizations.id").
		Find(&memberships.Organizations).Error
	if err != nil {
		return nil, err
	}

	err = s.db.Model(&model.Chain{}).
		Joins("JOIN chain_members ON chain_members.chain_id = chains.id").
		Where("chain_members.user_id = ?", userID).
		Order("chains.id").
		Find(&memberships.Chains).Error
	if err != nil {
		return nil, err
	}

	err = s.db.Model(&model.Restaurant{}).
		Joins("JOIN restaurant_members ON restaurant_members.restaurant_id = restaurants.id").
		Where("restaurant_members.user_id = ?", userID).
		Order("restaurants.id").
		Find(&memberships.Restaurants).Error
	if err != nil {
		return nil, err
	}

	err = s.db.Model(&model.Organization{}).
		Joins("JOIN organization_authors ON organization_authors.organization_id = organizations.id").
		Where("organization_authors.user_id = ?", userID).
		Order("organizations.id").
		Find(&memberships.OwnedOrganizations).Error
	if err != nil {
		return nil, err
	}

	return &memberships, nil
}

// DeleteUser removes a user account; only the user themselves may do it
func (s *Service) DeleteUser(actorID, userID uint) error {
	if actorID != userID {
		return apperr.PermissionDeniedf("you can only delete your own account")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("user %d not found", userID)
			}
			return err
		}
		return tx.Delete(&user).Error
	})
}
