package service

import (
	"errors"

	"github.com/pozor22/iiko/internal/apperr"
	"github.com/pozor22/iiko/internal/authz"
	"github.com/pozor22/iiko/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateOrganization creates an organization and makes the creator both a
// member and an author of it.
func (s *Service) CreateOrganization(actorID uint, name string) (*model.Organization, error) {
	if name == "" {
		return nil, apperr.Validationf("name is required")
	}

	var org model.Organization
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Organization{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Validationf("organization with name %q already exists", name)
		}

		org = model.Organization{Name: name}
		if err := tx.Create(&org).Error; err != nil {
			return err
		}

		author := model.OrganizationAuthor{OrganizationID: org.ID, UserID: actorID}
		if err := tx.Create(&author).Error; err != nil {
			return err
		}

		member := model.OrganizationMember{OrganizationID: org.ID, UserID: actorID}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Organization created",
		zap.Uint("id", org.ID),
		zap.String("name", org.Name),
		zap.Uint("actor_id", actorID))
	s.notifier.MembershipChanged("author_added", actorID, string(authz.KindOrganization), org.ID)

	return &org, nil
}

// GetOrganization returns one organization with its author set preloaded
func (s *Service) GetOrganization(id uint) (*model.Organization, []model.User, error) {
	var org model.Organization
	if err := s.db.First(&org, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFoundf("organization %d not found", id)
		}
		return nil, nil, err
	}

	authors, err := s.organizationAuthors(s.db, id)
	if err != nil {
		return nil, nil, err
	}
	return &org, authors, nil
}

// ListOrganizations returns all organizations, read access is unconstrained
func (s *Service) ListOrganizations() ([]model.Organization, error) {
	var orgs []model.Organization
	if err := s.db.Order("id").Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}

// RenameOrganization changes the organization name, authors only
func (s *Service) RenameOrganization(actorID, orgID uint, name string) (*model.Organization, error) {
	if name == "" {
		return nil, apperr.Validationf("name is required")
	}

	var org model.Organization
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&org, orgID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("organization %d not found", orgID)
			}
			return err
		}

		if err := s.requireAuthor(tx, actorID, orgID); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&model.Organization{}).
			Where("name = ? AND id <> ?", name, orgID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Validationf("organization with name %q already exists", name)
		}

		org.Name = name
		return tx.Save(&org).Error
	})
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// DeleteOrganization removes the organization, authors only. Chains,
// restaurants, membership edges and catalog scope edges underneath are
// deleted in the same transaction.
func (s *Service) DeleteOrganization(actorID, orgID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var org model.Organization
		if err := tx.First(&org, orgID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("organization %d not found", orgID)
			}
			return err
		}

		if err := s.requireAuthor(tx, actorID, orgID); err != nil {
			return err
		}

		var chainIDs []uint
		if err := tx.Model(&model.Chain{}).
			Where("organization_id = ?", orgID).
			Pluck("id", &chainIDs).Error; err != nil {
			return err
		}
		if err := cascadeDeleteChains(tx, chainIDs); err != nil {
			return err
		}

		if err := tx.Where("organization_id = ?", orgID).Delete(&model.OrganizationAuthor{}).Error; err != nil {
			return err
		}
		if err := tx.Where("organization_id = ?", orgID).Delete(&model.OrganizationMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&org).Error
	})
}

// AddAuthor grants authorship of the organization to another user. The actor
// must already be an author, and cannot add themselves: self-promotion would
// bypass the invitation flow. The author edge and the member edge on the
// user's side are inserted in the same transaction.
func (s *Service) AddAuthor(actorID, orgID, userID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var org model.Organization
		if err := tx.First(&org, orgID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("organization %d not found", orgID)
			}
			return err
		}

		var user model.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("user %d not found", userID)
			}
			return err
		}

		if userID == actorID {
			return apperr.Validationf("you can not add yourself to organization")
		}

		if err := s.requireAuthor(tx, actorID, orgID); err != nil {
			return err
		}

		isAuthor, err := authz.IsAuthor(tx, userID, orgID)
		if err != nil {
			return err
		}
		if isAuthor {
			return apperr.Conflictf("user %d is already an author of organization %d", userID, orgID)
		}

		author := model.OrganizationAuthor{OrganizationID: orgID, UserID: userID}
		if err := tx.Create(&author).Error; err != nil {
			return err
		}

		// Keep the user's organization membership in sync with authorship
		var count int64
		if err := tx.Model(&model.OrganizationMember{}).
			Where("organization_id = ? AND user_id = ?", orgID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			member := model.OrganizationMember{OrganizationID: orgID, UserID: userID}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("Author added",
		zap.Uint("organization_id", orgID),
		zap.Uint("user_id", userID),
		zap.Uint("actor_id", actorID))
	s.notifier.MembershipChanged("author_added", userID, string(authz.KindOrganization), orgID)
	return nil
}

// RemoveAuthor revokes authorship. The actor must be an author regardless of
// whether the target currently is one; both sides of the edge are removed.
func (s *Service) RemoveAuthor(actorID, orgID, userID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var org model.Organization
		if err := tx.First(&org, orgID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("organization %d not found", orgID)
			}
			return err
		}

		if err := s.requireAuthor(tx, actorID, orgID); err != nil {
			return err
		}

		result := tx.Where("organization_id = ? AND user_id = ?", orgID, userID).
			Delete(&model.OrganizationAuthor{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperr.NotFoundf("user %d is not an author of organization %d", userID, orgID)
		}

		return tx.Where("organization_id = ? AND user_id = ?", orgID, userID).
			Delete(&model.OrganizationMember{}).Error
	})
	if err != nil {
		return err
	}

	s.log.Info("Author removed",
		zap.Uint("organization_id", orgID),
		zap.Uint("user_id", userID),
		zap.Uint("actor_id", actorID))
	s.notifier.MembershipChanged("author_removed", userID, string(authz.KindOrganization), orgID)
	return nil
}

// requireAuthor fails with PermissionDenied unless the actor is an author of
// the organization.
func (s *Service) requireAuthor(tx *gorm.DB, actorID, orgID uint) error {
	isAuthor, err := authz.IsAuthor(tx, actorID, orgID)
	if err != nil {
		return err
	}
	if !isAuthor {
		return apperr.PermissionDeniedf("you are not an author of this organization")
	}
	return nil
}

func (s *Service) organizationAuthors(tx *gorm.DB, orgID uint) ([]model.User, error) {
	var users []model.User
	err := tx.Model(&model.User{}).
		Joins("JOIN organization_authors ON organization_authors.user_id = users.id").
		Where("organization_authors.organization_id = ?", orgID).
		Order("users.id").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
