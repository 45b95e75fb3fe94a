package service

import (
	"errors"

	"github.com/pozor22/iiko/internal/apperr"
	"github.com/pozor22/iiko/internal/authz"
	"github.com/pozor22/iiko/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MembershipLevel selects which entity a plain-membership operation targets
type MembershipLevel string

const (
	LevelOrganization MembershipLevel = "organization"
	LevelChain        MembershipLevel = "chain"
	LevelRestaurant   MembershipLevel = "restaurant"
)

func (l MembershipLevel) kind() (authz.EntityKind, error) {
	switch l {
	case LevelOrganization:
		return authz.KindOrganization, nil
	case LevelChain:
		return authz.KindChain, nil
	case LevelRestaurant:
		return authz.KindRestaurant, nil
	default:
		return "", apperr.Validationf("unknown membership level %q", l)
	}
}

// AddMember attaches a user to an organization, chain or restaurant as a
// plain member. The actor must be an author of the owning organization.
// Membership never implies authorship. A duplicate edge is a conflict, not
// a silent no-op, uniformly across all three levels.
func (s *Service) AddMember(actorID uint, level MembershipLevel, entityID, userID uint) error {
	kind, err := level.kind()
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("user %d not found", userID)
			}
			return err
		}

		if err := s.requireWriteAccess(tx, actorID, authz.EntityRef{Kind: kind, ID: entityID}); err != nil {
			return err
		}

		present, err := s.memberEdgeExists(tx, level, entityID, userID)
		if err != nil {
			return err
		}
		if present {
			return apperr.Conflictf("user %d is already a member of this %s", userID, level)
		}

		return s.createMemberEdge(tx, level, entityID, userID)
	})
	if err != nil {
		return err
	}

	s.log.Info("Member added",
		zap.String("level", string(level)),
		zap.Uint("entity_id", entityID),
		zap.Uint("user_id", userID),
		zap.Uint("actor_id", actorID))
	s.notifier.MembershipChanged("member_added", userID, string(kind), entityID)
	return nil
}

// RemoveMember detaches a user from an organization, chain or restaurant.
// The actor must be an author of the owning organization; removing an edge
// that is not there is NotFound.
func (s *Service) RemoveMember(actorID uint, level MembershipLevel, entityID, userID uint) error {
	kind, err := level.kind()
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("user %d not found", userID)
			}
			return err
		}

		if err := s.requireWriteAccess(tx, actorID, authz.EntityRef{Kind: kind, ID: entityID}); err != nil {
			return err
		}

		result := s.deleteMemberEdge(tx, level, entityID, userID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperr.NotFoundf("user %d is not a member of this %s", userID, level)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("Member removed",
		zap.String("level", string(level)),
		zap.Uint("entity_id", entityID),
		zap.Uint("user_id", userID),
		zap.Uint("actor_id", actorID))
	s.notifier.MembershipChanged("member_removed", userID, string(kind), entityID)
	return nil
}

// ListMembers returns the member users of an entity at the given level
func (s *Service) ListMembers(level MembershipLevel, entityID uint) ([]model.User, error) {
	kind, err := level.kind()
	if err != nil {
		return nil, err
	}

	if _, err := authz.OwningOrganizations(s.db, authz.EntityRef{Kind: kind, ID: entityID}); err != nil {
		return nil, err
	}

	var users []model.User
	query := s.db.Model(&model.User{})
	switch level {
	case LevelOrganization:
		query = query.
			Joins("JOIN organization_members ON organization_members.user_id = users.id").
			Where("organization_members.organization_id = ?", entityID)
	case LevelChain:
		query = query.
			Joins("JOIN chain_members ON chain_members.user_id = users.id").
			Where("chain_members.chain_id = ?", entityID)
	case LevelRestaurant:
		query = query.
			Joins("JOIN restaurant_members ON restaurant_members.user_id = users.id").
			Where("restaurant_members.restaurant_id = ?", entityID)
	}
	if err := query.Order("users.id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// requireWriteAccess fails with PermissionDenied unless the actor is an
// author of every organization owning the referenced entity. A missing
// entity is reported as NotFound before the permission check so callers can
// distinguish the two.
func (s *Service) requireWriteAccess(tx *gorm.DB, actorID uint, ref authz.EntityRef) error {
	if _, err := authz.OwningOrganizations(tx, ref); err != nil {
		return err
	}

	ok, err := authz.CanWrite(tx, actorID, ref)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.PermissionDeniedf("you are not an author of the owning organization")
	}
	return nil
}

func (s *Service) memberEdgeExists(tx *gorm.DB, level MembershipLevel, entityID, userID uint) (bool, error) {
	var count int64
	var err error
	switch level {
	case LevelOrganization:
		err = tx.Model(&model.OrganizationMember{}).
			Where("organization_id = ? AND user_id = ?", entityID, userID).Count(&count).Error
	case LevelChain:
		err = tx.Model(&model.ChainMember{}).
			Where("chain_id = ? AND user_id = ?", entityID, userID).Count(&count).Error
	case LevelRestaurant:
		err = tx.Model(&model.RestaurantMember{}).
			Where("restaurant_id = ? AND user_id = ?", entityID, userID).Count(&count).Error
	}
	return count > 0, err
}

func (s *Service) createMemberEdge(tx *gorm.DB, level MembershipLevel, entityID, userID uint) error {
	switch level {
	case LevelOrganization:
		return tx.Create(&model.OrganizationMember{OrganizationID: entityID, UserID: userID}).Error
	case LevelChain:
		return tx.Create(&model.ChainMember{ChainID: entityID, UserID: userID}).Error
	case LevelRestaurant:
		return tx.Create(&model.RestaurantMember{RestaurantID: entityID, UserID: userID}).Error
	}
	return apperr.Validationf("unknown membership level %q", level)
}

func (s *Service) deleteMemberEdge(tx *gorm.DB, level MembershipLevel, entityID, userID uint) *gorm.DB {
	switch level {
	case LevelOrganization:
		return tx.Where("organization_id = ? AND user_id = ?", entityID, userID).
			Delete(&model.OrganizationMember{})
	case LevelChain:
		return tx.Where("chain_id = ? AND user_id = ?", entityID, userID).
			Delete(&model.ChainMember{})
	default:
		return tx.Where("restaurant_id = ? AND user_id = ?", entityID, userID).
			Delete(&model.RestaurantMember{})
	}
}
