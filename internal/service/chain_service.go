package service

import (
	"errors"

	"github.com/pozor22/iiko/internal/apperr"
	"github.com/pozor22/iiko/internal/authz"
	"github.com/pozor22/iiko/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateChain creates a chain under an organization. Only authors of the
// organization may create chains; the creator joins the new chain as a plain
// member, not an author.
func (s *Service) CreateChain(actorID, orgID uint, name string) (*model.Chain, error) {
	if name == "" {
		return nil, apperr.Validationf("name is required")
	}

	var chain model.Chain
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

		chain = model.Chain{Name: name, OrganizationID: orgID}
		if err := tx.Create(&chain).Error; err != nil {
			return err
		}

		member := model.ChainMember{ChainID: chain.ID, UserID: actorID}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Chain created",
		zap.Uint("id", chain.ID),
		zap.String("name", chain.Name),
		zap.Uint("organization_id", orgID),
		zap.Uint("actor_id", actorID))
	s.notifier.MembershipChanged("member_added", actorID, string(authz.KindChain), chain.ID)

	return &chain, nil
}

// GetChain returns one chain with its organization preloaded
func (s *Service) GetChain(id uint) (*model.Chain, error) {
	var chain model.Chain
	if err := s.db.Preload("Organization").First(&chain, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("chain %d not found", id)
		}
		return nil, err
	}
	return &chain, nil
}

// ListChains returns all chains, optionally filtered by organization
func (s *Service) ListChains(orgID uint) ([]model.Chain, error) {
	query := s.db.Preload("Organization").Order("id")
	if orgID != 0 {
		query = query.Where("organization_id = ?", orgID)
	}

	var chains []model.Chain
	if err := query.Find(&chains).Error; err != nil {
		return nil, err
	}
	return chains, nil
}

// RenameChain changes the chain name, authors of the owning organization only
func (s *Service) RenameChain(actorID, chainID uint, name string) (*model.Chain, error) {
	if name == "" {
		return nil, apperr.Validationf("name is required")
	}

	var chain model.Chain
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&chain, chainID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("chain %d not found", chainID)
			}
			return err
		}

		if err := s.requireWriteAccess(tx, actorID, authz.EntityRef{Kind: authz.KindChain, ID: chainID}); err != nil {
			return err
		}

		chain.Name = name
		return tx.Save(&chain).Error
	})
	if err != nil {
		return nil, err
	}
	return &chain, nil
}

// DeleteChain removes the chain together with its restaurants and all their
// membership and catalog scope edges.
func (s *Service) DeleteChain(actorID, chainID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var chain model.Chain
		if err := tx.First(&chain, chainID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("chain %d not found", chainID)
			}
			return err
		}

		if err := s.requireWriteAccess(tx, actorID, authz.EntityRef{Kind: authz.KindChain, ID: chainID}); err != nil {
			return err
		}

		return cascadeDeleteChains(tx, []uint{chainID})
	})
}

// CreateRestaurant creates a restaurant under a chain. The actor must be an
// author of the chain's owning organization; the creator joins the new
// restaurant as a plain member.
func (s *Service) CreateRestaurant(actorID, chainID uint, name string) (*model.Restaurant, error) {
	if name == "" {
		return nil, apperr.Validationf("name is required")
	}

	var restaurant model.Restaurant
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var chain model.Chain
		if err := tx.First(&chain, chainID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("chain %d not found", chainID)
			}
			return err
		}

		if err := s.requireAuthor(tx, actorID, chain.OrganizationID); err != nil {
			return err
		}

		restaurant = model.Restaurant{Name: name, ChainID: chainID}
		if err := tx.Create(&restaurant).Error; err != nil {
			return err
		}

		member := model.RestaurantMember{RestaurantID: restaurant.ID, UserID: actorID}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Restaurant created",
		zap.Uint("id", restaurant.ID),
		zap.String("name", restaurant.Name),
		zap.Uint("chain_id", chainID),
		zap.Uint("actor_id", actorID))
	s.notifier.MembershipChanged("member_added", actorID, string(authz.KindRestaurant), restaurant.ID)

	return &restaurant, nil
}

// GetRestaurant returns one restaurant with its chain preloaded
func (s *Service) GetRestaurant(id uint) (*model.Restaurant, error) {
	var restaurant model.Restaurant
	if err := s.db.Preload("Chain").First(&restaurant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("restaurant %d not found", id)
		}
		return nil, err
	}
	return &restaurant, nil
}

// ListRestaurants returns all restaurants, optionally filtered by chain
func (s *Service) ListRestaurants(chainID uint) ([]model.Restaurant, error) {
	query := s.db.Preload("Chain").Order("id")
	if chainID != 0 {
		query = query.Where("chain_id = ?", chainID)
	}

	var restaurants []model.Restaurant
	if err := query.Find(&restaurants).Error; err != nil {
		return nil, err
	}
	return restaurants, nil
}

// RenameRestaurant changes the restaurant name, authors of the owning
// organization only.
func (s *Service) RenameRestaurant(actorID, restaurantID uint, name string) (*model.Restaurant, error) {
	if name == "" {
		return nil, apperr.Validationf("name is required")
	}

	var restaurant model.Restaurant
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&restaurant, restaurantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("restaurant %d not found", restaurantID)
			}
			return err
		}

		if err := s.requireWriteAccess(tx, actorID, authz.EntityRef{Kind: authz.KindRestaurant, ID: restaurantID}); err != nil {
			return err
		}

		restaurant.Name = name
		return tx.Save(&restaurant).Error
	})
	if err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// DeleteRestaurant removes the restaurant together with its membership
// edges, ingredient stock, and catalog scope edges. A shared category or
// kitchen loses this restaurant from its scope but stays intact.
func (s *Service) DeleteRestaurant(actorID, restaurantID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var restaurant model.Restaurant
		if err := tx.First(&restaurant, restaurantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("restaurant %d not found", restaurantID)
			}
			return err
		}

		if err := s.requireWriteAccess(tx, actorID, authz.EntityRef{Kind: authz.KindRestaurant, ID: restaurantID}); err != nil {
			return err
		}

		return cascadeDeleteRestaurants(tx, []uint{restaurantID})
	})
}

// cascadeDeleteChains deletes chains with everything underneath them. The
// hierarchy models soft-delete, so the FK cascade never runs at the database
// level; dependent rows are removed here in the same transaction.
func cascadeDeleteChains(tx *gorm.DB, chainIDs []uint) error {
	if len(chainIDs) == 0 {
		return nil
	}

	var restaurantIDs []uint
	if err := tx.Model(&model.Restaurant{}).
		Where("chain_id IN ?", chainIDs).
		Pluck("id", &restaurantIDs).Error; err != nil {
		return err
	}
	if err := cascadeDeleteRestaurants(tx, restaurantIDs); err != nil {
		return err
	}

	if err := tx.Where("chain_id IN ?", chainIDs).Delete(&model.ChainMember{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", chainIDs).Delete(&model.Chain{}).Error
}

// cascadeDeleteRestaurants deletes restaurants plus their member edges,
// ingredients (and dependent recipes), and catalog scope edges. Without the
// edge cleanup a category attached to a deleted restaurant would dangle and
// become unwritable for everyone.
func cascadeDeleteRestaurants(tx *gorm.DB, restaurantIDs []uint) error {
	if len(restaurantIDs) == 0 {
		return nil
	}

	var ingredientIDs []uint
	if err := tx.Model(&model.Ingredient{}).
		Where("restaurant_id IN ?", restaurantIDs).
		Pluck("id", &ingredientIDs).Error; err != nil {
		return err
	}
	if len(ingredientIDs) > 0 {
		if err := tx.Where("ingredient_id IN ?", ingredientIDs).Delete(&model.Recipe{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", ingredientIDs).Delete(&model.Ingredient{}).Error; err != nil {
			return err
		}
	}

	for _, edge := range []interface{}{
		&model.RestaurantMember{},
		&model.CategoryRestaurant{},
		&model.KitchenRestaurant{},
		&model.ProductRestaurant{},
	} {
		if err := tx.Where("restaurant_id IN ?", restaurantIDs).Delete(edge).Error; err != nil {
			return err
		}
	}
	return tx.Where("id IN ?", restaurantIDs).Delete(&model.Restaurant{}).Error
}
