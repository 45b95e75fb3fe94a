package service

import (
	"errors"

	"github.com/pozor22/iiko/internal/apperr"
	"github.com/pozor22/iiko/internal/authz"
	"github.com/pozor22/iiko/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// catalogKind parameterizes the shared category/kitchen scope logic
type catalogKind struct {
	kind       authz.EntityKind
	entity     func() interface{}
	joinTable  string
	joinColumn string
}

var (
	categoryKind = catalogKind{
		kind:       authz.KindCategory,
		entity:     func() interface{} { return &model.Category{} },
		joinTable:  "category_restaurants",
		joinColumn: "category_id",
	}
	kitchenKind = catalogKind{
		kind:       authz.KindKitchen,
		entity:     func() interface{} { return &model.Kitchen{} },
		joinTable:  "kitchen_restaurants",
		joinColumn: "kitchen_id",
	}
)

// CreateCategory creates a menu category scoped to the given restaurants.
// The actor must be an author of every referenced restaurant's organization.
func (s *Service) CreateCategory(actorID uint, name string, restaurantIDs []uint) (*model.Category, error) {
	if name == "" {
		return nil, apperr.Validationf("name is required")
	}

	var category model.Category
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Validationf("category with name %q already exists", name)
		}

		if err := s.requireAuthorOfRestaurants(tx, actorID, restaurantIDs); err != nil {
			return err
		}

		category = model.Category{Name: name}
		if err := tx.Create(&category).Error; err != nil {
			return err
		}

		for _, restaurantID := range restaurantIDs {
			edge := model.CategoryRestaurant{CategoryID: category.ID, RestaurantID: restaurantID}
			if err := tx.Create(&edge).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Category created",
		zap.Uint("id", category.ID),
		zap.String("name", category.Name),
		zap.Uint("actor_id", actorID))
	return s.GetCategory(category.ID)
}

// GetCategory returns one category with its restaurant scope preloaded
func (s *Service) GetCategory(id uint) (*model.Category, error) {
	var category model.Category
	if err := s.db.Preload("Restaurants").First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("category %d not found", id)
		}
		return nil, err
	}
	return &category, nil
}

// ListCategories returns all categories with their restaurant scope
func (s *Service) ListCategories() ([]model.Category, error) {
	var categories []model.Category
	if err := s.db.Preload("Restaurants").Order("id").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// RenameCategory changes the category name. Because a category may be shared
// across organizations, the actor must be an author of every one of them.
func (s *Service) RenameCategory(actorID, categoryID uint, name string) (*model.Category, error) {
	if name == "" {
		return nil, apperr.Validationf("name is required")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var category model.Category
		if err := tx.First(&category, categoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("category %d not found", categoryID)
			}
			return err
		}

		if err := s.requireWriteAccess(tx, actorID, authz.EntityRef{Kind: authz.KindCategory, ID: categoryID}); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&model.Category{}).
			Where("name = ? AND id <> ?", name, categoryID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Validationf("category with name %q already exists", name)
		}

		category.Name = name
		return tx.Save(&category).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetCategory(categoryID)
}

// DeleteCategory removes the category; same conjunction rule as renames
func (s *Service) DeleteCategory(actorID, categoryID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var category model.Category
		if err := tx.First(&category, categoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("category %d not found", categoryID)
			}
			return err
		}

		if err := s.requireWriteAccess(tx, actorID, authz.EntityRef{Kind: authz.KindCategory, ID: categoryID}); err != nil {
			return err
		}

		if err := tx.Where("category_id = ?", categoryID).
			Delete(&model.CategoryRestaurant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
}

// AttachRestaurantToCategory adds a restaurant to a category's scope
func (s *Service) AttachRestaurantToCategory(actorID, categoryID, restaurantID uint) (*model.Category, error) {
	if err := s.attachRestaurant(actorID, categoryKind, categoryID, restaurantID); err != nil {
		return nil, err
	}
	return s.GetCategory(categoryID)
}

// DetachRestaurantFromCategory removes a restaurant from a category's scope
func (s *Service) DetachRestaurantFromCategory(actorID, categoryID, restaurantID uint) (*model.Category, error) {
	if err := s.detachRestaurant(actorID, categoryKind, categoryID, restaurantID); err != nil {
		return nil, err
	}
	return s.GetCategory(categoryID)
}

// CreateKitchen creates a kitchen scoped to the given restaurants
func (s *Service) CreateKitchen(actorID uint, name string, restaurantIDs []uint) (*model.Kitchen, error) {
	if name == "" {
		return nil, apperr.Validationf("name is required")
	}

	var kitchen model.Kitchen
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Kitchen{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Validationf("kitchen with name %q already exists", name)
		}

		if err := s.requireAuthorOfRestaurants(tx, actorID, restaurantIDs); err != nil {
			return err
		}

		kitchen = model.Kitchen{Name: name}
		if err := tx.Create(&kitchen).Error; err != nil {
			return err
		}

		for _, restaurantID := range restaurantIDs {
			edge := model.KitchenRestaurant{KitchenID: kitchen.ID, RestaurantID: restaurantID}
			if err := tx.Create(&edge).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Kitchen created",
		zap.Uint("id", kitchen.ID),
		zap.String("name", kitchen.Name),
		zap.Uint("actor_id", actorID))
	return s.GetKitchen(kitchen.ID)
}

// GetKitchen returns one kitchen with its restaurant scope preloaded
func (s *Service) GetKitchen(id uint) (*model.Kitchen, error) {
	var kitchen model.Kitchen
	if err := s.db.Preload("Restaurants").First(&kitchen, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("kitchen %d not found", id)
		}
		return nil, err
	}
	return &kitchen, nil
}

// ListKitchens returns all kitchens with their restaurant scope
func (s *Service) ListKitchens() ([]model.Kitchen, error) {
	var kitchens []model.Kitchen
	if err := s.db.Preload("Restaurants").Order("id").Find(&kitchens).Error; err != nil {
		return nil, err
	}
	return kitchens, nil
}

// RenameKitchen changes the kitchen name; same conjunction rule as for
// shared categories.
func (s *Service) RenameKitchen(actorID, kitchenID uint, name string) (*model.Kitchen, error) {
	if name == "" {
		return nil, apperr.Validationf("name is required")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var kitchen model.Kitchen
		if err := tx.First(&kitchen, kitchenID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("kitchen %d not found", kitchenID)
			}
			return err
		}

		if err := s.requireWriteAccess(tx, actorID, authz.EntityRef{Kind: authz.KindKitchen, ID: kitchenID}); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&model.Kitchen{}).
			Where("name = ? AND id <> ?", name, kitchenID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Validationf("kitchen with name %q already exists", name)
		}

		kitchen.Name = name
		return tx.Save(&kitchen).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetKitchen(kitchenID)
}

// DeleteKitchen removes the kitchen; conjunction rule applies
func (s *Service) DeleteKitchen(actorID, kitchenID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var kitchen model.Kitchen
		if err := tx.First(&kitchen, kitchenID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("kitchen %d not found", kitchenID)
			}
			return err
		}

		if err := s.requireWriteAccess(tx, actorID, authz.EntityRef{Kind: authz.KindKitchen, ID: kitchenID}); err != nil {
			return err
		}

		if err := tx.Where("kitchen_id = ?", kitchenID).
			Delete(&model.KitchenRestaurant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&kitchen).Error
	})
}

// AttachRestaurantToKitchen adds a restaurant to a kitchen's scope
func (s *Service) AttachRestaurantToKitchen(actorID, kitchenID, restaurantID uint) (*model.Kitchen, error) {
	if err := s.attachRestaurant(actorID, kitchenKind, kitchenID, restaurantID); err != nil {
		return nil, err
	}
	return s.GetKitchen(kitchenID)
}

// DetachRestaurantFromKitchen removes a restaurant from a kitchen's scope
func (s *Service) DetachRestaurantFromKitchen(actorID, kitchenID, restaurantID uint) (*model.Kitchen, error) {
	if err := s.detachRestaurant(actorID, kitchenKind, kitchenID, restaurantID); err != nil {
		return nil, err
	}
	return s.GetKitchen(kitchenID)
}

// attachRestaurant enforces the shared-scope conjunction: the actor must be
// an author of the new restaurant's organization and of every organization
// owning an already-attached restaurant. A shared catalog entity can never
// be extended unilaterally.
func (s *Service) attachRestaurant(actorID uint, ck catalogKind, entityID, restaurantID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := entityExists(tx, ck, entityID); err != nil {
			return err
		}

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

		var count int64
		if err := tx.Table(ck.joinTable).
			Where(ck.joinColumn+" = ? AND restaurant_id = ?", entityID, restaurantID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflictf("restaurant %d is already attached to this %s", restaurantID, ck.kind)
		}

		// Conjunction over the existing scope
		if err := s.requireWriteAccess(tx, actorID, authz.EntityRef{Kind: ck.kind, ID: entityID}); err != nil {
			return err
		}

		return tx.Table(ck.joinTable).Create(map[string]interface{}{
			ck.joinColumn:   entityID,
			"restaurant_id": restaurantID,
		}).Error
	})
}

// detachRestaurant removes the scope edge; the actor must be an author of
// the restaurant's organization.
func (s *Service) detachRestaurant(actorID uint, ck catalogKind, entityID, restaurantID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := entityExists(tx, ck, entityID); err != nil {
			return err
		}

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

		result := tx.Exec(
			"DELETE FROM "+ck.joinTable+" WHERE "+ck.joinColumn+" = ? AND restaurant_id = ?",
			entityID, restaurantID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperr.NotFoundf("restaurant %d is not attached to this %s", restaurantID, ck.kind)
		}
		return nil
	})
}

// requireAuthorOfRestaurants checks authorship of every referenced
// restaurant's owning organization, reporting missing restaurants first.
func (s *Service) requireAuthorOfRestaurants(tx *gorm.DB, actorID uint, restaurantIDs []uint) error {
	for _, restaurantID := range restaurantIDs {
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
	}
	return nil
}

func entityExists(tx *gorm.DB, ck catalogKind, id uint) error {
	var count int64
	if err := tx.Model(ck.entity()).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperr.NotFoundf("%s %d not found", ck.kind, id)
	}
	return nil
}
