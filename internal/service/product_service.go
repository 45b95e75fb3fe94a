package service

import (
	"errors"
	"time"

	"github.com/pozor22/iiko/internal/apperr"
	"github.com/pozor22/iiko/internal/authz"
	"github.com/pozor22/iiko/internal/model"
	"github.com/pozor22/iiko/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProductInput carries the writable product fields
type ProductInput struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	Count         *int    `json:"count,omitempty"`
	CategoryID    uint    `json:"category_id"`
	KitchenID     uint    `json:"kitchen_id"`
	RestaurantIDs []uint  `json:"restaurant_ids"`
}

// CreateProduct creates a menu product scoped to the given restaurants. The
// actor must be an author of every referenced restaurant's organization.
func (s *Service) CreateProduct(actorID uint, input ProductInput) (*model.Product, error) {
	if input.Name == "" {
		return nil, apperr.Validationf("name is required")
	}
	if input.Price < 0 {
		return nil, apperr.Validationf("price must not be negative")
	}

	var product model.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Product{}).Where("name = ?", input.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Validationf("product with name %q already exists", input.Name)
		}

		if err := entityExists(tx, categoryKind, input.CategoryID); err != nil {
			return err
		}
		if err := entityExists(tx, kitchenKind, input.KitchenID); err != nil {
			return err
		}

		if err := s.requireAuthorOfRestaurants(tx, actorID, input.RestaurantIDs); err != nil {
			return err
		}

		product = model.Product{
			Name:        input.Name,
			Description: input.Description,
			Price:       input.Price,
			Count:       input.Count,
			CategoryID:  input.CategoryID,
			KitchenID:   input.KitchenID,
		}
		if err := tx.Create(&product).Error; err != nil {
			return err
		}

		for _, restaurantID := range input.RestaurantIDs {
			edge := model.ProductRestaurant{ProductID: product.ID, RestaurantID: restaurantID}
			if err := tx.Create(&edge).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Product created",
		zap.Uint("id", product.ID),
		zap.String("name", product.Name),
		zap.Uint("actor_id", actorID))
	return s.GetProduct(product.ID)
}

// GetProduct returns one product with its scope and references preloaded
func (s *Service) GetProduct(id uint) (*model.Product, error) {
	var product model.Product
	err := s.db.Preload("Category").Preload("Kitchen").Preload("Restaurants").
		First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("product %d not found", id)
		}
		return nil, err
	}
	return &product, nil
}

// ListProducts returns all products, optionally filtered by restaurant
func (s *Service) ListProducts(restaurantID uint) ([]model.Product, error) {
	defer prometheus.TrackDBOperation("list_products")(time.Now())

	query := s.db.Preload("Category").Preload("Kitchen").Preload("Restaurants").Order("products.id")
	if restaurantID != 0 {
		query = query.
			Joins("JOIN product_restaurants ON product_restaurants.product_id = products.id").
			Where("product_restaurants.restaurant_id = ?", restaurantID)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// UpdateProduct changes product fields. A product shared across
// organizations requires authorship in all of them.
func (s *Service) UpdateProduct(actorID, productID uint, input ProductInput) (*model.Product, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var product model.Product
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("product %d not found", productID)
			}
			return err
		}

		if err := s.requireWriteAccess(tx, actorID, authz.EntityRef{Kind: authz.KindProduct, ID: productID}); err != nil {
			return err
		}

		if input.Name != "" && input.Name != product.Name {
			var count int64
			if err := tx.Model(&model.Product{}).
				Where("name = ? AND id <> ?", input.Name, productID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return apperr.Validationf("product with name %q already exists", input.Name)
			}
			product.Name = input.Name
		}
		if input.Description != "" {
			product.Description = input.Description
		}
		if input.Price > 0 {
			product.Price = input.Price
		}
		if input.Count != nil {
			product.Count = input.Count
			product.Stop = *input.Count < 1
		}
		if input.CategoryID != 0 {
			if err := entityExists(tx, categoryKind, input.CategoryID); err != nil {
				return err
			}
			product.CategoryID = input.CategoryID
		}
		if input.KitchenID != 0 {
			if err := entityExists(tx, kitchenKind, input.KitchenID); err != nil {
				return err
			}
			product.KitchenID = input.KitchenID
		}

		return tx.Save(&product).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetProduct(productID)
}

// DeleteProduct removes the product; conjunction rule over its scope
func (s *Service) DeleteProduct(actorID, productID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var product model.Product
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("product %d not found", productID)
			}
			return err
		}

		if err := s.requireWriteAccess(tx, actorID, authz.EntityRef{Kind: authz.KindProduct, ID: productID}); err != nil {
			return err
		}

		if err := tx.Where("product_id = ?", productID).
			Delete(&model.ProductRestaurant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&product).Error
	})
}

// Buy records one sale of the product. When stock is tracked the count is
// decremented by one and the stop flag is derived from the new count. There
// is deliberately no floor at zero (see DESIGN.md). Any authenticated user
// may buy; authorship is not required for a sale.
func (s *Service) Buy(productID uint) (*model.Product, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var product model.Product
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("product %d not found", productID)
			}
			return err
		}

		if product.Count != nil {
			next := *product.Count - 1
			product.Count = &next
			product.Stop = next < 1
		}

		return tx.Save(&product).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetProduct(productID)
}

// CreateIngredient registers per-restaurant ingredient stock. The actor must
// be an author of the restaurant's organization.
func (s *Service) CreateIngredient(actorID, restaurantID uint, name string, count float64, measure string) (*model.Ingredient, error) {
	if name == "" {
		return nil, apperr.Validationf("name is required")
	}

	var ingredient model.Ingredient
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.requireWriteAccess(tx, actorID, authz.EntityRef{Kind: authz.KindRestaurant, ID: restaurantID}); err != nil {
			return err
		}

		ingredient = model.Ingredient{
			Name:         name,
			RestaurantID: restaurantID,
			Count:        count,
			Measure:      measure,
		}
		return tx.Create(&ingredient).Error
	})
	if err != nil {
		return nil, err
	}
	return &ingredient, nil
}

// ListIngredients returns ingredient stock for one restaurant
func (s *Service) ListIngredients(restaurantID uint) ([]model.Ingredient, error) {
	if _, err := authz.OwningOrganizations(s.db, authz.EntityRef{Kind: authz.KindRestaurant, ID: restaurantID}); err != nil {
		return nil, err
	}

	var ingredients []model.Ingredient
	if err := s.db.Where("restaurant_id = ?", restaurantID).Order("id").Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// UpdateIngredientCount sets the stock count of an ingredient
func (s *Service) UpdateIngredientCount(actorID, ingredientID uint, count float64) (*model.Ingredient, error) {
	var ingredient model.Ingredient
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&ingredient, ingredientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("ingredient %d not found", ingredientID)
			}
			return err
		}

		if err := s.requireWriteAccess(tx, actorID, authz.EntityRef{Kind: authz.KindRestaurant, ID: ingredient.RestaurantID}); err != nil {
			return err
		}

		ingredient.Count = count
		return tx.Save(&ingredient).Error
	})
	if err != nil {
		return nil, err
	}
	return &ingredient, nil
}

// DeleteIngredient removes an ingredient and its recipe links
func (s *Service) DeleteIngredient(actorID, ingredientID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var ingredient model.Ingredient
		if err := tx.First(&ingredient, ingredientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("ingredient %d not found", ingredientID)
			}
			return err
		}

		if err := s.requireWriteAccess(tx, actorID, authz.EntityRef{Kind: authz.KindRestaurant, ID: ingredient.RestaurantID}); err != nil {
			return err
		}

		if err := tx.Where("ingredient_id = ?", ingredientID).Delete(&model.Recipe{}).Error; err != nil {
			return err
		}
		return tx.Delete(&ingredient).Error
	})
}

// CreateRecipe links a product to an ingredient with a quantity. The actor
// must hold write access over the product's whole scope and the ingredient's
// restaurant.
func (s *Service) CreateRecipe(actorID, productID, ingredientID uint, quantity float64, measure string) (*model.Recipe, error) {
	if quantity <= 0 {
		return nil, apperr.Validationf("quantity must be positive")
	}

	var recipe model.Recipe
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var product model.Product
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("product %d not found", productID)
			}
			return err
		}

		var ingredient model.Ingredient
		if err := tx.First(&ingredient, ingredientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("ingredient %d not found", ingredientID)
			}
			return err
		}

		if err := s.requireWriteAccess(tx, actorID, authz.EntityRef{Kind: authz.KindProduct, ID: productID}); err != nil {
			return err
		}
		if err := s.requireWriteAccess(tx, actorID, authz.EntityRef{Kind: authz.KindRestaurant, ID: ingredient.RestaurantID}); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&model.Recipe{}).
			Where("product_id = ? AND ingredient_id = ?", productID, ingredientID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflictf("recipe for product %d and ingredient %d already exists", productID, ingredientID)
		}

		recipe = model.Recipe{
			ProductID:    productID,
			IngredientID: ingredientID,
			Quantity:     quantity,
			Measure:      measure,
		}
		return tx.Create(&recipe).Error
	})
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// ListRecipes returns the bill of materials for a product
func (s *Service) ListRecipes(productID uint) ([]model.Recipe, error) {
	if _, err := authz.OwningOrganizations(s.db, authz.EntityRef{Kind: authz.KindProduct, ID: productID}); err != nil {
		return nil, err
	}

	var recipes []model.Recipe
	if err := s.db.Preload("Ingredient").Where("product_id = ?", productID).Order("id").Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// DeleteRecipe removes one product↔ingredient link
func (s *Service) DeleteRecipe(actorID, recipeID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var recipe model.Recipe
		if err := tx.First(&recipe, recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("recipe %d not found", recipeID)
			}
			return err
		}

		if err := s.requireWriteAccess(tx, actorID, authz.EntityRef{Kind: authz.KindProduct, ID: recipe.ProductID}); err != nil {
			return err
		}

		return tx.Delete(&recipe).Error
	})
}
