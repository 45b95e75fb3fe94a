// Package authz decides write access by walking the ownership tree up to the
// authoring organization(s). Authorship lives only on organizations; chains,
// restaurants and menu entities never carry their own author lists.
package authz

import (
	"errors"

	"github.com/pozor22/iiko/internal/apperr"
	"github.com/pozor22/iiko/internal/model"
	"gorm.io/gorm"
)

// EntityKind names the entity types the evaluator can resolve
type EntityKind string

const (
	KindOrganization EntityKind = "organization"
	KindChain        EntityKind = "chain"
	KindRestaurant   EntityKind = "restaurant"
	KindCategory     EntityKind = "category"
	KindKitchen      EntityKind = "kitchen"
	KindProduct      EntityKind = "product"
)

// EntityRef identifies a target entity for an authorization decision
type EntityRef struct {
	Kind EntityKind
	ID   uint
}

// OwningOrganizations resolves the set of organization IDs that own the
// referenced entity. Chains and restaurants resolve to exactly one
// organization; catalog entities resolve to one organization per attached
// restaurant (deduplicated, possibly empty for an unattached entity).
// A dangling reference anywhere in the chain yields apperr.NotFound.
func OwningOrganizations(tx *gorm.DB, ref EntityRef) ([]uint, error) {
	switch ref.Kind {
	case KindOrganization:
		if err := exists(tx, &model.Organization{}, ref.ID); err != nil {
			return nil, err
		}
		return []uint{ref.ID}, nil

	case KindChain:
		var chain model.Chain
		if err := tx.First(&chain, ref.ID).Error; err != nil {
			return nil, notFound(err, "chain %d not found", ref.ID)
		}
		if err := exists(tx, &model.Organization{}, chain.OrganizationID); err != nil {
			return nil, err
		}
		return []uint{chain.OrganizationID}, nil

	case KindRestaurant:
		var restaurant model.Restaurant
		if err := tx.First(&restaurant, ref.ID).Error; err != nil {
			return nil, notFound(err, "restaurant %d not found", ref.ID)
		}
		return OwningOrganizations(tx, EntityRef{Kind: KindChain, ID: restaurant.ChainID})

	case KindCategory:
		return organizationsForScope(tx, &model.Category{}, ref.ID, "category_restaurants", "category_id")

	case KindKitchen:
		return organizationsForScope(tx, &model.Kitchen{}, ref.ID, "kitchen_restaurants", "kitchen_id")

	case KindProduct:
		return organizationsForScope(tx, &model.Product{}, ref.ID, "product_restaurants", "product_id")

	default:
		return nil, apperr.Validationf("unknown entity kind %q", ref.Kind)
	}
}

// organizationsForScope resolves every restaurant attached to a catalog
// entity up to its owning organization.
func organizationsForScope(tx *gorm.DB, entity interface{}, id uint, joinTable, joinColumn string) ([]uint, error) {
	if err := exists(tx, entity, id); err != nil {
		return nil, err
	}

	var restaurantIDs []uint
	if err := tx.Table(joinTable).
		Where(joinColumn+" = ?", id).
		Pluck("restaurant_id", &restaurantIDs).Error; err != nil {
		return nil, err
	}

	seen := make(map[uint]bool)
	orgIDs := make([]uint, 0, len(restaurantIDs))
	for _, restaurantID := range restaurantIDs {
		ids, err := OwningOrganizations(tx, EntityRef{Kind: KindRestaurant, ID: restaurantID})
		if err != nil {
			return nil, err
		}
		for _, orgID := range ids {
			if !seen[orgID] {
				seen[orgID] = true
				orgIDs = append(orgIDs, orgID)
			}
		}
	}
	return orgIDs, nil
}

// IsAuthor reports whether the user is an author of the organization
func IsAuthor(tx *gorm.DB, userID, organizationID uint) (bool, error) {
	var count int64
	err := tx.Model(&model.OrganizationAuthor{}).
		Where("organization_id = ? AND user_id = ?", organizationID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CanWrite reports whether the user may mutate the referenced entity: true
// iff the user is an author of every owning organization. Reads are never
// gated through here. A dangling ownership chain denies instead of failing.
func CanWrite(tx *gorm.DB, userID uint, ref EntityRef) (bool, error) {
	orgIDs, err := OwningOrganizations(tx, ref)
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			return false, nil
		}
		return false, err
	}

	for _, orgID := range orgIDs {
		ok, err := IsAuthor(tx, userID, orgID)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func exists(tx *gorm.DB, entity interface{}, id uint) error {
	var count int64
	if err := tx.Model(entity).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperr.NotFoundf("entity %d not found", id)
	}
	return nil
}

func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFoundf(format, args...)
	}
	return err
}
