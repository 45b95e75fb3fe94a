package service

import (
	"testing"

	"github.com/pozor22/iiko/internal/apperr"
	"github.com/pozor22/iiko/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countRows(t *testing.T, s *Service, table, column string, id uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, s.db.Table(table).
		Where(column+" = ?", id).Count(&count).Error)
	return count
}

func TestDeleteRestaurantRemovesEdgesAndStock(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")
	u2 := createUser(t, s, "u2")
	_, _, restaurant := createHierarchy(t, s, u1, "Acme")
	category, kitchen := seedCatalog(t, s, u1, restaurant.ID)

	require.NoError(t, s.AddMember(u1.ID, LevelRestaurant, restaurant.ID, u2.ID))
	product, err := s.CreateProduct(u1.ID, ProductInput{
		Name: "Burger", Price: 9.50,
		CategoryID: category.ID, KitchenID: kitchen.ID,
		RestaurantIDs: []uint{restaurant.ID},
	})
	require.NoError(t, err)
	ingredient, err := s.CreateIngredient(u1.ID, restaurant.ID, "Beef", 20, "kg")
	require.NoError(t, err)
	_, err = s.CreateRecipe(u1.ID, product.ID, ingredient.ID, 0.2, "kg")
	require.NoError(t, err)

	require.NoError(t, s.DeleteRestaurant(u1.ID, restaurant.ID))

	_, err = s.GetRestaurant(restaurant.ID)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))

	// No edge may survive the restaurant
	assert.Zero(t, countRows(t, s, "restaurant_members", "restaurant_id", restaurant.ID))
	assert.Zero(t, countRows(t, s, "category_restaurants", "restaurant_id", restaurant.ID))
	assert.Zero(t, countRows(t, s, "kitchen_restaurants", "restaurant_id", restaurant.ID))
	assert.Zero(t, countRows(t, s, "product_restaurants", "restaurant_id", restaurant.ID))

	var ingredients []model.Ingredient
	require.NoError(t, s.db.Where("restaurant_id = ?", restaurant.ID).Find(&ingredients).Error)
	assert.Empty(t, ingredients)
	var recipes []model.Recipe
	require.NoError(t, s.db.Where("ingredient_id = ?", ingredient.ID).Find(&recipes).Error)
	assert.Empty(t, recipes)
}

func TestDeleteRestaurantKeepsSharedCategoryWritable(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")
	_, _, restaurant := createHierarchy(t, s, u1, "Acme")

	category, err := s.CreateCategory(u1.ID, "Drinks", []uint{restaurant.ID})
	require.NoError(t, err)

	require.NoError(t, s.DeleteRestaurant(u1.ID, restaurant.ID))

	// The category survives with a shrunken scope and stays mutable
	renamed, err := s.RenameCategory(u1.ID, category.ID, "Beverages")
	require.NoError(t, err)
	assert.Equal(t, "Beverages", renamed.Name)
	assert.Empty(t, renamed.Restaurants)

	require.NoError(t, s.DeleteCategory(u1.ID, category.ID))
}

func TestDeleteChainRemovesRestaurants(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")
	u2 := createUser(t, s, "u2")
	_, chain, restaurant := createHierarchy(t, s, u1, "Acme")

	require.NoError(t, s.AddMember(u1.ID, LevelChain, chain.ID, u2.ID))

	require.NoError(t, s.DeleteChain(u1.ID, chain.ID))

	_, err := s.GetChain(chain.ID)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
	_, err = s.GetRestaurant(restaurant.ID)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))

	restaurants, err := s.ListRestaurants(chain.ID)
	require.NoError(t, err)
	assert.Empty(t, restaurants)
	assert.Zero(t, countRows(t, s, "chain_members", "chain_id", chain.ID))
	assert.Zero(t, countRows(t, s, "restaurant_members", "restaurant_id", restaurant.ID))
}

func TestDeleteOrganizationRemovesWholeSubtree(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")
	u2 := createUser(t, s, "u2")
	org, chain, restaurant := createHierarchy(t, s, u1, "Acme")
	require.NoError(t, s.AddMember(u1.ID, LevelOrganization, org.ID, u2.ID))

	require.NoError(t, s.DeleteOrganization(u1.ID, org.ID))

	// No chain may outlive its organization
	_, err := s.GetChain(chain.ID)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
	chains, err := s.ListChains(0)
	require.NoError(t, err)
	assert.Empty(t, chains)

	_, err = s.GetRestaurant(restaurant.ID)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))

	assert.Zero(t, countRows(t, s, "organization_authors", "organization_id", org.ID))
	assert.Zero(t, countRows(t, s, "organization_members", "organization_id", org.ID))

	memberships, err := s.GetUserMemberships(u1.ID)
	require.NoError(t, err)
	assert.Empty(t, memberships.Organizations)
	assert.Empty(t, memberships.Chains)
	assert.Empty(t, memberships.Restaurants)
	assert.Empty(t, memberships.OwnedOrganizations)
}
