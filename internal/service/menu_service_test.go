package service

import (
	"testing"

	"github.com/pozor22/iiko/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCategory(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")
	_, _, restaurant := createHierarchy(t, s, u1, "Acme")

	category, err := s.CreateCategory(u1.ID, "Drinks", []uint{restaurant.ID})
	require.NoError(t, err)
	require.Len(t, category.Restaurants, 1)
	assert.Equal(t, restaurant.ID, category.Restaurants[0].ID)
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")
	_, _, restaurant := createHierarchy(t, s, u1, "Acme")

	_, err := s.CreateCategory(u1.ID, "Drinks", []uint{restaurant.ID})
	require.NoError(t, err)

	_, err = s.CreateCategory(u1.ID, "Drinks", nil)
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestCreateCategoryRequiresAuthorshipOfEveryRestaurant(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")
	u2 := createUser(t, s, "u2")
	_, _, r1 := createHierarchy(t, s, u1, "Acme")
	_, _, r2 := createHierarchy(t, s, u2, "Bistro")

	_, err := s.CreateCategory(u1.ID, "Drinks", []uint{r1.ID, r2.ID})
	assert.True(t, apperr.IsKind(err, apperr.PermissionDenied))
}

func TestSharedCategoryConjunction(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")
	u2 := createUser(t, s, "u2")
	_, _, r1 := createHierarchy(t, s, u1, "Acme")
	orgB, _, r2 := createHierarchy(t, s, u2, "Bistro")

	category, err := s.CreateCategory(u1.ID, "Drinks", []uint{r1.ID})
	require.NoError(t, err)

	// Extending the scope into another organization takes both authors:
	// u2 alone lacks authorship over the existing scope
	_, err = s.AttachRestaurantToCategory(u2.ID, category.ID, r2.ID)
	assert.True(t, apperr.IsKind(err, apperr.PermissionDenied))

	// With authorship over both organizations the attach goes through
	require.NoError(t, s.AddAuthor(u2.ID, orgB.ID, u1.ID))
	shared, err := s.AttachRestaurantToCategory(u1.ID, category.ID, r2.ID)
	require.NoError(t, err)
	require.Len(t, shared.Restaurants, 2)

	// Now the category spans org A and org B. u1 is author of both, but a
	// third restaurant in a fresh organization authored only by u2 stays
	// out of reach for u1
	_, _, r3 := createHierarchy(t, s, u2, "Cantina")
	_, err = s.AttachRestaurantToCategory(u1.ID, category.ID, r3.ID)
	assert.True(t, apperr.IsKind(err, apperr.PermissionDenied))

	// And u2, author of B and C but not A, cannot extend it either
	_, err = s.AttachRestaurantToCategory(u2.ID, category.ID, r3.ID)
	assert.True(t, apperr.IsKind(err, apperr.PermissionDenied))
}

func TestAttachRestaurantDuplicateIsConflict(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")
	_, _, r1 := createHierarchy(t, s, u1, "Acme")

	category, err := s.CreateCategory(u1.ID, "Drinks", []uint{r1.ID})
	require.NoError(t, err)

	_, err = s.AttachRestaurantToCategory(u1.ID, category.ID, r1.ID)
	assert.True(t, apperr.IsKind(err, apperr.Conflict))
}

func TestDetachRestaurantFromCategory(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")
	_, _, r1 := createHierarchy(t, s, u1, "Acme")

	category, err := s.CreateCategory(u1.ID, "Drinks", []uint{r1.ID})
	require.NoError(t, err)

	detached, err := s.DetachRestaurantFromCategory(u1.ID, category.ID, r1.ID)
	require.NoError(t, err)
	assert.Empty(t, detached.Restaurants)

	// Detaching an absent edge is NotFound
	_, err = s.DetachRestaurantFromCategory(u1.ID, category.ID, r1.ID)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestUnattachedCategoryIsWritableByAnyone(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")
	u2 := createUser(t, s, "u2")
	_, _, r1 := createHierarchy(t, s, u1, "Acme")

	category, err := s.CreateCategory(u1.ID, "Drinks", []uint{r1.ID})
	require.NoError(t, err)
	_, err = s.DetachRestaurantFromCategory(u1.ID, category.ID, r1.ID)
	require.NoError(t, err)

	// With an empty scope the conjunction is vacuously satisfied
	renamed, err := s.RenameCategory(u2.ID, category.ID, "Beverages")
	require.NoError(t, err)
	assert.Equal(t, "Beverages", renamed.Name)
}

func TestRenameCategoryConjunction(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")
	u2 := createUser(t, s, "u2")
	_, _, r1 := createHierarchy(t, s, u1, "Acme")

	category, err := s.CreateCategory(u1.ID, "Drinks", []uint{r1.ID})
	require.NoError(t, err)

	_, err = s.RenameCategory(u2.ID, category.ID, "Beverages")
	assert.True(t, apperr.IsKind(err, apperr.PermissionDenied))

	renamed, err := s.RenameCategory(u1.ID, category.ID, "Beverages")
	require.NoError(t, err)
	assert.Equal(t, "Beverages", renamed.Name)
}

func TestDeleteCategoryRemovesScopeEdges(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")
	_, _, r1 := createHierarchy(t, s, u1, "Acme")

	category, err := s.CreateCategory(u1.ID, "Drinks", []uint{r1.ID})
	require.NoError(t, err)

	require.NoError(t, s.DeleteCategory(u1.ID, category.ID))

	_, err = s.GetCategory(category.ID)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))

	var count int64
	require.NoError(t, s.db.Table("category_restaurants").
		Where("category_id = ?", category.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestKitchenScopeMirrorsCategory(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")
	u2 := createUser(t, s, "u2")
	_, _, r1 := createHierarchy(t, s, u1, "Acme")
	_, _, r2 := createHierarchy(t, s, u2, "Bistro")

	kitchen, err := s.CreateKitchen(u1.ID, "Grill", []uint{r1.ID})
	require.NoError(t, err)
	require.Len(t, kitchen.Restaurants, 1)

	_, err = s.AttachRestaurantToKitchen(u2.ID, kitchen.ID, r2.ID)
	assert.True(t, apperr.IsKind(err, apperr.PermissionDenied))

	_, err = s.AttachRestaurantToKitchen(u1.ID, kitchen.ID, r1.ID)
	assert.True(t, apperr.IsKind(err, apperr.Conflict))

	detached, err := s.DetachRestaurantFromKitchen(u1.ID, kitchen.ID, r1.ID)
	require.NoError(t, err)
	assert.Empty(t, detached.Restaurants)

	err = s.DeleteKitchen(u1.ID, kitchen.ID)
	require.NoError(t, err)
	_, err = s.GetKitchen(kitchen.ID)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestRenameKitchenConjunction(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")
	u2 := createUser(t, s, "u2")
	_, _, r1 := createHierarchy(t, s, u1, "Acme")

	kitchen, err := s.CreateKitchen(u1.ID, "Grill", []uint{r1.ID})
	require.NoError(t, err)
	other, err := s.CreateKitchen(u1.ID, "Bakery", []uint{r1.ID})
	require.NoError(t, err)

	_, err = s.RenameKitchen(u2.ID, kitchen.ID, "Charcoal")
	assert.True(t, apperr.IsKind(err, apperr.PermissionDenied))

	_, err = s.RenameKitchen(u1.ID, kitchen.ID, other.Name)
	assert.True(t, apperr.IsKind(err, apperr.Validation))

	_, err = s.RenameKitchen(u1.ID, 999, "Charcoal")
	assert.True(t, apperr.IsKind(err, apperr.NotFound))

	renamed, err := s.RenameKitchen(u1.ID, kitchen.ID, "Charcoal")
	require.NoError(t, err)
	assert.Equal(t, "Charcoal", renamed.Name)
}

func TestCatalogMissingTargets(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")
	_, _, r1 := createHierarchy(t, s, u1, "Acme")

	_, err := s.AttachRestaurantToCategory(u1.ID, 999, r1.ID)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))

	category, err := s.CreateCategory(u1.ID, "Drinks", []uint{r1.ID})
	require.NoError(t, err)

	_, err = s.AttachRestaurantToCategory(u1.ID, category.ID, 999)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))

	_, err = s.CreateCategory(u1.ID, "Snacks", []uint{999})
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}
