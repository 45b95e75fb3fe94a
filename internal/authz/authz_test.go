package authz

import (
	"testing"

	"github.com/pozor22/iiko/internal/apperr"
	"github.com/pozor22/iiko/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(model.AllModels()...))
	return db
}

// fixture seeds two organizations each with one chain and one restaurant
type fixture struct {
	user model.User
	orgA model.Organization
	orgB model.Organization
	r1   model.Restaurant
	r2   model.Restaurant
}

func seed(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()

	f := &fixture{
		user: model.User{Username: "alice", Email: "alice@example.com", IsActive: true},
		orgA: model.Organization{Name: "A"},
		orgB: model.Organization{Name: "B"},
	}
	require.NoError(t, db.Create(&f.user).Error)
	require.NoError(t, db.Create(&f.orgA).Error)
	require.NoError(t, db.Create(&f.orgB).Error)

	chainA := model.Chain{Name: "A chain", OrganizationID: f.orgA.ID}
	chainB := model.Chain{Name: "B chain", OrganizationID: f.orgB.ID}
	require.NoError(t, db.Create(&chainA).Error)
	require.NoError(t, db.Create(&chainB).Error)

	f.r1 = model.Restaurant{Name: "R1", ChainID: chainA.ID}
	f.r2 = model.Restaurant{Name: "R2", ChainID: chainB.ID}
	require.NoError(t, db.Create(&f.r1).Error)
	require.NoError(t, db.Create(&f.r2).Error)
	return f
}

func makeAuthor(t *testing.T, db *gorm.DB, userID, orgID uint) {
	t.Helper()
	require.NoError(t, db.Create(&model.OrganizationAuthor{
		OrganizationID: orgID,
		UserID:         userID,
	}).Error)
}

func TestOwningOrganizationsWalk(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)

	orgs, err := OwningOrganizations(db, EntityRef{Kind: KindOrganization, ID: f.orgA.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint{f.orgA.ID}, orgs)

	orgs, err = OwningOrganizations(db, EntityRef{Kind: KindRestaurant, ID: f.r2.ID})
	require.NoError(t, err)
	assert.Equal(t, []uint{f.orgB.ID}, orgs)
}

func TestOwningOrganizationsMissingEntity(t *testing.T) {
	db := newTestDB(t)
	seed(t, db)

	for _, kind := range []EntityKind{
		KindOrganization, KindChain, KindRestaurant,
		KindCategory, KindKitchen, KindProduct,
	} {
		_, err := OwningOrganizations(db, EntityRef{Kind: kind, ID: 999})
		assert.True(t, apperr.IsKind(err, apperr.NotFound), "kind %s", kind)
	}

	_, err := OwningOrganizations(db, EntityRef{Kind: "table", ID: 1})
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestCatalogScopeResolvesAndDeduplicates(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)

	// Second restaurant in org A, to exercise dedup
	var chainA model.Chain
	require.NoError(t, db.Where("organization_id = ?", f.orgA.ID).First(&chainA).Error)
	r3 := model.Restaurant{Name: "R3", ChainID: chainA.ID}
	require.NoError(t, db.Create(&r3).Error)

	category := model.Category{Name: "Drinks"}
	require.NoError(t, db.Create(&category).Error)
	for _, rid := range []uint{f.r1.ID, r3.ID, f.r2.ID} {
		require.NoError(t, db.Create(&model.CategoryRestaurant{
			CategoryID: category.ID, RestaurantID: rid,
		}).Error)
	}

	orgs, err := OwningOrganizations(db, EntityRef{Kind: KindCategory, ID: category.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{f.orgA.ID, f.orgB.ID}, orgs)
}

func TestUnattachedCatalogEntityHasEmptyScope(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)

	kitchen := model.Kitchen{Name: "Grill"}
	require.NoError(t, db.Create(&kitchen).Error)

	orgs, err := OwningOrganizations(db, EntityRef{Kind: KindKitchen, ID: kitchen.ID})
	require.NoError(t, err)
	assert.Empty(t, orgs)

	// Empty scope satisfies the conjunction vacuously
	ok, err := CanWrite(db, f.user.ID, EntityRef{Kind: KindKitchen, ID: kitchen.ID})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanWriteConjunction(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)

	category := model.Category{Name: "Drinks"}
	require.NoError(t, db.Create(&category).Error)
	for _, rid := range []uint{f.r1.ID, f.r2.ID} {
		require.NoError(t, db.Create(&model.CategoryRestaurant{
			CategoryID: category.ID, RestaurantID: rid,
		}).Error)
	}

	ref := EntityRef{Kind: KindCategory, ID: category.ID}

	ok, err := CanWrite(db, f.user.ID, ref)
	require.NoError(t, err)
	assert.False(t, ok)

	// Author of one organization out of two is still not enough
	makeAuthor(t, db, f.user.ID, f.orgA.ID)
	ok, err = CanWrite(db, f.user.ID, ref)
	require.NoError(t, err)
	assert.False(t, ok)

	makeAuthor(t, db, f.user.ID, f.orgB.ID)
	ok, err = CanWrite(db, f.user.ID, ref)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanWriteDanglingReferenceDenies(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	makeAuthor(t, db, f.user.ID, f.orgA.ID)

	category := model.Category{Name: "Drinks"}
	require.NoError(t, db.Create(&category).Error)
	// sqlite does not enforce the FK here, so a dangling scope edge is
	// representable
	require.NoError(t, db.Create(&model.CategoryRestaurant{
		CategoryID: category.ID, RestaurantID: 999,
	}).Error)

	ok, err := CanWrite(db, f.user.ID, EntityRef{Kind: KindCategory, ID: category.ID})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanWriteMissingEntityDenies(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)
	makeAuthor(t, db, f.user.ID, f.orgA.ID)

	ok, err := CanWrite(db, f.user.ID, EntityRef{Kind: KindRestaurant, ID: 999})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsAuthor(t *testing.T) {
	db := newTestDB(t)
	f := seed(t, db)

	ok, err := IsAuthor(db, f.user.ID, f.orgA.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	makeAuthor(t, db, f.user.ID, f.orgA.ID)
	ok, err = IsAuthor(db, f.user.ID, f.orgA.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}
