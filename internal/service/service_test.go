package service

import (
	"fmt"
	"testing"

	"github.com/pozor22/iiko/internal/model"
	"github.com/pozor22/iiko/internal/notify"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestService builds a service over an in-memory sqlite database. A
// single connection keeps every query on the same memory store.
func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(model.AllModels()...))

	return New(db, notify.New(nil, "", nil), nil)
}

// createUser inserts a user directly, bypassing registration
func createUser(t *testing.T, s *Service, username string) *model.User {
	t.Helper()

	user := model.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		IsActive: true,
	}
	require.NoError(t, s.db.Create(&user).Error)
	return &user
}

// createHierarchy seeds an organization/chain/restaurant tree authored by
// the given user and returns all three.
func createHierarchy(t *testing.T, s *Service, author *model.User, orgName string) (*model.Organization, *model.Chain, *model.Restaurant) {
	t.Helper()

	org, err := s.CreateOrganization(author.ID, orgName)
	require.NoError(t, err)

	chain, err := s.CreateChain(author.ID, org.ID, orgName+" chain")
	require.NoError(t, err)

	restaurant, err := s.CreateRestaurant(author.ID, chain.ID, orgName+" restaurant")
	require.NoError(t, err)

	return org, chain, restaurant
}
