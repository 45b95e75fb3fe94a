package service

import (
	"testing"

	"github.com/pozor22/iiko/internal/apperr"
	"github.com/pozor22/iiko/internal/authz"
	"github.com/pozor22/iiko/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrganizationMakesCreatorMemberAndAuthor(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")

	org, err := s.CreateOrganization(u1.ID, "Acme")
	require.NoError(t, err)
	require.NotZero(t, org.ID)

	isAuthor, err := authz.IsAuthor(s.db, u1.ID, org.ID)
	require.NoError(t, err)
	assert.True(t, isAuthor)

	memberships, err := s.GetUserMemberships(u1.ID)
	require.NoError(t, err)
	require.Len(t, memberships.Organizations, 1)
	require.Len(t, memberships.OwnedOrganizations, 1)
	assert.Equal(t, "Acme", memberships.OwnedOrganizations[0].Name)
}

func TestCreateOrganizationDuplicateName(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")

	_, err := s.CreateOrganization(u1.ID, "Acme")
	require.NoError(t, err)

	_, err = s.CreateOrganization(u1.ID, "Acme")
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestAddAuthorSymmetry(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")
	u2 := createUser(t, s, "u2")

	org, err := s.CreateOrganization(u1.ID, "Acme")
	require.NoError(t, err)

	require.NoError(t, s.AddAuthor(u1.ID, org.ID, u2.ID))

	// Both sides of the edge must exist
	isAuthor, err := authz.IsAuthor(s.db, u2.ID, org.ID)
	require.NoError(t, err)
	assert.True(t, isAuthor)

	memberships, err := s.GetUserMemberships(u2.ID)
	require.NoError(t, err)
	require.Len(t, memberships.OwnedOrganizations, 1)
	assert.Equal(t, org.ID, memberships.OwnedOrganizations[0].ID)
	require.Len(t, memberships.Organizations, 1)
	assert.Equal(t, org.ID, memberships.Organizations[0].ID)
}

func TestAddAuthorSelfForbidden(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")

	org, err := s.CreateOrganization(u1.ID, "Acme")
	require.NoError(t, err)

	// Even an existing author can never self-add
	err = s.AddAuthor(u1.ID, org.ID, u1.ID)
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestAddAuthorRequiresAuthorship(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")
	u2 := createUser(t, s, "u2")
	u3 := createUser(t, s, "u3")

	org, err := s.CreateOrganization(u1.ID, "Acme")
	require.NoError(t, err)

	err = s.AddAuthor(u2.ID, org.ID, u3.ID)
	assert.True(t, apperr.IsKind(err, apperr.PermissionDenied))
}

func TestAddAuthorAlreadyAuthor(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")
	u2 := createUser(t, s, "u2")

	org, err := s.CreateOrganization(u1.ID, "Acme")
	require.NoError(t, err)

	require.NoError(t, s.AddAuthor(u1.ID, org.ID, u2.ID))
	err = s.AddAuthor(u1.ID, org.ID, u2.ID)
	assert.True(t, apperr.IsKind(err, apperr.Conflict))
}

func TestAddAuthorMissingTargets(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")

	org, err := s.CreateOrganization(u1.ID, "Acme")
	require.NoError(t, err)

	err = s.AddAuthor(u1.ID, org.ID, 999)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))

	err = s.AddAuthor(u1.ID, 999, u1.ID)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestRemoveAuthorRequiresActorAuthorship(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")
	u2 := createUser(t, s, "u2")

	org, err := s.CreateOrganization(u1.ID, "Acme")
	require.NoError(t, err)

	// Denied for a non-author actor whether or not the target is an author
	err = s.RemoveAuthor(u2.ID, org.ID, u1.ID)
	assert.True(t, apperr.IsKind(err, apperr.PermissionDenied))

	err = s.RemoveAuthor(u2.ID, org.ID, u2.ID)
	assert.True(t, apperr.IsKind(err, apperr.PermissionDenied))
}

func TestRemoveAuthorRemovesBothEdges(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")
	u2 := createUser(t, s, "u2")

	org, err := s.CreateOrganization(u1.ID, "Acme")
	require.NoError(t, err)
	require.NoError(t, s.AddAuthor(u1.ID, org.ID, u2.ID))

	require.NoError(t, s.RemoveAuthor(u1.ID, org.ID, u2.ID))

	isAuthor, err := authz.IsAuthor(s.db, u2.ID, org.ID)
	require.NoError(t, err)
	assert.False(t, isAuthor)

	memberships, err := s.GetUserMemberships(u2.ID)
	require.NoError(t, err)
	assert.Empty(t, memberships.OwnedOrganizations)
	assert.Empty(t, memberships.Organizations)
}

func TestRemoveAuthorNotAnAuthor(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")
	u2 := createUser(t, s, "u2")

	org, err := s.CreateOrganization(u1.ID, "Acme")
	require.NoError(t, err)

	err = s.RemoveAuthor(u1.ID, org.ID, u2.ID)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestRenameOrganizationAuthorsOnly(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")
	u2 := createUser(t, s, "u2")

	org, err := s.CreateOrganization(u1.ID, "Acme")
	require.NoError(t, err)

	_, err = s.RenameOrganization(u2.ID, org.ID, "Evil Corp")
	assert.True(t, apperr.IsKind(err, apperr.PermissionDenied))

	renamed, err := s.RenameOrganization(u1.ID, org.ID, "Acme Group")
	require.NoError(t, err)
	assert.Equal(t, "Acme Group", renamed.Name)
}

func TestDeleteOrganizationAuthorsOnly(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")
	u2 := createUser(t, s, "u2")

	org, err := s.CreateOrganization(u1.ID, "Acme")
	require.NoError(t, err)

	err = s.DeleteOrganization(u2.ID, org.ID)
	assert.True(t, apperr.IsKind(err, apperr.PermissionDenied))

	require.NoError(t, s.DeleteOrganization(u1.ID, org.ID))

	var count int64
	require.NoError(t, s.db.Model(&model.Organization{}).Where("id = ?", org.ID).Count(&count).Error)
	assert.Zero(t, count)
}
