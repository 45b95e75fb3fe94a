package service

import (
	"testing"

	"github.com/pozor22/iiko/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterGeneratesLoginCode(t *testing.T) {
	s := newTestService(t)

	user, err := s.Register("alice", "alice@example.com", "password123")
	require.NoError(t, err)
	require.NotNil(t, user.Code)
	assert.GreaterOrEqual(t, *user.Code, 100000)
	assert.LessOrEqual(t, *user.Code, 999999)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "password123", user.Password)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestService(t)

	_, err := s.Register("", "alice@example.com", "password123")
	assert.True(t, apperr.IsKind(err, apperr.Validation))

	_, err = s.Register("alice", "alice@example.com", "short")
	assert.True(t, apperr.IsKind(err, apperr.Validation))

	_, err = s.Register("alice", "alice@example.com", "password123")
	require.NoError(t, err)

	// Same username or same email both collide
	_, err = s.Register("alice", "other@example.com", "password123")
	assert.True(t, apperr.IsKind(err, apperr.Validation))
	_, err = s.Register("bob", "alice@example.com", "password123")
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestAuthenticate(t *testing.T) {
	s := newTestService(t)

	registered, err := s.Register("alice", "alice@example.com", "password123")
	require.NoError(t, err)

	user, err := s.Authenticate("alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = s.Authenticate("alice", "wrongpass")
	assert.True(t, apperr.IsKind(err, apperr.PermissionDenied))

	_, err = s.Authenticate("nobody", "password123")
	assert.True(t, apperr.IsKind(err, apperr.PermissionDenied))
}

func TestAuthenticateByCode(t *testing.T) {
	s := newTestService(t)

	registered, err := s.Register("alice", "alice@example.com", "password123")
	require.NoError(t, err)
	require.NotNil(t, registered.Code)

	user, err := s.AuthenticateByCode(*registered.Code)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = s.AuthenticateByCode(0)
	assert.True(t, apperr.IsKind(err, apperr.PermissionDenied))
}

func TestDeleteUserSelfOnly(t *testing.T) {
	s := newTestService(t)
	u1 := createUser(t, s, "u1")
	u2 := createUser(t, s, "u2")

	err := s.DeleteUser(u1.ID, u2.ID)
	assert.True(t, apperr.IsKind(err, apperr.PermissionDenied))

	require.NoError(t, s.DeleteUser(u2.ID, u2.ID))

	_, err = s.GetUser(u2.ID)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestGetUserMembershipsUnknownUser(t *testing.T) {
	s := newTestService(t)

	_, err := s.GetUserMemberships(42)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}
