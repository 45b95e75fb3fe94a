package handler

import (
	"net/http"
	"strconv"

	"github.com/pozor22/iiko/internal/apperr"

	"github.com/labstack/echo/v4"
	"github.com/pozor22/iiko/pkg/logger"
	"go.uber.org/zap"
)

// ListUsers returns all users
func (h *Handler) ListUsers(c echo.Context) error {
	users, err := h.svc.ListUsers()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser returns one user by ID
func (h *Handler) GetUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	user, err := h.svc.GetUser(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// GetProfile returns the authenticated user with their memberships
func (h *Handler) GetProfile(c echo.Context) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	user, err := h.svc.GetUser(userID)
	if err != nil {
		return fail(c, err)
	}

	memberships, err := h.svc.GetUserMemberships(userID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":        user,
		"memberships": memberships,
	})
}

// GetUserMemberships returns the membership picture of any user
func (h *Handler) GetUserMemberships(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	memberships, err := h.svc.GetUserMemberships(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, memberships)
}

// DeleteUser deletes the authenticated user's own account
func (h *Handler) DeleteUser(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.svc.DeleteUser(userID, id); err != nil {
		return fail(c, err)
	}

	log.Info("User deleted", zap.Uint("id", id))
	return c.NoContent(http.StatusNoContent)
}

// parseID reads a numeric path parameter
func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, apperr.Validationf("invalid %s", name)
	}
	return uint(id), nil
}

// parseQueryID reads a numeric query parameter
func parseQueryID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.QueryParam(name), 10, 32)
	if err != nil {
		return 0, apperr.Validationf("invalid %s", name)
	}
	return uint(id), nil
}
