package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pozor22/iiko/internal/service"
	"github.com/pozor22/iiko/pkg/logger"
	"github.com/pozor22/iiko/prometheus"
	"go.uber.org/zap"
)

// CreateRestaurant creates a restaurant under a chain
func (h *Handler) CreateRestaurant(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	var req struct {
		Name    string `json:"name"`
		ChainID uint   `json:"chain_id"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse restaurant creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	restaurant, err := h.svc.CreateRestaurant(userID, req.ChainID, req.Name)
	if err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("create_restaurant")
		}
		return fail(c, err)
	}

	prometheus.RecordMembershipOperation("create", "restaurant")
	return c.JSON(http.StatusCreated, restaurant)
}

// ListRestaurants returns restaurants, optionally filtered by ?chain_id=
func (h *Handler) ListRestaurants(c echo.Context) error {
	var chainID uint
	if raw := c.QueryParam("chain_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid chain_id"})
		}
		chainID = uint(parsed)
	}

	restaurants, err := h.svc.ListRestaurants(chainID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, restaurants)
}

// GetRestaurant returns one restaurant
func (h *Handler) GetRestaurant(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	restaurant, err := h.svc.GetRestaurant(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, restaurant)
}

// UpdateRestaurant renames a restaurant
func (h *Handler) UpdateRestaurant(c echo.Context) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	restaurant, err := h.svc.RenameRestaurant(userID, id, req.Name)
	if err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("rename_restaurant")
		}
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, restaurant)
}

// DeleteRestaurant deletes a restaurant
func (h *Handler) DeleteRestaurant(c echo.Context) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.svc.DeleteRestaurant(userID, id); err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("delete_restaurant")
		}
		return fail(c, err)
	}

	prometheus.RecordMembershipOperation("delete", "restaurant")
	return c.NoContent(http.StatusNoContent)
}

// AddUserToRestaurant attaches a user to a restaurant as a plain member
func (h *Handler) AddUserToRestaurant(c echo.Context) error {
	return h.addMember(c, service.LevelRestaurant, "restaurant_id")
}

// RemoveUserFromRestaurant detaches a plain member from a restaurant
func (h *Handler) RemoveUserFromRestaurant(c echo.Context) error {
	return h.removeMember(c, service.LevelRestaurant, "restaurant_id")
}

// ListRestaurantMembers returns the member roster of a restaurant
func (h *Handler) ListRestaurantMembers(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	users, err := h.svc.ListMembers(service.LevelRestaurant, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, users)
}
