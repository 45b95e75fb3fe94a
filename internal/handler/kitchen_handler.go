package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pozor22/iiko/pkg/logger"
	"github.com/pozor22/iiko/prometheus"
	"go.uber.org/zap"
)

// CreateKitchen creates a kitchen scoped to restaurants
func (h *Handler) CreateKitchen(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	var req struct {
		Name          string `json:"name"`
		RestaurantIDs []uint `json:"restaurant_ids"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse kitchen creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	kitchen, err := h.svc.CreateKitchen(userID, req.Name, req.RestaurantIDs)
	if err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("create_kitchen")
		}
		return fail(c, err)
	}

	prometheus.RecordCatalogOperation("create", "kitchen")
	return c.JSON(http.StatusCreated, kitchen)
}

// ListKitchens returns all kitchens with their restaurant scope
func (h *Handler) ListKitchens(c echo.Context) error {
	kitchens, err := h.svc.ListKitchens()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, kitchens)
}

// GetKitchen returns one kitchen
func (h *Handler) GetKitchen(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	kitchen, err := h.svc.GetKitchen(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, kitchen)
}

// UpdateKitchen renames a kitchen
func (h *Handler) UpdateKitchen(c echo.Context) error {
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

	kitchen, err := h.svc.RenameKitchen(userID, id, req.Name)
	if err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("rename_kitchen")
		}
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, kitchen)
}

// DeleteKitchen deletes a kitchen
func (h *Handler) DeleteKitchen(c echo.Context) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.svc.DeleteKitchen(userID, id); err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("delete_kitchen")
		}
		return fail(c, err)
	}

	prometheus.RecordCatalogOperation("delete", "kitchen")
	return c.NoContent(http.StatusNoContent)
}

// AddRestaurantToKitchen extends a kitchen's restaurant scope
func (h *Handler) AddRestaurantToKitchen(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	var req struct {
		KitchenID    uint `json:"kitchen_id"`
		RestaurantID uint `json:"restaurant_id"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse attach request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	kitchen, err := h.svc.AttachRestaurantToKitchen(userID, req.KitchenID, req.RestaurantID)
	if err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("attach_restaurant_to_kitchen")
		}
		return fail(c, err)
	}

	prometheus.RecordCatalogOperation("attach_restaurant", "kitchen")
	return c.JSON(http.StatusCreated, kitchen)
}

// RemoveRestaurantFromKitchen shrinks a kitchen's restaurant scope
func (h *Handler) RemoveRestaurantFromKitchen(c echo.Context) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	kitchenID, err := parseQueryID(c, "kitchen_id")
	if err != nil {
		return fail(c, err)
	}

	restaurantID, err := parseQueryID(c, "restaurant_id")
	if err != nil {
		return fail(c, err)
	}

	kitchen, err := h.svc.DetachRestaurantFromKitchen(userID, kitchenID, restaurantID)
	if err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("detach_restaurant_from_kitchen")
		}
		return fail(c, err)
	}

	prometheus.RecordCatalogOperation("detach_restaurant", "kitchen")
	return c.JSON(http.StatusOK, kitchen)
}
