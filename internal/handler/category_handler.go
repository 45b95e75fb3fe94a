package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pozor22/iiko/pkg/logger"
	"github.com/pozor22/iiko/prometheus"
	"go.uber.org/zap"
)

// CreateCategory creates a menu category scoped to restaurants
func (h *Handler) CreateCategory(c echo.Context) error {
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
		log.Error("Failed to parse category creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	category, err := h.svc.CreateCategory(userID, req.Name, req.RestaurantIDs)
	if err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("create_category")
		}
		return fail(c, err)
	}

	prometheus.RecordCatalogOperation("create", "category")
	return c.JSON(http.StatusCreated, category)
}

// ListCategories returns all categories with their restaurant scope
func (h *Handler) ListCategories(c echo.Context) error {
	categories, err := h.svc.ListCategories()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, categories)
}

// GetCategory returns one category
func (h *Handler) GetCategory(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	category, err := h.svc.GetCategory(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, category)
}

// UpdateCategory renames a category
func (h *Handler) UpdateCategory(c echo.Context) error {
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

	category, err := h.svc.RenameCategory(userID, id, req.Name)
	if err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("rename_category")
		}
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory deletes a category
func (h *Handler) DeleteCategory(c echo.Context) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.svc.DeleteCategory(userID, id); err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("delete_category")
		}
		return fail(c, err)
	}

	prometheus.RecordCatalogOperation("delete", "category")
	return c.NoContent(http.StatusNoContent)
}

// AddRestaurantToCategory extends a category's restaurant scope
func (h *Handler) AddRestaurantToCategory(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	var req struct {
		CategoryID   uint `json:"category_id"`
		RestaurantID uint `json:"restaurant_id"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse attach request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	category, err := h.svc.AttachRestaurantToCategory(userID, req.CategoryID, req.RestaurantID)
	if err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("attach_restaurant_to_category")
		}
		return fail(c, err)
	}

	prometheus.RecordCatalogOperation("attach_restaurant", "category")
	return c.JSON(http.StatusCreated, category)
}

// RemoveRestaurantFromCategory shrinks a category's restaurant scope
func (h *Handler) RemoveRestaurantFromCategory(c echo.Context) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	categoryID, err := parseQueryID(c, "category_id")
	if err != nil {
		return fail(c, err)
	}

	restaurantID, err := parseQueryID(c, "restaurant_id")
	if err != nil {
		return fail(c, err)
	}

	category, err := h.svc.DetachRestaurantFromCategory(userID, categoryID, restaurantID)
	if err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("detach_restaurant_from_category")
		}
		return fail(c, err)
	}

	prometheus.RecordCatalogOperation("detach_restaurant", "category")
	return c.JSON(http.StatusOK, category)
}
