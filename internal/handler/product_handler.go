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

// CreateProduct creates a menu product
func (h *Handler) CreateProduct(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	var input service.ProductInput
	if err := c.Bind(&input); err != nil {
		log.Error("Failed to parse product creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	product, err := h.svc.CreateProduct(userID, input)
	if err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("create_product")
		}
		return fail(c, err)
	}

	prometheus.RecordCatalogOperation("create", "product")
	return c.JSON(http.StatusCreated, product)
}

// ListProducts returns products, optionally filtered by ?restaurant_id=
func (h *Handler) ListProducts(c echo.Context) error {
	var restaurantID uint
	if raw := c.QueryParam("restaurant_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant_id"})
		}
		restaurantID = uint(parsed)
	}

	products, err := h.svc.ListProducts(restaurantID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// GetProduct returns one product
func (h *Handler) GetProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	product, err := h.svc.GetProduct(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// UpdateProduct changes product fields
func (h *Handler) UpdateProduct(c echo.Context) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var input service.ProductInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	product, err := h.svc.UpdateProduct(userID, id, input)
	if err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("update_product")
		}
		return fail(c, err)
	}

	prometheus.RecordCatalogOperation("update", "product")
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct deletes a product
func (h *Handler) DeleteProduct(c echo.Context) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.svc.DeleteProduct(userID, id); err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("delete_product")
		}
		return fail(c, err)
	}

	prometheus.RecordCatalogOperation("delete", "product")
	return c.NoContent(http.StatusNoContent)
}

// BuyProduct records one sale, decrementing tracked stock
func (h *Handler) BuyProduct(c echo.Context) error {
	if _, ok := actorID(c); !ok {
		return unauthorized(c)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	product, err := h.svc.Buy(id)
	if err != nil {
		return fail(c, err)
	}

	prometheus.RecordCatalogOperation("buy", "product")
	return c.JSON(http.StatusOK, product)
}

// CreateIngredient registers ingredient stock for a restaurant
func (h *Handler) CreateIngredient(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	var req struct {
		Name         string  `json:"name"`
		RestaurantID uint    `json:"restaurant_id"`
		Count        float64 `json:"count"`
		Measure      string  `json:"measure"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse ingredient creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	ingredient, err := h.svc.CreateIngredient(userID, req.RestaurantID, req.Name, req.Count, req.Measure)
	if err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("create_ingredient")
		}
		return fail(c, err)
	}

	prometheus.RecordCatalogOperation("create", "ingredient")
	return c.JSON(http.StatusCreated, ingredient)
}

// ListIngredients returns ingredient stock for ?restaurant_id=
func (h *Handler) ListIngredients(c echo.Context) error {
	restaurantID, err := parseQueryID(c, "restaurant_id")
	if err != nil {
		return fail(c, err)
	}

	ingredients, err := h.svc.ListIngredients(restaurantID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, ingredients)
}

// UpdateIngredient sets the stock count of an ingredient
func (h *Handler) UpdateIngredient(c echo.Context) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req struct {
		Count float64 `json:"count"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	ingredient, err := h.svc.UpdateIngredientCount(userID, id, req.Count)
	if err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("update_ingredient")
		}
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, ingredient)
}

// DeleteIngredient removes an ingredient
func (h *Handler) DeleteIngredient(c echo.Context) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.svc.DeleteIngredient(userID, id); err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("delete_ingredient")
		}
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateRecipe links a product to an ingredient
func (h *Handler) CreateRecipe(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	var req struct {
		ProductID    uint    `json:"product_id"`
		IngredientID uint    `json:"ingredient_id"`
		Quantity     float64 `json:"quantity"`
		Measure      string  `json:"measure"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse recipe creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	recipe, err := h.svc.CreateRecipe(userID, req.ProductID, req.IngredientID, req.Quantity, req.Measure)
	if err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("create_recipe")
		}
		return fail(c, err)
	}

	prometheus.RecordCatalogOperation("create", "recipe")
	return c.JSON(http.StatusCreated, recipe)
}

// ListRecipes returns the bill of materials for ?product_id=
func (h *Handler) ListRecipes(c echo.Context) error {
	productID, err := parseQueryID(c, "product_id")
	if err != nil {
		return fail(c, err)
	}

	recipes, err := h.svc.ListRecipes(productID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, recipes)
}

// DeleteRecipe removes one product↔ingredient link
func (h *Handler) DeleteRecipe(c echo.Context) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.svc.DeleteRecipe(userID, id); err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("delete_recipe")
		}
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
