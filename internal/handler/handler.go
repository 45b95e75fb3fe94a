package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pozor22/iiko/internal/apperr"
	"github.com/pozor22/iiko/internal/service"
	"github.com/pozor22/iiko/pkg/jwtutil"
	"github.com/pozor22/iiko/pkg/logger"
	"go.uber.org/zap"
)

// Handler carries the dependencies shared by all HTTP handlers
type Handler struct {
	svc *service.Service
	jwt *jwtutil.JWTUtil
}

// New creates the handler set
func New(svc *service.Service, jwt *jwtutil.JWTUtil) *Handler {
	return &Handler{svc: svc, jwt: jwt}
}

// actorID extracts the authenticated user ID set by AuthMiddleware
func actorID(c echo.Context) (uint, bool) {
	id, ok := c.Get("user_id").(uint)
	return id, ok
}

// fail maps a service error to an HTTP response by its classification
func fail(c echo.Context, err error) error {
	log := logger.FromContext(c)

	switch apperr.KindOf(err) {
	case apperr.NotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case apperr.PermissionDenied:
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case apperr.Validation:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case apperr.Conflict:
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		log.Error("Internal error", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}

func isPermissionDenied(err error) bool {
	return apperr.IsKind(err, apperr.PermissionDenied)
}

func unauthorized(c echo.Context) error {
	logger.FromContext(c).Error("Failed to get user ID from context")
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
}
