package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pozor22/iiko/pkg/logger"
	"github.com/pozor22/iiko/prometheus"
	"go.uber.org/zap"
)

// Register handles user registration
func (h *Handler) Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	user, err := h.svc.Register(req.Username, req.Email, req.Password)
	if err != nil {
		prometheus.RecordAuthError("registration_failed")
		return fail(c, err)
	}

	tokens, err := h.jwt.GenerateTokenPair(user.ID, user.Username, user.Email)
	if err != nil {
		log.Error("Failed to generate tokens", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token generation failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"user":   user,
		"tokens": tokens,
	})
}

// Login handles username/password authentication
func (h *Handler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	user, err := h.svc.Authenticate(req.Username, req.Password)
	if err != nil {
		log.Warn("Login failed", zap.String("username", req.Username))
		prometheus.RecordAuthError("login_failure")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	tokens, err := h.jwt.GenerateTokenPair(user.ID, user.Username, user.Email)
	if err != nil {
		log.Error("Failed to generate tokens", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token generation failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":   user,
		"tokens": tokens,
	})
}

// LoginWithCode handles authentication by the six-digit user code
func (h *Handler) LoginWithCode(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Code int `json:"code"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse code login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	user, err := h.svc.AuthenticateByCode(req.Code)
	if err != nil {
		log.Warn("Code login failed")
		prometheus.RecordAuthError("login_failure")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid code"})
	}

	tokens, err := h.jwt.GenerateTokenPair(user.ID, user.Username, user.Email)
	if err != nil {
		log.Error("Failed to generate tokens", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token generation failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":   user,
		"tokens": tokens,
	})
}

// RefreshToken exchanges a refresh token for a new token pair
func (h *Handler) RefreshToken(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse refresh request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	claims, err := h.jwt.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		log.Warn("Invalid refresh token", zap.Error(err))
		prometheus.RecordAuthError("invalid_token")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired refresh token"})
	}

	user, err := h.svc.GetUser(claims.UserID)
	if err != nil {
		return fail(c, err)
	}

	tokens, err := h.jwt.GenerateTokenPair(user.ID, user.Username, user.Email)
	if err != nil {
		log.Error("Failed to generate tokens", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token generation failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"tokens": tokens})
}
