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

// CreateChain creates a chain under an organization
func (h *Handler) CreateChain(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	var req struct {
		Name           string `json:"name"`
		OrganizationID uint   `json:"organization_id"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse chain creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	chain, err := h.svc.CreateChain(userID, req.OrganizationID, req.Name)
	if err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("create_chain")
		}
		return fail(c, err)
	}

	prometheus.RecordMembershipOperation("create", "chain")
	return c.JSON(http.StatusCreated, chain)
}

// ListChains returns chains, optionally filtered by ?organization_id=
func (h *Handler) ListChains(c echo.Context) error {
	var orgID uint
	if raw := c.QueryParam("organization_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid organization_id"})
		}
		orgID = uint(parsed)
	}

	chains, err := h.svc.ListChains(orgID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, chains)
}

// GetChain returns one chain
func (h *Handler) GetChain(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	chain, err := h.svc.GetChain(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, chain)
}

// UpdateChain renames a chain
func (h *Handler) UpdateChain(c echo.Context) error {
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

	chain, err := h.svc.RenameChain(userID, id, req.Name)
	if err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("rename_chain")
		}
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, chain)
}

// DeleteChain deletes a chain and cascades to its restaurants
func (h *Handler) DeleteChain(c echo.Context) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.svc.DeleteChain(userID, id); err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("delete_chain")
		}
		return fail(c, err)
	}

	prometheus.RecordMembershipOperation("delete", "chain")
	return c.NoContent(http.StatusNoContent)
}

// AddUserToChain attaches a user to a chain as a plain member
func (h *Handler) AddUserToChain(c echo.Context) error {
	return h.addMember(c, service.LevelChain, "chain_id")
}

// RemoveUserFromChain detaches a plain member from a chain
func (h *Handler) RemoveUserFromChain(c echo.Context) error {
	return h.removeMember(c, service.LevelChain, "chain_id")
}

// ListChainMembers returns the member roster of a chain
func (h *Handler) ListChainMembers(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	users, err := h.svc.ListMembers(service.LevelChain, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, users)
}
