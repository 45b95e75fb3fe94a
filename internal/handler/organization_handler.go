package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pozor22/iiko/internal/service"
	"github.com/pozor22/iiko/pkg/logger"
	"github.com/pozor22/iiko/prometheus"
	"go.uber.org/zap"
)

// CreateOrganization handles organization creation; the creator becomes both
// member and author.
func (h *Handler) CreateOrganization(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse organization creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	org, err := h.svc.CreateOrganization(userID, req.Name)
	if err != nil {
		return fail(c, err)
	}

	prometheus.RecordMembershipOperation("create", "organization")
	return c.JSON(http.StatusCreated, org)
}

// ListOrganizations returns all organizations
func (h *Handler) ListOrganizations(c echo.Context) error {
	orgs, err := h.svc.ListOrganizations()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, orgs)
}

// GetOrganization returns one organization with its authors
func (h *Handler) GetOrganization(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	org, authors, err := h.svc.GetOrganization(id)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":      org.ID,
		"name":    org.Name,
		"authors": authors,
	})
}

// UpdateOrganization renames an organization
func (h *Handler) UpdateOrganization(c echo.Context) error {
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

	org, err := h.svc.RenameOrganization(userID, id, req.Name)
	if err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("rename_organization")
		}
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, org)
}

// DeleteOrganization deletes an organization and cascades to its children
func (h *Handler) DeleteOrganization(c echo.Context) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.svc.DeleteOrganization(userID, id); err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("delete_organization")
		}
		return fail(c, err)
	}

	prometheus.RecordMembershipOperation("delete", "organization")
	return c.NoContent(http.StatusNoContent)
}

// AddAuthor grants authorship of an organization to another user
func (h *Handler) AddAuthor(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	var req struct {
		OrganizationID uint `json:"organization_id"`
		UserID         uint `json:"user_id"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse add author request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if err := h.svc.AddAuthor(userID, req.OrganizationID, req.UserID); err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("add_author")
		}
		return fail(c, err)
	}

	prometheus.RecordMembershipOperation("add_author", "organization")

	org, authors, err := h.svc.GetOrganization(req.OrganizationID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":      org.ID,
		"name":    org.Name,
		"authors": authors,
	})
}

// RemoveAuthor revokes authorship of an organization
func (h *Handler) RemoveAuthor(c echo.Context) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	orgID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	targetID, err := parseQueryID(c, "user_id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.svc.RemoveAuthor(userID, orgID, targetID); err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("remove_author")
		}
		return fail(c, err)
	}

	prometheus.RecordMembershipOperation("remove_author", "organization")
	return c.NoContent(http.StatusNoContent)
}

// AddUserToOrganization attaches a user as a plain member
func (h *Handler) AddUserToOrganization(c echo.Context) error {
	return h.addMember(c, service.LevelOrganization, "organization_id")
}

// RemoveUserFromOrganization detaches a plain member
func (h *Handler) RemoveUserFromOrganization(c echo.Context) error {
	return h.removeMember(c, service.LevelOrganization, "organization_id")
}

// ListOrganizationMembers returns the member roster
func (h *Handler) ListOrganizationMembers(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	users, err := h.svc.ListMembers(service.LevelOrganization, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// addMember is the shared add-member handler for all three levels
func (h *Handler) addMember(c echo.Context, level service.MembershipLevel, idField string) error {
	log := logger.FromContext(c)

	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	var req map[string]uint
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse add member request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	entityID := req[idField]
	targetID := req["user_id"]
	if entityID == 0 || targetID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": idField + " and user_id are required"})
	}

	if err := h.svc.AddMember(userID, level, entityID, targetID); err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("add_member")
		}
		return fail(c, err)
	}

	prometheus.RecordMembershipOperation("add_member", string(level))

	user, err := h.svc.GetUser(targetID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// removeMember is the shared remove-member handler for all three levels
func (h *Handler) removeMember(c echo.Context, level service.MembershipLevel, idParam string) error {
	userID, ok := actorID(c)
	if !ok {
		return unauthorized(c)
	}

	entityID, err := parseQueryID(c, idParam)
	if err != nil {
		return fail(c, err)
	}

	targetID, err := parseQueryID(c, "user_id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.svc.RemoveMember(userID, level, entityID, targetID); err != nil {
		if isPermissionDenied(err) {
			prometheus.RecordPermissionDenied("remove_member")
		}
		return fail(c, err)
	}

	prometheus.RecordMembershipOperation("remove_member", string(level))

	user, err := h.svc.GetUser(targetID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
