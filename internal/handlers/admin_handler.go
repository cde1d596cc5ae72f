package handlers

import (
	"net/http"

	"github.com/anonto42/vortex/backend/internal/apperrors"
	"github.com/anonto42/vortex/backend/internal/middleware"
	"github.com/anonto42/vortex/backend/internal/models"
	"github.com/anonto42/vortex/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AdminHandler serves the admin dashboard. Every route sits under the
// admin prefix, so the access guard has already rejected non-admins.
type AdminHandler struct {
	admin *services.AdminService
}

func NewAdminHandler(admin *services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// RegisterAdminRoutes registers routes on the /admin group
func (h *AdminHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/users", h.ListUsers)
	g.PATCH("/users", h.ChangeRole)
	g.DELETE("/users", h.DeleteUser)
	g.GET("/stats", h.Stats)
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	page, limit := pagination(c)
	users, total, err := h.admin.ListUsers(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"users": users, "total": total, "page": max(page, 1)})
}

// ChangeRole promotes or demotes a user. Demoting the last admin fails
// with 409.
func (h *AdminHandler) ChangeRole(c echo.Context) error {
	var req models.UpdateRoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.admin.ChangeRole(c.Request().Context(), middleware.SessionFrom(c).UserID, req.UserID, req.Role)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user)
}

// DeleteUser removes the user named by ?id= together with everything
// they authored.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id := c.QueryParam("id")
	if id == "" {
		return apperrors.Validation("id is required")
	}
	if err := h.admin.DeleteUser(c.Request().Context(), middleware.SessionFrom(c).UserID, id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"deleted": true})
}

func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.admin.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, stats)
}
