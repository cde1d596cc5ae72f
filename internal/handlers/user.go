package handlers

import (
	"net/http"

	"github.com/anonto42/vortex/backend/internal/middleware"
	"github.com/anonto42/vortex/backend/internal/models"
	"github.com/anonto42/vortex/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles profile HTTP requests
type UserHandler struct {
	users *services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterUserRoutes registers profile routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.PATCH("/users/me", h.UpdateProfile, middleware.RequireSession)
	g.GET("/users/:username", h.GetProfile)
}

// GetProfile returns a profile with post and follow counts.
func (h *UserHandler) GetProfile(c echo.Context) error {
	profile, err := h.users.Profile(c.Request().Context(), viewerID(c), c.Param("username"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, profile)
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.users.UpdateProfile(c.Request().Context(), middleware.SessionFrom(c).UserID, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user)
}
