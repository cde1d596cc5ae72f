package handlers

import (
	"net/http"

	"github.com/anonto42/vortex/backend/internal/middleware"
	"github.com/anonto42/vortex/backend/internal/models"
	"github.com/anonto42/vortex/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow-related HTTP requests
type FollowHandler struct {
	toggles *services.ToggleService
	users   *services.UserService
}

func NewFollowHandler(toggles *services.ToggleService, users *services.UserService) *FollowHandler {
	return &FollowHandler{toggles: toggles, users: users}
}

func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:username/follow", h.ToggleFollow, middleware.RequireSession)
	g.GET("/users/:username/followers", h.GetFollowers)
	g.GET("/users/:username/following", h.GetFollowing)
}

// ToggleFollow follows the user, or unfollows if already following.
func (h *FollowHandler) ToggleFollow(c echo.Context) error {
	ctx := c.Request().Context()
	target, err := h.users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		return err
	}
	res, err := h.toggles.Toggle(ctx, models.RelationFollow, middleware.SessionFrom(c).UserID, target.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"following": res.Active})
}

func (h *FollowHandler) GetFollowers(c echo.Context) error {
	page, limit := pagination(c)
	users, err := h.users.Followers(c.Request().Context(), c.Param("username"), page, limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"followers": users})
}

func (h *FollowHandler) GetFollowing(c echo.Context) error {
	page, limit := pagination(c)
	users, err := h.users.Following(c.Request().Context(), c.Param("username"), page, limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"following": users})
}
