package handlers

import (
	"net/http"

	"github.com/anonto42/vortex/backend/internal/middleware"
	"github.com/anonto42/vortex/backend/internal/models"
	"github.com/anonto42/vortex/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	toggles *services.ToggleService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(toggles *services.ToggleService) *LikeHandler {
	return &LikeHandler{toggles: toggles}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.ToggleLike, middleware.RequireSession)
}

// ToggleLike likes the post, or unlikes it if already liked, and returns
// the new state with the post's like count.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	res, err := h.toggles.Toggle(c.Request().Context(), models.RelationLike, middleware.SessionFrom(c).UserID, c.Param("id"))
	if err != nil {
		return err
	}
	data := echo.Map{"liked": res.Active}
	if res.Count != nil {
		data["likes"] = *res.Count
	}
	return respond(c, http.StatusOK, data)
}
