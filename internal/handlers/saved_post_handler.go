package handlers

import (
	"net/http"

	"github.com/anonto42/vortex/backend/internal/middleware"
	"github.com/anonto42/vortex/backend/internal/models"
	"github.com/anonto42/vortex/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// SavedPostHandler handles bookmarking posts
type SavedPostHandler struct {
	toggles *services.ToggleService
}

func NewSavedPostHandler(toggles *services.ToggleService) *SavedPostHandler {
	return &SavedPostHandler{toggles: toggles}
}

func (h *SavedPostHandler) RegisterSavedPostRoutes(g *echo.Group) {
	g.POST("/posts/:id/save", h.ToggleSave, middleware.RequireSession)
}

func (h *SavedPostHandler) ToggleSave(c echo.Context) error {
	res, err := h.toggles.Toggle(c.Request().Context(), models.RelationSave, middleware.SessionFrom(c).UserID, c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"saved": res.Active})
}
