package handlers

import (
	"net/http"

	"github.com/anonto42/vortex/backend/internal/middleware"
	"github.com/anonto42/vortex/backend/internal/models"
	"github.com/anonto42/vortex/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	posts *services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost, middleware.RequireSession)
	g.GET("/posts/:id", h.GetPost)
	g.PATCH("/posts/:id", h.UpdatePost, middleware.RequireSession)
	g.DELETE("/posts/:id", h.DeletePost, middleware.RequireSession)
}

// CreatePost handles creating a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	post, err := h.posts.Create(c.Request().Context(), middleware.SessionFrom(c).UserID, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, post)
}

// GetPost handles retrieving a single post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.posts.Get(c.Request().Context(), viewerID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, post)
}

// UpdatePost handles updating an existing post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	var req models.UpdatePostRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	post, err := h.posts.Update(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, post)
}

// DeletePost handles deleting a post
func (h *PostHandler) DeletePost(c echo.Context) error {
	if err := h.posts.Delete(c.Request().Context(), middleware.SessionFrom(c), c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"deleted": true})
}

// viewerID is the caller's user id, empty for anonymous requests.
func viewerID(c echo.Context) string {
	if info := middleware.SessionFrom(c); info != nil {
		return info.UserID
	}
	return ""
}
