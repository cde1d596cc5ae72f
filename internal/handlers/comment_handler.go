package handlers

import (
	"net/http"

	"github.com/anonto42/vortex/backend/internal/middleware"
	"github.com/anonto42/vortex/backend/internal/models"
	"github.com/anonto42/vortex/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	comments *services.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.GET("/posts/:id/comments", h.GetComments)
	g.POST("/posts/:id/comments", h.CreateComment, middleware.RequireSession)
	g.DELETE("/comments/:id", h.DeleteComment, middleware.RequireSession)
}

// GetComments returns the post's comments as a thread, newest first.
func (h *CommentHandler) GetComments(c echo.Context) error {
	thread, err := h.comments.Thread(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"comments": thread})
}

// CreateComment adds a comment, or a reply when parent_comment_id is set.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	comment, err := h.comments.Create(c.Request().Context(), middleware.SessionFrom(c).UserID, c.Param("id"), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, comment)
}

// DeleteComment removes a comment; only its author or an admin may.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	if err := h.comments.Delete(c.Request().Context(), middleware.SessionFrom(c), c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"deleted": true})
}
