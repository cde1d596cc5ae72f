package handlers

import (
	"net/http"

	"github.com/anonto42/vortex/backend/internal/apperrors"
	"github.com/anonto42/vortex/backend/internal/middleware"
	"github.com/anonto42/vortex/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves post listings.
type FeedHandler struct {
	posts *services.PostService
	users *services.UserService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(posts *services.PostService, users *services.UserService) *FeedHandler {
	return &FeedHandler{posts: posts, users: users}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/posts", h.ListPosts)
	g.GET("/users/:username/posts", h.ListUserPosts)
	g.GET("/users/:username/saved", h.ListSavedPosts, middleware.RequireSession)
}

// ListPosts returns every post, newest first, with counts and the caller's
// liked and saved flags.
func (h *FeedHandler) ListPosts(c echo.Context) error {
	page, limit := pagination(c)
	posts, err := h.posts.List(c.Request().Context(), viewerID(c), page, limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"posts": posts, "page": max(page, 1)})
}

func (h *FeedHandler) ListUserPosts(c echo.Context) error {
	ctx := c.Request().Context()
	author, err := h.users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		return err
	}
	page, limit := pagination(c)
	posts, err := h.posts.ListByAuthor(ctx, viewerID(c), author.ID, page, limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"posts": posts, "page": max(page, 1)})
}

// ListSavedPosts returns a user's bookmarks. Only the owner and admins may
// see them.
func (h *FeedHandler) ListSavedPosts(c echo.Context) error {
	ctx := c.Request().Context()
	owner, err := h.users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		return err
	}
	info := middleware.SessionFrom(c)
	if info.UserID != owner.ID && !info.IsAdmin() {
		return apperrors.ErrForbidden
	}
	page, limit := pagination(c)
	posts, err := h.posts.ListSaved(ctx, owner.ID, page, limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"posts": posts, "page": max(page, 1)})
}
