package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/vortex/backend/internal/middleware"
	"github.com/anonto42/vortex/backend/internal/models"
	"github.com/anonto42/vortex/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications *services.NotificationDispatcher
	users         *services.UserService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications *services.NotificationDispatcher, users *services.UserService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, users: users}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications, middleware.RequireSession)
	g.GET("/notifications/unread-count", h.GetUnreadCount, middleware.RequireSession)
	g.PATCH("/notifications", h.MarkAllAsRead, middleware.RequireSession)
}

// EnrichedNotification includes actor info
type EnrichedNotification struct {
	models.Notification
	Actor *models.UserCompact `json:"actor"`
}

// GetNotifications returns the caller's most recent notifications and
// their unread count.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	ctx := c.Request().Context()
	userID := middleware.SessionFrom(c).UserID
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	list, err := h.notifications.List(ctx, userID, limit)
	if err != nil {
		return err
	}
	unread, err := h.notifications.UnreadCount(ctx, userID)
	if err != nil {
		return err
	}

	actorIDs := make([]string, 0, len(list))
	for _, n := range list {
		actorIDs = append(actorIDs, n.ActorID)
	}
	actors, err := h.users.Compacts(ctx, actorIDs)
	if err != nil {
		return err
	}

	enriched := make([]EnrichedNotification, len(list))
	for i, n := range list {
		enriched[i] = EnrichedNotification{Notification: n}
		if actor, ok := actors[n.ActorID]; ok {
			enriched[i].Actor = &actor
		}
	}
	return respond(c, http.StatusOK, echo.Map{"notifications": enriched, "unread_count": unread})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	count, err := h.notifications.UnreadCount(c.Request().Context(), middleware.SessionFrom(c).UserID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"count": count})
}

// MarkAllAsRead marks every notification of the caller as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	updated, err := h.notifications.MarkAllRead(c.Request().Context(), middleware.SessionFrom(c).UserID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"updated": updated})
}
