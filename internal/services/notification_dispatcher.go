package services

import (
	"context"
	"fmt"

	"github.com/anonto42/vortex/backend/internal/apperrors"
	"github.com/anonto42/vortex/backend/internal/models"
	"github.com/anonto42/vortex/backend/internal/repositories"
	"go.uber.org/zap"
)

// DefaultNotificationLimit caps the notification list.
const DefaultNotificationLimit = 20

// Action is a user action that may fan out notifications.
type Action int

const (
	ActionComment Action = iota + 1
	ActionReply
	ActionLike
	ActionFollow
)

func (a Action) String() string {
	switch a {
	case ActionComment:
		return "comment"
	case ActionReply:
		return "reply"
	case ActionLike:
		return "like"
	case ActionFollow:
		return "follow"
	default:
		return "unknown"
	}
}

// Event describes one action. Which fields matter depends on Action:
// comments and likes need PostAuthorID, replies also ParentAuthorID, and
// follows need FollowedID.
type Event struct {
	Action         Action
	ActorID        string
	PostID         string
	PostAuthorID   string
	ParentAuthorID string
	FollowedID     string
}

// Delivery is one notification a fan-out rule asks for.
type Delivery struct {
	Type        models.NotificationType
	RecipientID string
}

// Recipients applies the fan-out table to ev. It does not apply the
// self-exclusion rule; Dispatch does.
func Recipients(ev Event) []Delivery {
	switch ev.Action {
	case ActionComment:
		return []Delivery{{Type: models.NotificationComment, RecipientID: ev.PostAuthorID}}
	case ActionReply:
		out := []Delivery{{Type: models.NotificationComment, RecipientID: ev.ParentAuthorID}}
		if ev.PostAuthorID != ev.ParentAuthorID {
			out = append(out, Delivery{Type: models.NotificationComment, RecipientID: ev.PostAuthorID})
		}
		return out
	case ActionLike:
		return []Delivery{{Type: models.NotificationLike, RecipientID: ev.PostAuthorID}}
	case ActionFollow:
		return []Delivery{{Type: models.NotificationFollow, RecipientID: ev.FollowedID}}
	default:
		return nil
	}
}

// NotificationDispatcher is the only writer of notifications.
type NotificationDispatcher struct {
	repo   repositories.NotificationRepository
	logger *zap.Logger
}

func NewNotificationDispatcher(repo repositories.NotificationRepository, logger *zap.Logger) *NotificationDispatcher {
	return &NotificationDispatcher{repo: repo, logger: logger}
}

// Notify stores a single notification. It returns nil, nil when the actor
// is the recipient.
func (d *NotificationDispatcher) Notify(ctx context.Context, typ models.NotificationType, actorID, recipientID string, postID *string) (*models.Notification, error) {
	if !typ.Valid() {
		return nil, apperrors.Validation(fmt.Sprintf("unknown notification type %q", typ))
	}
	if recipientID == "" || actorID == recipientID {
		return nil, nil
	}
	batch := []models.Notification{{UserID: recipientID, ActorID: actorID, Type: typ, PostID: postID}}
	if err := d.repo.CreateNotifications(ctx, batch); err != nil {
		return nil, fmt.Errorf("creating notification: %w", err)
	}
	return &batch[0], nil
}

// Dispatch fans ev out and stores the resulting notifications in one write.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, ev Event) ([]models.Notification, error) {
	var postID *string
	if ev.PostID != "" {
		id := ev.PostID
		postID = &id
	}

	var batch []models.Notification
	for _, dl := range Recipients(ev) {
		if dl.RecipientID == "" || dl.RecipientID == ev.ActorID {
			continue
		}
		batch = append(batch, models.Notification{
			UserID:  dl.RecipientID,
			ActorID: ev.ActorID,
			Type:    dl.Type,
			PostID:  postID,
		})
	}
	if len(batch) == 0 {
		return nil, nil
	}
	if err := d.repo.CreateNotifications(ctx, batch); err != nil {
		return nil, fmt.Errorf("dispatching %s notifications: %w", ev.Action, err)
	}
	d.logger.Debug("notifications dispatched",
		zap.Stringer("action", ev.Action),
		zap.String("actor_id", ev.ActorID),
		zap.Int("count", len(batch)),
	)
	return batch, nil
}

// List returns the newest notifications for recipientID. limit outside
// (0, DefaultNotificationLimit] falls back to the default.
func (d *NotificationDispatcher) List(ctx context.Context, recipientID string, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > DefaultNotificationLimit {
		limit = DefaultNotificationLimit
	}
	list, err := d.repo.GetByRecipientID(ctx, recipientID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return list, nil
}

func (d *NotificationDispatcher) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	n, err := d.repo.GetUnreadCount(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return n, nil
}

// MarkAllRead flips the read flag on every notification of recipientID.
func (d *NotificationDispatcher) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	n, err := d.repo.MarkAllAsRead(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("marking notifications read: %w", err)
	}
	return n, nil
}

// dispatchBestEffort runs Dispatch after the triggering write has committed
// and only logs failures.
func (d *NotificationDispatcher) dispatchBestEffort(ctx context.Context, ev Event) {
	if _, err := d.Dispatch(ctx, ev); err != nil {
		d.logger.Warn("notification dispatch failed",
			zap.Stringer("action", ev.Action),
			zap.String("actor_id", ev.ActorID),
			zap.String("post_id", ev.PostID),
			zap.Error(err),
		)
	}
}
