package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anonto42/ustagram/backend/internal/metrics"
	"github.com/anonto42/ustagram/backend/internal/models"
	"github.com/anonto42/ustagram/backend/internal/realtime"
)

type PostLookup interface {
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
}

type UserLookup interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

type NotificationCreator interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
}

// UserPublisher pushes an event to every connection of one user.
type UserPublisher interface {
	PublishToUser(userID uint, event string, payload any) (int, error)
}

// GroupPublisher pushes an event to every member of a named group.
type GroupPublisher interface {
	Publish(group, event string, payload any) (int, error)
}

// Dispatcher turns social events into stored notifications and pushes them
// to the receiver's personal channel.
type Dispatcher struct {
	store  NotificationCreator
	posts  PostLookup
	users  UserLookup
	pub    UserPublisher
	strict bool
	log    *slog.Logger
}

type DispatcherOption func(*Dispatcher)

// WithStrictReferences makes unresolved posts or users fail with
// models.ErrNotFound instead of being skipped.
func WithStrictReferences(strict bool) DispatcherOption {
	return func(d *Dispatcher) { d.strict = strict }
}

func NewDispatcher(store NotificationCreator, posts PostLookup, users UserLookup, pub UserPublisher, log *slog.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{store: store, posts: posts, users: users, pub: pub, log: log}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NotifyComment tells the post owner that commenterID commented text.
// A nil notification with a nil error means the event was skipped.
func (d *Dispatcher) NotifyComment(ctx context.Context, postID string, commenterID uint, text string) (*models.Notification, error) {
	post, err := d.resolvePost(ctx, models.NotificationTypeComment, postID)
	if post == nil || err != nil {
		return nil, err
	}
	commenter, err := d.resolveUser(ctx, models.NotificationTypeComment, commenterID)
	if commenter == nil || err != nil {
		return nil, err
	}

	return d.deliver(ctx, &models.Notification{
		Title:           "New Comment",
		Text:            fmt.Sprintf("%s commented: %s", commenter.DisplayName(), text),
		Type:            models.NotificationTypeComment,
		ReceiverID:      post.AuthorID,
		ReferencePostID: &postID,
		ReferenceUserID: &commenterID,
	})
}

// NotifyLike tells the post owner that likerID liked the post.
func (d *Dispatcher) NotifyLike(ctx context.Context, postID string, likerID uint) (*models.Notification, error) {
	post, err := d.resolvePost(ctx, models.NotificationTypeLike, postID)
	if post == nil || err != nil {
		return nil, err
	}
	liker, err := d.resolveUser(ctx, models.NotificationTypeLike, likerID)
	if liker == nil || err != nil {
		return nil, err
	}

	return d.deliver(ctx, &models.Notification{
		Title:           "New Like",
		Text:            fmt.Sprintf("%s liked your post", liker.DisplayName()),
		Type:            models.NotificationTypeLike,
		ReceiverID:      post.AuthorID,
		ReferencePostID: &postID,
		ReferenceUserID: &likerID,
	})
}

// NotifyNewFollower tells userID that followerID started following them.
func (d *Dispatcher) NotifyNewFollower(ctx context.Context, userID, followerID uint) (*models.Notification, error) {
	followed, err := d.resolveUser(ctx, models.NotificationTypeFollow, userID)
	if followed == nil || err != nil {
		return nil, err
	}
	follower, err := d.resolveUser(ctx, models.NotificationTypeFollow, followerID)
	if follower == nil || err != nil {
		return nil, err
	}

	return d.deliver(ctx, &models.Notification{
		Title:           "New Follower",
		Text:            fmt.Sprintf("%s started following you", follower.DisplayName()),
		Type:            models.NotificationTypeFollow,
		ReceiverID:      followed.ID,
		ReferenceUserID: &followerID,
	})
}

// deliver persists n and then pushes it. A failed push never undoes the write.
func (d *Dispatcher) deliver(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if err := d.store.CreateNotification(ctx, n); err != nil {
		metrics.NotificationsDispatched.WithLabelValues(string(n.Type), "failed").Inc()
		return nil, fmt.Errorf("persist %s notification: %w", n.Type, err)
	}

	if _, err := d.pub.PublishToUser(n.ReceiverID, realtime.EventReceiveNotification, n); err != nil {
		d.log.Warn("notification push failed",
			slog.String("notification_id", n.ID.String()),
			slog.Uint64("receiver_id", uint64(n.ReceiverID)),
			slog.Any("error", err),
		)
	}
	metrics.NotificationsDispatched.WithLabelValues(string(n.Type), "delivered").Inc()
	return n, nil
}

func (d *Dispatcher) resolvePost(ctx context.Context, typ models.NotificationType, postID string) (*models.Post, error) {
	post, err := d.posts.GetPostByID(ctx, postID)
	if err == nil {
		return post, nil
	}
	return nil, d.unresolved(typ, fmt.Sprintf("post %s", postID), err)
}

func (d *Dispatcher) resolveUser(ctx context.Context, typ models.NotificationType, userID uint) (*models.User, error) {
	user, err := d.users.GetUserByID(ctx, userID)
	if err == nil {
		return user, nil
	}
	return nil, d.unresolved(typ, fmt.Sprintf("user %d", userID), err)
}

// unresolved decides what a failed lookup means. Storage failures always
// surface; a missing entity is swallowed unless strict mode is on.
func (d *Dispatcher) unresolved(typ models.NotificationType, ref string, err error) error {
	if !errors.Is(err, models.ErrNotFound) {
		metrics.NotificationsDispatched.WithLabelValues(string(typ), "failed").Inc()
		return fmt.Errorf("resolve %s: %w", ref, err)
	}
	if d.strict {
		metrics.NotificationsDispatched.WithLabelValues(string(typ), "failed").Inc()
		return fmt.Errorf("resolve %s: %w", ref, models.ErrNotFound)
	}
	metrics.NotificationsDispatched.WithLabelValues(string(typ), "skipped").Inc()
	d.log.Debug("notification skipped, reference not found", slog.String("type", string(typ)), slog.String("ref", ref))
	return nil
}
