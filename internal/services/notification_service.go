package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anonto42/ustagram/backend/internal/models"
	"github.com/anonto42/ustagram/backend/internal/realtime"
	"github.com/anonto42/ustagram/backend/internal/repositories"
	"github.com/google/uuid"
)

// ReadSummary is the result of marking every notification of a user read.
type ReadSummary struct {
	Marked int64 `json:"marked"`
}

type NotificationService struct {
	store repositories.NotificationRepository
	pub   UserPublisher
	log   *slog.Logger
}

func NewNotificationService(store repositories.NotificationRepository, pub UserPublisher, log *slog.Logger) *NotificationService {
	return &NotificationService{store: store, pub: pub, log: log}
}

// Create stores a notification built from req and pushes it to the receiver.
func (s *NotificationService) Create(ctx context.Context, req models.CreateNotificationRequest) (*models.Notification, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	n := req.ToNotification()
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return nil, err
	}
	s.push(n.ReceiverID, realtime.EventReceiveNotification, n)
	return n, nil
}

func validateCreate(req models.CreateNotificationRequest) error {
	var missing []string
	if strings.TrimSpace(req.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(req.Text) == "" {
		missing = append(missing, "text")
	}
	if req.ReceiverID == 0 {
		missing = append(missing, "receiver_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", models.ErrValidation, strings.Join(missing, ", "))
	}
	if !models.NotificationType(req.Type).Valid() {
		return fmt.Errorf("%w: unknown notification type %q", models.ErrValidation, req.Type)
	}
	return nil
}

func (s *NotificationService) Get(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	return s.store.GetByID(ctx, id)
}

func (s *NotificationService) List(ctx context.Context) ([]models.Notification, error) {
	return s.store.List(ctx)
}

// ListMine returns the receiver's notifications, newest first.
func (s *NotificationService) ListMine(ctx context.Context, receiverID uint) ([]models.Notification, error) {
	return s.store.ListByReceiver(ctx, receiverID)
}

func (s *NotificationService) CountUnread(ctx context.Context, receiverID uint) (int64, error) {
	return s.store.CountUnread(ctx, receiverID)
}

// MarkRead flips one notification to read. Only its receiver may do so.
func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID, callerID uint) error {
	n, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.ReceiverID != callerID {
		return fmt.Errorf("notification %s: %w", id, models.ErrForbidden)
	}
	if n.IsRead {
		return nil
	}
	return s.store.MarkAsRead(ctx, id)
}

// MarkAllRead marks every unread notification of receiverID and, when any
// changed, tells the receiver's devices how many.
func (s *NotificationService) MarkAllRead(ctx context.Context, receiverID uint) (ReadSummary, error) {
	marked, err := s.store.MarkAllAsRead(ctx, receiverID)
	if err != nil {
		return ReadSummary{}, err
	}
	if marked > 0 {
		s.push(receiverID, realtime.EventNotificationsRead, marked)
	}
	return ReadSummary{Marked: marked}, nil
}

// Delete removes a notification owned by callerID. Unknown ids are a no-op.
func (s *NotificationService) Delete(ctx context.Context, id uuid.UUID, callerID uint) error {
	n, err := s.store.GetByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if n.ReceiverID != callerID {
		return fmt.Errorf("notification %s: %w", id, models.ErrForbidden)
	}
	return s.store.Delete(ctx, id)
}

func (s *NotificationService) push(userID uint, event string, payload any) {
	if _, err := s.pub.PublishToUser(userID, event, payload); err != nil {
		s.log.Warn("realtime push failed",
			slog.String("event", event),
			slog.Uint64("receiver_id", uint64(userID)),
			slog.Any("error", err),
		)
	}
}
