package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/anonto42/ustagram/backend/internal/models"
	"github.com/anonto42/ustagram/backend/internal/services"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// NotificationService is the notification surface exposed over HTTP.
type NotificationService interface {
	Create(ctx context.Context, req models.CreateNotificationRequest) (*models.Notification, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	List(ctx context.Context) ([]models.Notification, error)
	ListMine(ctx context.Context, receiverID uint) ([]models.Notification, error)
	CountUnread(ctx context.Context, receiverID uint) (int64, error)
	MarkRead(ctx context.Context, id uuid.UUID, callerID uint) error
	MarkAllRead(ctx context.Context, receiverID uint) (services.ReadSummary, error)
	Delete(ctx context.Context, id uuid.UUID, callerID uint) error
}

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications NotificationService
	log           *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications NotificationService, log *slog.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, log: log}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetMyNotifications)
	g.GET("/notifications/all", h.GetAllNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.GET("/notifications/:id", h.GetNotification)
	g.POST("/notifications", h.CreateNotification)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.DELETE("/notifications/:id", h.DeleteNotification)
}

func parseNotificationID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}
	return id, nil
}

// GetMyNotifications returns the caller's notifications, newest first
func (h *NotificationHandler) GetMyNotifications(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	items, err := h.notifications.ListMine(c.Request().Context(), userID)
	if err != nil {
		return toHTTPError(h.log, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *NotificationHandler) GetAllNotifications(c echo.Context) error {
	items, err := h.notifications.List(c.Request().Context())
	if err != nil {
		return toHTTPError(h.log, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	count, err := h.notifications.CountUnread(c.Request().Context(), userID)
	if err != nil {
		return toHTTPError(h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"unread_count": count})
}

func (h *NotificationHandler) GetNotification(c echo.Context) error {
	id, err := parseNotificationID(c)
	if err != nil {
		return err
	}
	n, err := h.notifications.Get(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(h.log, err)
	}
	return c.JSON(http.StatusOK, n)
}

func (h *NotificationHandler) CreateNotification(c echo.Context) error {
	var req models.CreateNotificationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	n, err := h.notifications.Create(c.Request().Context(), req)
	if err != nil {
		return toHTTPError(h.log, err)
	}
	return c.JSON(http.StatusCreated, n)
}

// MarkAsRead marks one of the caller's notifications read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	id, err := parseNotificationID(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(c.Request().Context(), id, userID); err != nil {
		return toHTTPError(h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_read": true})
}

func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	summary, err := h.notifications.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		return toHTTPError(h.log, err)
	}
	return c.JSON(http.StatusOK, summary)
}

// DeleteNotification removes one of the caller's notifications; unknown ids succeed
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	id, err := parseNotificationID(c)
	if err != nil {
		return err
	}
	if err := h.notifications.Delete(c.Request().Context(), id, userID); err != nil {
		return toHTTPError(h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
