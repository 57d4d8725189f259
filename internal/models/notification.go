package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType is the category of event that produced a notification
type NotificationType string

const (
	NotificationTypeComment NotificationType = "comment"
	NotificationTypeLike    NotificationType = "like"
	NotificationTypeFollow  NotificationType = "follow"
)

// Valid reports whether t is one of the known notification categories
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeComment, NotificationTypeLike, NotificationTypeFollow:
		return true
	}
	return false
}

// Notification represents a user notification (PostgreSQL).
// ReceiverID and the reference ids never change after creation and IsRead only goes false -> true.
type Notification struct {
	ID              uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	Title           string           `json:"title" gorm:"size:120"`
	Text            string           `json:"text"`
	Type            NotificationType `json:"type" gorm:"size:30;index"`
	CreatedAt       time.Time        `json:"created_at" gorm:"index"`
	IsRead          bool             `json:"is_read" gorm:"index"`
	ReceiverID      uint             `json:"receiver_id" gorm:"index"`
	ReferencePostID *string          `json:"reference_post_id,omitempty"`
	ReferenceUserID *uint            `json:"reference_user_id,omitempty"`
}

// CreateNotificationRequest defines the request body for creating a notification directly
type CreateNotificationRequest struct {
	Title           string  `json:"title" validate:"required,max=120"`
	Text            string  `json:"text" validate:"required"`
	Type            string  `json:"type" validate:"required,oneof=comment like follow"`
	ReceiverID      uint    `json:"receiver_id" validate:"required"`
	ReferencePostID *string `json:"reference_post_id,omitempty" validate:"omitempty,min=1"`
	ReferenceUserID *uint   `json:"reference_user_id,omitempty" validate:"omitempty,min=1"`
}

// ToNotification builds an unsaved notification from the request
func (r CreateNotificationRequest) ToNotification() *Notification {
	return &Notification{
		Title:           r.Title,
		Text:            r.Text,
		Type:            NotificationType(r.Type),
		ReceiverID:      r.ReceiverID,
		ReferencePostID: r.ReferencePostID,
		ReferenceUserID: r.ReferenceUserID,
	}
}
