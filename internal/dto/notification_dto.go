package dto

import (
	"time"

	"github.com/kavyadav/adminhub-api/internal/models"
)

// NotificationResponse serializes a stored notification.
type NotificationResponse struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotificationResponse maps a notification model to its response shape.
func NewNotificationResponse(n models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// NewNotificationResponses maps a slice of notification models.
func NewNotificationResponses(items []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewNotificationResponse(item))
	}
	return out
}

// NotificationListData is the payload of the notification listing. The unread
// counter rides alongside the page items.
type NotificationListData struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int64                  `json:"unreadCount"`
}

// NotificationEvent is the realtime push payload. Group broadcasts are
// synthesized before row ids exist, so the id is optional.
type NotificationEvent struct {
	ID        *uint     `json:"id,omitempty"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// MarkReadRequest marks a single notification, or all when ID is nil.
type MarkReadRequest struct {
	ID *uint `json:"id"`
}
