package dto

import (
	"time"

	"github.com/noah-isme/coursehub-api/internal/models"
)

// NotificationListQuery paginates the caller's notifications.
type NotificationListQuery struct {
	Limit  int `query:"limit" json:"limit" validate:"omitempty,gte=1,lte=100"`
	Offset int `query:"offset" json:"offset" validate:"omitempty,gte=0"`
}

// NotificationResponse is the serialized notification.
type NotificationResponse struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"userId"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewNotificationResponse converts a notification model.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        model.ID,
		UserID:    model.UserID,
		Message:   model.Message,
		Type:      string(model.Type),
		IsRead:    model.IsRead,
		CreatedAt: model.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a list of notifications.
func NewNotificationResponseSlice(items []models.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewNotificationResponse(item))
	}
	return responses
}
