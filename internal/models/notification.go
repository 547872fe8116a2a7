package models

import "time"

// NotificationType is the severity shown next to a notification.
type NotificationType string

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeAlert   NotificationType = "alert"
	NotificationTypeSuccess NotificationType = "success"
)

// Notification is an append-only message addressed to one user.
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"userId"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	Type      NotificationType `gorm:"size:16;not null;default:info" json:"type"`
	IsRead    bool             `gorm:"not null;default:false" json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}
