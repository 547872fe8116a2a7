package models

import "time"

// User represents an account of any role.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         Role      `gorm:"size:32;index;not null;default:learner" json:"role"`
	Phone        string    `gorm:"size:64" json:"phone"`
	Education    string    `gorm:"size:255" json:"education"`
	ProfileImage string    `gorm:"size:512" json:"profileImage"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
