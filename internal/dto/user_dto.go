package dto

import (
	"time"

	"github.com/noah-isme/coursehub-api/internal/models"
)

// RegisterRequest is the self-service signup payload.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=learner educator coordinator"`
}

// LoginRequest carries credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserUpdateRequest is used by coordinators to edit any account.
type UserUpdateRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=255"`
	Email *string `json:"email" validate:"omitempty,email,max=255"`
	Role  *string `json:"role" validate:"omitempty,oneof=learner educator coordinator"`
}

// ProfileUpdateRequest is the self-service profile edit.
type ProfileUpdateRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=2,max=255"`
	Phone     *string `json:"phone" validate:"omitempty,max=64"`
	Education *string `json:"education" validate:"omitempty,max=255"`
}

// PasswordChangeRequest requires the current password before setting a new one.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}

// UserListQuery filters the user listing.
type UserListQuery struct {
	Role string `query:"role" json:"role" validate:"omitempty,oneof=learner educator coordinator"`
}

// UserResponse never exposes the password hash.
type UserResponse struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	RoleLabel    string    `json:"roleLabel"`
	Phone        string    `json:"phone"`
	Education    string    `json:"education"`
	ProfileImage string    `json:"profileImage"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSummary is the populated form of a user reference.
type UserSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DeletedResponse echoes the id of a removed record.
type DeletedResponse struct {
	ID uint `json:"id"`
}

// NewUserResponse converts a user model.
func NewUserResponse(model models.User) UserResponse {
	return UserResponse{
		ID:           model.ID,
		Name:         model.Name,
		Email:        model.Email,
		Role:         model.Role.String(),
		RoleLabel:    model.Role.Label(),
		Phone:        model.Phone,
		Education:    model.Education,
		ProfileImage: model.ProfileImage,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// NewUserResponseSlice converts a list of users.
func NewUserResponseSlice(items []models.User) []UserResponse {
	responses := make([]UserResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewUserResponse(item))
	}
	return responses
}

// NewUserSummary converts a user into its reference form.
func NewUserSummary(model models.User) UserSummary {
	return UserSummary{ID: model.ID, Name: model.Name, Email: model.Email}
}

func newUserSummaries(items []models.User) []UserSummary {
	summaries := make([]UserSummary, 0, len(items))
	for _, item := range items {
		summaries = append(summaries, NewUserSummary(item))
	}
	return summaries
}
