package payload

import (
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/model"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/session"
)

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,address"`
	Password string `json:"password" validate:"required"`
}

type SignupRequest struct {
	Name     string `json:"name"     validate:"required,notblank,max=100"`
	Email    string `json:"email"    validate:"required,address"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// UserResponse is the public identity returned by login and signup.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func NewUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:    user.ID.Hex(),
		Name:  user.Name,
		Email: user.Email,
	}
}

type VerifyTokenRequest struct {
	Token string `json:"token"`
}

type VerifyTokenResponse struct {
	IsValid bool            `json:"isValid"`
	User    *session.Claims `json:"user,omitempty"`
	Message string          `json:"message,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=6,max=128,nefield=CurrentPassword"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,address"`
}

type PasswordResetTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type PasswordResetConfirmRequest struct {
	Token       string `json:"token"       validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=128"`
}
