package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// RegisterRequest creates a student or teacher account.
type RegisterRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6"`
	Name     string   `json:"name" validate:"required,min=2,max=255"`
	Role     UserRole `json:"role" validate:"omitempty,oneof=student teacher"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// AuthResponse carries the issued token and the user it belongs to.
type AuthResponse struct {
	Token     string   `json:"token"`
	ExpiresIn int64    `json:"expires_in"`
	User      UserInfo `json:"user"`
}

// UpdateProfileRequest changes mutable profile fields. Nil fields are left untouched.
type UpdateProfileRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=2,max=255"`
	ProfilePicture *string `json:"profile_picture" validate:"omitempty,max=2048"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID             string   `json:"id"`
	Email          string   `json:"email"`
	Name           string   `json:"name"`
	Role           UserRole `json:"role"`
	ProfilePicture *string  `json:"profile_picture,omitempty"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	jwt.RegisteredClaims
}

// IsAdmin is a nil-safe role check.
func (c *JWTClaims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}
