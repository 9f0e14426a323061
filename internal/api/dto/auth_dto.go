package dto

import (
	"time"

	"github.com/spec-kit/auth-service/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest payload for creating an identity.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ValidateResponse reports whether the presented token is usable.
type ValidateResponse struct {
	Authenticated bool `json:"authenticated"`
}

// ProfileResponse is the public view of an identity.
type ProfileResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// IdentityResponse is returned after registration.
type IdentityResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// NewProfileResponse maps a domain profile.
func NewProfileResponse(p domain.Profile) ProfileResponse {
	return ProfileResponse{Username: p.Username, Role: p.Role}
}

// NewIdentityResponse maps a domain identity without its password hash.
func NewIdentityResponse(i *domain.Identity) IdentityResponse {
	return IdentityResponse{ID: i.ID, Username: i.Username, Role: i.Role, CreatedAt: i.CreatedAt}
}
