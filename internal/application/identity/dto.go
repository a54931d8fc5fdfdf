package identity

import (
	"time"

	"github.com/google/uuid"
)

// RegisterInput contains data for registering a new owner account
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// LoginInput contains login credentials
type LoginInput struct {
	Email    string
	Password string
}

// RefreshTokenInput contains the refresh token
type RefreshTokenInput struct {
	RefreshToken string
}

// ChangePasswordInput contains data for a password change
type ChangePasswordInput struct {
	OwnerID     uuid.UUID
	OldPassword string
	NewPassword string
}

// UpdateProfileInput contains data for a profile update
type UpdateProfileInput struct {
	OwnerID         uuid.UUID
	Name            string
	BusinessName    string
	BusinessAddress string
}

// OwnerInfo is the owner representation returned to API consumers
type OwnerInfo struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	Name            string     `json:"name"`
	BusinessName    string     `json:"business_name"`
	BusinessAddress string     `json:"business_address"`
	Status          string     `json:"status"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// IssuedTokens is a signed token pair together with its expiry times
type IssuedTokens struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// LoginResult contains tokens and owner info after a successful login
type LoginResult struct {
	IssuedTokens
	Owner OwnerInfo `json:"owner"`
}

// RefreshTokenResult contains the rotated token pair
type RefreshTokenResult struct {
	IssuedTokens
}
