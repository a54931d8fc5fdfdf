package handler

import (
	"time"

	"github.com/invoiceapp/backend/internal/application/identity"
)

// RegisterRequest represents an account registration request
// @Description Request body for registering a new owner account
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=200" example:"owner@example.com"`
	Password string `json:"password" binding:"required,min=8,max=128" example:"s3cret-passw0rd"`
	Name     string `json:"name" binding:"required,min=1,max=200" example:"Jane Doe"`
}

// LoginRequest represents a login request
// @Description Request body for owner login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"owner@example.com"`
	Password string `json:"password" binding:"required" example:"s3cret-passw0rd"`
}

// RefreshTokenRequest represents a token refresh request
// @Description Request body for refreshing the token pair
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest represents a password change request
// @Description Request body for changing the owner's password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// UpdateProfileRequest represents a profile update request
// @Description Request body for updating the owner's profile
type UpdateProfileRequest struct {
	Name            string `json:"name" binding:"required,min=1,max=200"`
	BusinessName    string `json:"business_name" binding:"max=200"`
	BusinessAddress string `json:"business_address" binding:"max=500"`
}

// TokenResponse carries an issued token pair
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// LoginResponse is the response body for a successful login
type LoginResponse struct {
	Token TokenResponse      `json:"token"`
	Owner identity.OwnerInfo `json:"owner"`
}

// RefreshTokenResponse is the response body for a token refresh
type RefreshTokenResponse struct {
	Token TokenResponse `json:"token"`
}
