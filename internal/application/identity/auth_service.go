package identity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invoiceapp/backend/internal/domain/identity"
	"github.com/invoiceapp/backend/internal/domain/shared"
	"github.com/invoiceapp/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	MaxLoginAttempts int           // Maximum failed login attempts before lock
	LockDuration     time.Duration // How long to lock account after max attempts
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}
}

// AuthService handles owner registration and authentication
type AuthService struct {
	ownerRepo  identity.OwnerRepository
	jwtService *auth.JWTService
	config     AuthServiceConfig
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	ownerRepo identity.OwnerRepository,
	jwtService *auth.JWTService,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		ownerRepo:  ownerRepo,
		jwtService: jwtService,
		config:     config,
		logger:     logger,
	}
}

// Register creates a new owner account
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*OwnerInfo, error) {
	owner, err := identity.NewOwner(input.Email, input.Password, input.Name)
	if err != nil {
		return nil, err
	}

	if _, err := s.ownerRepo.FindByEmail(ctx, owner.Email); err == nil {
		s.logger.Warn("Registration attempt with existing email", zap.String("email", owner.Email))
		return nil, shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists")
	}

	if err := s.ownerRepo.Save(ctx, owner); err != nil {
		s.logger.Error("Failed to save new owner", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create account")
	}

	s.logger.Info("Owner registered",
		zap.String("owner_id", owner.ID.String()),
		zap.String("email", owner.Email))

	info := ownerInfo(owner)
	return &info, nil
}

// Login authenticates an owner and returns tokens
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	s.logger.Info("Owner login attempt", zap.String("email", input.Email))

	owner, err := s.ownerRepo.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		s.logger.Warn("Login for unknown email", zap.String("email", input.Email))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	if err := s.checkAccountUsable(owner, input.Email); err != nil {
		return nil, err
	}

	if !owner.VerifyPassword(input.Password) {
		return nil, s.recordFailedLogin(ctx, owner, input.Email)
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		OwnerID: owner.ID,
		Email:   owner.Email,
	})
	if err != nil {
		s.logger.Error("Token pair signing failed", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	// A failed save here loses the attempt-counter reset, not the login
	owner.RecordLoginSuccess()
	if err := s.ownerRepo.Save(ctx, owner); err != nil {
		s.logger.Error("Saving owner after successful login failed", zap.Error(err))
	}

	s.logger.Info("Owner logged in",
		zap.String("email", owner.Email),
		zap.String("owner_id", owner.ID.String()))

	return &LoginResult{
		IssuedTokens: issuedTokens(tokenPair),
		Owner:        ownerInfo(owner),
	}, nil
}

// checkAccountUsable rejects locked or deactivated accounts before any
// password verification happens
func (s *AuthService) checkAccountUsable(owner *identity.Owner, email string) error {
	if owner.CanLogin() {
		return nil
	}
	if owner.IsLocked() {
		s.logger.Warn("Login while account locked", zap.String("email", email))
		return shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked. Please try again later")
	}
	s.logger.Warn("Login for deactivated account", zap.String("email", email))
	return shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
}

// recordFailedLogin bumps the failure counter, locking the account once
// the configured limit is reached
func (s *AuthService) recordFailedLogin(ctx context.Context, owner *identity.Owner, email string) error {
	locked := owner.RecordLoginFailure(s.config.MaxLoginAttempts, s.config.LockDuration)
	if err := s.ownerRepo.Save(ctx, owner); err != nil {
		s.logger.Error("Saving owner after failed login failed", zap.Error(err))
	}

	if locked {
		s.logger.Warn("Account locked after repeated failures",
			zap.String("email", email),
			zap.Int("attempts", s.config.MaxLoginAttempts))
		return shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed login attempts. Account has been locked")
	}

	s.logger.Warn("Password mismatch",
		zap.String("email", email),
		zap.Int("failed_attempts", owner.FailedAttempts))
	return shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
}

// RefreshToken rotates the token pair using a valid refresh token
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*RefreshTokenResult, error) {
	refreshClaims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	ownerID, err := refreshClaims.GetOwnerUUID()
	if err != nil {
		s.logger.Error("Invalid owner ID in refresh token", zap.Error(err))
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid owner ID in token")
	}

	owner, err := s.ownerRepo.FindByID(ctx, ownerID)
	if err != nil {
		s.logger.Warn("Owner not found during token refresh", zap.String("owner_id", ownerID.String()))
		return nil, shared.NewDomainError("OWNER_NOT_FOUND", "Account not found")
	}

	if !owner.CanLogin() {
		s.logger.Warn("Token refresh for inactive account", zap.String("owner_id", ownerID.String()))
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is no longer active")
	}

	tokenPair, err := s.jwtService.RefreshTokenPair(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	s.logger.Info("Token refreshed successfully", zap.String("owner_id", ownerID.String()))

	return &RefreshTokenResult{IssuedTokens: issuedTokens(tokenPair)}, nil
}

// GetCurrentOwner retrieves the authenticated owner's account information
func (s *AuthService) GetCurrentOwner(ctx context.Context, ownerID uuid.UUID) (*OwnerInfo, error) {
	owner, err := s.ownerRepo.FindByID(ctx, ownerID)
	if err != nil {
		return nil, shared.NewDomainError("OWNER_NOT_FOUND", "Account not found")
	}
	info := ownerInfo(owner)
	return &info, nil
}

// ChangePassword changes the owner's password
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	owner, err := s.ownerRepo.FindByID(ctx, input.OwnerID)
	if err != nil {
		return shared.NewDomainError("OWNER_NOT_FOUND", "Account not found")
	}

	if err := owner.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return err
	}

	if err := s.ownerRepo.Save(ctx, owner); err != nil {
		s.logger.Error("Failed to save owner after password change", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to update password")
	}

	s.logger.Info("Owner password changed", zap.String("owner_id", input.OwnerID.String()))
	return nil
}

// UpdateProfile updates the owner's name and business details
func (s *AuthService) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*OwnerInfo, error) {
	owner, err := s.ownerRepo.FindByID(ctx, input.OwnerID)
	if err != nil {
		return nil, shared.NewDomainError("OWNER_NOT_FOUND", "Account not found")
	}

	if err := owner.SetProfile(input.Name, input.BusinessName, input.BusinessAddress); err != nil {
		return nil, err
	}

	if err := s.ownerRepo.Save(ctx, owner); err != nil {
		s.logger.Error("Failed to save owner profile", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update profile")
	}

	info := ownerInfo(owner)
	return &info, nil
}

// normalizeEmail lowercases and trims an email for lookup, matching the
// normalization applied at registration
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// mapTokenError maps JWT validation errors to domain errors
func mapTokenError(err error) error {
	switch err {
	case auth.ErrExpiredToken:
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case auth.ErrInvalidToken:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	case auth.ErrMaxRefreshExceeded:
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	default:
		return shared.NewDomainError("TOKEN_ERROR", "Failed to validate refresh token")
	}
}

// issuedTokens flattens a signed token pair into the result shape
func issuedTokens(p *auth.TokenPair) IssuedTokens {
	return IssuedTokens{
		AccessToken:           p.AccessToken,
		RefreshToken:          p.RefreshToken,
		AccessTokenExpiresAt:  p.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: p.RefreshTokenExpiresAt,
		TokenType:             p.TokenType,
	}
}

// ownerInfo converts a domain owner to its API representation
func ownerInfo(o *identity.Owner) OwnerInfo {
	return OwnerInfo{
		ID:              o.ID,
		Email:           o.Email,
		Name:            o.Name,
		BusinessName:    o.BusinessName,
		BusinessAddress: o.BusinessAddress,
		Status:          string(o.Status),
		LastLoginAt:     o.LastLoginAt,
		CreatedAt:       o.CreatedAt,
	}
}
