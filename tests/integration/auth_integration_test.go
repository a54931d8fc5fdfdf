package integration

import (
	"context"
	"testing"
	"time"

	identityapp "github.com/invoiceapp/backend/internal/application/identity"
	"github.com/invoiceapp/backend/internal/domain/shared"
	"github.com/invoiceapp/backend/internal/infrastructure/auth"
	"github.com/invoiceapp/backend/internal/infrastructure/config"
	"github.com/invoiceapp/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthService(t *testing.T, testDB *TestDB) *identityapp.AuthService {
	t.Helper()

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "integration-test-secret-key-0001",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "invoice-backend-test",
		MaxRefreshCount:        5,
	})
	ownerRepo := persistence.NewGormOwnerRepository(testDB.DB)
	return identityapp.NewAuthService(ownerRepo, jwtService, identityapp.DefaultAuthServiceConfig(), zap.NewNop())
}

func domainCode(t *testing.T, err error) string {
	t.Helper()

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	return domainErr.Code
}

// TestAuthService_Integration exercises registration and login against a real database
func TestAuthService_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	svc := newAuthService(t, testDB)
	ctx := context.Background()

	t.Run("Register and login", func(t *testing.T) {
		info, err := svc.Register(ctx, identityapp.RegisterInput{
			Email:    "Owner@Example.Test",
			Password: "s3cret-password",
			Name:     "First Owner",
		})
		require.NoError(t, err)
		assert.Equal(t, "owner@example.test", info.Email, "email is normalized at registration")
		assert.Equal(t, "active", info.Status)

		result, err := svc.Login(ctx, identityapp.LoginInput{
			Email:    "owner@example.test",
			Password: "s3cret-password",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		assert.Equal(t, info.ID, result.Owner.ID)

		// Login is recorded on the account
		current, err := svc.GetCurrentOwner(ctx, info.ID)
		require.NoError(t, err)
		assert.NotNil(t, current.LastLoginAt)
	})

	t.Run("Duplicate email is rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, identityapp.RegisterInput{
			Email:    "dup@example.test",
			Password: "s3cret-password",
			Name:     "Original",
		})
		require.NoError(t, err)

		_, err = svc.Register(ctx, identityapp.RegisterInput{
			Email:    "DUP@example.test",
			Password: "another-password",
			Name:     "Imposter",
		})
		require.Error(t, err)
		assert.Equal(t, "EMAIL_TAKEN", domainCode(t, err))
	})

	t.Run("Wrong password and unknown email", func(t *testing.T) {
		_, err := svc.Register(ctx, identityapp.RegisterInput{
			Email:    "wrongpass@example.test",
			Password: "s3cret-password",
			Name:     "Wrong Pass",
		})
		require.NoError(t, err)

		_, err = svc.Login(ctx, identityapp.LoginInput{
			Email:    "wrongpass@example.test",
			Password: "not-the-password",
		})
		require.Error(t, err)
		assert.Equal(t, "INVALID_CREDENTIALS", domainCode(t, err))

		_, err = svc.Login(ctx, identityapp.LoginInput{
			Email:    "nobody@example.test",
			Password: "whatever-password",
		})
		require.Error(t, err)
		assert.Equal(t, "INVALID_CREDENTIALS", domainCode(t, err))
	})

	t.Run("Account locks after repeated failures", func(t *testing.T) {
		_, err := svc.Register(ctx, identityapp.RegisterInput{
			Email:    "lockout@example.test",
			Password: "s3cret-password",
			Name:     "Lockout Victim",
		})
		require.NoError(t, err)

		cfg := identityapp.DefaultAuthServiceConfig()
		for i := 0; i < cfg.MaxLoginAttempts-1; i++ {
			_, err = svc.Login(ctx, identityapp.LoginInput{
				Email:    "lockout@example.test",
				Password: "bad-password",
			})
			require.Error(t, err)
			assert.Equal(t, "INVALID_CREDENTIALS", domainCode(t, err))
		}

		// The final failure locks the account
		_, err = svc.Login(ctx, identityapp.LoginInput{
			Email:    "lockout@example.test",
			Password: "bad-password",
		})
		require.Error(t, err)
		assert.Equal(t, "ACCOUNT_LOCKED", domainCode(t, err))

		// Even the correct password is refused while locked
		_, err = svc.Login(ctx, identityapp.LoginInput{
			Email:    "lockout@example.test",
			Password: "s3cret-password",
		})
		require.Error(t, err)
		assert.Equal(t, "ACCOUNT_LOCKED", domainCode(t, err))
	})

	t.Run("Refresh token rotation", func(t *testing.T) {
		_, err := svc.Register(ctx, identityapp.RegisterInput{
			Email:    "refresh@example.test",
			Password: "s3cret-password",
			Name:     "Refresher",
		})
		require.NoError(t, err)

		login, err := svc.Login(ctx, identityapp.LoginInput{
			Email:    "refresh@example.test",
			Password: "s3cret-password",
		})
		require.NoError(t, err)

		refreshed, err := svc.RefreshToken(ctx, identityapp.RefreshTokenInput{
			RefreshToken: login.RefreshToken,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, refreshed.AccessToken)
		assert.NotEmpty(t, refreshed.RefreshToken)

		_, err = svc.RefreshToken(ctx, identityapp.RefreshTokenInput{
			RefreshToken: "not-a-token",
		})
		require.Error(t, err)
		assert.Equal(t, "TOKEN_INVALID", domainCode(t, err))
	})

	t.Run("Change password", func(t *testing.T) {
		info, err := svc.Register(ctx, identityapp.RegisterInput{
			Email:    "changepw@example.test",
			Password: "old-password-1",
			Name:     "Changer",
		})
		require.NoError(t, err)

		err = svc.ChangePassword(ctx, identityapp.ChangePasswordInput{
			OwnerID:     info.ID,
			OldPassword: "old-password-1",
			NewPassword: "new-password-2",
		})
		require.NoError(t, err)

		_, err = svc.Login(ctx, identityapp.LoginInput{
			Email:    "changepw@example.test",
			Password: "old-password-1",
		})
		require.Error(t, err)

		_, err = svc.Login(ctx, identityapp.LoginInput{
			Email:    "changepw@example.test",
			Password: "new-password-2",
		})
		require.NoError(t, err)
	})

	t.Run("Update profile", func(t *testing.T) {
		info, err := svc.Register(ctx, identityapp.RegisterInput{
			Email:    "profile@example.test",
			Password: "s3cret-password",
			Name:     "Before",
		})
		require.NoError(t, err)

		updated, err := svc.UpdateProfile(ctx, identityapp.UpdateProfileInput{
			OwnerID:         info.ID,
			Name:            "After",
			BusinessName:    "After Studio",
			BusinessAddress: "12 Harbor Lane",
		})
		require.NoError(t, err)
		assert.Equal(t, "After", updated.Name)
		assert.Equal(t, "After Studio", updated.BusinessName)
		assert.Equal(t, "12 Harbor Lane", updated.BusinessAddress)

		current, err := svc.GetCurrentOwner(ctx, info.ID)
		require.NoError(t, err)
		assert.Equal(t, "After Studio", current.BusinessName)
	})
}
