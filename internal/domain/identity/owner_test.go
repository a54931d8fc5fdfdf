package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOwner(t *testing.T) *Owner {
	t.Helper()
	o, err := NewOwner("owner@studio.test", "s3cret-pass", "Jordan")
	require.NoError(t, err)
	return o
}

func TestNewOwner(t *testing.T) {
	t.Run("creates active owner", func(t *testing.T) {
		o := newTestOwner(t)
		assert.Equal(t, OwnerStatusActive, o.Status)
		assert.Equal(t, "owner@studio.test", o.Email)
		assert.NotEqual(t, "s3cret-pass", o.PasswordHash)
	})

	t.Run("normalises email", func(t *testing.T) {
		o, err := NewOwner("  Owner@Studio.Test ", "s3cret-pass", "Jordan")
		require.NoError(t, err)
		assert.Equal(t, "owner@studio.test", o.Email)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := NewOwner("not-an-email", "s3cret-pass", "Jordan")
		assert.Error(t, err)
	})

	t.Run("rejects short password", func(t *testing.T) {
		_, err := NewOwner("owner@studio.test", "short", "Jordan")
		assert.Error(t, err)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewOwner("owner@studio.test", "s3cret-pass", " ")
		assert.Error(t, err)
	})
}

func TestOwnerVerifyPassword(t *testing.T) {
	o := newTestOwner(t)
	assert.True(t, o.VerifyPassword("s3cret-pass"))
	assert.False(t, o.VerifyPassword("wrong"))
}

func TestOwnerChangePassword(t *testing.T) {
	o := newTestOwner(t)

	t.Run("rejects wrong current password", func(t *testing.T) {
		assert.Error(t, o.ChangePassword("wrong", "new-password-1"))
	})

	t.Run("changes with correct current password", func(t *testing.T) {
		require.NoError(t, o.ChangePassword("s3cret-pass", "new-password-1"))
		assert.True(t, o.VerifyPassword("new-password-1"))
		assert.False(t, o.VerifyPassword("s3cret-pass"))
	})
}

func TestOwnerLoginTracking(t *testing.T) {
	t.Run("locks after max failures", func(t *testing.T) {
		o := newTestOwner(t)
		assert.False(t, o.RecordLoginFailure(3, time.Hour))
		assert.False(t, o.RecordLoginFailure(3, time.Hour))
		assert.True(t, o.RecordLoginFailure(3, time.Hour))
		assert.True(t, o.IsLocked())
		assert.False(t, o.CanLogin())
	})

	t.Run("success clears lock", func(t *testing.T) {
		o := newTestOwner(t)
		o.RecordLoginFailure(1, time.Hour)
		require.True(t, o.IsLocked())

		o.RecordLoginSuccess()
		assert.False(t, o.IsLocked())
		assert.Equal(t, OwnerStatusActive, o.Status)
		assert.NotNil(t, o.LastLoginAt)
		assert.Zero(t, o.FailedAttempts)
	})

	t.Run("expired lock allows login", func(t *testing.T) {
		o := newTestOwner(t)
		o.RecordLoginFailure(1, time.Millisecond)
		time.Sleep(5 * time.Millisecond)
		assert.False(t, o.IsLocked())
		assert.True(t, o.CanLogin())
	})
}

func TestOwnerDeactivate(t *testing.T) {
	o := newTestOwner(t)
	require.NoError(t, o.Deactivate())
	assert.False(t, o.CanLogin())
	assert.Error(t, o.Deactivate())
}

func TestOwnerSetProfile(t *testing.T) {
	o := newTestOwner(t)
	require.NoError(t, o.SetProfile("Jordan Lee", "Lee Studio", "5 Harbour Rd"))
	assert.Equal(t, "Lee Studio", o.BusinessName)
	assert.Error(t, o.SetProfile("", "", ""))
}
