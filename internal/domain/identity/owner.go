package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/invoiceapp/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// OwnerStatus represents the status of an owner account
type OwnerStatus string

const (
	OwnerStatusActive      OwnerStatus = "active"
	OwnerStatusLocked      OwnerStatus = "locked"      // Locked after repeated failed logins
	OwnerStatusDeactivated OwnerStatus = "deactivated" // Manually deactivated
)

// Password cost for bcrypt
const bcryptCost = 12

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Owner is the account that issues invoices. Every billing aggregate
// is scoped to exactly one owner; the owner's business details appear
// on rendered invoice documents.
type Owner struct {
	shared.BaseAggregateRoot
	Email           string
	PasswordHash    string
	Name            string
	BusinessName    string
	BusinessAddress string
	Status          OwnerStatus
	LastLoginAt     *time.Time
	FailedAttempts  int
	LockedUntil     *time.Time
}

// NewOwner creates a new active owner account
func NewOwner(email, password, name string) (*Owner, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &Owner{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		PasswordHash:      hash,
		Name:              name,
		Status:            OwnerStatusActive,
	}, nil
}

// VerifyPassword verifies if the provided password matches
func (o *Owner) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(o.PasswordHash), []byte(password)) == nil
}

// ChangePassword verifies the old password and sets a new one
func (o *Owner) ChangePassword(oldPassword, newPassword string) error {
	if !o.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	o.PasswordHash = hash
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// SetProfile updates the owner's display and business details
func (o *Owner) SetProfile(name, businessName, businessAddress string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}

	o.Name = name
	o.BusinessName = businessName
	o.BusinessAddress = businessAddress
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// RecordLoginSuccess records a successful login
func (o *Owner) RecordLoginSuccess() {
	now := time.Now()
	o.LastLoginAt = &now
	o.FailedAttempts = 0
	o.LockedUntil = nil
	if o.Status == OwnerStatusLocked {
		o.Status = OwnerStatusActive
	}
	o.UpdatedAt = now
	o.IncrementVersion()
}

// RecordLoginFailure records a failed login attempt.
// Returns true if the account was locked by this attempt.
func (o *Owner) RecordLoginFailure(maxAttempts int, lockDuration time.Duration) bool {
	o.FailedAttempts++
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	if o.FailedAttempts >= maxAttempts {
		o.Status = OwnerStatusLocked
		if lockDuration > 0 {
			until := time.Now().Add(lockDuration)
			o.LockedUntil = &until
		}
		return true
	}

	return false
}

// IsLocked returns true while the account lock is in effect
func (o *Owner) IsLocked() bool {
	if o.Status != OwnerStatusLocked {
		return false
	}
	if o.LockedUntil != nil && time.Now().After(*o.LockedUntil) {
		return false
	}
	return true
}

// CanLogin returns true if the account may authenticate
func (o *Owner) CanLogin() bool {
	return o.Status != OwnerStatusDeactivated && !o.IsLocked()
}

// Deactivate manually disables the account
func (o *Owner) Deactivate() error {
	if o.Status == OwnerStatusDeactivated {
		return shared.NewDomainError("ALREADY_DEACTIVATED", "Owner is already deactivated")
	}

	o.Status = OwnerStatusDeactivated
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Email format is invalid")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}
	return nil
}
