package models

import (
	"time"

	"github.com/invoiceapp/backend/internal/domain/identity"
	"github.com/invoiceapp/backend/internal/domain/shared"
)

// OwnerModel is the persistence model for the Owner aggregate root.
type OwnerModel struct {
	AggregateModel
	Email           string               `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash    string               `gorm:"type:varchar(255);not null"`
	Name            string               `gorm:"type:varchar(200);not null"`
	BusinessName    string               `gorm:"type:varchar(200)"`
	BusinessAddress string               `gorm:"type:text"`
	Status          identity.OwnerStatus `gorm:"type:varchar(20);not null;default:'active'"`
	LastLoginAt     *time.Time
	FailedAttempts  int `gorm:"not null;default:0"`
	LockedUntil     *time.Time
}

// TableName returns the table name for GORM
func (OwnerModel) TableName() string {
	return "owners"
}

// ToDomain converts the persistence model to a domain Owner entity.
func (m *OwnerModel) ToDomain() *identity.Owner {
	return &identity.Owner{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Email:           m.Email,
		PasswordHash:    m.PasswordHash,
		Name:            m.Name,
		BusinessName:    m.BusinessName,
		BusinessAddress: m.BusinessAddress,
		Status:          m.Status,
		LastLoginAt:     m.LastLoginAt,
		FailedAttempts:  m.FailedAttempts,
		LockedUntil:     m.LockedUntil,
	}
}

// FromDomain populates the persistence model from a domain Owner entity.
func (m *OwnerModel) FromDomain(o *identity.Owner) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.Email = o.Email
	m.PasswordHash = o.PasswordHash
	m.Name = o.Name
	m.BusinessName = o.BusinessName
	m.BusinessAddress = o.BusinessAddress
	m.Status = o.Status
	m.LastLoginAt = o.LastLoginAt
	m.FailedAttempts = o.FailedAttempts
	m.LockedUntil = o.LockedUntil
}

// OwnerModelFromDomain creates a new persistence model from a domain Owner entity.
func OwnerModelFromDomain(o *identity.Owner) *OwnerModel {
	m := &OwnerModel{}
	m.FromDomain(o)
	return m
}
