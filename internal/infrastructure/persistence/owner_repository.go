package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/invoiceapp/backend/internal/domain/identity"
	"github.com/invoiceapp/backend/internal/domain/shared"
	"github.com/invoiceapp/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOwnerRepository implements identity.OwnerRepository using GORM
type GormOwnerRepository struct {
	db *gorm.DB
}

// NewGormOwnerRepository creates a new GormOwnerRepository
func NewGormOwnerRepository(db *gorm.DB) *GormOwnerRepository {
	return &GormOwnerRepository{db: db}
}

// FindByID finds an owner by its ID
func (r *GormOwnerRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Owner, error) {
	var model models.OwnerModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEmail finds an owner by normalized email
func (r *GormOwnerRepository) FindByEmail(ctx context.Context, email string) (*identity.Owner, error) {
	var model models.OwnerModel
	if err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns all owner accounts
func (r *GormOwnerRepository) FindAll(ctx context.Context) ([]identity.Owner, error) {
	var ownerModels []models.OwnerModel
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&ownerModels).Error; err != nil {
		return nil, err
	}
	owners := make([]identity.Owner, len(ownerModels))
	for i, model := range ownerModels {
		owners[i] = *model.ToDomain()
	}
	return owners, nil
}

// Save creates or updates an owner
func (r *GormOwnerRepository) Save(ctx context.Context, owner *identity.Owner) error {
	model := models.OwnerModelFromDomain(owner)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes an owner account
func (r *GormOwnerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.OwnerModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormOwnerRepository implements OwnerRepository
var _ identity.OwnerRepository = (*GormOwnerRepository)(nil)
