package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/invoiceapp/backend/internal/domain/billing"
	"github.com/invoiceapp/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormNumberSequenceRepository implements billing.NumberSequenceRepository
// using a per-owner counter row locked for the duration of the transaction.
type GormNumberSequenceRepository struct {
	db *gorm.DB
}

// NewGormNumberSequenceRepository creates a new GormNumberSequenceRepository
func NewGormNumberSequenceRepository(db *gorm.DB) *GormNumberSequenceRepository {
	return &GormNumberSequenceRepository{db: db}
}

// Next returns the next invoice number for the owner. The counter row is
// read under FOR UPDATE so two concurrent sends never observe the same
// value. A missing row is seeded from the owner's highest assigned number,
// which keeps sequences monotonic for data imported before the counter
// table existed.
func (r *GormNumberSequenceRepository) Next(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq models.NumberSequenceModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&seq, "owner_id = ?", ownerID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			seeded, seedErr := r.seedValue(tx, ownerID)
			if seedErr != nil {
				return seedErr
			}
			seq = models.NumberSequenceModel{
				OwnerID:   ownerID,
				NextValue: seeded,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}
			if createErr := tx.Create(&seq).Error; createErr != nil {
				return createErr
			}
			next = seq.NextValue
			return nil
		}
		if err != nil {
			return err
		}

		seq.NextValue++
		seq.UpdatedAt = time.Now()
		if err := tx.Save(&seq).Error; err != nil {
			return err
		}
		next = seq.NextValue
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// seedValue computes the first number to hand out for an owner without a
// counter row yet
func (r *GormNumberSequenceRepository) seedValue(tx *gorm.DB, ownerID uuid.UUID) (int64, error) {
	var result struct {
		Max int64
	}
	if err := tx.Model(&models.InvoiceModel{}).
		Select("COALESCE(MAX(number), 0) as max").
		Where("owner_id = ?", ownerID).
		Scan(&result).Error; err != nil {
		return 0, err
	}
	return result.Max + 1, nil
}

// Ensure GormNumberSequenceRepository implements NumberSequenceRepository
var _ billing.NumberSequenceRepository = (*GormNumberSequenceRepository)(nil)
