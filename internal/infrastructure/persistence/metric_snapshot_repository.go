package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/invoiceapp/backend/internal/domain/billing"
	"github.com/invoiceapp/backend/internal/domain/shared"
	"github.com/invoiceapp/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMetricSnapshotRepository implements billing.MetricSnapshotRepository.
// Snapshots are append-only: Save always inserts, there is no update path.
type GormMetricSnapshotRepository struct {
	db *gorm.DB
}

// NewGormMetricSnapshotRepository creates a new GormMetricSnapshotRepository
func NewGormMetricSnapshotRepository(db *gorm.DB) *GormMetricSnapshotRepository {
	return &GormMetricSnapshotRepository{db: db}
}

// Save appends a metric snapshot
func (r *GormMetricSnapshotRepository) Save(ctx context.Context, snapshot *billing.MetricSnapshot) error {
	model := models.MetricSnapshotModelFromDomain(snapshot)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindAllForOwner returns snapshots for an owner, newest capture first
func (r *GormMetricSnapshotRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]billing.MetricSnapshot, error) {
	var snapshotModels []models.MetricSnapshotModel
	query := r.db.WithContext(ctx).Model(&models.MetricSnapshotModel{}).
		Where("owner_id = ?", ownerID)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, MetricSnapshotSortFields, "captured_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	if err := query.Find(&snapshotModels).Error; err != nil {
		return nil, err
	}
	snapshots := make([]billing.MetricSnapshot, len(snapshotModels))
	for i, model := range snapshotModels {
		snapshots[i] = *model.ToDomain()
	}
	return snapshots, nil
}

// Ensure GormMetricSnapshotRepository implements MetricSnapshotRepository
var _ billing.MetricSnapshotRepository = (*GormMetricSnapshotRepository)(nil)
