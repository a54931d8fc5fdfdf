package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/invoiceapp/backend/internal/domain/billing"
	"github.com/invoiceapp/backend/internal/domain/shared"
	"github.com/invoiceapp/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items", itemOrder).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForOwner finds an invoice by ID scoped to an owner
func (r *GormInvoiceRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items", itemOrder).
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPaymentToken finds an invoice by its public payment token
func (r *GormInvoiceRepository) FindByPaymentToken(ctx context.Context, token string) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items", itemOrder).
		Where("payment_token = ? AND payment_token <> ''", token).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForOwner finds invoices for an owner with filtering
func (r *GormInvoiceRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Preload("Items", itemOrder).
		Where("owner_id = ?", ownerID)
	query = r.applyInvoiceFilter(query, filter)

	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]billing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// CountForOwner counts invoices for an owner matching the filter
func (r *GormInvoiceRepository) CountForOwner(ctx context.Context, ownerID uuid.UUID, filter billing.InvoiceFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("owner_id = ?", ownerID)
	query = r.applyInvoiceFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an invoice together with its line items.
// Items removed from the aggregate are deleted from the items table.
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(model).Error; err != nil {
			return err
		}
		return r.replaceItems(tx, model)
	})
}

// SaveWithLock saves with optimistic locking on the aggregate version
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.InvoiceModel{}).
			Where("id = ? AND version = ?", invoice.ID, invoice.Version-1).
			Select("*").Omit("Items", "id", "created_at").
			Updates(model)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
				return shared.ErrDuplicateNumber
			}
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return r.replaceItems(tx, model)
	})
}

// replaceItems reconciles the items table with the aggregate's current lines
func (r *GormInvoiceRepository) replaceItems(tx *gorm.DB, model *models.InvoiceModel) error {
	keep := make([]uuid.UUID, 0, len(model.Items))
	for _, item := range model.Items {
		keep = append(keep, item.ID)
	}
	query := tx.Where("invoice_id = ?", model.ID)
	if len(keep) > 0 {
		query = query.Where("id NOT IN ?", keep)
	}
	if err := query.Delete(&models.InvoiceItemModel{}).Error; err != nil {
		return err
	}
	for i := range model.Items {
		if err := tx.Save(&model.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete removes an invoice and its line items
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.InvoiceItemModel{}, "invoice_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.InvoiceModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// FindSweepBatch returns up to limit active SENT invoices past due before
// the reference day, across all owners, oldest due date first
func (r *GormInvoiceRepository) FindSweepBatch(ctx context.Context, before time.Time, limit int) ([]billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items", itemOrder).
		Where("status = ? AND archived = ? AND due_date < ?", billing.InvoiceStatusSent, false, before).
		Order("due_date ASC").
		Limit(limit).
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]billing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// CountActiveUnpaidByClient counts active SENT and OVERDUE invoices for a client
func (r *GormInvoiceRepository) CountActiveUnpaidByClient(ctx context.Context, ownerID, clientID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("owner_id = ? AND client_id = ? AND archived = ? AND status IN ?", ownerID, clientID, false,
			[]billing.InvoiceStatus{billing.InvoiceStatusSent, billing.InvoiceStatusOverdue}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus returns per-status counts over the owner's active
// invoices issued within the range
func (r *GormInvoiceRepository) CountByStatus(ctx context.Context, ownerID uuid.UUID, rng billing.DateRange) ([]billing.StatusCountRow, error) {
	var rows []billing.StatusCountRow
	query := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Select("status, COUNT(*) as count").
		Where("owner_id = ? AND archived = ?", ownerID, false)
	query = applyIssueDateRange(query, "issue_date", rng)
	if err := query.Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SumTotalsByCurrency sums derived invoice totals per currency over the
// owner's active invoices in the given statuses. Totals come from the line
// items so a stale stored figure can never leak into the dashboard.
func (r *GormInvoiceRepository) SumTotalsByCurrency(ctx context.Context, ownerID uuid.UUID, statuses []billing.InvoiceStatus, rng billing.DateRange) ([]billing.CurrencyTotalRow, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	var rows []billing.CurrencyTotalRow
	query := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Select("invoices.currency, COALESCE(SUM(invoice_items.quantity * invoice_items.unit_price), 0) as total").
		Joins("LEFT JOIN invoice_items ON invoice_items.invoice_id = invoices.id").
		Where("invoices.owner_id = ? AND invoices.archived = ? AND invoices.status IN ?", ownerID, false, statuses)
	query = applyIssueDateRange(query, "invoices.issue_date", rng)
	if err := query.Group("invoices.currency").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// applyIssueDateRange bounds a query to invoices issued within the
// range. Bounds are calendar days, both ends inclusive; issue_date is a
// timestamp, so the upper bound becomes an exclusive next-day cutoff.
func applyIssueDateRange(query *gorm.DB, column string, rng billing.DateRange) *gorm.DB {
	if rng.From != nil {
		from := truncateToDay(*rng.From)
		query = query.Where(column+" >= ?", from)
	}
	if rng.To != nil {
		cutoff := truncateToDay(*rng.To).AddDate(0, 0, 1)
		query = query.Where(column+" < ?", cutoff)
	}
	return query
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MaxNumberForOwner returns the highest assigned invoice number for the owner
func (r *GormInvoiceRepository) MaxNumberForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var result struct {
		Max int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Select("COALESCE(MAX(number), 0) as max").
		Where("owner_id = ?", ownerID).
		Scan(&result).Error; err != nil {
		return 0, err
	}
	return result.Max, nil
}

// itemOrder keeps line items in their draft ordering
func itemOrder(db *gorm.DB) *gorm.DB {
	return db.Order("invoice_items.position ASC")
}

// applyInvoiceFilter applies filter options to the query
func (r *GormInvoiceRepository) applyInvoiceFilter(query *gorm.DB, filter billing.InvoiceFilter) *gorm.DB {
	query = r.applyInvoiceFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering against the sort whitelist
	orderBy := ValidateSortField(filter.OrderBy, InvoiceSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	return query
}

// applyInvoiceFilterWithoutPagination applies filter options without pagination
func (r *GormInvoiceRepository) applyInvoiceFilterWithoutPagination(query *gorm.DB, filter billing.InvoiceFilter) *gorm.DB {
	if !filter.IncludeArchived {
		query = query.Where("archived = ?", false)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("notes ILIKE ?", searchPattern)
	}
	return query
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
