package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/invoiceapp/backend/internal/domain/shared"
	"github.com/invoiceapp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InvoiceFilter narrows invoice listings. Archived invoices are
// excluded unless IncludeArchived is set.
type InvoiceFilter struct {
	shared.Filter
	Status          *InvoiceStatus
	ClientID        *uuid.UUID
	IncludeArchived bool
}

// DefaultInvoiceFilter returns an invoice filter with default paging
func DefaultInvoiceFilter() InvoiceFilter {
	return InvoiceFilter{Filter: shared.DefaultFilter()}
}

// StatusCountRow is one row of a per-status count aggregation
type StatusCountRow struct {
	Status InvoiceStatus
	Count  int64
}

// CurrencyTotalRow is one row of a per-currency sum aggregation.
// Totals are computed in SQL from the line items, never from a stored
// column.
type CurrencyTotalRow struct {
	Currency valueobject.Currency
	Total    decimal.Decimal
}

// DateRange bounds an aggregation to invoices issued within the given
// calendar days, both ends inclusive. A nil bound is open; the zero
// range covers everything. Drafts carry no issue date and fall outside
// any bounded range.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// IsZero reports whether the range is unbounded on both ends
func (r DateRange) IsZero() bool {
	return r.From == nil && r.To == nil
}

// InvoiceRepository persists and queries invoice aggregates
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*Invoice, error)
	FindByPaymentToken(ctx context.Context, token string) (*Invoice, error)
	FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter InvoiceFilter) ([]Invoice, error)
	CountForOwner(ctx context.Context, ownerID uuid.UUID, filter InvoiceFilter) (int64, error)
	Save(ctx context.Context, invoice *Invoice) error
	// SaveWithLock persists the aggregate guarded by its version and
	// returns shared.ErrConcurrencyConflict when another writer won
	SaveWithLock(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error

	// FindSweepBatch returns up to limit active SENT invoices whose due
	// date falls strictly before the reference day, across all owners
	FindSweepBatch(ctx context.Context, before time.Time, limit int) ([]Invoice, error)

	// CountActiveUnpaidByClient counts active SENT and OVERDUE invoices
	// referencing the client, used as the client deletion guard
	CountActiveUnpaidByClient(ctx context.Context, ownerID, clientID uuid.UUID) (int64, error)

	// CountByStatus returns per-status counts over the owner's active
	// invoices issued within the range
	CountByStatus(ctx context.Context, ownerID uuid.UUID, rng DateRange) ([]StatusCountRow, error)

	// SumTotalsByCurrency sums derived invoice totals per currency over
	// the owner's active invoices in the given statuses issued within
	// the range
	SumTotalsByCurrency(ctx context.Context, ownerID uuid.UUID, statuses []InvoiceStatus, rng DateRange) ([]CurrencyTotalRow, error)

	// MaxNumberForOwner returns the highest assigned invoice number for
	// the owner, zero when none has been assigned
	MaxNumberForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

// NumberSequenceRepository hands out per-owner invoice numbers.
// Next must be atomic: two concurrent sends for the same owner must
// never observe the same value.
type NumberSequenceRepository interface {
	Next(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

// ClientRepository persists and queries client aggregates
type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*Client, error)
	FindByEmailForOwner(ctx context.Context, ownerID uuid.UUID, email string) (*Client, error)
	FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]Client, error)
	CountForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, client *Client) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MetricSnapshotRepository stores append-only metric snapshots
type MetricSnapshotRepository interface {
	Save(ctx context.Context, snapshot *MetricSnapshot) error
	FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]MetricSnapshot, error)
}
