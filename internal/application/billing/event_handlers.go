package billing

import (
	"context"

	"github.com/invoiceapp/backend/internal/domain/billing"
	"github.com/invoiceapp/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InvoiceActivityRecorder subscribes to invoice lifecycle events and
// writes a structured activity log entry per transition. It is the
// audit trail for lifecycle changes; failures here never affect the
// transition that produced the event.
type InvoiceActivityRecorder struct {
	logger *zap.Logger
}

// NewInvoiceActivityRecorder creates a new InvoiceActivityRecorder
func NewInvoiceActivityRecorder(logger *zap.Logger) *InvoiceActivityRecorder {
	return &InvoiceActivityRecorder{logger: logger}
}

// EventTypes returns the lifecycle events this recorder listens for
func (r *InvoiceActivityRecorder) EventTypes() []string {
	return []string{
		"InvoiceCreated",
		"InvoiceSent",
		"InvoicePaid",
		"InvoicePaymentReverted",
		"InvoiceOverdue",
		"InvoicePaymentIntent",
	}
}

// Handle records the lifecycle event
func (r *InvoiceActivityRecorder) Handle(_ context.Context, event shared.DomainEvent) error {
	r.logger.Info("Invoice activity",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("invoice_id", event.AggregateID().String()),
		zap.String("owner_id", event.OwnerID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}

// DashboardCacheInvalidator drops an owner's cached dashboard figures
// whenever an invoice transition changes them.
type DashboardCacheInvalidator struct {
	cache  billing.StatsCache
	logger *zap.Logger
}

// NewDashboardCacheInvalidator creates a new DashboardCacheInvalidator
func NewDashboardCacheInvalidator(cache billing.StatsCache, logger *zap.Logger) *DashboardCacheInvalidator {
	return &DashboardCacheInvalidator{cache: cache, logger: logger}
}

// EventTypes returns the events that change an owner's counts or sums.
// Payment intents do not move any figure, so they are not listed.
func (i *DashboardCacheInvalidator) EventTypes() []string {
	return []string{
		"InvoiceCreated",
		"InvoiceSent",
		"InvoicePaid",
		"InvoicePaymentReverted",
		"InvoiceOverdue",
	}
}

// Handle invalidates the cached stats for the event's owner
func (i *DashboardCacheInvalidator) Handle(ctx context.Context, event shared.DomainEvent) error {
	if err := i.cache.Delete(ctx, event.OwnerID()); err != nil {
		i.logger.Warn("Stats cache invalidation failed",
			zap.String("event_type", event.EventType()),
			zap.String("owner_id", event.OwnerID().String()),
			zap.Error(err))
		return err
	}
	return nil
}
