package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoiceapp/backend/internal/domain/shared"
	"github.com/invoiceapp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// MetricTrigger names the lifecycle change that produced a snapshot
type MetricTrigger string

const (
	MetricTriggerSent     MetricTrigger = "SENT"
	MetricTriggerPaid     MetricTrigger = "PAID"
	MetricTriggerReverted MetricTrigger = "REVERTED"
	MetricTriggerOverdue  MetricTrigger = "OVERDUE"
)

// MetricSnapshot is an append-only record of a single lifecycle
// change: the transitioned invoice's status and derived total at
// capture time, plus the owner's aggregate figures for trend history.
// Dashboards read live aggregates; snapshots exist for audit.
type MetricSnapshot struct {
	shared.BaseEntity
	OwnerID    uuid.UUID     `json:"owner_id"`
	InvoiceID  uuid.UUID     `json:"invoice_id"`
	Trigger    MetricTrigger `json:"trigger"`
	CapturedAt time.Time     `json:"captured_at"`

	// The transitioned invoice at capture time
	Status   InvoiceStatus        `json:"status"`
	Amount   decimal.Decimal      `json:"amount"`
	Currency valueobject.Currency `json:"currency"`

	// Owner-wide figures at capture time
	DraftCount       int64           `json:"draft_count"`
	SentCount        int64           `json:"sent_count"`
	OverdueCount     int64           `json:"overdue_count"`
	PaidCount        int64           `json:"paid_count"`
	RevenueTotal     decimal.Decimal `json:"revenue_total"`     // Sum of PAID totals across currencies
	OutstandingTotal decimal.Decimal `json:"outstanding_total"` // Sum of SENT + OVERDUE totals across currencies
}

// NewMetricSnapshot records the invoice's post-transition status and
// derived total together with the owner's aggregate figures
func NewMetricSnapshot(invoice *Invoice, trigger MetricTrigger, stats DashboardStats) *MetricSnapshot {
	return &MetricSnapshot{
		BaseEntity:       shared.NewBaseEntity(),
		OwnerID:          invoice.OwnerID,
		InvoiceID:        invoice.ID,
		Trigger:          trigger,
		CapturedAt:       time.Now(),
		Status:           invoice.Status,
		Amount:           invoice.Total().Amount(),
		Currency:         invoice.Currency,
		DraftCount:       stats.StatusCounts[InvoiceStatusDraft],
		SentCount:        stats.StatusCounts[InvoiceStatusSent],
		OverdueCount:     stats.StatusCounts[InvoiceStatusOverdue],
		PaidCount:        stats.StatusCounts[InvoiceStatusPaid],
		RevenueTotal:     stats.TotalRevenue,
		OutstandingTotal: stats.TotalOutstanding,
	}
}
