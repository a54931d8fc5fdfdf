package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoiceapp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceCreatedEvent is raised when a new draft invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID       `json:"invoice_id"`
	ClientID  uuid.UUID       `json:"client_id"`
	Total     decimal.Decimal `json:"total"`
	DueDate   time.Time       `json:"due_date"`
}

// EventType returns the event type name
func (e *InvoiceCreatedEvent) EventType() string {
	return "InvoiceCreated"
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceCreated", "Invoice", inv.ID, inv.OwnerID),
		InvoiceID:       inv.ID,
		ClientID:        inv.ClientID,
		Total:           inv.Total().Amount(),
		DueDate:         inv.DueDate,
	}
}

// InvoiceSentEvent is raised when a draft is issued to the client
type InvoiceSentEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	ClientID      uuid.UUID       `json:"client_id"`
	InvoiceNumber string          `json:"invoice_number"`
	IssueDate     time.Time       `json:"issue_date"`
	DueDate       time.Time       `json:"due_date"`
	Total         decimal.Decimal `json:"total"`
}

// EventType returns the event type name
func (e *InvoiceSentEvent) EventType() string {
	return "InvoiceSent"
}

// NewInvoiceSentEvent creates a new InvoiceSentEvent
func NewInvoiceSentEvent(inv *Invoice) *InvoiceSentEvent {
	issueDate := time.Now()
	if inv.IssueDate != nil {
		issueDate = *inv.IssueDate
	}
	return &InvoiceSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceSent", "Invoice", inv.ID, inv.OwnerID),
		InvoiceID:       inv.ID,
		ClientID:        inv.ClientID,
		InvoiceNumber:   inv.DisplayNumber(),
		IssueDate:       issueDate,
		DueDate:         inv.DueDate,
		Total:           inv.Total().Amount(),
	}
}

// InvoicePaidEvent is raised when a payment is recorded
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	InvoiceNumber  string          `json:"invoice_number"`
	PreviousStatus InvoiceStatus   `json:"previous_status"`
	PaymentDate    time.Time       `json:"payment_date"`
	Method         PaymentMethod   `json:"method"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	TransactionID  string          `json:"transaction_id,omitempty"`
}

// EventType returns the event type name
func (e *InvoicePaidEvent) EventType() string {
	return "InvoicePaid"
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice, previous InvoiceStatus) *InvoicePaidEvent {
	ev := &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoicePaid", "Invoice", inv.ID, inv.OwnerID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.DisplayNumber(),
		PreviousStatus:  previous,
		TransactionID:   inv.TransactionID,
	}
	if inv.PaymentDate != nil {
		ev.PaymentDate = *inv.PaymentDate
	}
	if inv.PaymentMethod != nil {
		ev.Method = *inv.PaymentMethod
	}
	if inv.AmountPaid != nil {
		ev.AmountPaid = *inv.AmountPaid
	}
	return ev
}

// InvoicePaymentRevertedEvent is raised when a recorded payment is undone
type InvoicePaymentRevertedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
}

// EventType returns the event type name
func (e *InvoicePaymentRevertedEvent) EventType() string {
	return "InvoicePaymentReverted"
}

// NewInvoicePaymentRevertedEvent creates a new InvoicePaymentRevertedEvent
func NewInvoicePaymentRevertedEvent(inv *Invoice) *InvoicePaymentRevertedEvent {
	return &InvoicePaymentRevertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoicePaymentReverted", "Invoice", inv.ID, inv.OwnerID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.DisplayNumber(),
	}
}

// InvoiceOverdueEvent is raised when the sweep moves an invoice past due
type InvoiceOverdueEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	ClientID      uuid.UUID       `json:"client_id"`
	InvoiceNumber string          `json:"invoice_number"`
	DueDate       time.Time       `json:"due_date"`
	Total         decimal.Decimal `json:"total"`
}

// EventType returns the event type name
func (e *InvoiceOverdueEvent) EventType() string {
	return "InvoiceOverdue"
}

// NewInvoiceOverdueEvent creates a new InvoiceOverdueEvent
func NewInvoiceOverdueEvent(inv *Invoice) *InvoiceOverdueEvent {
	return &InvoiceOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceOverdue", "Invoice", inv.ID, inv.OwnerID),
		InvoiceID:       inv.ID,
		ClientID:        inv.ClientID,
		InvoiceNumber:   inv.DisplayNumber(),
		DueDate:         inv.DueDate,
		Total:           inv.Total().Amount(),
	}
}

// InvoicePaymentIntentEvent is raised the first time the client
// confirms payment on the public page
type InvoicePaymentIntentEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}

// EventType returns the event type name
func (e *InvoicePaymentIntentEvent) EventType() string {
	return "InvoicePaymentIntent"
}

// NewInvoicePaymentIntentEvent creates a new InvoicePaymentIntentEvent
func NewInvoicePaymentIntentEvent(inv *Invoice) *InvoicePaymentIntentEvent {
	confirmedAt := time.Now()
	if inv.IntentAt != nil {
		confirmedAt = *inv.IntentAt
	}
	return &InvoicePaymentIntentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoicePaymentIntent", "Invoice", inv.ID, inv.OwnerID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.DisplayNumber(),
		ConfirmedAt:     confirmedAt,
	}
}
