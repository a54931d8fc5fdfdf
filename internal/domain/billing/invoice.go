package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invoiceapp/backend/internal/domain/shared"
	"github.com/invoiceapp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "DRAFT"   // Editable, no number, no issue date
	InvoiceStatusSent    InvoiceStatus = "SENT"    // Issued to the client, awaiting payment
	InvoiceStatusOverdue InvoiceStatus = "OVERDUE" // Sent and past its due date
	InvoiceStatusPaid    InvoiceStatus = "PAID"    // Payment recorded
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusOverdue, InvoiceStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsOutstanding returns true for statuses that count toward the
// outstanding balance (issued but not yet paid)
func (s InvoiceStatus) IsOutstanding() bool {
	return s == InvoiceStatusSent || s == InvoiceStatusOverdue
}

// CanRecordPayment returns true if a payment may be recorded in this status
func (s InvoiceStatus) CanRecordPayment() bool {
	return s == InvoiceStatusSent || s == InvoiceStatusOverdue
}

// AllInvoiceStatuses returns every lifecycle status in a stable order
func AllInvoiceStatuses() []InvoiceStatus {
	return []InvoiceStatus{InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusOverdue, InvoiceStatusPaid}
}

// NewInvalidTransitionError reports a disallowed status change naming
// both ends of the attempted move. It matches shared.ErrInvalidTransition
// under errors.Is.
func NewInvalidTransitionError(current, requested InvoiceStatus) *shared.DomainError {
	return shared.NewDomainError("INVALID_STATE_TRANSITION",
		fmt.Sprintf("Cannot transition invoice from %s to %s", current, requested))
}

// PaymentMethod represents how an invoice was settled
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodBankTransfer, PaymentMethodCard, PaymentMethodCash, PaymentMethodOther:
		return true
	}
	return false
}

// InvoiceNumberFormat is the display format for assigned invoice numbers
const InvoiceNumberFormat = "INV-%05d"

// FormatInvoiceNumber renders a sequence value as a display number
func FormatInvoiceNumber(seq int64) string {
	return fmt.Sprintf(InvoiceNumberFormat, seq)
}

// InvoiceItem is a line on an invoice. It is an entity within the
// Invoice aggregate; its identity is preserved across draft edits when
// the description, quantity and unit price all match.
type InvoiceItem struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Position    int             `json:"position"`
}

// NewInvoiceItem creates a new invoice line
func NewInvoiceItem(description string, quantity int64, unitPrice decimal.Decimal, position int) (*InvoiceItem, error) {
	if strings.TrimSpace(description) == "" {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item description cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item unit price cannot be negative")
	}
	return &InvoiceItem{
		ID:          uuid.New(),
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Position:    position,
	}, nil
}

// LineTotal returns quantity times unit price
func (i *InvoiceItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}

// matches reports whether another line carries the same content.
// Used during draft reconciliation to keep stable line IDs.
func (i *InvoiceItem) matches(description string, quantity int64, unitPrice decimal.Decimal) bool {
	return i.Description == description && i.Quantity == quantity && i.UnitPrice.Equal(unitPrice)
}

// PaymentDetails captures the settlement information recorded when an
// invoice is marked paid
type PaymentDetails struct {
	Date          time.Time
	Method        PaymentMethod
	Amount        decimal.Decimal
	Notes         string
	TransactionID string
}

// Invoice is the aggregate root of the billing domain. It owns its
// line items and enforces every status transition; the total is always
// derived from the lines and never stored independently.
type Invoice struct {
	shared.OwnerAggregateRoot
	ClientID      uuid.UUID            `json:"client_id"`
	Status        InvoiceStatus        `json:"status"`
	Currency      valueobject.Currency `json:"currency"`
	Number        *int64               `json:"number"`     // Assigned at send time, nil for drafts
	IssueDate     *time.Time           `json:"issue_date"` // Set at send time
	DueDate       time.Time            `json:"due_date"`
	Items         []InvoiceItem        `json:"items"`
	Notes         string               `json:"notes"`
	PaymentToken  string               `json:"payment_token"` // Opaque token for the public payment page
	Archived      bool                 `json:"archived"`
	ArchivedAt    *time.Time           `json:"archived_at"`
	SentAt        *time.Time           `json:"sent_at"`
	PaymentDate   *time.Time           `json:"payment_date"`
	PaymentMethod *PaymentMethod       `json:"payment_method"`
	AmountPaid    *decimal.Decimal     `json:"amount_paid"` // Amount actually received, may differ from total
	PaymentNotes  string               `json:"payment_notes"`
	TransactionID string               `json:"transaction_id"`
	IntentAt      *time.Time           `json:"payment_intent_at"` // First client "I have paid" confirmation
}

// NewInvoice creates a new draft invoice for an owner
func NewInvoice(ownerID, clientID uuid.UUID, currency valueobject.Currency, dueDate time.Time, items []InvoiceItem, notes string) (*Invoice, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner ID cannot be empty")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	if dueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date is required")
	}

	inv := &Invoice{
		OwnerAggregateRoot: shared.NewOwnerAggregateRoot(ownerID),
		ClientID:           clientID,
		Status:             InvoiceStatusDraft,
		Currency:           currency,
		DueDate:            dueDate,
		Items:              items,
		Notes:              notes,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// Total returns the invoice total derived from its lines.
// A nil or empty item list totals zero.
func (inv *Invoice) Total() valueobject.Money {
	sum := decimal.Zero
	for i := range inv.Items {
		sum = sum.Add(inv.Items[i].LineTotal())
	}
	m, _ := valueobject.NewMoney(sum, inv.Currency)
	return m
}

// DisplayNumber returns the formatted invoice number, or empty for drafts
func (inv *Invoice) DisplayNumber() string {
	if inv.Number == nil {
		return ""
	}
	return FormatInvoiceNumber(*inv.Number)
}

// IsDraft returns true while the invoice has not been sent
func (inv *Invoice) IsDraft() bool {
	return inv.Status == InvoiceStatusDraft
}

// IsPaid returns true once a payment has been recorded
func (inv *Invoice) IsPaid() bool {
	return inv.Status == InvoiceStatusPaid
}

// IsActive returns true when the invoice has not been archived
func (inv *Invoice) IsActive() bool {
	return !inv.Archived
}

// UpdateDraft replaces the editable fields of a draft. Incoming lines
// that carry the same description, quantity and unit price as an
// existing line keep that line's ID; everything else gets a new one.
// Only drafts may be edited.
func (inv *Invoice) UpdateDraft(clientID uuid.UUID, currency valueobject.Currency, dueDate time.Time, items []InvoiceItem, notes string) error {
	if inv.Status != InvoiceStatusDraft {
		return NewInvalidTransitionError(inv.Status, InvoiceStatusDraft)
	}
	if clientID == uuid.Nil {
		return shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if dueDate.IsZero() {
		return shared.NewDomainError("INVALID_DUE_DATE", "Due date is required")
	}
	if currency == "" {
		currency = inv.Currency
	}

	inv.Items = inv.reconcileItems(items)
	inv.ClientID = clientID
	inv.Currency = currency
	inv.DueDate = dueDate
	inv.Notes = notes
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	return nil
}

// reconcileItems maps incoming lines onto the current ones, reusing
// the ID of at most one unconsumed matching line per incoming line.
func (inv *Invoice) reconcileItems(incoming []InvoiceItem) []InvoiceItem {
	consumed := make(map[uuid.UUID]bool, len(inv.Items))
	result := make([]InvoiceItem, 0, len(incoming))

	for pos := range incoming {
		item := incoming[pos]
		item.Position = pos
		matched := false
		for j := range inv.Items {
			existing := &inv.Items[j]
			if consumed[existing.ID] {
				continue
			}
			if existing.matches(item.Description, item.Quantity, item.UnitPrice) {
				item.ID = existing.ID
				consumed[existing.ID] = true
				matched = true
				break
			}
		}
		if !matched {
			item.ID = uuid.New()
		}
		result = append(result, item)
	}

	return result
}

// Send issues a draft: assigns the sequence number, stamps the issue
// date and generates the payment page token. Only drafts can be sent.
func (inv *Invoice) Send(number int64, issueDate time.Time) error {
	if inv.Status != InvoiceStatusDraft {
		return NewInvalidTransitionError(inv.Status, InvoiceStatusSent)
	}
	if number <= 0 {
		return shared.NewDomainError("INVALID_NUMBER", "Invoice number must be positive")
	}
	if len(inv.Items) == 0 {
		return shared.NewDomainError("EMPTY_INVOICE", "Cannot send an invoice without line items")
	}

	now := time.Now()
	inv.Number = &number
	inv.IssueDate = &issueDate
	inv.PaymentToken = uuid.NewString()
	inv.SentAt = &now
	inv.Status = InvoiceStatusSent
	inv.UpdatedAt = now
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceSentEvent(inv))

	return nil
}

// MarkPaid records settlement details. Allowed from SENT and OVERDUE.
// The payment date must not precede the issue date.
func (inv *Invoice) MarkPaid(p PaymentDetails) error {
	if !inv.Status.CanRecordPayment() {
		return NewInvalidTransitionError(inv.Status, InvoiceStatusPaid)
	}
	if !p.Method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}
	if p.Date.IsZero() {
		return shared.NewDomainError("INVALID_PAYMENT_DATE", "Payment date is required")
	}
	if inv.IssueDate != nil && p.Date.Before(startOfDay(*inv.IssueDate)) {
		return shared.ErrInvalidPaymentDate
	}
	if p.Amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Recorded amount cannot be negative")
	}

	amount := p.Amount
	previousStatus := inv.Status
	inv.Status = InvoiceStatusPaid
	inv.PaymentDate = &p.Date
	inv.PaymentMethod = &p.Method
	inv.AmountPaid = &amount
	inv.PaymentNotes = p.Notes
	inv.TransactionID = p.TransactionID
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoicePaidEvent(inv, previousStatus))

	return nil
}

// RevertToSent undoes a payment recording, clearing every payment
// field and returning the invoice to SENT. Only paid invoices revert.
func (inv *Invoice) RevertToSent() error {
	if inv.Status != InvoiceStatusPaid {
		return NewInvalidTransitionError(inv.Status, InvoiceStatusSent)
	}

	inv.Status = InvoiceStatusSent
	inv.PaymentDate = nil
	inv.PaymentMethod = nil
	inv.AmountPaid = nil
	inv.PaymentNotes = ""
	inv.TransactionID = ""
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoicePaymentRevertedEvent(inv))

	return nil
}

// MarkOverdue flips a SENT invoice past its due date to OVERDUE.
// The reference date is compared at day granularity: an invoice due
// today is not overdue. Calling it on an already OVERDUE invoice is a
// no-op so the sweep stays idempotent.
func (inv *Invoice) MarkOverdue(today time.Time) error {
	if inv.Status == InvoiceStatusOverdue {
		return nil
	}
	if inv.Status != InvoiceStatusSent {
		return NewInvalidTransitionError(inv.Status, InvoiceStatusOverdue)
	}
	if !startOfDay(inv.DueDate).Before(startOfDay(today)) {
		return shared.NewDomainError("NOT_PAST_DUE", "Invoice due date has not passed")
	}

	inv.Status = InvoiceStatusOverdue
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceOverdueEvent(inv))

	return nil
}

// ConfirmPaymentIntent records the first time the client confirmed
// payment on the public page. Subsequent confirmations are no-ops.
// Returns true when this call set the timestamp.
func (inv *Invoice) ConfirmPaymentIntent(at time.Time) (bool, error) {
	if inv.Status == InvoiceStatusDraft {
		return false, shared.ErrInvalidTransition
	}
	if inv.IntentAt != nil {
		return false, nil
	}

	inv.IntentAt = &at
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoicePaymentIntentEvent(inv))

	return true, nil
}

// Archive soft-deletes the invoice. Archived invoices are excluded
// from listings, sweeps and aggregates unless explicitly requested.
func (inv *Invoice) Archive() error {
	if inv.Archived {
		return shared.NewDomainError("ALREADY_ARCHIVED", "Invoice is already archived")
	}

	now := time.Now()
	inv.Archived = true
	inv.ArchivedAt = &now
	inv.UpdatedAt = now
	inv.IncrementVersion()

	return nil
}

// Unarchive restores an archived invoice
func (inv *Invoice) Unarchive() error {
	if !inv.Archived {
		return shared.NewDomainError("NOT_ARCHIVED", "Invoice is not archived")
	}

	inv.Archived = false
	inv.ArchivedAt = nil
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	return nil
}

// startOfDay truncates a timestamp to midnight in its own location
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
