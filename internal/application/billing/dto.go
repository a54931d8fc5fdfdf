package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoiceapp/backend/internal/domain/billing"
	"github.com/invoiceapp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceItemInput is one line of a draft being created or edited
type InvoiceItemInput struct {
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateInvoiceInput contains input for creating a draft invoice
type CreateInvoiceInput struct {
	OwnerID  uuid.UUID
	ClientID uuid.UUID
	Currency string
	DueDate  time.Time
	Items    []InvoiceItemInput
	Notes    string
}

// UpdateInvoiceInput contains input for editing a draft invoice
type UpdateInvoiceInput struct {
	OwnerID   uuid.UUID
	InvoiceID uuid.UUID
	ClientID  uuid.UUID
	Currency  string
	DueDate   time.Time
	Items     []InvoiceItemInput
	Notes     string
}

// ListInvoicesInput contains filter options for listing invoices
type ListInvoicesInput struct {
	OwnerID         uuid.UUID
	Status          *string
	ClientID        *uuid.UUID
	IncludeArchived bool
	Search          string
	Page            int
	PageSize        int
	OrderBy         string
	OrderDir        string
}

// MarkPaidInput contains the settlement details recorded on an invoice
type MarkPaidInput struct {
	OwnerID       uuid.UUID
	InvoiceID     uuid.UUID
	Date          time.Time
	Method        string
	Amount        decimal.Decimal
	Notes         string
	TransactionID string
}

// InvoiceItemDTO is one invoice line in API responses
type InvoiceItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Position    int             `json:"position"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// InvoiceDTO is the owner-facing invoice representation
type InvoiceDTO struct {
	ID            uuid.UUID        `json:"id"`
	ClientID      uuid.UUID        `json:"client_id"`
	Status        string           `json:"status"`
	Currency      string           `json:"currency"`
	Number        *int64           `json:"number,omitempty"`
	DisplayNumber string           `json:"display_number,omitempty"`
	IssueDate     *time.Time       `json:"issue_date,omitempty"`
	DueDate       time.Time        `json:"due_date"`
	Items         []InvoiceItemDTO `json:"items"`
	Notes         string           `json:"notes,omitempty"`
	Total         decimal.Decimal  `json:"total"`
	PaymentToken  string           `json:"payment_token,omitempty"`
	Archived      bool             `json:"archived"`
	ArchivedAt    *time.Time       `json:"archived_at,omitempty"`
	SentAt        *time.Time       `json:"sent_at,omitempty"`
	PaymentDate   *time.Time       `json:"payment_date,omitempty"`
	PaymentMethod *string          `json:"payment_method,omitempty"`
	AmountPaid    *decimal.Decimal `json:"amount_paid,omitempty"`
	PaymentNotes  string           `json:"payment_notes,omitempty"`
	TransactionID string           `json:"transaction_id,omitempty"`
	IntentAt      *time.Time       `json:"payment_intent_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	Version       int              `json:"version"`

	// Warnings reports side effects that failed after the state change
	// was already persisted, such as PDF rendering or email delivery.
	// The operation itself still succeeded.
	Warnings []string `json:"warnings,omitempty"`
}

// PublicInvoiceDTO is the representation served on the public payment
// page. It deliberately exposes no owner account internals.
type PublicInvoiceDTO struct {
	DisplayNumber   string           `json:"display_number"`
	Status          string           `json:"status"`
	Currency        string           `json:"currency"`
	IssueDate       *time.Time       `json:"issue_date,omitempty"`
	DueDate         time.Time        `json:"due_date"`
	Items           []InvoiceItemDTO `json:"items"`
	Notes           string           `json:"notes,omitempty"`
	Total           decimal.Decimal  `json:"total"`
	ClientName      string           `json:"client_name"`
	BusinessName    string           `json:"business_name,omitempty"`
	IntentConfirmed bool             `json:"intent_confirmed"`
}

// ClientDTO is the API representation of a client
type ClientDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   string    `json:"company,omitempty"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateClientInput contains input for creating a client
type CreateClientInput struct {
	OwnerID uuid.UUID
	Name    string
	Email   string
	Company string
	Address string
	Phone   string
	Notes   string
}

// UpdateClientInput contains input for updating a client
type UpdateClientInput struct {
	OwnerID  uuid.UUID
	ClientID uuid.UUID
	Name     string
	Email    string
	Company  string
	Address  string
	Phone    string
	Notes    string
}

// ListClientsInput contains filter options for listing clients
type ListClientsInput struct {
	OwnerID  uuid.UUID
	Search   string
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
}

// MetricSnapshotDTO is one historical metrics record
type MetricSnapshotDTO struct {
	ID               uuid.UUID       `json:"id"`
	Trigger          string          `json:"trigger"`
	InvoiceID        uuid.UUID       `json:"invoice_id"`
	CapturedAt       time.Time       `json:"captured_at"`
	Status           string          `json:"status"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	DraftCount       int64           `json:"draft_count"`
	SentCount        int64           `json:"sent_count"`
	OverdueCount     int64           `json:"overdue_count"`
	PaidCount        int64           `json:"paid_count"`
	RevenueTotal     decimal.Decimal `json:"revenue_total"`
	OutstandingTotal decimal.Decimal `json:"outstanding_total"`
}

// NewInvoiceItemDTO converts a domain invoice line to its DTO
func NewInvoiceItemDTO(item *billing.InvoiceItem) InvoiceItemDTO {
	return InvoiceItemDTO{
		ID:          item.ID,
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		Position:    item.Position,
		LineTotal:   item.LineTotal(),
	}
}

// NewInvoiceDTO converts a domain invoice to its DTO
func NewInvoiceDTO(inv *billing.Invoice) InvoiceDTO {
	items := make([]InvoiceItemDTO, 0, len(inv.Items))
	for i := range inv.Items {
		items = append(items, NewInvoiceItemDTO(&inv.Items[i]))
	}

	dto := InvoiceDTO{
		ID:            inv.ID,
		ClientID:      inv.ClientID,
		Status:        inv.Status.String(),
		Currency:      string(inv.Currency),
		Number:        inv.Number,
		DisplayNumber: inv.DisplayNumber(),
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		Items:         items,
		Notes:         inv.Notes,
		Total:         inv.Total().Amount(),
		PaymentToken:  inv.PaymentToken,
		Archived:      inv.Archived,
		ArchivedAt:    inv.ArchivedAt,
		SentAt:        inv.SentAt,
		PaymentDate:   inv.PaymentDate,
		AmountPaid:    inv.AmountPaid,
		PaymentNotes:  inv.PaymentNotes,
		TransactionID: inv.TransactionID,
		IntentAt:      inv.IntentAt,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
		Version:       inv.Version,
	}
	if inv.PaymentMethod != nil {
		method := string(*inv.PaymentMethod)
		dto.PaymentMethod = &method
	}
	return dto
}

// NewPublicInvoiceDTO builds the payment page representation
func NewPublicInvoiceDTO(inv *billing.Invoice, clientName, businessName string) PublicInvoiceDTO {
	items := make([]InvoiceItemDTO, 0, len(inv.Items))
	for i := range inv.Items {
		items = append(items, NewInvoiceItemDTO(&inv.Items[i]))
	}

	return PublicInvoiceDTO{
		DisplayNumber:   inv.DisplayNumber(),
		Status:          inv.Status.String(),
		Currency:        string(inv.Currency),
		IssueDate:       inv.IssueDate,
		DueDate:         inv.DueDate,
		Items:           items,
		Notes:           inv.Notes,
		Total:           inv.Total().Amount(),
		ClientName:      clientName,
		BusinessName:    businessName,
		IntentConfirmed: inv.IntentAt != nil,
	}
}

// NewClientDTO converts a domain client to its DTO
func NewClientDTO(c *billing.Client) ClientDTO {
	return ClientDTO{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Company:   c.Company,
		Address:   c.Address,
		Phone:     c.Phone,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// NewMetricSnapshotDTO converts a domain snapshot to its DTO
func NewMetricSnapshotDTO(s *billing.MetricSnapshot) MetricSnapshotDTO {
	return MetricSnapshotDTO{
		ID:               s.ID,
		Trigger:          string(s.Trigger),
		InvoiceID:        s.InvoiceID,
		CapturedAt:       s.CapturedAt,
		Status:           s.Status.String(),
		Amount:           s.Amount,
		Currency:         string(s.Currency),
		DraftCount:       s.DraftCount,
		SentCount:        s.SentCount,
		OverdueCount:     s.OverdueCount,
		PaidCount:        s.PaidCount,
		RevenueTotal:     s.RevenueTotal,
		OutstandingTotal: s.OutstandingTotal,
	}
}

// itemInputsToDomain converts line inputs to domain items with
// sequential positions, validating each line
func itemInputsToDomain(inputs []InvoiceItemInput) ([]billing.InvoiceItem, error) {
	items := make([]billing.InvoiceItem, 0, len(inputs))
	for pos, in := range inputs {
		item, err := billing.NewInvoiceItem(in.Description, in.Quantity, in.UnitPrice, pos)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

// toDomainFilter converts list input to the repository filter
func (in ListInvoicesInput) toDomainFilter() (billing.InvoiceFilter, error) {
	filter := billing.DefaultInvoiceFilter()
	if in.Page > 0 {
		filter.Page = in.Page
	}
	if in.PageSize > 0 {
		filter.PageSize = in.PageSize
	}
	if in.OrderBy != "" {
		filter.OrderBy = in.OrderBy
	}
	if in.OrderDir != "" {
		filter.OrderDir = in.OrderDir
	}
	filter.Search = in.Search
	filter.ClientID = in.ClientID
	filter.IncludeArchived = in.IncludeArchived

	if in.Status != nil && *in.Status != "" {
		status := billing.InvoiceStatus(*in.Status)
		if !status.IsValid() {
			return filter, shared.NewDomainError("INVALID_STATUS", "Unknown invoice status filter")
		}
		filter.Status = &status
	}
	return filter, nil
}

// toDomainFilter converts client list input to the shared filter
func (in ListClientsInput) toDomainFilter() shared.Filter {
	filter := shared.DefaultFilter()
	if in.Page > 0 {
		filter.Page = in.Page
	}
	if in.PageSize > 0 {
		filter.PageSize = in.PageSize
	}
	if in.OrderBy != "" {
		filter.OrderBy = in.OrderBy
	}
	if in.OrderDir != "" {
		filter.OrderDir = in.OrderDir
	}
	filter.Search = in.Search
	return filter
}
