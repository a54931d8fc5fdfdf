package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoiceapp/backend/internal/domain/billing"
	"github.com/invoiceapp/backend/internal/domain/shared"
	"github.com/invoiceapp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	OwnerAggregateModel
	ClientID      uuid.UUID              `gorm:"type:uuid;not null;index"`
	Status        billing.InvoiceStatus  `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Currency      valueobject.Currency   `gorm:"type:varchar(3);not null;default:'USD'"`
	Number        *int64                 `gorm:"uniqueIndex:idx_invoices_owner_number"`
	IssueDate     *time.Time             `gorm:"index"`
	DueDate       time.Time              `gorm:"not null;index"`
	Items         []InvoiceItemModel     `gorm:"foreignKey:InvoiceID;references:ID"`
	Notes         string                 `gorm:"type:text"`
	PaymentToken  string                 `gorm:"type:varchar(64);index"`
	Archived      bool                   `gorm:"not null;default:false;index"`
	ArchivedAt    *time.Time
	SentAt        *time.Time
	PaymentDate   *time.Time
	PaymentMethod *billing.PaymentMethod `gorm:"type:varchar(20)"`
	AmountPaid    *decimal.Decimal       `gorm:"type:decimal(18,4)"`
	PaymentNotes  string                 `gorm:"type:text"`
	TransactionID string                 `gorm:"type:varchar(200)"`
	IntentAt      *time.Time
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	inv := &billing.Invoice{
		OwnerAggregateRoot: shared.OwnerAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			OwnerID: m.OwnerID,
		},
		ClientID:      m.ClientID,
		Status:        m.Status,
		Currency:      m.Currency,
		Number:        m.Number,
		IssueDate:     m.IssueDate,
		DueDate:       m.DueDate,
		Notes:         m.Notes,
		PaymentToken:  m.PaymentToken,
		Archived:      m.Archived,
		ArchivedAt:    m.ArchivedAt,
		SentAt:        m.SentAt,
		PaymentDate:   m.PaymentDate,
		PaymentMethod: m.PaymentMethod,
		AmountPaid:    m.AmountPaid,
		PaymentNotes:  m.PaymentNotes,
		TransactionID: m.TransactionID,
		IntentAt:      m.IntentAt,
		Items:         make([]billing.InvoiceItem, len(m.Items)),
	}
	for i, item := range m.Items {
		inv.Items[i] = *item.ToDomain()
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainOwnerAggregateRoot(inv.OwnerAggregateRoot)
	m.ClientID = inv.ClientID
	m.Status = inv.Status
	m.Currency = inv.Currency
	m.Number = inv.Number
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.Notes = inv.Notes
	m.PaymentToken = inv.PaymentToken
	m.Archived = inv.Archived
	m.ArchivedAt = inv.ArchivedAt
	m.SentAt = inv.SentAt
	m.PaymentDate = inv.PaymentDate
	m.PaymentMethod = inv.PaymentMethod
	m.AmountPaid = inv.AmountPaid
	m.PaymentNotes = inv.PaymentNotes
	m.TransactionID = inv.TransactionID
	m.IntentAt = inv.IntentAt
	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i, item := range inv.Items {
		m.Items[i] = *InvoiceItemModelFromDomain(inv.ID, &item)
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice entity.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceItemModel is the persistence model for an invoice line item.
type InvoiceItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    int64           `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Position    int             `gorm:"not null;default:0"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain InvoiceItem.
func (m *InvoiceItemModel) ToDomain() *billing.InvoiceItem {
	return &billing.InvoiceItem{
		ID:          m.ID,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		Position:    m.Position,
	}
}

// InvoiceItemModelFromDomain creates a new persistence model from a domain InvoiceItem.
func InvoiceItemModelFromDomain(invoiceID uuid.UUID, i *billing.InvoiceItem) *InvoiceItemModel {
	return &InvoiceItemModel{
		ID:          i.ID,
		InvoiceID:   invoiceID,
		Description: i.Description,
		Quantity:    i.Quantity,
		UnitPrice:   i.UnitPrice,
		Position:    i.Position,
	}
}

// ClientModel is the persistence model for the Client aggregate root.
type ClientModel struct {
	OwnerAggregateModel
	Name    string `gorm:"type:varchar(200);not null;index"`
	Email   string `gorm:"type:varchar(255);not null"`
	Company string `gorm:"type:varchar(200)"`
	Address string `gorm:"type:text"`
	Phone   string `gorm:"type:varchar(50)"`
	Notes   string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client entity.
func (m *ClientModel) ToDomain() *billing.Client {
	return &billing.Client{
		OwnerAggregateRoot: shared.OwnerAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			OwnerID: m.OwnerID,
		},
		Name:    m.Name,
		Email:   m.Email,
		Company: m.Company,
		Address: m.Address,
		Phone:   m.Phone,
		Notes:   m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Client entity.
func (m *ClientModel) FromDomain(c *billing.Client) {
	m.FromDomainOwnerAggregateRoot(c.OwnerAggregateRoot)
	m.Name = c.Name
	m.Email = c.Email
	m.Company = c.Company
	m.Address = c.Address
	m.Phone = c.Phone
	m.Notes = c.Notes
}

// ClientModelFromDomain creates a new persistence model from a domain Client entity.
func ClientModelFromDomain(c *billing.Client) *ClientModel {
	m := &ClientModel{}
	m.FromDomain(c)
	return m
}

// MetricSnapshotModel is the persistence model for dashboard metric snapshots.
// Snapshots are append-only, so there is no version column.
type MetricSnapshotModel struct {
	BaseModel
	OwnerID          uuid.UUID             `gorm:"type:uuid;not null;index"`
	Trigger          billing.MetricTrigger `gorm:"type:varchar(20);not null"`
	InvoiceID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	CapturedAt       time.Time             `gorm:"not null;index"`
	Status           billing.InvoiceStatus `gorm:"type:varchar(20);not null"`
	Amount           decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	Currency         valueobject.Currency  `gorm:"type:varchar(3);not null"`
	DraftCount       int64                 `gorm:"not null;default:0"`
	SentCount        int64                 `gorm:"not null;default:0"`
	OverdueCount     int64                 `gorm:"not null;default:0"`
	PaidCount        int64                 `gorm:"not null;default:0"`
	RevenueTotal     decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	OutstandingTotal decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (MetricSnapshotModel) TableName() string {
	return "metric_snapshots"
}

// ToDomain converts the persistence model to a domain MetricSnapshot.
func (m *MetricSnapshotModel) ToDomain() *billing.MetricSnapshot {
	return &billing.MetricSnapshot{
		BaseEntity:       m.BaseModel.ToDomain(),
		OwnerID:          m.OwnerID,
		Trigger:          m.Trigger,
		InvoiceID:        m.InvoiceID,
		CapturedAt:       m.CapturedAt,
		Status:           m.Status,
		Amount:           m.Amount,
		Currency:         m.Currency,
		DraftCount:       m.DraftCount,
		SentCount:        m.SentCount,
		OverdueCount:     m.OverdueCount,
		PaidCount:        m.PaidCount,
		RevenueTotal:     m.RevenueTotal,
		OutstandingTotal: m.OutstandingTotal,
	}
}

// MetricSnapshotModelFromDomain creates a new persistence model from a domain MetricSnapshot.
func MetricSnapshotModelFromDomain(s *billing.MetricSnapshot) *MetricSnapshotModel {
	m := &MetricSnapshotModel{
		OwnerID:          s.OwnerID,
		Trigger:          s.Trigger,
		InvoiceID:        s.InvoiceID,
		CapturedAt:       s.CapturedAt,
		Status:           s.Status,
		Amount:           s.Amount,
		Currency:         s.Currency,
		DraftCount:       s.DraftCount,
		SentCount:        s.SentCount,
		OverdueCount:     s.OverdueCount,
		PaidCount:        s.PaidCount,
		RevenueTotal:     s.RevenueTotal,
		OutstandingTotal: s.OutstandingTotal,
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}

// NumberSequenceModel backs the per-owner invoice numbering sequence.
// One row per owner, incremented under a row lock at send time.
type NumberSequenceModel struct {
	OwnerID   uuid.UUID `gorm:"type:uuid;primary_key"`
	NextValue int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (NumberSequenceModel) TableName() string {
	return "invoice_number_sequences"
}
