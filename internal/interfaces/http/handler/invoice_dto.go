package handler

import (
	"time"

	"github.com/shopspring/decimal"
	billingapp "github.com/invoiceapp/backend/internal/application/billing"
)

// InvoiceItemRequest represents one invoice line in a request body
// @Description One invoice line item
type InvoiceItemRequest struct {
	Description string          `json:"description" binding:"required,min=1,max=500" example:"Consulting, March"`
	Quantity    int64           `json:"quantity" binding:"required,gt=0" example:"10"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required" example:"150.00"`
}

// CreateInvoiceRequest represents a request to create a draft invoice
// @Description Request body for creating a draft invoice
type CreateInvoiceRequest struct {
	ClientID string               `json:"client_id" binding:"required,uuid" example:"9f0c2f3e-5b7a-4c2d-8e1f-0a1b2c3d4e5f"`
	Currency string               `json:"currency" binding:"omitempty,len=3" example:"EUR"`
	DueDate  time.Time            `json:"due_date" binding:"required" example:"2026-10-01T00:00:00Z"`
	Items    []InvoiceItemRequest `json:"items" binding:"required,dive"`
	Notes    string               `json:"notes" binding:"max=2000"`
}

// UpdateInvoiceRequest represents a request to edit a draft invoice
// @Description Request body for editing a draft invoice
type UpdateInvoiceRequest struct {
	ClientID string               `json:"client_id" binding:"required,uuid"`
	Currency string               `json:"currency" binding:"omitempty,len=3"`
	DueDate  time.Time            `json:"due_date" binding:"required"`
	Items    []InvoiceItemRequest `json:"items" binding:"required,dive"`
	Notes    string               `json:"notes" binding:"max=2000"`
}

// MarkPaidRequest represents a request to record a payment
// @Description Request body for marking an invoice as paid
type MarkPaidRequest struct {
	Date          time.Time       `json:"date" binding:"required" example:"2026-09-15T00:00:00Z"`
	Method        string          `json:"method" binding:"required" example:"bank_transfer"`
	Amount        decimal.Decimal `json:"amount" example:"1500.00"`
	Notes         string          `json:"notes" binding:"max=2000"`
	TransactionID string          `json:"transaction_id" binding:"max=200"`
}

// ListInvoicesQuery holds the query parameters for listing invoices
type ListInvoicesQuery struct {
	Status          string `form:"status"`
	ClientID        string `form:"client_id"`
	IncludeArchived bool   `form:"include_archived"`
	Search          string `form:"search"`
	Page            int    `form:"page"`
	PageSize        int    `form:"page_size"`
	OrderBy         string `form:"order_by"`
	OrderDir        string `form:"order_dir"`
}

// toItemInputs converts request lines to application inputs
func toItemInputs(items []InvoiceItemRequest) []billingapp.InvoiceItemInput {
	inputs := make([]billingapp.InvoiceItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, billingapp.InvoiceItemInput{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return inputs
}
