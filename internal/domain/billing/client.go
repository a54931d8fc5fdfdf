package billing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invoiceapp/backend/internal/domain/shared"
)

// Client represents a billable customer of an owner account.
// Clients are referenced by invoices and may not be deleted while
// they still have unpaid issued invoices.
type Client struct {
	shared.OwnerAggregateRoot
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Notes   string `json:"notes"`
}

// NewClient creates a new client for an owner
func NewClient(ownerID uuid.UUID, name, email, company, address, phone, notes string) (*Client, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner ID cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_CLIENT_NAME", "Client name cannot be empty")
	}
	if strings.TrimSpace(email) == "" {
		return nil, shared.NewDomainError("INVALID_CLIENT_EMAIL", "Client email cannot be empty")
	}

	return &Client{
		OwnerAggregateRoot: shared.NewOwnerAggregateRoot(ownerID),
		Name:               name,
		Email:              email,
		Company:            company,
		Address:            address,
		Phone:              phone,
		Notes:              notes,
	}, nil
}

// Update replaces the client's editable details
func (c *Client) Update(name, email, company, address, phone, notes string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_CLIENT_NAME", "Client name cannot be empty")
	}
	if strings.TrimSpace(email) == "" {
		return shared.NewDomainError("INVALID_CLIENT_EMAIL", "Client email cannot be empty")
	}

	c.Name = name
	c.Email = email
	c.Company = company
	c.Address = address
	c.Phone = phone
	c.Notes = notes
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}
