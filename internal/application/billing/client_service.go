package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/invoiceapp/backend/internal/domain/billing"
	"github.com/invoiceapp/backend/internal/domain/shared"
	"github.com/invoiceapp/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ClientService manages an owner's billable clients
type ClientService struct {
	clientRepo  billing.ClientRepository
	invoiceRepo billing.InvoiceRepository
	logger      *zap.Logger
}

// NewClientService creates a new ClientService
func NewClientService(
	clientRepo billing.ClientRepository,
	invoiceRepo billing.InvoiceRepository,
	logger *zap.Logger,
) *ClientService {
	return &ClientService{
		clientRepo:  clientRepo,
		invoiceRepo: invoiceRepo,
		logger:      logger,
	}
}

// Create creates a new client
func (s *ClientService) Create(ctx context.Context, input CreateClientInput) (*ClientDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ClientService", "Create",
		telemetry.WithAttribute(telemetry.SpanAttrOwnerID, input.OwnerID.String()))
	defer span.End()

	client, err := billing.NewClient(input.OwnerID, input.Name, input.Email, input.Company, input.Address, input.Phone, input.Notes)
	if err != nil {
		return nil, err
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrClientID, client.ID.String())
	dto := NewClientDTO(client)
	return &dto, nil
}

// Update edits a client's details
func (s *ClientService) Update(ctx context.Context, input UpdateClientInput) (*ClientDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ClientService", "Update",
		telemetry.WithAttribute(telemetry.SpanAttrOwnerID, input.OwnerID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrClientID, input.ClientID.String()))
	defer span.End()

	client, err := s.clientRepo.FindByIDForOwner(ctx, input.OwnerID, input.ClientID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := client.Update(input.Name, input.Email, input.Company, input.Address, input.Phone, input.Notes); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	dto := NewClientDTO(client)
	return &dto, nil
}

// Get returns a single client scoped to the owner
func (s *ClientService) Get(ctx context.Context, ownerID, clientID uuid.UUID) (*ClientDTO, error) {
	client, err := s.clientRepo.FindByIDForOwner(ctx, ownerID, clientID)
	if err != nil {
		return nil, err
	}
	dto := NewClientDTO(client)
	return &dto, nil
}

// List returns a page of the owner's clients
func (s *ClientService) List(ctx context.Context, input ListClientsInput) (*shared.Paginated[ClientDTO], error) {
	filter := input.toDomainFilter()

	clients, err := s.clientRepo.FindAllForOwner(ctx, input.OwnerID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.clientRepo.CountForOwner(ctx, input.OwnerID, filter)
	if err != nil {
		return nil, err
	}

	dtos := make([]ClientDTO, 0, len(clients))
	for i := range clients {
		dtos = append(dtos, NewClientDTO(&clients[i]))
	}
	page := shared.NewPaginated(dtos, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Delete removes a client. A client with active unpaid invoices may
// not be deleted; drafts and settled history do not block removal.
func (s *ClientService) Delete(ctx context.Context, ownerID, clientID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "ClientService", "Delete",
		telemetry.WithAttribute(telemetry.SpanAttrOwnerID, ownerID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrClientID, clientID.String()))
	defer span.End()

	client, err := s.clientRepo.FindByIDForOwner(ctx, ownerID, clientID)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	unpaid, err := s.invoiceRepo.CountActiveUnpaidByClient(ctx, ownerID, client.ID)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if unpaid > 0 {
		s.logger.Info("client deletion blocked by unpaid invoices",
			zap.String("client_id", client.ID.String()),
			zap.Int64("unpaid_count", unpaid))
		return shared.ErrClientHasInvoices
	}

	return s.clientRepo.Delete(ctx, client.ID)
}
