package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invoiceapp/backend/internal/domain/billing"
	"github.com/invoiceapp/backend/internal/domain/identity"
	"github.com/invoiceapp/backend/internal/domain/shared"
	"github.com/invoiceapp/backend/internal/domain/shared/valueobject"
	"github.com/invoiceapp/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// InvoiceService orchestrates the invoice lifecycle
type InvoiceService struct {
	invoiceRepo  billing.InvoiceRepository
	clientRepo   billing.ClientRepository
	sequenceRepo billing.NumberSequenceRepository
	snapshotRepo billing.MetricSnapshotRepository
	ownerRepo    identity.OwnerRepository
	documents    DocumentGenerator
	notifier     NotificationSender
	events       shared.EventPublisher
	baseURL      string
	logger       *zap.Logger
}

// NewInvoiceService creates a new InvoiceService. documents, notifier
// and events may be nil when rendering, delivery or event publishing
// is disabled.
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	clientRepo billing.ClientRepository,
	sequenceRepo billing.NumberSequenceRepository,
	snapshotRepo billing.MetricSnapshotRepository,
	ownerRepo identity.OwnerRepository,
	documents DocumentGenerator,
	notifier NotificationSender,
	events shared.EventPublisher,
	baseURL string,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		clientRepo:   clientRepo,
		sequenceRepo: sequenceRepo,
		snapshotRepo: snapshotRepo,
		ownerRepo:    ownerRepo,
		documents:    documents,
		notifier:     notifier,
		events:       events,
		baseURL:      strings.TrimRight(baseURL, "/"),
		logger:       logger,
	}
}

// CreateDraft creates a new draft invoice
func (s *InvoiceService) CreateDraft(ctx context.Context, input CreateInvoiceInput) (*InvoiceDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceService", "CreateDraft",
		telemetry.WithAttribute(telemetry.SpanAttrOwnerID, input.OwnerID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrClientID, input.ClientID.String()))
	defer span.End()

	if _, err := s.clientRepo.FindByIDForOwner(ctx, input.OwnerID, input.ClientID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	currency, err := parseCurrency(input.Currency)
	if err != nil {
		return nil, err
	}
	items, err := itemInputsToDomain(input.Items)
	if err != nil {
		return nil, err
	}

	invoice, err := billing.NewInvoice(input.OwnerID, input.ClientID, currency, input.DueDate, items, input.Notes)
	if err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("failed to save draft invoice",
			zap.String("owner_id", input.OwnerID.String()),
			zap.Error(err))
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrInvoiceID, invoice.ID.String())
	s.publishEvents(ctx, invoice)

	dto := NewInvoiceDTO(invoice)
	return &dto, nil
}

// UpdateDraft edits a draft invoice's fields and lines
func (s *InvoiceService) UpdateDraft(ctx context.Context, input UpdateInvoiceInput) (*InvoiceDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceService", "UpdateDraft",
		telemetry.WithAttribute(telemetry.SpanAttrOwnerID, input.OwnerID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrInvoiceID, input.InvoiceID.String()))
	defer span.End()

	invoice, err := s.invoiceRepo.FindByIDForOwner(ctx, input.OwnerID, input.InvoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if _, err := s.clientRepo.FindByIDForOwner(ctx, input.OwnerID, input.ClientID); err != nil {
		return nil, err
	}

	currency, err := parseCurrency(input.Currency)
	if err != nil {
		return nil, err
	}
	items, err := itemInputsToDomain(input.Items)
	if err != nil {
		return nil, err
	}

	if err := invoice.UpdateDraft(input.ClientID, currency, input.DueDate, items, input.Notes); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	dto := NewInvoiceDTO(invoice)
	return &dto, nil
}

// Get returns a single invoice scoped to the owner
func (s *InvoiceService) Get(ctx context.Context, ownerID, invoiceID uuid.UUID) (*InvoiceDTO, error) {
	invoice, err := s.invoiceRepo.FindByIDForOwner(ctx, ownerID, invoiceID)
	if err != nil {
		return nil, err
	}
	dto := NewInvoiceDTO(invoice)
	return &dto, nil
}

// List returns a page of the owner's invoices
func (s *InvoiceService) List(ctx context.Context, input ListInvoicesInput) (*shared.Paginated[InvoiceDTO], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceService", "List",
		telemetry.WithAttribute(telemetry.SpanAttrOwnerID, input.OwnerID.String()))
	defer span.End()

	filter, err := input.toDomainFilter()
	if err != nil {
		return nil, err
	}

	invoices, err := s.invoiceRepo.FindAllForOwner(ctx, input.OwnerID, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	total, err := s.invoiceRepo.CountForOwner(ctx, input.OwnerID, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	dtos := make([]InvoiceDTO, 0, len(invoices))
	for i := range invoices {
		dtos = append(dtos, NewInvoiceDTO(&invoices[i]))
	}
	page := shared.NewPaginated(dtos, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Send issues a draft: it draws the owner's next sequence number,
// stamps the issue date and payment token, and persists the
// transition. When the number collides with one assigned by a
// concurrent send, it retries once with a fresh number.
func (s *InvoiceService) Send(ctx context.Context, ownerID, invoiceID uuid.UUID) (*InvoiceDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceService", "Send",
		telemetry.WithAttribute(telemetry.SpanAttrOwnerID, ownerID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrInvoiceID, invoiceID.String()))
	defer span.End()

	invoice, err := s.sendOnce(ctx, ownerID, invoiceID)
	if errors.Is(err, shared.ErrDuplicateNumber) {
		s.logger.Warn("invoice number collision, retrying with fresh number",
			zap.String("invoice_id", invoiceID.String()))
		invoice, err = s.sendOnce(ctx, ownerID, invoiceID)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceNumber, invoice.DisplayNumber(),
		telemetry.SpanAttrInvoiceStatus, invoice.Status.String())

	s.publishEvents(ctx, invoice)
	s.captureSnapshot(ctx, invoice, billing.MetricTriggerSent)
	warnings := s.deliverIssueNotice(ctx, invoice)

	dto := NewInvoiceDTO(invoice)
	dto.Warnings = warnings
	return &dto, nil
}

// sendOnce performs a single send attempt against a fresh aggregate
func (s *InvoiceService) sendOnce(ctx context.Context, ownerID, invoiceID uuid.UUID) (*billing.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByIDForOwner(ctx, ownerID, invoiceID)
	if err != nil {
		return nil, err
	}

	// Reject before drawing a number so failed sends do not consume
	// sequence values
	if !invoice.IsDraft() {
		return nil, billing.NewInvalidTransitionError(invoice.Status, billing.InvoiceStatusSent)
	}
	if len(invoice.Items) == 0 {
		return nil, shared.NewDomainError("EMPTY_INVOICE", "Cannot send an invoice without line items")
	}

	number, err := s.sequenceRepo.Next(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if err := invoice.Send(number, time.Now()); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// MarkPaid records settlement details on a SENT or OVERDUE invoice.
// A zero recorded amount defaults to the invoice total.
func (s *InvoiceService) MarkPaid(ctx context.Context, input MarkPaidInput) (*InvoiceDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceService", "MarkPaid",
		telemetry.WithAttribute(telemetry.SpanAttrOwnerID, input.OwnerID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrInvoiceID, input.InvoiceID.String()))
	defer span.End()

	invoice, err := s.invoiceRepo.FindByIDForOwner(ctx, input.OwnerID, input.InvoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	amount := input.Amount
	if amount.IsZero() {
		amount = invoice.Total().Amount()
	}

	err = invoice.MarkPaid(billing.PaymentDetails{
		Date:          input.Date,
		Method:        billing.PaymentMethod(input.Method),
		Amount:        amount,
		Notes:         input.Notes,
		TransactionID: input.TransactionID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrAmount, amount.String(),
		telemetry.SpanAttrCurrency, string(invoice.Currency))

	s.publishEvents(ctx, invoice)
	s.captureSnapshot(ctx, invoice, billing.MetricTriggerPaid)

	dto := NewInvoiceDTO(invoice)
	return &dto, nil
}

// RevertPayment undoes a recorded payment, returning the invoice to SENT
func (s *InvoiceService) RevertPayment(ctx context.Context, ownerID, invoiceID uuid.UUID) (*InvoiceDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceService", "RevertPayment",
		telemetry.WithAttribute(telemetry.SpanAttrOwnerID, ownerID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrInvoiceID, invoiceID.String()))
	defer span.End()

	invoice, err := s.invoiceRepo.FindByIDForOwner(ctx, ownerID, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := invoice.RevertToSent(); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, invoice)
	s.captureSnapshot(ctx, invoice, billing.MetricTriggerReverted)

	dto := NewInvoiceDTO(invoice)
	return &dto, nil
}

// Archive soft-deletes an invoice
func (s *InvoiceService) Archive(ctx context.Context, ownerID, invoiceID uuid.UUID) (*InvoiceDTO, error) {
	invoice, err := s.invoiceRepo.FindByIDForOwner(ctx, ownerID, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := invoice.Archive(); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}
	dto := NewInvoiceDTO(invoice)
	return &dto, nil
}

// Unarchive restores an archived invoice
func (s *InvoiceService) Unarchive(ctx context.Context, ownerID, invoiceID uuid.UUID) (*InvoiceDTO, error) {
	invoice, err := s.invoiceRepo.FindByIDForOwner(ctx, ownerID, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := invoice.Unarchive(); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}
	dto := NewInvoiceDTO(invoice)
	return &dto, nil
}

// Delete permanently removes a draft. Issued invoices are archived
// instead, never deleted.
func (s *InvoiceService) Delete(ctx context.Context, ownerID, invoiceID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceService", "Delete",
		telemetry.WithAttribute(telemetry.SpanAttrOwnerID, ownerID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrInvoiceID, invoiceID.String()))
	defer span.End()

	invoice, err := s.invoiceRepo.FindByIDForOwner(ctx, ownerID, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if !invoice.IsDraft() {
		return shared.NewDomainError("NOT_DRAFT", "Only draft invoices can be deleted")
	}
	return s.invoiceRepo.Delete(ctx, invoice.ID)
}

// RenderPDF renders the invoice document for download. Drafts render
// too so the owner can preview before sending.
func (s *InvoiceService) RenderPDF(ctx context.Context, ownerID, invoiceID uuid.UUID) ([]byte, string, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceService", "RenderPDF",
		telemetry.WithAttribute(telemetry.SpanAttrOwnerID, ownerID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrInvoiceID, invoiceID.String()))
	defer span.End()

	if s.documents == nil {
		return nil, "", shared.NewDomainError("RENDERING_DISABLED", "Document rendering is not configured")
	}

	invoice, err := s.invoiceRepo.FindByIDForOwner(ctx, ownerID, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, "", err
	}
	client, err := s.clientRepo.FindByID(ctx, invoice.ClientID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, "", err
	}

	pdf, err := s.documents.RenderInvoice(ctx, invoice, client)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("invoice PDF rendering failed",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err))
		return nil, "", shared.NewDomainError("RENDER_FAILED", "Failed to render invoice document")
	}

	name := invoice.DisplayNumber()
	if name == "" {
		name = "draft-" + invoice.ID.String()
	}
	return pdf, name + ".pdf", nil
}

// GetByToken serves the public payment page lookup. Archived invoices
// are indistinguishable from unknown tokens.
func (s *InvoiceService) GetByToken(ctx context.Context, token string) (*PublicInvoiceDTO, error) {
	invoice, err := s.invoiceRepo.FindByPaymentToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if invoice.Archived {
		return nil, shared.ErrNotFound
	}
	dto := s.publicDTO(ctx, invoice)
	return &dto, nil
}

// ConfirmPaymentIntent records the client's "I have paid" confirmation
// from the public page. The first confirmation sticks; later ones are
// acknowledged without effect.
func (s *InvoiceService) ConfirmPaymentIntent(ctx context.Context, token string) (*PublicInvoiceDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceService", "ConfirmPaymentIntent")
	defer span.End()

	invoice, err := s.invoiceRepo.FindByPaymentToken(ctx, token)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if invoice.Archived {
		return nil, shared.ErrNotFound
	}

	changed, err := invoice.ConfirmPaymentIntent(time.Now())
	if err != nil {
		return nil, err
	}

	if changed {
		if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		s.publishEvents(ctx, invoice)
		s.alertOwnerOfIntent(ctx, invoice)
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrInvoiceID, invoice.ID.String())
	dto := s.publicDTO(ctx, invoice)
	return &dto, nil
}

// PaymentURL returns the public payment page address for an invoice
func (s *InvoiceService) PaymentURL(invoice *billing.Invoice) string {
	if invoice.PaymentToken == "" {
		return ""
	}
	return fmt.Sprintf("%s/pay/%s", s.baseURL, invoice.PaymentToken)
}

// publicDTO assembles the payment page view, tolerating missing
// client or owner records
func (s *InvoiceService) publicDTO(ctx context.Context, invoice *billing.Invoice) PublicInvoiceDTO {
	var clientName, businessName string
	if client, err := s.clientRepo.FindByID(ctx, invoice.ClientID); err == nil {
		clientName = client.Name
	}
	if owner, err := s.ownerRepo.FindByID(ctx, invoice.OwnerID); err == nil {
		businessName = owner.BusinessName
		if businessName == "" {
			businessName = owner.Name
		}
	}
	return NewPublicInvoiceDTO(invoice, clientName, businessName)
}

// publishEvents flushes the aggregate's recorded events to the bus.
// Publishing failures never fail the transition that produced them.
func (s *InvoiceService) publishEvents(ctx context.Context, invoice *billing.Invoice) {
	if s.events == nil {
		invoice.ClearDomainEvents()
		return
	}
	events := invoice.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish invoice events",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err))
	}
	invoice.ClearDomainEvents()
}

// captureSnapshot stores a metrics snapshot after a lifecycle change.
// Snapshot failures never fail the transition that triggered them.
func (s *InvoiceService) captureSnapshot(ctx context.Context, invoice *billing.Invoice, trigger billing.MetricTrigger) {
	stats, err := loadDashboardStats(ctx, s.invoiceRepo, invoice.OwnerID, billing.DateRange{})
	if err != nil {
		s.logger.Warn("failed to compute metrics for snapshot",
			zap.String("owner_id", invoice.OwnerID.String()),
			zap.String("trigger", string(trigger)),
			zap.Error(err))
		return
	}
	snapshot := billing.NewMetricSnapshot(invoice, trigger, stats)
	if err := s.snapshotRepo.Save(ctx, snapshot); err != nil {
		s.logger.Warn("failed to store metric snapshot",
			zap.String("owner_id", invoice.OwnerID.String()),
			zap.String("trigger", string(trigger)),
			zap.Error(err))
	}
}

// deliverIssueNotice renders and emails the issued invoice. Both steps
// are best-effort: the invoice is already SENT and stays SENT. The
// returned warnings describe what failed so the caller can surface a
// partial success.
func (s *InvoiceService) deliverIssueNotice(ctx context.Context, invoice *billing.Invoice) []string {
	if s.notifier == nil {
		return nil
	}

	var warnings []string

	client, err := s.clientRepo.FindByID(ctx, invoice.ClientID)
	if err != nil {
		s.logger.Warn("cannot deliver invoice, client lookup failed",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err))
		return []string{"invoice issued but the email could not be delivered"}
	}

	var pdf []byte
	if s.documents != nil {
		pdf, err = s.documents.RenderInvoice(ctx, invoice, client)
		if err != nil {
			s.logger.Warn("invoice PDF rendering failed, sending without attachment",
				zap.String("invoice_id", invoice.ID.String()),
				zap.Error(err))
			pdf = nil
			warnings = append(warnings, "invoice PDF could not be rendered, email sent without attachment")
		}
	}

	notice := InvoiceNotice{
		Invoice:    invoice,
		Client:     client,
		PaymentURL: s.PaymentURL(invoice),
		PDF:        pdf,
	}
	if err := s.notifier.SendInvoiceIssued(ctx, notice); err != nil {
		s.logger.Warn("failed to send invoice email",
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("client_email", client.Email),
			zap.Error(err))
		warnings = append(warnings, "invoice issued but the email could not be delivered")
	}
	return warnings
}

// alertOwnerOfIntent notifies the owner that a client confirmed
// payment on the public page. Best-effort.
func (s *InvoiceService) alertOwnerOfIntent(ctx context.Context, invoice *billing.Invoice) {
	if s.notifier == nil {
		return
	}

	owner, err := s.ownerRepo.FindByID(ctx, invoice.OwnerID)
	if err != nil {
		s.logger.Warn("cannot alert owner of payment intent, owner lookup failed",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err))
		return
	}

	client, _ := s.clientRepo.FindByID(ctx, invoice.ClientID)
	notice := InvoiceNotice{Invoice: invoice, Client: client}
	if err := s.notifier.SendPaymentIntentAlert(ctx, notice, owner.Email); err != nil {
		s.logger.Warn("failed to send payment intent alert",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err))
	}
}

// parseCurrency maps an input code to a supported currency, defaulting
// when empty
func parseCurrency(code string) (valueobject.Currency, error) {
	if code == "" {
		return valueobject.DefaultCurrency, nil
	}
	return valueobject.ParseCurrency(code)
}
