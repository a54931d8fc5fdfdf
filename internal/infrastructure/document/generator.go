package document

import (
	"context"
	"fmt"

	appbilling "github.com/invoiceapp/backend/internal/application/billing"
	"github.com/invoiceapp/backend/internal/domain/billing"
	"github.com/invoiceapp/backend/internal/domain/identity"
	"go.uber.org/zap"
)

// InvoiceDocumentGenerator turns invoices into PDF documents through a
// PDFRenderer
type InvoiceDocumentGenerator struct {
	renderer  PDFRenderer
	ownerRepo identity.OwnerRepository
	logger    *zap.Logger
}

// NewInvoiceDocumentGenerator creates a new InvoiceDocumentGenerator.
// ownerRepo supplies the business name printed on the document; it may
// be nil, in which case the header is omitted.
func NewInvoiceDocumentGenerator(renderer PDFRenderer, ownerRepo identity.OwnerRepository, logger *zap.Logger) *InvoiceDocumentGenerator {
	return &InvoiceDocumentGenerator{
		renderer:  renderer,
		ownerRepo: ownerRepo,
		logger:    logger,
	}
}

// RenderInvoice builds the invoice HTML and prints it to PDF
func (g *InvoiceDocumentGenerator) RenderInvoice(ctx context.Context, invoice *billing.Invoice, client *billing.Client) ([]byte, error) {
	var businessName string
	if g.ownerRepo != nil {
		if owner, err := g.ownerRepo.FindByID(ctx, invoice.OwnerID); err == nil {
			businessName = owner.BusinessName
			if businessName == "" {
				businessName = owner.Name
			}
		} else {
			g.logger.Warn("owner lookup failed for invoice document",
				zap.String("invoice_id", invoice.ID.String()),
				zap.Error(err))
		}
	}

	html, err := buildInvoiceHTML(invoice, client, businessName)
	if err != nil {
		return nil, err
	}

	result, err := g.renderer.Render(ctx, &RenderRequest{
		HTML:  html,
		Title: fmt.Sprintf("Invoice %s", invoice.DisplayNumber()),
	})
	if err != nil {
		return nil, err
	}
	return result.PDFData, nil
}

var _ appbilling.DocumentGenerator = (*InvoiceDocumentGenerator)(nil)
