package billing

import (
	"context"

	"github.com/invoiceapp/backend/internal/domain/billing"
)

// InvoiceNotice bundles everything a notification about an invoice
// needs. PDF is nil when document rendering is disabled or failed;
// senders must cope with its absence.
type InvoiceNotice struct {
	Invoice    *billing.Invoice
	Client     *billing.Client
	PaymentURL string
	PDF        []byte
}

// DocumentGenerator renders an invoice into a printable document
type DocumentGenerator interface {
	RenderInvoice(ctx context.Context, invoice *billing.Invoice, client *billing.Client) ([]byte, error)
}

// NotificationSender delivers invoice lifecycle notifications.
// Implementations must not block the lifecycle transition: callers
// treat every error as non-fatal.
type NotificationSender interface {
	SendInvoiceIssued(ctx context.Context, notice InvoiceNotice) error
	SendOverdueReminder(ctx context.Context, notice InvoiceNotice) error
	SendPaymentIntentAlert(ctx context.Context, notice InvoiceNotice, ownerEmail string) error
}
