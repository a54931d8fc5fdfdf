package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	appbilling "github.com/invoiceapp/backend/internal/application/billing"
	"go.uber.org/zap"
)

// EmailNotifier implements the billing notification port on top of a
// Mailer
type EmailNotifier struct {
	mailer Mailer
	logger *zap.Logger
}

// NewEmailNotifier creates a new EmailNotifier
func NewEmailNotifier(mailer Mailer, logger *zap.Logger) *EmailNotifier {
	return &EmailNotifier{
		mailer: mailer,
		logger: logger,
	}
}

type noticeTemplateData struct {
	Number     string
	ClientName string
	Total      string
	Currency   string
	DueDate    string
	PaymentURL string
}

var issuedTemplate = template.Must(template.New("issued").Parse(`
<p>Hello {{.ClientName}},</p>
<p>Invoice <strong>{{.Number}}</strong> for {{.Total}} {{.Currency}} has been issued to you.
It is due on {{.DueDate}}.</p>
{{if .PaymentURL}}<p>You can view the invoice and confirm your payment here:
<a href="{{.PaymentURL}}">{{.PaymentURL}}</a></p>{{end}}
<p>Thank you.</p>
`))

var reminderTemplate = template.Must(template.New("reminder").Parse(`
<p>Hello {{.ClientName}},</p>
<p>This is a reminder that invoice <strong>{{.Number}}</strong> for {{.Total}} {{.Currency}}
was due on {{.DueDate}} and is now overdue.</p>
{{if .PaymentURL}}<p>You can view the invoice here:
<a href="{{.PaymentURL}}">{{.PaymentURL}}</a></p>{{end}}
<p>Thank you.</p>
`))

var intentTemplate = template.Must(template.New("intent").Parse(`
<p>{{.ClientName}} has confirmed payment of invoice <strong>{{.Number}}</strong>
({{.Total}} {{.Currency}}) on the payment page.</p>
<p>Once the funds arrive, mark the invoice as paid in your dashboard.</p>
`))

// SendInvoiceIssued emails the issued invoice to the client, attaching
// the PDF when one was rendered
func (n *EmailNotifier) SendInvoiceIssued(ctx context.Context, notice appbilling.InvoiceNotice) error {
	body, err := renderNotice(issuedTemplate, notice)
	if err != nil {
		return err
	}

	msg := Message{
		To:       notice.Client.Email,
		Subject:  fmt.Sprintf("Invoice %s", notice.Invoice.DisplayNumber()),
		HTMLBody: body,
	}
	if len(notice.PDF) > 0 {
		msg.Attachments = append(msg.Attachments, Attachment{
			Filename:    fmt.Sprintf("%s.pdf", notice.Invoice.DisplayNumber()),
			ContentType: "application/pdf",
			Data:        notice.PDF,
		})
	}
	return n.mailer.Send(ctx, msg)
}

// SendOverdueReminder emails the client about an overdue invoice
func (n *EmailNotifier) SendOverdueReminder(ctx context.Context, notice appbilling.InvoiceNotice) error {
	body, err := renderNotice(reminderTemplate, notice)
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, Message{
		To:       notice.Client.Email,
		Subject:  fmt.Sprintf("Invoice %s is overdue", notice.Invoice.DisplayNumber()),
		HTMLBody: body,
	})
}

// SendPaymentIntentAlert emails the owner that a client confirmed
// payment on the public page
func (n *EmailNotifier) SendPaymentIntentAlert(ctx context.Context, notice appbilling.InvoiceNotice, ownerEmail string) error {
	body, err := renderNotice(intentTemplate, notice)
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, Message{
		To:       ownerEmail,
		Subject:  fmt.Sprintf("Payment confirmed for invoice %s", notice.Invoice.DisplayNumber()),
		HTMLBody: body,
	})
}

func renderNotice(tmpl *template.Template, notice appbilling.InvoiceNotice) (string, error) {
	total := notice.Invoice.Total()
	data := noticeTemplateData{
		Number:     notice.Invoice.DisplayNumber(),
		Total:      total.Amount().StringFixed(2),
		Currency:   string(notice.Invoice.Currency),
		DueDate:    notice.Invoice.DueDate.Format("Jan 2, 2006"),
		PaymentURL: notice.PaymentURL,
	}
	if notice.Client != nil {
		data.ClientName = notice.Client.Name
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render notification body: %w", err)
	}
	return buf.String(), nil
}

var _ appbilling.NotificationSender = (*EmailNotifier)(nil)
