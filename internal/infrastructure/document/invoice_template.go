package document

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/invoiceapp/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// invoiceTemplateData is the view model handed to the invoice template
type invoiceTemplateData struct {
	Number       string
	Status       string
	IssueDate    *time.Time
	DueDate      time.Time
	Currency     string
	Items        []billing.InvoiceItem
	Notes        string
	Total        decimal.Decimal
	ClientName   string
	ClientEmail  string
	ClientLines  []string
	BusinessName string
}

var invoiceFuncMap = template.FuncMap{
	"formatDate": func(t time.Time) string {
		return t.Format("Jan 2, 2006")
	},
	"formatDatePtr": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("Jan 2, 2006")
	},
	"formatAmount": func(d decimal.Decimal) string {
		return d.StringFixed(2)
	},
	"lineTotal": func(item billing.InvoiceItem) string {
		return item.LineTotal().StringFixed(2)
	},
}

var invoiceTemplate = template.Must(template.New("invoice").Funcs(invoiceFuncMap).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; color: #1a1a1a; font-size: 13px; margin: 0; }
  .head { display: flex; justify-content: space-between; margin-bottom: 32px; }
  .head h1 { font-size: 26px; margin: 0 0 4px; letter-spacing: 1px; }
  .meta { text-align: right; color: #555; }
  .party { margin-bottom: 28px; }
  .party .label { font-size: 11px; text-transform: uppercase; color: #888; margin-bottom: 4px; }
  table { width: 100%; border-collapse: collapse; margin-bottom: 24px; }
  th { text-align: left; font-size: 11px; text-transform: uppercase; color: #888;
       border-bottom: 2px solid #ddd; padding: 6px 8px; }
  th.num, td.num { text-align: right; }
  td { padding: 8px; border-bottom: 1px solid #eee; }
  .total-row td { border-bottom: none; font-weight: bold; font-size: 15px; padding-top: 14px; }
  .notes { color: #555; white-space: pre-wrap; margin-top: 24px; }
</style>
</head>
<body>
  <div class="head">
    <div>
      <h1>INVOICE</h1>
      <div>{{.Number}}</div>
    </div>
    <div class="meta">
      {{if .BusinessName}}<div><strong>{{.BusinessName}}</strong></div>{{end}}
      {{if .IssueDate}}<div>Issued {{formatDatePtr .IssueDate}}</div>{{end}}
      <div>Due {{formatDate .DueDate}}</div>
    </div>
  </div>

  <div class="party">
    <div class="label">Billed to</div>
    <div><strong>{{.ClientName}}</strong></div>
    {{range .ClientLines}}<div>{{.}}</div>{{end}}
    {{if .ClientEmail}}<div>{{.ClientEmail}}</div>{{end}}
  </div>

  <table>
    <thead>
      <tr>
        <th>Description</th>
        <th class="num">Qty</th>
        <th class="num">Unit price</th>
        <th class="num">Amount</th>
      </tr>
    </thead>
    <tbody>
      {{range .Items}}
      <tr>
        <td>{{.Description}}</td>
        <td class="num">{{.Quantity}}</td>
        <td class="num">{{formatAmount .UnitPrice}}</td>
        <td class="num">{{lineTotal .}}</td>
      </tr>
      {{end}}
      <tr class="total-row">
        <td colspan="3">Total ({{.Currency}})</td>
        <td class="num">{{formatAmount .Total}}</td>
      </tr>
    </tbody>
  </table>

  {{if .Notes}}<div class="notes">{{.Notes}}</div>{{end}}
</body>
</html>
`))

// buildInvoiceHTML renders the invoice document HTML
func buildInvoiceHTML(invoice *billing.Invoice, client *billing.Client, businessName string) (string, error) {
	data := invoiceTemplateData{
		Number:       invoice.DisplayNumber(),
		Status:       invoice.Status.String(),
		IssueDate:    invoice.IssueDate,
		DueDate:      invoice.DueDate,
		Currency:     string(invoice.Currency),
		Items:        invoice.Items,
		Notes:        invoice.Notes,
		Total:        invoice.Total().Amount(),
		BusinessName: businessName,
	}
	if client != nil {
		data.ClientName = client.Name
		data.ClientEmail = client.Email
		if client.Company != "" {
			data.ClientLines = append(data.ClientLines, client.Company)
		}
		if client.Address != "" {
			data.ClientLines = append(data.ClientLines, client.Address)
		}
	}

	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render invoice template: %w", err)
	}
	return buf.String(), nil
}
