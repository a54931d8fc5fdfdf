package document

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/invoiceapp/backend/internal/domain/billing"
	"github.com/invoiceapp/backend/internal/domain/identity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubRenderer struct {
	lastRequest *RenderRequest
	result      *RenderResult
	err         error
}

func (s *stubRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	s.lastRequest = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubRenderer) Close() error { return nil }

type stubOwnerRepo struct {
	owner *identity.Owner
}

func (s *stubOwnerRepo) FindByID(ctx context.Context, id uuid.UUID) (*identity.Owner, error) {
	return s.owner, nil
}
func (s *stubOwnerRepo) FindByEmail(ctx context.Context, email string) (*identity.Owner, error) {
	return s.owner, nil
}
func (s *stubOwnerRepo) FindAll(ctx context.Context) ([]identity.Owner, error) { return nil, nil }
func (s *stubOwnerRepo) Save(ctx context.Context, owner *identity.Owner) error { return nil }
func (s *stubOwnerRepo) Delete(ctx context.Context, id uuid.UUID) error        { return nil }

func sentInvoice(t *testing.T) (*billing.Invoice, *billing.Client) {
	t.Helper()
	ownerID := uuid.New()
	client, err := billing.NewClient(ownerID, "Acme Corp", "billing@acme.test", "Acme Holdings", "1 Main St", "", "")
	require.NoError(t, err)

	item, err := billing.NewInvoiceItem("Design work", 10, decimal.NewFromInt(150), 0)
	require.NoError(t, err)
	inv, err := billing.NewInvoice(ownerID, client.ID, "USD", time.Now().Add(14*24*time.Hour), []billing.InvoiceItem{*item}, "Payable within 14 days")
	require.NoError(t, err)
	require.NoError(t, inv.Send(42, time.Now()))
	return inv, client
}

func TestBuildInvoiceHTML(t *testing.T) {
	inv, client := sentInvoice(t)

	html, err := buildInvoiceHTML(inv, client, "Jane Doe Studio")

	require.NoError(t, err)
	assert.Contains(t, html, "INV-00042")
	assert.Contains(t, html, "Acme Corp")
	assert.Contains(t, html, "Acme Holdings")
	assert.Contains(t, html, "Jane Doe Studio")
	assert.Contains(t, html, "Design work")
	assert.Contains(t, html, "1500.00")
	assert.Contains(t, html, "Payable within 14 days")
	assert.Contains(t, html, "Total (USD)")
}

func TestBuildInvoiceHTML_EscapesContent(t *testing.T) {
	inv, client := sentInvoice(t)
	client.Name = `<script>alert("x")</script>`

	html, err := buildInvoiceHTML(inv, client, "")

	require.NoError(t, err)
	assert.NotContains(t, html, `<script>alert`)
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestInvoiceDocumentGenerator_RenderInvoice(t *testing.T) {
	inv, client := sentInvoice(t)
	owner, err := identity.NewOwner("owner@example.com", "some-password", "Jane Doe")
	require.NoError(t, err)
	require.NoError(t, owner.SetProfile("Jane Doe", "Jane Doe Studio", ""))

	renderer := &stubRenderer{result: &RenderResult{PDFData: []byte("%PDF-1.7")}}
	gen := NewInvoiceDocumentGenerator(renderer, &stubOwnerRepo{owner: owner}, zap.NewNop())

	pdf, err := gen.RenderInvoice(context.Background(), inv, client)

	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7"), pdf)
	require.NotNil(t, renderer.lastRequest)
	assert.Equal(t, "Invoice INV-00042", renderer.lastRequest.Title)
	assert.True(t, strings.Contains(renderer.lastRequest.HTML, "Jane Doe Studio"))
}

func TestInvoiceDocumentGenerator_RendererFailure(t *testing.T) {
	inv, client := sentInvoice(t)
	renderer := &stubRenderer{err: NewRenderError(ErrCodeRenderFailed, "boom", nil)}
	gen := NewInvoiceDocumentGenerator(renderer, nil, zap.NewNop())

	_, err := gen.RenderInvoice(context.Background(), inv, client)

	require.Error(t, err)
	var renderErr *RenderError
	assert.ErrorAs(t, err, &renderErr)
}
