package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/invoiceapp/backend/internal/domain/billing"
	"github.com/invoiceapp/backend/internal/domain/identity"
	"github.com/invoiceapp/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// Mock implementations

type mockInvoiceRepository struct {
	mock.Mock
}

func (m *mockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *mockInvoiceRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *mockInvoiceRepository) FindByPaymentToken(ctx context.Context, token string) (*billing.Invoice, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *mockInvoiceRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *mockInvoiceRepository) CountForOwner(ctx context.Context, ownerID uuid.UUID, filter billing.InvoiceFilter) (int64, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *mockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *mockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockInvoiceRepository) FindSweepBatch(ctx context.Context, before time.Time, limit int) ([]billing.Invoice, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *mockInvoiceRepository) CountActiveUnpaidByClient(ctx context.Context, ownerID, clientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID, clientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockInvoiceRepository) CountByStatus(ctx context.Context, ownerID uuid.UUID, rng billing.DateRange) ([]billing.StatusCountRow, error) {
	args := m.Called(ctx, ownerID, rng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.StatusCountRow), args.Error(1)
}

func (m *mockInvoiceRepository) SumTotalsByCurrency(ctx context.Context, ownerID uuid.UUID, statuses []billing.InvoiceStatus, rng billing.DateRange) ([]billing.CurrencyTotalRow, error) {
	args := m.Called(ctx, ownerID, statuses, rng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.CurrencyTotalRow), args.Error(1)
}

func (m *mockInvoiceRepository) MaxNumberForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

type mockClientRepository struct {
	mock.Mock
}

func (m *mockClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Client), args.Error(1)
}

func (m *mockClientRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*billing.Client, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Client), args.Error(1)
}

func (m *mockClientRepository) FindByEmailForOwner(ctx context.Context, ownerID uuid.UUID, email string) (*billing.Client, error) {
	args := m.Called(ctx, ownerID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Client), args.Error(1)
}

func (m *mockClientRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]billing.Client, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Client), args.Error(1)
}

func (m *mockClientRepository) CountForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockClientRepository) Save(ctx context.Context, client *billing.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *mockClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockSequenceRepository struct {
	mock.Mock
}

func (m *mockSequenceRepository) Next(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

type mockSnapshotRepository struct {
	mock.Mock
}

func (m *mockSnapshotRepository) Save(ctx context.Context, snapshot *billing.MetricSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *mockSnapshotRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]billing.MetricSnapshot, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.MetricSnapshot), args.Error(1)
}

type mockOwnerRepository struct {
	mock.Mock
}

func (m *mockOwnerRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Owner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Owner), args.Error(1)
}

func (m *mockOwnerRepository) FindByEmail(ctx context.Context, email string) (*identity.Owner, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Owner), args.Error(1)
}

func (m *mockOwnerRepository) FindAll(ctx context.Context) ([]identity.Owner, error) {
	args := m.Called(ctx)
	return args.Get(0).([]identity.Owner), args.Error(1)
}

func (m *mockOwnerRepository) Save(ctx context.Context, owner *identity.Owner) error {
	args := m.Called(ctx, owner)
	return args.Error(0)
}

func (m *mockOwnerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendInvoiceIssued(ctx context.Context, notice InvoiceNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

func (m *mockNotifier) SendOverdueReminder(ctx context.Context, notice InvoiceNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

func (m *mockNotifier) SendPaymentIntentAlert(ctx context.Context, notice InvoiceNotice, ownerEmail string) error {
	args := m.Called(ctx, notice, ownerEmail)
	return args.Error(0)
}

type mockDocumentGenerator struct {
	mock.Mock
}

func (m *mockDocumentGenerator) RenderInvoice(ctx context.Context, invoice *billing.Invoice, client *billing.Client) ([]byte, error) {
	args := m.Called(ctx, invoice, client)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
