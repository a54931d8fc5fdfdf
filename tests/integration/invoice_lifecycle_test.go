package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	billingapp "github.com/invoiceapp/backend/internal/application/billing"
	"github.com/invoiceapp/backend/internal/domain/billing"
	"github.com/invoiceapp/backend/internal/domain/shared"
	"github.com/invoiceapp/backend/internal/infrastructure/event"
	"github.com/invoiceapp/backend/internal/infrastructure/persistence"
	"github.com/invoiceapp/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// lifecycleEnv wires the application services against a real database
type lifecycleEnv struct {
	invoices  *billingapp.InvoiceService
	clients   *billingapp.ClientService
	dashboard *billingapp.DashboardService
	sweeper   *billingapp.OverdueSweeper
	bus       *event.InMemoryEventBus
	handler   *testutil.MockEventHandler
	testDB    *TestDB
}

func newLifecycleEnv(t *testing.T) *lifecycleEnv {
	t.Helper()

	testDB := NewTestDB(t)
	logger := zap.NewNop()

	invoiceRepo := persistence.NewGormInvoiceRepository(testDB.DB)
	clientRepo := persistence.NewGormClientRepository(testDB.DB)
	sequenceRepo := persistence.NewGormNumberSequenceRepository(testDB.DB)
	snapshotRepo := persistence.NewGormMetricSnapshotRepository(testDB.DB)
	ownerRepo := persistence.NewGormOwnerRepository(testDB.DB)

	bus := event.NewInMemoryEventBus(logger)
	handler := testutil.NewMockEventHandler(
		"InvoiceCreated",
		"InvoiceSent",
		"InvoicePaid",
		"InvoicePaymentReverted",
		"InvoiceOverdue",
		"InvoicePaymentIntent",
	)
	bus.Subscribe(handler, handler.EventTypes()...)
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() {
		bus.Stop(context.Background())
	})

	return &lifecycleEnv{
		invoices: billingapp.NewInvoiceService(invoiceRepo, clientRepo, sequenceRepo,
			snapshotRepo, ownerRepo, nil, nil, bus, "http://localhost:8080", logger),
		clients:   billingapp.NewClientService(clientRepo, invoiceRepo, logger),
		dashboard: billingapp.NewDashboardService(invoiceRepo, snapshotRepo, logger),
		sweeper: billingapp.NewOverdueSweeper(invoiceRepo, snapshotRepo, clientRepo,
			nil, 50, logger),
		bus:     bus,
		handler: handler,
		testDB:  testDB,
	}
}

// TestInvoiceLifecycle_Integration drives an invoice through its full
// lifecycle against a real PostgreSQL database
func TestInvoiceLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newLifecycleEnv(t)
	ctx := context.Background()

	ownerID := uuid.New()
	env.testDB.CreateTestOwner(ownerID)

	client, err := env.clients.Create(ctx, billingapp.CreateClientInput{
		OwnerID: ownerID,
		Name:    "Lifecycle Client",
		Email:   "lifecycle@example.test",
	})
	require.NoError(t, err)

	// Create a draft: no number, no token
	draft, err := env.invoices.CreateDraft(ctx, billingapp.CreateInvoiceInput{
		OwnerID:  ownerID,
		ClientID: client.ID,
		Currency: "USD",
		DueDate:  time.Now().AddDate(0, 0, 14),
		Items: []billingapp.InvoiceItemInput{
			{Description: "Design work", Quantity: 10, UnitPrice: decimal.NewFromInt(120)},
			{Description: "Hosting", Quantity: 1, UnitPrice: decimal.NewFromInt(30)},
		},
		Notes: "March engagement",
	})
	require.NoError(t, err)
	assert.Equal(t, "DRAFT", draft.Status)
	assert.Nil(t, draft.Number)
	assert.Empty(t, draft.PaymentToken)
	assert.True(t, draft.Total.Equal(decimal.NewFromInt(1230)))

	// Send: first number for the owner is 1, token appears
	sent, err := env.invoices.Send(ctx, ownerID, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "SENT", sent.Status)
	require.NotNil(t, sent.Number)
	assert.Equal(t, int64(1), *sent.Number)
	assert.Equal(t, "INV-00001", sent.DisplayNumber)
	assert.NotEmpty(t, sent.PaymentToken)
	require.NotNil(t, sent.IssueDate)

	// Sending again is rejected
	_, err = env.invoices.Send(ctx, ownerID, draft.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidTransition)

	// A second invoice gets the next number
	second, err := env.invoices.CreateDraft(ctx, billingapp.CreateInvoiceInput{
		OwnerID:  ownerID,
		ClientID: client.ID,
		Currency: "USD",
		DueDate:  time.Now().AddDate(0, 0, 30),
		Items: []billingapp.InvoiceItemInput{
			{Description: "Retainer", Quantity: 1, UnitPrice: decimal.NewFromInt(500)},
		},
	})
	require.NoError(t, err)
	secondSent, err := env.invoices.Send(ctx, ownerID, second.ID)
	require.NoError(t, err)
	require.NotNil(t, secondSent.Number)
	assert.Equal(t, int64(2), *secondSent.Number)

	// Client with active invoices cannot be deleted
	err = env.clients.Delete(ctx, ownerID, client.ID)
	assert.ErrorIs(t, err, shared.ErrClientHasInvoices)

	// Public payment page by token
	public, err := env.invoices.GetByToken(ctx, sent.PaymentToken)
	require.NoError(t, err)
	assert.Equal(t, "INV-00001", public.DisplayNumber)
	assert.Equal(t, "Lifecycle Client", public.ClientName)
	assert.False(t, public.IntentConfirmed)

	// Client confirms payment intent on the public page; idempotent
	confirmed, err := env.invoices.ConfirmPaymentIntent(ctx, sent.PaymentToken)
	require.NoError(t, err)
	assert.True(t, confirmed.IntentConfirmed)
	confirmed, err = env.invoices.ConfirmPaymentIntent(ctx, sent.PaymentToken)
	require.NoError(t, err)
	assert.True(t, confirmed.IntentConfirmed)

	// Record payment
	paid, err := env.invoices.MarkPaid(ctx, billingapp.MarkPaidInput{
		OwnerID:   ownerID,
		InvoiceID: draft.ID,
		Date:      time.Now(),
		Method:    "BANK_TRANSFER",
		Amount:    decimal.NewFromInt(1230),
	})
	require.NoError(t, err)
	assert.Equal(t, "PAID", paid.Status)
	require.NotNil(t, paid.AmountPaid)
	assert.True(t, paid.AmountPaid.Equal(decimal.NewFromInt(1230)))

	// Payment date before the issue date is rejected
	_, err = env.invoices.MarkPaid(ctx, billingapp.MarkPaidInput{
		OwnerID:   ownerID,
		InvoiceID: second.ID,
		Date:      time.Now().AddDate(0, 0, -3),
		Method:    "CASH",
		Amount:    decimal.NewFromInt(500),
	})
	assert.ErrorIs(t, err, shared.ErrInvalidPaymentDate)

	// Revert the payment: invoice returns to SENT with payment fields cleared
	reverted, err := env.invoices.RevertPayment(ctx, ownerID, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "SENT", reverted.Status)
	assert.Nil(t, reverted.PaymentDate)
	assert.Nil(t, reverted.AmountPaid)
	require.NotNil(t, reverted.Number)
	assert.Equal(t, int64(1), *reverted.Number)

	// Dashboard reflects the live state
	stats, err := env.dashboard.Stats(ctx, ownerID, billing.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.StatusCounts[billing.InvoiceStatusSent])
	assert.Equal(t, int64(0), stats.StatusCounts[billing.InvoiceStatusPaid])
	assert.Equal(t, int64(2), stats.TotalInvoices)
	assert.True(t, stats.Outstanding["USD"].Equal(decimal.NewFromInt(1730)))
	assert.True(t, stats.TotalOutstanding.Equal(decimal.NewFromInt(1730)))
	assert.True(t, stats.TotalRevenue.IsZero())

	// Snapshot history recorded each transition with the invoice's own
	// status and total at capture time
	history, err := env.dashboard.History(ctx, ownerID, shared.Filter{})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(history), 4) // 2 sends, 1 payment, 1 revert
	for _, record := range history {
		assert.NotEmpty(t, record.Status)
		assert.False(t, record.Amount.IsZero())
	}

	// Lifecycle events reached the bus subscriber
	require.True(t, testutil.WaitForEventCount(t, env.handler, 7, 5*time.Second),
		"expected events for 2 creates, 2 sends, intent, payment and revert")
}

// TestOverdueSweep_Integration verifies the cross-owner overdue sweep
func TestOverdueSweep_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newLifecycleEnv(t)
	ctx := context.Background()

	invoiceRepo := persistence.NewGormInvoiceRepository(env.testDB.DB)

	ownerID := uuid.New()
	clientID := uuid.New()
	env.testDB.CreateTestOwner(ownerID)
	env.testDB.CreateTestClient(ownerID, clientID)

	pastDue := newTestInvoice(t, ownerID, clientID, 75.00)
	pastDue.DueDate = time.Now().AddDate(0, 0, -5)
	require.NoError(t, pastDue.Send(1, time.Now().AddDate(0, 0, -20)))
	require.NoError(t, invoiceRepo.Save(ctx, pastDue))

	dueToday := newTestInvoice(t, ownerID, clientID, 40.00)
	dueToday.DueDate = time.Now()
	require.NoError(t, dueToday.Send(2, time.Now().AddDate(0, 0, -10)))
	require.NoError(t, invoiceRepo.Save(ctx, dueToday))

	notDue := newTestInvoice(t, ownerID, clientID, 20.00)
	require.NoError(t, notDue.Send(3, time.Now()))
	require.NoError(t, invoiceRepo.Save(ctx, notDue))

	result, err := env.sweeper.Run(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Marked)
	assert.Equal(t, 0, result.Failed)

	flipped, err := invoiceRepo.FindByID(ctx, pastDue.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusOverdue, flipped.Status)

	// The sweep appended a snapshot carrying the transitioned invoice
	history, err := env.dashboard.History(ctx, ownerID, shared.Filter{})
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.Equal(t, "OVERDUE", history[0].Trigger)
	assert.Equal(t, "OVERDUE", history[0].Status)
	assert.Equal(t, pastDue.ID, history[0].InvoiceID)
	assert.True(t, history[0].Amount.Equal(pastDue.Total().Amount()))

	// An invoice due today is not overdue
	still, err := invoiceRepo.FindByID(ctx, dueToday.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusSent, still.Status)

	// Running again is a no-op
	again, err := env.sweeper.Run(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, again.Marked)
}
