package event

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/invoiceapp/backend/internal/domain/shared"
	"github.com/invoiceapp/backend/tests/testutil"
)

func newBus() *InMemoryEventBus {
	return NewInMemoryEventBus(zap.NewNop())
}

func TestInMemoryEventBusPublish(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("delivers to the subscribed handler", func(t *testing.T) {
		bus := newBus()
		handler := testutil.NewMockEventHandler("InvoiceSent")
		bus.Subscribe(handler)

		event := testutil.NewTestEvent("InvoiceSent", ownerID)
		require.NoError(t, bus.Publish(ctx, event))

		handled := handler.Handled()
		require.Len(t, handled, 1)
		assert.Equal(t, event.EventID(), handled[0].EventID())
	})

	t.Run("delivers multiple events in order", func(t *testing.T) {
		bus := newBus()
		handler := testutil.NewMockEventHandler("InvoiceSent", "InvoicePaid")
		bus.Subscribe(handler)

		sent := testutil.NewTestEvent("InvoiceSent", ownerID)
		paid := testutil.NewTestEvent("InvoicePaid", ownerID)
		require.NoError(t, bus.Publish(ctx, sent, paid))

		handled := handler.Handled()
		require.Len(t, handled, 2)
		assert.Equal(t, sent.EventID(), handled[0].EventID())
		assert.Equal(t, paid.EventID(), handled[1].EventID())
	})

	t.Run("fans out to every handler of the type", func(t *testing.T) {
		bus := newBus()
		first := testutil.NewMockEventHandler("InvoicePaid")
		second := testutil.NewMockEventHandler("InvoicePaid")
		bus.Subscribe(first)
		bus.Subscribe(second)

		require.NoError(t, bus.Publish(ctx, testutil.NewTestEvent("InvoicePaid", ownerID)))

		assert.Equal(t, 1, first.HandledCount())
		assert.Equal(t, 1, second.HandledCount())
	})

	t.Run("wildcard handler sees every event", func(t *testing.T) {
		bus := newBus()
		audit := testutil.NewMockEventHandler()
		bus.Subscribe(audit)

		require.NoError(t, bus.Publish(ctx,
			testutil.NewTestEvent("InvoiceSent", ownerID),
			testutil.NewTestEvent("InvoiceOverdue", ownerID),
		))

		assert.Equal(t, 2, audit.HandledCount())
	})

	t.Run("a failing handler does not stop the others", func(t *testing.T) {
		bus := newBus()
		failing := testutil.NewMockEventHandler("InvoiceSent")
		failing.SetError(assert.AnError)
		healthy := testutil.NewMockEventHandler("InvoiceSent")
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(ctx, testutil.NewTestEvent("InvoiceSent", ownerID)))

		assert.Equal(t, 1, healthy.HandledCount())
	})

	t.Run("a panicking handler does not stop the others", func(t *testing.T) {
		bus := newBus()
		healthy := testutil.NewMockEventHandler("InvoiceSent")
		bus.Subscribe(panickingHandler{}, "InvoiceSent")
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(ctx, testutil.NewTestEvent("InvoiceSent", ownerID)))

		assert.Equal(t, 1, healthy.HandledCount())
	})

	t.Run("no handlers is not an error", func(t *testing.T) {
		bus := newBus()
		require.NoError(t, bus.Publish(ctx, testutil.NewTestEvent("InvoiceSent", ownerID)))
	})
}

func TestInMemoryEventBusUnsubscribe(t *testing.T) {
	bus := newBus()
	ownerID := uuid.New()
	handler := testutil.NewMockEventHandler("InvoiceSent")
	bus.Subscribe(handler)

	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), testutil.NewTestEvent("InvoiceSent", ownerID)))
	assert.Zero(t, handler.HandledCount())
}

func TestInMemoryEventBusStartStop(t *testing.T) {
	bus := newBus()
	assert.NoError(t, bus.Start(context.Background()))
	assert.NoError(t, bus.Stop(context.Background()))
}

type panickingHandler struct{}

func (panickingHandler) EventTypes() []string { return []string{"InvoiceSent"} }

func (panickingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	panic("handler bug")
}
