// Package testutil holds shared fixtures for the invoicing backend's
// tests, mainly around the domain event bus.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/invoiceapp/backend/internal/domain/shared"
)

// MockEventHandler records every event it receives. It satisfies
// shared.EventHandler and is safe for the bus's concurrent dispatch.
type MockEventHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
}

// NewMockEventHandler subscribes to the given event types. With no
// types it acts as a wildcard handler.
func NewMockEventHandler(eventTypes ...string) *MockEventHandler {
	return &MockEventHandler{eventTypes: eventTypes}
}

func (h *MockEventHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *MockEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

// Handled returns a copy of the events received so far.
func (h *MockEventHandler) Handled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]shared.DomainEvent, len(h.handled))
	copy(out, h.handled)
	return out
}

func (h *MockEventHandler) HandledCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

// SetError makes every subsequent Handle call fail with err.
func (h *MockEventHandler) SetError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

// TestEvent is a minimal domain event for exercising the bus without
// involving a real aggregate.
type TestEvent struct {
	shared.BaseDomainEvent
	Data string
}

// NewTestEvent builds an event of the given type owned by ownerID.
func NewTestEvent(eventType string, ownerID uuid.UUID) *TestEvent {
	return &TestEvent{
		BaseDomainEvent: shared.BaseDomainEvent{
			ID:           uuid.New(),
			Type:         eventType,
			OwnerIDValue: ownerID,
			Timestamp:    time.Now(),
			AggID:        uuid.New(),
			AggType:      "TestAggregate",
		},
		Data: "test-data",
	}
}

// WaitForEventCount polls until the handler has seen at least count
// events, or the timeout passes. Reports whether the count was reached.
func WaitForEventCount(t *testing.T, handler *MockEventHandler, count int, timeout time.Duration) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if handler.HandledCount() >= count {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return handler.HandledCount() >= count
}
