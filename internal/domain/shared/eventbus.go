package shared

import "context"

// EventHandler reacts to domain events. EventTypes narrows delivery;
// an empty slice subscribes the handler to everything.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventPublisher is the write side of the bus. Application services
// depend on this interface only, so they never see subscription or
// lifecycle concerns.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus is the full bus surface wired at startup: publishing,
// handler registration and lifecycle. Subscribe without event types
// registers the handler for all events.
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
