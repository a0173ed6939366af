// Package events is the in-process publish/subscribe layer. Domain packages
// define the event types; this package only routes them.
package events

import (
	"context"
	"time"
)

// Event is anything that can be published on a Bus.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// Scoped is implemented by events that belong to one conversation. The bus
// tags handler failures with the returned id.
type Scoped interface {
	ConversationKey() string
}

// BaseEvent carries the publication timestamp. Embed it in event structs.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent stamps an event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler reacts to one published event.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc lets a plain function subscribe.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error { return f(ctx, event) }

// Bus routes events by name to the handlers subscribed to it.
type Bus interface {
	// Publish hands the event to every handler without waiting for them.
	Publish(ctx context.Context, event Event)
	// PublishSync runs the handlers in subscription order and returns their
	// joined errors.
	PublishSync(ctx context.Context, event Event) error
	Subscribe(eventName string, handler Handler)
}
