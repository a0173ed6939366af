// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"corralon_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	Scoped      = events.Scoped
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Quote Domain Events
// =============================================================================

// QuoteFinalized is published after a quote document was sent to the customer.
type QuoteFinalized struct {
	BaseEvent
	ConversationID string    `json:"conversationId"`
	Number         string    `json:"number"`
	Lines          int       `json:"lines"`
	ListCents      int64     `json:"listCents"`
	CashCents      int64     `json:"cashCents"`
	TransferCents  int64     `json:"transferCents"`
	NotFound       []string  `json:"notFound,omitempty"`
	DownloadURL    string    `json:"downloadUrl,omitempty"`
	ValidUntil     time.Time `json:"validUntil"`
}

func (e QuoteFinalized) EventName() string       { return "quotes.quote.finalized" }
func (e QuoteFinalized) ConversationKey() string { return e.ConversationID }

// =============================================================================
// Conversation Domain Events
// =============================================================================

// HandoffRequested is published when a customer asks for a person.
type HandoffRequested struct {
	BaseEvent
	ConversationID string `json:"conversationId"`
	Reason         string `json:"reason"`
	LastMessage    string `json:"lastMessage"`
}

func (e HandoffRequested) EventName() string       { return "conversation.handoff.requested" }
func (e HandoffRequested) ConversationKey() string { return e.ConversationID }

var (
	_ Scoped = QuoteFinalized{}
	_ Scoped = HandoffRequested{}
)
