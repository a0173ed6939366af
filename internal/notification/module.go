// Package notification provides event handlers that tell the sales team
// about finalized quotes and customers who asked for a person.
// This module subscribes to events and inverts the dependency: the
// conversation shell never needs to know about mail providers or templates.
package notification

import (
	"context"
	"fmt"

	"corralon_backend/internal/email"
	"corralon_backend/internal/events"
	"corralon_backend/internal/order"
	"corralon_backend/platform/logger"
)

// Module handles notification events.
type Module struct {
	sender email.Sender
	inbox  string
	log    *logger.Logger
}

// New creates a notification module. inbox is the sales team address; an
// empty inbox disables mail.
func New(sender email.Sender, inbox string, log *logger.Logger) *Module {
	return &Module{sender: sender, inbox: inbox, log: log}
}

// RegisterHandlers subscribes to all relevant domain events.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.QuoteFinalized{}.EventName(), events.HandlerFunc(m.handleQuoteFinalized))
	bus.Subscribe(events.HandoffRequested{}.EventName(), events.HandlerFunc(m.handleHandoffRequested))
}

func (m *Module) handleQuoteFinalized(ctx context.Context, event events.Event) error {
	e, ok := event.(events.QuoteFinalized)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	if m.inbox == "" {
		return nil
	}

	err := m.sender.SendQuoteFinalized(ctx, m.inbox, email.QuoteFinalizedMail{
		Number:         e.Number,
		ConversationID: e.ConversationID,
		Lines:          e.Lines,
		List:           order.FormatMoney(e.ListCents),
		Cash:           order.FormatMoney(e.CashCents),
		Transfer:       order.FormatMoney(e.TransferCents),
		NotFound:       e.NotFound,
		DownloadURL:    e.DownloadURL,
		ValidUntil:     e.ValidUntil,
	})
	if err != nil {
		m.log.WithConversation(e.ConversationID).Error("failed to send quote notification", "number", e.Number, "error", err)
		return err
	}
	m.log.WithConversation(e.ConversationID).Info("quote notification sent", "number", e.Number)
	return nil
}

func (m *Module) handleHandoffRequested(ctx context.Context, event events.Event) error {
	e, ok := event.(events.HandoffRequested)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	if m.inbox == "" {
		return nil
	}

	err := m.sender.SendHandoff(ctx, m.inbox, email.HandoffMail{
		ConversationID: e.ConversationID,
		Reason:         e.Reason,
		LastMessage:    e.LastMessage,
		RequestedAt:    e.OccurredAt(),
	})
	if err != nil {
		m.log.WithConversation(e.ConversationID).Error("failed to send handoff notification", "error", err)
		return err
	}
	return nil
}
