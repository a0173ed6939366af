package inbound

import (
	"context"

	"corralon_backend/internal/conversation"
	"corralon_backend/internal/events"
)

type outcome int

const (
	outcomePersist outcome = iota
	outcomeClear
	// outcomeKeep leaves the stored state as it was before the turn.
	outcomeKeep
)

// buttonCommands maps quick-reply ids back to the commands the engine reads.
// Option row ids are not listed; they pass through unchanged.
var buttonCommands = map[string]string{
	conversation.ButtonFinalize:  "CONFIRMAR",
	conversation.ButtonEdit:      "EDITAR",
	conversation.ButtonCancel:    "CANCELAR",
	conversation.ButtonCancelYes: "CANCELAR SI",
	conversation.ButtonCancelNo:  "NO",
	conversation.ButtonAddYes:    "si",
	conversation.ButtonAddNo:     "no",
}

// execute runs actions in order. A failed quote stops the remaining actions
// so the customer can confirm again.
func (s *Service) execute(ctx context.Context, convID, text string, actions []conversation.Action) outcome {
	result := outcomePersist
	for _, action := range actions {
		switch a := action.(type) {
		case conversation.SendText:
			s.sendText(ctx, convID, a.Text)
		case conversation.SendButtons:
			s.sendButtons(ctx, convID, a)
		case conversation.SendList:
			s.sendList(ctx, convID, a)
		case conversation.EmitQuote:
			if !s.emitQuote(ctx, convID, a.Quote) {
				return outcomeKeep
			}
		case conversation.RecordNotFound:
			s.recordNotFound(ctx, convID, a.Terms)
		case conversation.RecordUnknown:
			s.recordUnknown(ctx, convID, a.Text)
		case conversation.Handoff:
			s.handoff(ctx, convID, a.Reason, text)
		case conversation.EndSession:
			result = outcomeClear
		}
	}
	return result
}

func (s *Service) sendText(ctx context.Context, convID, text string) {
	if err := s.Gateway.SendText(ctx, convID, text); err != nil {
		s.collaboratorFailed(ctx, "gateway", err)
	}
}

func (s *Service) sendButtons(ctx context.Context, convID string, a conversation.SendButtons) {
	if err := s.Gateway.SendButtons(ctx, convID, a.Text, a.Buttons); err != nil {
		s.collaboratorFailed(ctx, "gateway", err)
		// Plain text keeps the conversation usable when interactive
		// messages are rejected.
		s.sendText(ctx, convID, a.Text+buttonsFallback(a.Buttons))
	}
}

func (s *Service) sendList(ctx context.Context, convID string, a conversation.SendList) {
	if err := s.Gateway.SendList(ctx, convID, a); err != nil {
		s.collaboratorFailed(ctx, "gateway", err)
		s.sendText(ctx, convID, a.Text+rowsFallback(a.Rows))
	}
}

func (s *Service) emitQuote(ctx context.Context, convID string, q conversation.Quote) bool {
	if s.Quotes == nil {
		s.sendText(ctx, convID, msgQuoteFailed)
		return false
	}
	doc, err := s.Quotes.Finalize(ctx, convID, q)
	if err != nil {
		s.log.WithContext(ctx).Error("failed to finalize quote", "number", q.Number, "error", err)
		s.sendText(ctx, convID, msgQuoteFailed)
		return false
	}

	if err := s.Gateway.SendFile(ctx, convID, doc.FileName, doc.Content, quoteCaption(q.Number)); err != nil {
		s.collaboratorFailed(ctx, "gateway", err)
		if doc.DownloadURL == "" {
			s.sendText(ctx, convID, msgQuoteFailed)
			return false
		}
		s.sendText(ctx, convID, quoteLinkMessage(q.Number, doc.DownloadURL))
	}

	s.Quotes.Delivered(ctx, convID, q, doc)
	s.Metrics.QuoteFinalized()
	return true
}

func (s *Service) recordNotFound(ctx context.Context, convID string, terms []string) {
	if s.Insights == nil || len(terms) == 0 {
		return
	}
	if err := s.Insights.RecordNotFound(ctx, convID, terms); err != nil {
		s.log.WithContext(ctx).Warn("failed to record not-found terms", "error", err)
	}
}

func (s *Service) recordUnknown(ctx context.Context, convID, text string) {
	if s.Insights == nil {
		return
	}
	if err := s.Insights.RecordUnknown(ctx, convID, text); err != nil {
		s.log.WithContext(ctx).Warn("failed to record unknown message", "error", err)
	}
}

func (s *Service) handoff(ctx context.Context, convID, reason, text string) {
	s.log.WithContext(ctx).Info("handoff requested", "reason", reason)
	if s.Bus == nil {
		return
	}
	s.Bus.Publish(ctx, events.HandoffRequested{
		BaseEvent:      events.NewBaseEvent(),
		ConversationID: convID,
		Reason:         reason,
		LastMessage:    text,
	})
}
