package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"corralon_backend/internal/email"
	"corralon_backend/internal/events"
	"corralon_backend/platform/logger"
)

type testSender struct {
	quotes   []email.QuoteFinalizedMail
	handoffs []email.HandoffMail
	err      error
}

func (s *testSender) SendQuoteFinalized(_ context.Context, _ string, data email.QuoteFinalizedMail) error {
	s.quotes = append(s.quotes, data)
	return s.err
}

func (s *testSender) SendHandoff(_ context.Context, _ string, data email.HandoffMail) error {
	s.handoffs = append(s.handoffs, data)
	return s.err
}

func TestQuoteFinalizedSendsMail(t *testing.T) {
	sender := &testSender{}
	bus := events.NewInMemoryBus(logger.Discard())
	New(sender, "ventas@example.com", logger.Discard()).RegisterHandlers(bus)

	err := bus.PublishSync(context.Background(), events.QuoteFinalized{
		BaseEvent:      events.NewBaseEvent(),
		ConversationID: "5491112345678",
		Number:         "P-20261018-abc123",
		CashCents:      720000,
		ValidUntil:     time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.quotes) != 1 {
		t.Fatalf("expected one quote mail, got %d", len(sender.quotes))
	}
	if sender.quotes[0].Cash != "$ 7.200" {
		t.Errorf("expected formatted cash total, got %q", sender.quotes[0].Cash)
	}
}

func TestHandoffWithoutInboxIsSkipped(t *testing.T) {
	sender := &testSender{}
	bus := events.NewInMemoryBus(logger.Discard())
	New(sender, "", logger.Discard()).RegisterHandlers(bus)

	if err := bus.PublishSync(context.Background(), events.HandoffRequested{BaseEvent: events.NewBaseEvent(), ConversationID: "1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.handoffs) != 0 {
		t.Fatalf("expected no mail without inbox")
	}
}

func TestSenderFailureIsReturned(t *testing.T) {
	sender := &testSender{err: errors.New("smtp down")}
	bus := events.NewInMemoryBus(logger.Discard())
	New(sender, "ventas@example.com", logger.Discard()).RegisterHandlers(bus)

	if err := bus.PublishSync(context.Background(), events.HandoffRequested{BaseEvent: events.NewBaseEvent(), ConversationID: "1"}); err == nil {
		t.Fatal("expected sender error")
	}
}
