package email

import (
	"strings"
	"testing"
	"time"
)

func TestRenderQuoteFinalized(t *testing.T) {
	out, err := renderEmailTemplate("quote_finalized", quoteFinalizedEmailData{
		baseEmailData: baseEmailData{Title: "Presupuesto P-1"},
		QuoteFinalizedMail: QuoteFinalizedMail{
			Number:         "P-1",
			ConversationID: "5491112345678",
			Lines:          2,
			Cash:           "$ 7.200",
			NotFound:       []string{"vigueta <b>"},
			ValidUntil:     time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"P-1", "+5491112345678", "$ 7.200", "19/10/2026", "vigueta &lt;b&gt;"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output", want)
		}
	}
	if strings.Contains(out, "Descargar PDF") {
		t.Errorf("download link rendered without URL")
	}
}

func TestRenderHandoff(t *testing.T) {
	out, err := renderEmailTemplate("handoff", handoffEmailData{
		baseEmailData: baseEmailData{Title: "Pedido de asesor"},
		HandoffMail:   HandoffMail{ConversationID: "5491112345678", Reason: "requested", LastMessage: "quiero hablar con alguien"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "https://wa.me/5491112345678") {
		t.Errorf("missing chat link")
	}
}

func TestUnknownTemplate(t *testing.T) {
	if _, err := renderEmailTemplate("nope", nil); err == nil {
		t.Fatal("expected error")
	}
}
