package validator

import "testing"

type inboundProbe struct {
	From string `validate:"required,conversation_id"`
	Kind string `validate:"oneof=text audio image button list"`
}

func TestConversationIDTag(t *testing.T) {
	val := New()

	if err := val.Struct(inboundProbe{From: "5492215064398", Kind: "text"}); err != nil {
		t.Fatalf("expected valid probe, got %v", err)
	}
	if err := val.Struct(inboundProbe{From: "abc", Kind: "text"}); err == nil {
		t.Fatalf("expected conversation_id tag to reject letters")
	}
	if err := val.Struct(inboundProbe{From: "5492215064398", Kind: "video"}); err == nil {
		t.Fatalf("expected oneof to reject unknown kind")
	}
}
