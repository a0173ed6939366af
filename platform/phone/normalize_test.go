package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		region string
		want   string
	}{
		{"bare international digits", "5492215064398", "AR", "+5492215064398"},
		{"already e164", "+5492215064398", "", "+5492215064398"},
		{"garbage is returned trimmed", "  not-a-phone ", "AR", "not-a-phone"},
		{"empty", "", "AR", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeE164(tt.input, tt.region); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestConversationIDStripsPlus(t *testing.T) {
	if got := ConversationID("+5492215064398", "AR"); got != "5492215064398" {
		t.Fatalf("unexpected conversation id %q", got)
	}
}
