package sanitize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "10 hierro del 8", "10 hierro del 8"},
		{"tags stripped", "<b>2 arena</b>", "2 arena"},
		{"entities decoded", "cemento &amp; cal", "cemento & cal"},
		{"line breaks kept", "2 arena<br>3 cemento", "2 arena\n3 cemento"},
		{"control chars dropped", "5 cal\x00\x07", "5 cal"},
		{"carriage returns become newlines", "1 arena\r2 piedra", "1 arena\n2 piedra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.input); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
