package textnorm

import (
	"reflect"
	"testing"
)

func TestTokens(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"cemento 25kg", []string{"cemento", "25", "kg"}},
		{"ladrillo hueco 12x18x33", []string{"ladrillo", "hueco", "12", "x", "18", "x", "33"}},
		{"piedra 6/20", []string{"piedra", "6", "20"}},
		{"cpc40", []string{"cpc", "40"}},
		{"", nil},
	}

	for _, tt := range tests {
		if got := Tokens(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokens(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSingular(t *testing.T) {
	tests := map[string]string{
		"bolsas":    "bolsa",
		"ladrillos": "ladrillo",
		"gris":      "gris",
		"cal":       "cal",
		"12345":     "12345",
	}
	for in, want := range tests {
		if got := Singular(in); got != want {
			t.Errorf("Singular(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSpokenToDigits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"dos de arena y tres de piedra", "2 de arena y 3 de piedra"},
		{"treinta y dos bolsas", "32 bolsas"},
		{"una bolsa de cal", "1 bolsa de cal"},
		{"cuarenta y cemento", "40 y cemento"},
		{"cien ladrillos", "100 ladrillos"},
		{"arena", "arena"},
	}

	for _, tt := range tests {
		if got := SpokenToDigits(tt.in); got != tt.want {
			t.Errorf("SpokenToDigits(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDistanceAndSimilarity(t *testing.T) {
	if d := Distance("hierro", "hiero"); d != 1 {
		t.Fatalf("expected distance 1, got %d", d)
	}
	if d := Distance("", "abc"); d != 3 {
		t.Fatalf("expected distance 3, got %d", d)
	}
	if s := Similarity("arena", "arena"); s != 1 {
		t.Fatalf("expected similarity 1, got %v", s)
	}
	if s := Similarity("cemento", "simento"); s < 0.7 || s > 0.72 {
		t.Fatalf("unexpected similarity %v", s)
	}
}
