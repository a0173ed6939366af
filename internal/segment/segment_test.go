package segment

import (
	"reflect"
	"strings"
	"testing"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "newlines",
			in:   "10 hierro del 8\n\n3 bolsas de cemento\n",
			want: []string{"10 hierro del 8", "3 bolsas de cemento"},
		},
		{
			name: "bullets and semicolons",
			in:   "• arena x 2 • piedra x 3; cal",
			want: []string{"arena x 2", "piedra x 3", "cal"},
		},
		{
			name: "sentence periods",
			in:   "Hola. Quiero arena",
			want: []string{"Hola", "Quiero arena"},
		},
		{
			name: "inline list with commas and y",
			in:   "arena x 3, piedra x 4 y cemento x 10",
			want: []string{"arena x 3", "piedra x 4", "cemento x 10"},
		},
		{
			name: "spoken list",
			in:   "dos de arena y tres de piedra",
			want: []string{"2 de arena", "3 de piedra"},
		},
		{
			name: "decimal comma is kept",
			in:   "arena x 1,5, piedra x 2",
			want: []string{"arena x 1,5", "piedra x 2"},
		},
		{
			name: "single item keeps commas",
			in:   "cemento, el de 25kg",
			want: []string{"cemento, el de 25kg"},
		},
		{
			name: "empty",
			in:   "   \n ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Segment(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Segment(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSegmentRoundTripsPlainLines(t *testing.T) {
	lines := []string{"10 hierro del 8", "2 palets del 12", "arena", "30 bolsas de cemento de 25kg"}
	got := Segment(strings.Join(lines, "\n"))
	if len(got) != len(lines) {
		t.Fatalf("expected %d lines, got %d: %v", len(lines), len(got), got)
	}
}

func TestSegmentCapsLines(t *testing.T) {
	in := strings.Repeat("arena\n", MaxLines+20)
	if got := Segment(in); len(got) != MaxLines {
		t.Fatalf("expected %d lines, got %d", MaxLines, len(got))
	}
}

func TestIsLikelyList(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"arena\npiedra\ncemento", true},
		{"arena x 2\nhola", true},
		{"dos de arena y tres de piedra", true},
		{"5 cemento 3 arena", true},
		{"ver", false},
		{"hola, como estas?", false},
		{"cuanto sale el cemento", false},
	}

	for _, tt := range tests {
		if got := IsLikelyList(tt.in); got != tt.want {
			t.Errorf("IsLikelyList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
