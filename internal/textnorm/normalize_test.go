package textnorm

import "testing"

type staticOverrides struct {
	table   map[string]string
	version uint64
}

func (o *staticOverrides) Synonyms() map[string]string { return o.table }
func (o *staticOverrides) Version() uint64             { return o.version }

func testLexicon() Lexicon {
	return Lexicon{
		Spelling: map[string]string{
			"simento": "cemento",
			"ladrilo": "ladrillo",
			"fierro":  "hierro",
		},
		Synonyms: map[string]string{
			"palets":      "pallet ladrillo",
			"pallet":      "pallet ladrillo",
			"hueco":       "ladrillo hueco",
			"portland":    "cemento",
			"plasticor":   "cemento",
			"piedra 6-20": "piedra 6/20",
			"varillas":    "hierro",
		},
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Cerámica   PORCELANATO!! ", "ceramica porcelanato"},
		{"arena, cemento. 1,5 m3", "arena cemento 1,5 m3"},
		{"piedra 6/20 y 6-20", "piedra 6/20 y 6-20"},
		{"- 3 bolsas\tde cal -", "3 bolsas de cal"},
		{"Ñandú", "nandu"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Fold(tt.in); got != tt.want {
			t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeRewrites(t *testing.T) {
	n := New(testLexicon(), nil)

	tests := []struct {
		in   string
		want string
	}{
		{"2 Palets del 12", "2 pallet ladrillo del 12"},
		{"pallet de ladrillo", "pallet de ladrillo"},
		{"10 ladrilo hueco", "10 ladrillo hueco"},
		{"ladrillo hueco 12", "ladrillo hueco 12"},
		{"simento portland", "cemento"},
		{"Piedra 6-20", "piedra 6/20"},
		{"varillas de fierro del 8", "de hierro del 8"},
	}

	for _, tt := range tests {
		if got := n.Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := New(testLexicon(), nil)
	inputs := []string{
		"2 Palets del 12",
		"hueco del 18",
		"simento plasticor x 25kg",
		"Quiero 3 bolsas de arena y 2 de piedra 6-20",
		"cerámica 45x45, pallet",
	}

	for _, in := range inputs {
		once := n.Normalize(in)
		if twice := n.Normalize(once); twice != once {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestOverridesWinOverStaticTable(t *testing.T) {
	over := &staticOverrides{table: map[string]string{"plasticor": "cemento plasticor"}, version: 1}
	n := New(testLexicon(), over)

	if got := n.Normalize("plasticor"); got != "cemento plasticor" {
		t.Fatalf("expected override to apply, got %q", got)
	}

	over.table = map[string]string{"plasticor": "cemento albanileria"}
	over.version = 2
	if got := n.Normalize("plasticor"); got != "cemento albanileria" {
		t.Fatalf("expected rebuilt table after version change, got %q", got)
	}
	if n.Version() != 2 {
		t.Fatalf("expected version 2, got %d", n.Version())
	}
}
