package quantity

import "testing"

func TestExtract(t *testing.T) {
	tests := []struct {
		in        string
		qty       float64
		remainder string
	}{
		{"10 hierro del 8", 10, "hierro del 8"},
		{"2 pallet ladrillo del 12", 2, "pallet ladrillo del 12"},
		{"arena x 3", 3, "arena"},
		{"piedra por 4", 4, "piedra"},
		{"2 cemento x 10", 10, "2 cemento"},
		{"30 bolsita de cemento de 25kg", 30, "bolsita de cemento de 25kg"},
		{"cemento x 25kg", 1, "cemento x 25kg"},
		{"25kg cemento", 1, "25kg cemento"},
		{"ceramico 45 x 45", 1, "ceramico 45 x 45"},
		{"60x60 porcelanato", 1, "60x60 porcelanato"},
		{"piedra 6/20", 1, "piedra 6/20"},
		{"6/20 piedra", 1, "6/20 piedra"},
		{"1,5 de arena", 1.5, "arena"},
		{"de arena", 1, "arena"},
		{"arena", 1, "arena"},
		{"0 arena", 1, "0 arena"},
	}

	for _, tt := range tests {
		qty, rem := Extract(tt.in)
		if qty != tt.qty || rem != tt.remainder {
			t.Errorf("Extract(%q) = (%v, %q), want (%v, %q)", tt.in, qty, rem, tt.qty, tt.remainder)
		}
	}
}

func TestUnitsConvert(t *testing.T) {
	units := Units{"medio": 0.5, "bolsita": 0.15, "granel": 6, "balde": 0.01}

	tests := []struct {
		name    string
		request string
		title   string
		qty     float64
		want    float64
		changed bool
	}{
		{"bolsitas into bolson", "bolsitas de arena", "Arena bolsón x 1 m3", 3, 0.45, true},
		{"half bolson", "medio bolson de arena", "Arena bolsón x 1 m3", 1, 0.5, true},
		{"title carries presentation", "bolsita de arena", "Arena bolsita x 1 m3", 3, 3, false},
		{"title not per m3", "bolsita de cal", "Cal hidratada x 25kg", 3, 3, false},
		{"no presentation word", "arena fina", "Arena fina x 1 m3", 2, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := units.Convert(tt.request, tt.title, tt.qty)
			if got != tt.want || changed != tt.changed {
				t.Fatalf("Convert = (%v, %v), want (%v, %v)", got, changed, tt.want, tt.changed)
			}
		})
	}
}

func TestExplicitReportsMissingQuantity(t *testing.T) {
	if _, rest, ok := Explicit("cemento loma negra"); ok || rest != "cemento loma negra" {
		t.Fatalf("expected no explicit quantity, got ok=%v rest=%q", ok, rest)
	}
	qty, rest, ok := Explicit("5 arenas")
	if !ok || qty != 5 || rest != "arenas" {
		t.Fatalf("expected 5 arenas, got %v %q %v", qty, rest, ok)
	}
}
