package intent

import (
	"strings"
	"testing"
)

type phraseTable map[string]Kind

func (p phraseTable) MatchPhrase(folded string) (Kind, bool) {
	for phrase, k := range p {
		if strings.Contains(folded, phrase) {
			return k, true
		}
	}
	return "", false
}

func TestClassify(t *testing.T) {
	c := New(nil)
	tests := []struct {
		in    string
		kind  Kind
		terms string
		qty   float64
		index int
	}{
		{in: "2 arena\n5 cemento\n1 piedra", kind: Add},
		{in: "ayuda", kind: Help},
		{in: "VER", kind: View},
		{in: "CONFIRMAR", kind: Confirm},
		{in: "cerrar presupuesto", kind: Confirm},
		{in: "editar", kind: Edit},
		{in: "cancelar", kind: Cancel},
		{in: "CANCELAR SI", kind: Cancel},
		{in: "menú", kind: ExitHint},
		{in: "quiero hablar con un asesor", kind: Human},
		{in: "hola buenas", kind: Start},
		{in: "sí", kind: Yes},
		{in: "no", kind: No},
		{in: "quitar 2", kind: RemoveIndex, index: 2},
		{in: "cambiar 1 x 5", kind: ChangeIndex, index: 1, qty: 5},
		{in: "sumale 2 al último", kind: RelAdd, qty: 2},
		{in: "sacale 3 al primero", kind: RelSub, qty: 3},
		{in: "duplicalo", kind: RelDouble},
		{in: "a la mitad", kind: RelHalf},
		{in: "sacalo", kind: RemoveLast},
		{in: "sacame las arenas", kind: Remove, terms: "arenas"},
		{in: "agregame 10 ladrillos", kind: Add, terms: "ladrillos", qty: 10},
		{in: "cambiá el cemento a 5", kind: Change, terms: "cemento", qty: 5},
		{in: "qué arenas tenés", kind: ListCategory, terms: "arenas"},
		{in: "precio del cemento", kind: Price, terms: "cemento"},
		{in: "¿a qué hora abren?", kind: FAQHours},
		{in: "dónde están ubicados", kind: FAQLocation},
		{in: "aceptan tarjeta?", kind: FAQPayment},
		{in: "hacen envíos a city bell", kind: FAQDelivery},
		{in: "arena bolsón", kind: Add, terms: "arena bolson"},
		{in: "tres bolsas de cal", kind: Add, terms: "bolsas de cal", qty: 3},
		{in: "???", kind: Unknown},
	}

	for _, tt := range tests {
		got := c.Classify(tt.in)
		if got.Kind != tt.kind {
			t.Errorf("Classify(%q).Kind = %s, want %s", tt.in, got.Kind, tt.kind)
			continue
		}
		if tt.terms != "" && got.Terms != tt.terms {
			t.Errorf("Classify(%q).Terms = %q, want %q", tt.in, got.Terms, tt.terms)
		}
		if tt.qty != 0 && got.Qty != tt.qty {
			t.Errorf("Classify(%q).Qty = %v, want %v", tt.in, got.Qty, tt.qty)
		}
		if tt.index != 0 && got.Index != tt.index {
			t.Errorf("Classify(%q).Index = %d, want %d", tt.in, got.Index, tt.index)
		}
	}
}

func TestMultiLineListWinsOverCommands(t *testing.T) {
	got := New(nil).Classify("ver precio de:\n2 arena\n3 cemento\n4 hierro del 8")
	if got.Kind != Add || !got.List {
		t.Fatalf("expected list add, got %+v", got)
	}
}

func TestDynamicPhrases(t *testing.T) {
	c := New(phraseTable{"pasame con alguien": Human, "arrancamos": Start})
	if got := c.Classify("pasame con alguien"); got.Kind != Human {
		t.Fatalf("expected human, got %s", got.Kind)
	}
	if got := c.Classify("arrancamos"); got.Kind != Start {
		t.Fatalf("expected start, got %s", got.Kind)
	}
	// Built-in navigation still wins.
	if got := c.Classify("ver arrancamos"); got.Kind != View {
		t.Fatalf("expected view, got %s", got.Kind)
	}
}

func TestStrictConfirmations(t *testing.T) {
	for _, in := range []string{"si", "Sí, dale", "ok", "perfecto"} {
		if !IsYes(in) {
			t.Errorf("expected %q to be yes", in)
		}
	}
	for _, in := range []string{"no", "mejor no", "NO GRACIAS"} {
		if !IsNo(in) {
			t.Errorf("expected %q to be no", in)
		}
	}
	if IsYes("arena si hay") || IsNo("cemento no tan caro") {
		t.Errorf("confirmations must be anchored")
	}
	if !IsGreeting("Hola, buen día!") || IsGreeting("hola 2 arenas") {
		t.Errorf("unexpected greeting classification")
	}
}
