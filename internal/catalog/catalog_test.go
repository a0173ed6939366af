package catalog

import "testing"

func TestDisplayTitle(t *testing.T) {
	item := Item{ID: "1", Title: "Cemento Loma Negra"}
	tests := []struct {
		variant Variant
		want    string
	}{
		{Variant{Title: "Default Title"}, "Cemento Loma Negra"},
		{Variant{Title: ""}, "Cemento Loma Negra"},
		{Variant{Title: "x 25kg"}, "Cemento Loma Negra - x 25kg"},
	}
	for _, tt := range tests {
		if got := DisplayTitle(item, tt.variant); got != tt.want {
			t.Errorf("DisplayTitle(%q) = %q, want %q", tt.variant.Title, got, tt.want)
		}
	}
}

func TestSnapshotFind(t *testing.T) {
	snap := NewSnapshot([]Item{{ID: "a", Title: "Arena"}, {ID: "b", Title: "Cal"}}, timeZero)
	if it, ok := snap.Find("b"); !ok || it.Title != "Cal" {
		t.Fatalf("expected to find Cal, got %+v %v", it, ok)
	}
	if _, ok := snap.Find("z"); ok {
		t.Fatalf("expected miss for unknown id")
	}

	decoded := &Snapshot{Items: snap.Items}
	if _, ok := decoded.Find("a"); !ok {
		t.Fatalf("expected linear lookup on unindexed snapshot")
	}
}

func TestParseCents(t *testing.T) {
	tests := map[string]int64{
		"12500.00": 1250000,
		"99.99":    9999,
		"0.1":      10,
		"":         0,
		"abc":      0,
		"-3":       0,
	}
	for in, want := range tests {
		if got := parseCents(in); got != want {
			t.Errorf("parseCents(%q) = %d, want %d", in, got, want)
		}
	}
}
