package clarify

import (
	"strconv"
	"testing"

	"corralon_backend/internal/catalog"
)

func sampleOptions() []Option {
	item := catalog.Item{ID: "10", Title: "Cemento Loma Negra", Variants: []catalog.Variant{
		{ID: "101", Title: "x 25kg", PriceCents: 950000},
		{ID: "102", Title: "x 50kg", PriceCents: 1700000},
	}}
	other := catalog.Item{ID: "20", Title: "Cemento Avellaneda", Variants: []catalog.Variant{{ID: "201", Title: "Default Title"}}}
	return Build("cemento", []Candidate{
		{Item: item, Variant: item.Variants[0]},
		{Item: item, Variant: item.Variants[1]},
		{Item: item, Variant: item.Variants[1]},
		{Item: other, Variant: other.Variants[0]},
	}, 3).Options
}

func TestBuildKeepsOrderAndDropsDuplicates(t *testing.T) {
	opts := sampleOptions()
	if len(opts) != 3 {
		t.Fatalf("expected 3 options, got %d", len(opts))
	}
	if opts[0].ID != "10:101" || opts[2].Title != "Cemento Avellaneda" {
		t.Fatalf("unexpected options %+v", opts)
	}
	if opts[1].Title != "Cemento Loma Negra - x 50kg" {
		t.Fatalf("unexpected title %q", opts[1].Title)
	}
}

func TestBuildOffersEveryCandidate(t *testing.T) {
	var cands []Candidate
	for i := 1; i <= 25; i++ {
		id := strconv.Itoa(i)
		item := catalog.Item{ID: id, Title: "Malla Sima " + id, Variants: []catalog.Variant{{ID: "v" + id, Title: "Default Title"}}}
		cands = append(cands, Candidate{Item: item, Variant: item.Variants[0]})
	}
	opts := Build("malla", cands, 1).Options
	if len(opts) != 25 {
		t.Fatalf("expected 25 options, got %d", len(opts))
	}
	if opts[24].ID != "25:v25" {
		t.Fatalf("unexpected last option %+v", opts[24])
	}
	if i, ok := Resolve("25", opts); !ok || i != 24 {
		t.Fatalf("expected position 25 to resolve, got %d %v", i, ok)
	}
}

func TestResolve(t *testing.T) {
	opts := sampleOptions()
	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{"10:102", 1, true},
		{"opt_3", 2, true},
		{"0-1", 0, true},
		{"2", 1, true},
		{"el 3", 2, true},
		{"opción 1", 0, true},
		{"la segunda", 1, true},
		{"avellaneda", 2, true},
		{"50kg", 1, true},
		{"loma negra", 0, false},
		{"4", 0, false},
		{"opt_9", 0, false},
		{"zz", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := Resolve(tt.input, opts)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("Resolve(%q) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}
