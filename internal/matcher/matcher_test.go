package matcher

import (
	"testing"
	"time"

	"corralon_backend/internal/catalog"
	"corralon_backend/internal/textnorm"
)

func single(id, title string, price int64) catalog.Item {
	return catalog.Item{ID: id, Title: title, Variants: []catalog.Variant{{ID: id + "-v", Title: "Default Title", PriceCents: price}}}
}

func testCatalog() *catalog.Snapshot {
	return catalog.NewSnapshot([]catalog.Item{
		single("a1", "Arena Bolsón x 1m3", 3000000),
		single("a2", "Arena Bolsita x 25kg", 250000),
		{ID: "c1", Title: "Cemento Loma Negra", Variants: []catalog.Variant{
			{ID: "c1-25", Title: "x 25kg", PriceCents: 950000},
			{ID: "c1-50", Title: "x 50kg", PriceCents: 1700000},
		}},
		single("h8", "Hierro Nervado 8mm", 800000),
		single("h10", "Hierro Nervado 10mm", 1200000),
		single("h12", "Hierro Nervado 12mm", 1700000),
		single("l12", "Ladrillo Hueco 12x18x33", 90000),
		single("l18", "Ladrillo Hueco 18x18x33", 120000),
		single("lc", "Ladrillo Común", 30000),
		single("cal", "Cal Hidratada Cacique x 25kg", 600000),
		single("p1", "Piedra Partida 6/20 Bolsón", 4500000),
		single("m1", "Malla Sima 15x15 4.2mm", 2500000),
	}, time.Now())
}

func testConfig() Config {
	return Config{
		Stopwords:         []string{"de", "del", "la", "el", "los", "las", "un", "una", "x", "por", "con", "quiero", "necesito"},
		PresentationWords: []string{"pallet"},
		Categories: []Category{
			{Name: "arena", Default: "arena bolson x 1 m3"},
			{Name: "cemento", Brands: []string{"loma negra", "avellaneda"}},
			{Name: "hierro"},
			{Name: "ladrillo"},
			{Name: "cal"},
			{Name: "piedra", Default: "piedra partida 6/20 bolson"},
			{Name: "malla"},
		},
		SpecMarkers: []string{"bolsita", "bolson", "granel", "medio", "fina", "gruesa", "comun", "hueco", "hidratada", "partida", "nervado"},
		Glossary: []GlossaryEntry{
			{Key: "hierro", Aliases: []string{"varilla", "barra", "hierro nervado"}},
			{Key: "ladrillo", Aliases: []string{"ladrillo hueco", "ladrillo comun"}},
			{Key: "cemento", Aliases: []string{"portland"}},
		},
	}
}

func newTestMatcher(opts ...Option) *Matcher {
	norm := textnorm.New(textnorm.Lexicon{
		Synonyms: map[string]string{
			"palets":  "pallet ladrillo",
			"pallet":  "pallet ladrillo",
			"varilla": "hierro",
			"bolsas":  "bolsita",
		},
	}, nil)
	return New(testConfig(), norm, opts...)
}

func TestMatchHierroByDiameter(t *testing.T) {
	m := newTestMatcher()
	r := m.Match("hierro del 8", testCatalog(), 10)

	acc, ok := r.(Accepted)
	if !ok {
		t.Fatalf("expected Accepted, got %#v", r)
	}
	if acc.Item.ID != "h8" || acc.Qty != 10 {
		t.Fatalf("expected hierro 8 x10, got %s x%v", acc.Item.ID, acc.Qty)
	}
}

func TestMatchPalletShorthandStaysInLadrillo12(t *testing.T) {
	m := newTestMatcher()
	line := m.Normalize("palets del 12")
	if line != "pallet ladrillo del 12" {
		t.Fatalf("unexpected normalization %q", line)
	}

	r, tr := m.Explain(line, testCatalog(), 2)
	acc, ok := r.(Accepted)
	if !ok {
		t.Fatalf("expected Accepted, got %#v", r)
	}
	if acc.Item.ID != "l12" {
		t.Fatalf("expected ladrillo 12, got %s", acc.Item.ID)
	}
	if len(tr.Strong) != 2 || tr.Strong[0] != "ladrillo" || tr.Strong[1] != "12" {
		t.Fatalf("unexpected strong tokens %v", tr.Strong)
	}
}

func TestMatchBareCategoryUsesDefault(t *testing.T) {
	m := newTestMatcher()
	r := m.Match("arena", testCatalog(), 1)

	acc, ok := r.(Accepted)
	if !ok {
		t.Fatalf("expected Accepted, got %#v", r)
	}
	if acc.Item.ID != "a1" || acc.Stage() != StageDefault {
		t.Fatalf("expected default arena via default stage, got %s via %s", acc.Item.ID, acc.Stage())
	}
}

func TestMatchGenericCategoryWithoutDefaultClarifies(t *testing.T) {
	m := newTestMatcher()
	r := m.Match("cemento", testCatalog(), 3)

	c, ok := r.(Clarify)
	if !ok {
		t.Fatalf("expected Clarify, got %#v", r)
	}
	opts := c.Clarification.Options
	if len(opts) != 2 {
		t.Fatalf("expected exactly 2 options, got %d", len(opts))
	}
	if opts[0].VariantID != "c1-25" || opts[1].VariantID != "c1-50" {
		t.Fatalf("expected catalog order on ties, got %+v", opts)
	}
	if c.Clarification.Qty != 3 {
		t.Fatalf("expected qty carried, got %v", c.Clarification.Qty)
	}
}

func TestMatchGenericWithMarkerNarrows(t *testing.T) {
	m := newTestMatcher()
	r := m.Match("arena bolsita", testCatalog(), 1)

	acc, ok := r.(Accepted)
	if !ok || acc.Item.ID != "a2" {
		t.Fatalf("expected arena bolsita accepted, got %#v", r)
	}
}

func TestMatchStrongContainment(t *testing.T) {
	m := newTestMatcher()
	r := m.Match("malla sima 15x15", testCatalog(), 1)

	acc, ok := r.(Accepted)
	if !ok || acc.Item.ID != "m1" || acc.Stage() != StageStrong {
		t.Fatalf("expected strong accept of malla, got %#v", r)
	}
}

func TestMatchFuzzyFallback(t *testing.T) {
	m := newTestMatcher()
	r := m.Match("hiero nervado 10", testCatalog(), 1)

	acc, ok := r.(Accepted)
	if !ok || acc.Item.ID != "h10" || acc.Stage() != StageFallback {
		t.Fatalf("expected fallback accept of hierro 10, got %#v", r)
	}
}

func TestMatchHardFilterEliminatesEverything(t *testing.T) {
	m := newTestMatcher()
	for _, line := range []string{"hierro del 9", "cemento 40kg", "ladrillo 99"} {
		if r := m.Match(line, testCatalog(), 1); r.Outcome() != "not_found" {
			t.Errorf("%q: expected NotFound, got %#v", line, r)
		}
	}
}

func TestMatchWordMissingFromEveryTitleIsNotFound(t *testing.T) {
	m := newTestMatcher()
	for _, line := range []string{"hierro liso del 8", "cemento blanco", "ladrillo refractario"} {
		r, tr := m.Explain(line, testCatalog(), 1)
		if r.Outcome() != "not_found" {
			t.Errorf("%q: expected NotFound, got %#v (strong %v)", line, r, tr.Strong)
		}
	}
}

func TestMatchPresentationWordIsNotStrong(t *testing.T) {
	m := newTestMatcher()
	_, tr := m.Explain("pallet ladrillo 12", testCatalog(), 1)
	for _, tok := range tr.Strong {
		if tok == "pallet" {
			t.Fatalf("presentation word enforced as strong: %v", tr.Strong)
		}
	}
}

func TestMatchStrongStageClarifiesWithinTieBand(t *testing.T) {
	m := newTestMatcher()
	snap := catalog.NewSnapshot([]catalog.Item{
		single("x1", "Cal Hidratada Cacique Plus", 700000),
		single("x2", "Cal Hidratada Cacique Fina", 650000),
		single("x3", "Cacique Cal Hidratada Gruesa", 600000),
	}, time.Now())

	r := m.Match("cal hidratada cacique", snap, 1)
	c, ok := r.(Clarify)
	if !ok || c.Stage() != StageStrong {
		t.Fatalf("expected strong-stage Clarify, got %#v", r)
	}
	opts := c.Clarification.Options
	if len(opts) != 2 || opts[0].ItemID != "x1" || opts[1].ItemID != "x2" {
		t.Fatalf("expected the two tied candidates only, got %+v", opts)
	}
}

func TestMatchUnknownProduct(t *testing.T) {
	m := newTestMatcher()
	if r := m.Match("vigueta pretensada 4m", testCatalog(), 1); r.Outcome() != "not_found" {
		t.Fatalf("expected NotFound, got %#v", r)
	}
	if r := m.Match("   ", testCatalog(), 1); r.Outcome() != "not_found" {
		t.Fatalf("expected NotFound for empty line, got %#v", r)
	}
}

func TestMatchNeverAcceptsVariantMissingNumeral(t *testing.T) {
	m := newTestMatcher()
	snap := testCatalog()
	for _, line := range []string{"hierro 8", "hierro del 10", "ladrillo hueco 18", "cemento 50kg"} {
		r := m.Match(line, snap, 1)
		acc, ok := r.(Accepted)
		if !ok {
			continue
		}
		title := textnorm.Tokens(textnorm.Fold(catalog.DisplayTitle(acc.Item, acc.Variant)))
		for _, want := range textnorm.Tokens(textnorm.Fold(line)) {
			if !textnorm.IsNumeral(want) {
				continue
			}
			found := false
			for _, tok := range title {
				if tok == want {
					found = true
				}
			}
			if !found {
				t.Errorf("%q accepted %q without numeral %s", line, acc.Item.Title, want)
			}
		}
	}
}

func TestObserverSeesEveryResult(t *testing.T) {
	var seen []string
	m := newTestMatcher(WithObserver(func(r Result) { seen = append(seen, r.Outcome()) }))
	snap := testCatalog()
	m.Match("arena", snap, 1)
	m.Match("cemento", snap, 1)
	m.Match("vigueta", snap, 1)

	want := []string{"accepted", "clarify", "not_found"}
	if len(seen) != len(want) {
		t.Fatalf("expected %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, seen)
		}
	}
}

func TestFamilyAndCategory(t *testing.T) {
	m := newTestMatcher()
	fam := m.Family("hierro", testCatalog(), 2)
	if len(fam) != 2 || fam[0].Item.ID != "h8" || fam[1].Item.ID != "h10" {
		t.Fatalf("unexpected family %+v", fam)
	}
	if got := m.Category("Hierro Nervado 8mm"); got != "hierro" {
		t.Fatalf("expected hierro, got %q", got)
	}
	if got := m.Category("Pintura Latex Interior"); got != "pintura" {
		t.Fatalf("expected pintura, got %q", got)
	}
	if !m.IsCategory("Cemento") || m.IsCategory("cemento loma") {
		t.Fatalf("unexpected IsCategory results")
	}
}
