package order

import (
	"strings"
	"testing"

	"corralon_backend/internal/catalog"
)

var discounts = Discounts{Cash: 0.10, Transfer: 0.05}

func TestCompute(t *testing.T) {
	tests := []struct {
		name      string
		price     int64
		compareAt int64
		qty       float64
		want      Amounts
	}{
		{"cash discount", 100000, 0, 2, Amounts{List: 200000, Cash: 180000, Transfer: 190000}},
		{"compare-at below list", 100000, 85000, 2, Amounts{List: 200000, Cash: 170000, Transfer: 190000}},
		{"compare-at above list ignored", 100000, 120000, 1, Amounts{List: 100000, Cash: 90000, Transfer: 95000}},
		{"fractional qty", 3000000, 0, 0.5, Amounts{List: 1500000, Cash: 1350000, Transfer: 1425000}},
	}
	for _, tt := range tests {
		if got := Compute(tt.price, tt.compareAt, tt.qty, discounts); got != tt.want {
			t.Errorf("%s: expected %+v, got %+v", tt.name, tt.want, got)
		}
	}
}

func TestMergeSumsSameVariant(t *testing.T) {
	item := catalog.Item{ID: "c1", Title: "Cemento", Variants: []catalog.Variant{{ID: "c1-50", Title: "x 50kg", PriceCents: 1000000, CompareAtCents: 900000}}}
	line := NewItem(item, item.Variants[0], 2, discounts)

	items, idx := Merge(nil, line)
	items, idx2 := Merge(items, NewItem(item, item.Variants[0], 3, discounts))

	if len(items) != 1 || idx != 0 || idx2 != 0 {
		t.Fatalf("expected a single merged line, got %d lines", len(items))
	}
	if items[0].Qty != 5 {
		t.Fatalf("expected qty 5, got %v", items[0].Qty)
	}
	want := Amounts{List: 5000000, Cash: 4500000, Transfer: 4750000}
	if items[0].Amounts != want {
		t.Fatalf("expected %+v, got %+v", want, items[0].Amounts)
	}
	if items[0].Title != "Cemento - x 50kg" {
		t.Fatalf("unexpected title %q", items[0].Title)
	}
}

func TestMergeDoesNotTouchInput(t *testing.T) {
	base := []Item{{VariantID: "a", Qty: 1, Amounts: Amounts{List: 100}}}
	out, _ := Merge(base, Item{VariantID: "a", Qty: 1, Amounts: Amounts{List: 100}})
	if base[0].Qty != 1 || out[0].Qty != 2 {
		t.Fatalf("expected copy-on-write, base=%v out=%v", base[0].Qty, out[0].Qty)
	}
	out, idx := Merge(base, Item{VariantID: "b", Qty: 1})
	if len(out) != 2 || idx != 1 || len(base) != 1 {
		t.Fatalf("expected appended line at 1, got %d lines idx %d", len(out), idx)
	}
}

func TestSetQtyRemoveAndTotals(t *testing.T) {
	items := []Item{
		{VariantID: "a", Qty: 2, Amounts: Amounts{List: 2000, Cash: 1800, Transfer: 1900}},
		{VariantID: "b", Qty: 1, Amounts: Amounts{List: 500, Cash: 450, Transfer: 475}},
	}

	items, ok := SetQty(items, 0, 4)
	if !ok || items[0].Amounts.List != 4000 || items[0].UnitCents() != 1000 {
		t.Fatalf("unexpected line after SetQty: %+v", items[0])
	}
	if _, ok := SetQty(items, 5, 1); ok {
		t.Fatalf("expected out-of-range SetQty to fail")
	}
	if _, ok := SetQty(items, 0, 0); ok {
		t.Fatalf("expected zero qty to fail")
	}

	total := Totals(items)
	if total.List != 4500 || total.Cash != 4050 {
		t.Fatalf("unexpected totals %+v", total)
	}

	items, ok = Remove(items, 0)
	if !ok || len(items) != 1 || items[0].VariantID != "b" {
		t.Fatalf("unexpected lines after Remove: %+v", items)
	}
}

func TestReplaceMergesIntoExistingVariant(t *testing.T) {
	item := catalog.Item{ID: "h", Title: "Hierro", Variants: []catalog.Variant{
		{ID: "h8", Title: "8mm", PriceCents: 100000},
		{ID: "h10", Title: "10mm", PriceCents: 150000},
		{ID: "h12", Title: "12mm", PriceCents: 200000},
	}}
	items := []Item{
		NewItem(item, item.Variants[0], 10, discounts),
		NewItem(item, item.Variants[1], 5, discounts),
	}

	out, at := Replace(items, 0, NewItem(item, item.Variants[1], 10, discounts))
	if len(out) != 1 || at != 0 {
		t.Fatalf("expected one merged line at 0, got %d lines at %d", len(out), at)
	}
	if out[0].VariantID != "h10" || out[0].Qty != 15 || out[0].Amounts.List != 2250000 {
		t.Fatalf("unexpected merged line %+v", out[0])
	}
	if len(items) != 2 {
		t.Fatalf("expected input untouched, got %d lines", len(items))
	}

	out, at = Replace(items, 0, NewItem(item, item.Variants[2], 10, discounts))
	if len(out) != 2 || at != 0 || out[0].VariantID != "h12" || out[1].VariantID != "h10" {
		t.Fatalf("unexpected plain replace %+v at %d", out, at)
	}
	if _, at := Replace(items, 7, items[0]); at != -1 {
		t.Fatalf("expected out-of-range replace to report -1, got %d", at)
	}
}

func TestFormatting(t *testing.T) {
	if got := FormatMoney(1234500); !strings.Contains(got, "12.345") {
		t.Errorf("expected grouped pesos, got %q", got)
	}
	if got := FormatQty(2.5); got != "2,5" {
		t.Errorf("expected 2,5, got %q", got)
	}
	if got := FormatQty(10); got != "10" {
		t.Errorf("expected 10, got %q", got)
	}
}

func TestRenderSummary(t *testing.T) {
	if got := RenderSummary(nil, nil, SummaryOptions{}); !strings.Contains(got, "vacío") {
		t.Fatalf("expected empty summary, got %q", got)
	}

	items := []Item{{Title: "Hierro Nervado 8mm de 12 metros", Qty: 10, Amounts: Amounts{List: 800000, Cash: 720000}}}
	got := RenderSummary(items, []string{"vigueta"}, SummaryOptions{ValidityDays: 2, FreightNote: "Flete aparte"})

	for _, want := range []string{"Hierro Nervado 8mm…", "TOTAL", "2 días", "Flete aparte", "• vigueta"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}
