// Package order holds the accepted lines of a quote and their three price
// columns. Every mutation returns a new slice; callers keep the previous one
// untouched until they commit.
package order

import (
	"math"

	"corralon_backend/internal/catalog"
)

// Discounts are fractions of the list price.
type Discounts struct {
	Cash     float64
	Transfer float64
}

// Amounts are line or order totals in cents.
type Amounts struct {
	List     int64 `json:"list"`
	Cash     int64 `json:"cash"`
	Transfer int64 `json:"transfer"`
}

// Item is one accepted line.
type Item struct {
	ItemID    string  `json:"itemId"`
	VariantID string  `json:"variantId"`
	Title     string  `json:"title"`
	Qty       float64 `json:"qty"`
	Amounts   Amounts `json:"amounts"`
}

func roundCents(v float64) int64 {
	return int64(math.Round(v))
}

// Compute prices qty units. Cash uses the compare-at price when it is set and
// below the list price, otherwise the cash discount.
func Compute(priceCents, compareAtCents int64, qty float64, d Discounts) Amounts {
	list := float64(priceCents) * qty
	cash := list * (1 - d.Cash)
	if compareAtCents > 0 && compareAtCents < priceCents {
		cash = float64(compareAtCents) * qty
	}
	return Amounts{
		List:     roundCents(list),
		Cash:     roundCents(cash),
		Transfer: roundCents(list * (1 - d.Transfer)),
	}
}

// NewItem prices a catalog variant.
func NewItem(item catalog.Item, variant catalog.Variant, qty float64, d Discounts) Item {
	return Item{
		ItemID:    item.ID,
		VariantID: variant.ID,
		Title:     catalog.DisplayTitle(item, variant),
		Qty:       qty,
		Amounts:   Compute(variant.PriceCents, variant.CompareAtCents, qty, d),
	}
}

// UnitCents is the list price of one unit, derived from the line subtotal.
func (it Item) UnitCents() int64 {
	if it.Qty <= 0 {
		return 0
	}
	return roundCents(float64(it.Amounts.List) / it.Qty)
}

// WithQty rescales every column to qty using the per-unit value of the
// current subtotal.
func (it Item) WithQty(qty float64) Item {
	if it.Qty <= 0 {
		it.Qty = qty
		return it
	}
	ratio := qty / it.Qty
	it.Amounts = Amounts{
		List:     roundCents(float64(it.Amounts.List) * ratio),
		Cash:     roundCents(float64(it.Amounts.Cash) * ratio),
		Transfer: roundCents(float64(it.Amounts.Transfer) * ratio),
	}
	it.Qty = qty
	return it
}

// Merge adds a line, summing quantities when the variant is already present.
// It returns the new slice and the index of the touched line.
func Merge(items []Item, add Item) ([]Item, int) {
	out := append([]Item(nil), items...)
	for i, it := range out {
		if it.VariantID != "" && it.VariantID == add.VariantID {
			out[i] = it.WithQty(it.Qty + add.Qty)
			return out, i
		}
	}
	return append(out, add), len(out)
}

// SetQty replaces the quantity of line idx.
func SetQty(items []Item, idx int, qty float64) ([]Item, bool) {
	if idx < 0 || idx >= len(items) || qty <= 0 {
		return items, false
	}
	out := append([]Item(nil), items...)
	out[idx] = out[idx].WithQty(qty)
	return out, true
}

// Replace swaps line idx for another variant. When a different line already
// holds that variant, line idx is dropped and its quantity merged there. It
// returns the index of the line that now carries the variant, or -1 when idx
// is out of range.
func Replace(items []Item, idx int, with Item) ([]Item, int) {
	if idx < 0 || idx >= len(items) {
		return items, -1
	}
	for i, it := range items {
		if i != idx && it.VariantID != "" && it.VariantID == with.VariantID {
			out, _ := Remove(items, idx)
			return Merge(out, with)
		}
	}
	out := append([]Item(nil), items...)
	out[idx] = with
	return out, idx
}

// Remove drops line idx.
func Remove(items []Item, idx int) ([]Item, bool) {
	if idx < 0 || idx >= len(items) {
		return items, false
	}
	out := make([]Item, 0, len(items)-1)
	out = append(out, items[:idx]...)
	return append(out, items[idx+1:]...), true
}

// Totals sums each column.
func Totals(items []Item) Amounts {
	var t Amounts
	for _, it := range items {
		t.List += it.Amounts.List
		t.Cash += it.Amounts.Cash
		t.Transfer += it.Amounts.Transfer
	}
	return t
}
