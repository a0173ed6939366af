// Package catalog provides the product snapshot the matcher works against and
// the providers that fill it (Shopify Admin API or a local JSON file).
package catalog

import (
	"context"
	"strings"
	"time"
)

// defaultVariantTitle is what the store reports for single-variant products.
const defaultVariantTitle = "Default Title"

// Variant is one sellable presentation of an item.
type Variant struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	SKU            string `json:"sku,omitempty"`
	PriceCents     int64  `json:"priceCents"`
	CompareAtCents int64  `json:"compareAtCents,omitempty"`
}

// Item is a catalog product with its variants in store order.
type Item struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Variants []Variant `json:"variants"`
}

// FirstVariant returns the item's first variant.
func (i Item) FirstVariant() (Variant, bool) {
	if len(i.Variants) == 0 {
		return Variant{}, false
	}
	return i.Variants[0], true
}

// Variant looks a variant up by ID.
func (i Item) Variant(id string) (Variant, bool) {
	for _, v := range i.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// DisplayTitle joins item and variant titles, leaving out placeholder variant names.
func DisplayTitle(item Item, variant Variant) string {
	vt := strings.TrimSpace(variant.Title)
	if vt == "" || vt == defaultVariantTitle || strings.EqualFold(vt, item.Title) {
		return item.Title
	}
	return item.Title + " - " + vt
}

// Snapshot is an immutable view of the catalog at a point in time.
type Snapshot struct {
	Items     []Item    `json:"items"`
	FetchedAt time.Time `json:"fetchedAt"`

	byID map[string]int
}

// NewSnapshot indexes items for lookup.
func NewSnapshot(items []Item, fetchedAt time.Time) *Snapshot {
	s := &Snapshot{Items: items, FetchedAt: fetchedAt, byID: make(map[string]int, len(items))}
	for i, it := range items {
		s.byID[it.ID] = i
	}
	return s
}

// Find returns the item with the given ID.
func (s *Snapshot) Find(itemID string) (Item, bool) {
	if s == nil {
		return Item{}, false
	}
	if s.byID == nil {
		for _, it := range s.Items {
			if it.ID == itemID {
				return it, true
			}
		}
		return Item{}, false
	}
	idx, ok := s.byID[itemID]
	if !ok {
		return Item{}, false
	}
	return s.Items[idx], true
}

// Len returns the number of items.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Items)
}

// Provider lists the full catalog from an upstream store.
type Provider interface {
	ListCatalog(ctx context.Context) ([]Item, error)
}

// Source hands out the current snapshot.
type Source interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}
